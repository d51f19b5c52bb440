package echoqual_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/echoqual/echoqual-go/internal/qual/loader"
	"github.com/echoqual/echoqual-go/internal/qual/runner"
	"github.com/echoqual/echoqual-go/pkg/discovery"
	"github.com/echoqual/echoqual-go/pkg/echo"
	"github.com/echoqual/echoqual-go/pkg/echoserver"
	eqlog "github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

// e2eMaxSize keeps the escalation loops short; the full 1460-byte sweep
// belongs on real hardware, not in the test suite.
const e2eMaxSize = 128

// TestE2E_UDPQualification runs a full qualification against a live UDP
// reflector on the loopback interface.
func TestE2E_UDPQualification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewUDPServer("127.0.0.1:0", echoserver.Config{})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start UDP reflector: %v", err)
	}
	defer srv.Stop()

	runQualification(t, "udp://"+srv.Addr().String())
}

// TestE2E_TCPQualification runs a full qualification against a live TCP
// reflector on the loopback interface.
func TestE2E_TCPQualification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewTCPServer("127.0.0.1:0", echoserver.Config{})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start TCP reflector: %v", err)
	}
	defer srv.Stop()

	runQualification(t, "tcp://"+srv.Addr().String())
}

// TestE2E_TLSQualification runs a full qualification over TLS 1.3 with a
// self-signed reflector certificate, exercising the lab-rig trust model.
func TestE2E_TLSQualification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cert, err := transport.GenerateSelfSignedCert("127.0.0.1")
	if err != nil {
		t.Fatalf("Failed to generate certificate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewTLSServer("127.0.0.1:0", cert, echoserver.Config{})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start TLS reflector: %v", err)
	}
	defer srv.Stop()

	runQualification(t, "tls://"+srv.Addr().String())
}

// TestE2E_WSQualification runs a full qualification over WebSocket binary
// frames.
func TestE2E_WSQualification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewWSServer("127.0.0.1:0", echoserver.Config{})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start WS reflector: %v", err)
	}
	defer srv.Stop()

	runQualification(t, "ws://"+srv.Addr().String())
}

// TestE2E_LossTolerance verifies that sporadic datagram loss within the
// retry budget does not fail a run. The reflector drops every fifth
// datagram; the escalation must still reach the top size.
func TestE2E_LossTolerance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewUDPServer("127.0.0.1:0", echoserver.Config{DropEvery: 5})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start UDP reflector: %v", err)
	}
	defer srv.Stop()

	plan, err := loader.AdHocPlan("udp://"+srv.Addr().String(), loader.Settings{
		MaxPayloadSize: 32,
		RecvTimeout:    "200ms",
		RoundTimeout:   "1s",
	})
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}

	suite := runner.New(nil).RunPlan(context.Background(), plan)
	if !suite.Passed() {
		t.Fatalf("Suite failed despite tolerable loss: %+v", suite.Results[0])
	}

	er := echoResult(t, suite.Results[0])
	if er.Losses == 0 {
		t.Error("Expected at least one lost round with DropEvery: 5")
	}
	if er.Size != 32 {
		t.Errorf("Final size = %d, want 32", er.Size)
	}
}

// TestE2E_CorruptionFails verifies that payload corruption fails the run
// immediately with a corruption verdict. Corruption is a correctness bug;
// retries must not mask it.
func TestE2E_CorruptionFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewUDPServer("127.0.0.1:0", echoserver.Config{CorruptEvery: 3})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start UDP reflector: %v", err)
	}
	defer srv.Stop()

	plan, err := loader.AdHocPlan("udp://"+srv.Addr().String(), loader.Settings{
		MaxPayloadSize: e2eMaxSize,
	})
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}

	suite := runner.New(nil).RunPlan(context.Background(), plan)
	if suite.Passed() {
		t.Fatal("Suite passed despite a corrupting reflector")
	}

	er := echoResult(t, suite.Results[0])
	if er.Failure != echo.FailCorruption {
		t.Errorf("Failure = %s, want %s", er.Failure, echo.FailCorruption)
	}
}

// TestE2E_ProtocolLog verifies that a logged run produces a readable .eqlog
// file containing both transport frames and echo round events.
func TestE2E_ProtocolLog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := echoserver.NewTCPServer("127.0.0.1:0", echoserver.Config{})
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Failed to start TCP reflector: %v", err)
	}
	defer srv.Stop()

	logPath := t.TempDir() + "/e2e.eqlog"
	logger, err := eqlog.NewFileLogger(logPath)
	if err != nil {
		t.Fatalf("Failed to create protocol log: %v", err)
	}

	plan, err := loader.AdHocPlan("tcp://"+srv.Addr().String(), loader.Settings{
		MaxPayloadSize: e2eMaxSize,
	})
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}

	suite := runner.New(logger).RunPlan(context.Background(), plan)
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close protocol log: %v", err)
	}
	if !suite.Passed() {
		t.Fatalf("Suite failed: %+v", suite.Results[0])
	}

	reader, err := eqlog.NewReader(logPath)
	if err != nil {
		t.Fatalf("Failed to open protocol log: %v", err)
	}
	defer reader.Close()

	var rounds, passes int
	layers := map[eqlog.Layer]int{}
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		layers[ev.Layer]++
		if ev.Round != nil {
			rounds++
			if ev.Round.Verdict == eqlog.VerdictPass {
				passes++
			}
		}
	}

	wantRounds := e2eMaxSize - echo.MinPayloadSize + 1
	if passes != wantRounds {
		t.Errorf("Passed round events = %d, want %d", passes, wantRounds)
	}
	if rounds < wantRounds {
		t.Errorf("Round events = %d, want at least %d", rounds, wantRounds)
	}
	if layers[eqlog.LayerEcho] == 0 {
		t.Error("No echo-layer events logged")
	}
}

// TestE2E_Discovery verifies that an advertised reflector can be found via
// mDNS on the local host and that the browsed TXT metadata round-trips.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	advertiser, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		t.Fatalf("Failed to create advertiser: %v", err)
	}
	defer advertiser.StopAll()

	instanceName := fmt.Sprintf("e2e-reflector-%d", time.Now().UnixNano())
	info := &discovery.ReflectorInfo{
		InstanceName: instanceName,
		Schemes:      []string{"tcp", "tls"},
		Port:         19000,
		MaxPayload:   echo.DefaultMaxPayloadSize,
		Version:      "1.0",
	}
	if err := advertiser.Advertise(ctx, info); err != nil {
		t.Fatalf("Failed to advertise reflector: %v", err)
	}

	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		t.Fatalf("Failed to create browser: %v", err)
	}

	found, err := browser.FindByInstanceName(ctx, instanceName)
	if err != nil {
		t.Fatalf("Reflector not discovered: %v", err)
	}

	if found.Port != 19000 {
		t.Errorf("Port = %d, want 19000", found.Port)
	}
	if found.MaxPayload != echo.DefaultMaxPayloadSize {
		t.Errorf("MaxPayload = %d, want %d", found.MaxPayload, echo.DefaultMaxPayloadSize)
	}
	if len(found.Schemes) != 2 {
		t.Errorf("Schemes = %v, want [tcp tls]", found.Schemes)
	}
}

// runQualification runs the default three-phase plan against target and
// asserts a clean pass up to e2eMaxSize.
func runQualification(t *testing.T, target string) {
	t.Helper()

	plan, err := loader.AdHocPlan(target, loader.Settings{MaxPayloadSize: e2eMaxSize})
	if err != nil {
		t.Fatalf("Failed to build plan: %v", err)
	}

	suite := runner.New(nil).RunPlan(context.Background(), plan)
	if !suite.Passed() {
		t.Fatalf("Suite failed: %+v", suite.Results[0])
	}

	cr := suite.Results[0]
	if len(cr.Phases) != len(loader.AllPhases) {
		t.Fatalf("Phases = %d, want %d", len(cr.Phases), len(loader.AllPhases))
	}

	er := echoResult(t, cr)
	if !er.Pass {
		t.Errorf("Echo run failed: %s (%s)", er.Failure, er.FailureDetail)
	}
	if er.Size != e2eMaxSize {
		t.Errorf("Final size = %d, want %d", er.Size, e2eMaxSize)
	}
}

// echoResult extracts the echo phase result from a case.
func echoResult(t *testing.T, cr *runner.CaseResult) *echo.Result {
	t.Helper()
	for _, pr := range cr.Phases {
		if pr.Phase == loader.PhaseEcho {
			if pr.Echo == nil {
				t.Fatal("Echo phase carries no result")
			}
			return pr.Echo
		}
	}
	t.Fatal("No echo phase in case result")
	return nil
}
