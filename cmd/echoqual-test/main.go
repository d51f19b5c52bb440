// Command echoqual-test runs transport qualification against an echo reflector.
//
// A qualification run walks progressively larger payloads through a transport
// backend and verifies each one is reflected byte-exact. Cases come from a
// YAML plan file or from an ad-hoc target given on the command line.
//
// Usage:
//
//	echoqual-test [flags]
//
// Flags:
//
//	-target string          Ad-hoc target URL (udp://host:9000, tcp://, tls://, ws://, mem:)
//	-plan string            Path to a YAML qualification plan file
//	-tag string             Run only plan cases carrying this tag
//	-max-size int           Maximum payload size in bytes (default 1460)
//	-max-retry int          Consecutive-loss budget per size (default 10)
//	-timeout duration       Per-round timeout (default 30s)
//	-pattern string         Payload pattern: sequential, seeded (default "sequential")
//	-seed uint              Seed for the seeded pattern
//	-connect-retries int    Extra connect attempts before giving up
//	-discover               Browse mDNS for reflectors and list them
//	-output string          Write the report to a file instead of stdout
//	-format string          Report format: text, json, junit (default "text")
//	-protocol-log string    File path for protocol event logging (CBOR format)
//	-v                      Verbose report (per-check and per-round detail)
//
// Examples:
//
//	# Qualify a UDP reflector ad hoc
//	echoqual-test -target udp://192.168.1.50:9000
//
//	# Run a plan file, JUnit output for CI
//	echoqual-test -plan bench.yaml -format junit -output report.xml
//
//	# Only the smoke-tagged cases, with protocol logging
//	echoqual-test -plan bench.yaml -tag smoke -protocol-log run.eqlog
//
//	# Find reflectors on the bench network
//	echoqual-test -discover
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/echoqual/echoqual-go/internal/qual/loader"
	"github.com/echoqual/echoqual-go/internal/qual/reporter"
	"github.com/echoqual/echoqual-go/internal/qual/runner"
	"github.com/echoqual/echoqual-go/pkg/discovery"
	eqlog "github.com/echoqual/echoqual-go/pkg/log"
)

var (
	target         = flag.String("target", "", "Ad-hoc target URL (udp://host:9000, tcp://, tls://, ws://, mem:)")
	planFile       = flag.String("plan", "", "Path to a YAML qualification plan file")
	tag            = flag.String("tag", "", "Run only plan cases carrying this tag")
	maxSize        = flag.Int("max-size", 0, "Maximum payload size in bytes (default 1460)")
	maxRetry       = flag.Int("max-retry", -1, "Consecutive-loss budget per size (default 10)")
	timeout        = flag.Duration("timeout", 0, "Per-round timeout (default 30s)")
	pattern        = flag.String("pattern", "", "Payload pattern: sequential, seeded")
	seed           = flag.Uint64("seed", 0, "Seed for the seeded pattern")
	connectRetries = flag.Int("connect-retries", 0, "Extra connect attempts before giving up")
	discover       = flag.Bool("discover", false, "Browse mDNS for reflectors and list them")
	output         = flag.String("output", "", "Write the report to a file instead of stdout")
	format         = flag.String("format", "text", "Report format: text, json, junit")
	protocolLog    = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	verbose        = flag.Bool("v", false, "Verbose report")
)

const discoverTimeout = 5 * time.Second

func main() {
	flag.Parse()

	if *discover {
		if err := runDiscover(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *target == "" && *planFile == "" {
		fmt.Fprintln(os.Stderr, "Error: either -target or -plan is required")
		flag.Usage()
		os.Exit(1)
	}
	if *target != "" && *planFile != "" {
		fmt.Fprintln(os.Stderr, "Error: -target and -plan are mutually exclusive")
		flag.Usage()
		os.Exit(1)
	}

	plan, err := buildPlan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rep, cleanupReport, err := buildReporter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanupReport()

	// Set up protocol logging if requested
	var protocolLogger *eqlog.FileLogger
	if *protocolLog != "" {
		protocolLogger, err = eqlog.NewFileLogger(*protocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create protocol logger: %v\n", err)
			os.Exit(1)
		}
		defer protocolLogger.Close()
	}

	var logger eqlog.Logger
	// Only set logger when non-nil to avoid typed-nil interface issue.
	if protocolLogger != nil {
		logger = protocolLogger
	}

	r := runner.New(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *format == "text" {
		stdlog.SetFlags(stdlog.Ltime)
		printBanner()
		stdlog.Printf("Plan: %s (%d cases)", plan.Name, len(plan.Cases))
		if *protocolLog != "" {
			stdlog.Printf("Protocol logging to: %s", *protocolLog)
		}
	}

	suite := r.RunPlan(ctx, plan)
	rep.ReportSuite(suite)

	if !suite.Passed() {
		os.Exit(1)
	}
}

// buildPlan assembles the plan from -plan or from the ad-hoc flags.
func buildPlan() (*loader.Plan, error) {
	if *planFile != "" {
		plan, err := loader.LoadPlan(*planFile)
		if err != nil {
			return nil, err
		}
		if *tag != "" {
			plan.Cases = loader.FilterCases(plan.Cases, *tag)
			if len(plan.Cases) == 0 {
				return nil, fmt.Errorf("no cases carry tag %q", *tag)
			}
		}
		return plan, nil
	}

	settings := loader.Settings{
		MaxPayloadSize: *maxSize,
		Pattern:        *pattern,
		Seed:           *seed,
		ConnectRetries: *connectRetries,
	}
	if *maxRetry >= 0 {
		settings.MaxRetry = maxRetry
	}
	if *timeout > 0 {
		settings.RoundTimeout = timeout.String()
		settings.RecvTimeout = timeout.String()
	}
	return loader.AdHocPlan(*target, settings)
}

// buildReporter selects the report format and destination.
func buildReporter() (reporter.Reporter, func(), error) {
	var w *os.File = os.Stdout
	cleanup := func() {}
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w = f
		cleanup = func() { f.Close() }
	}

	switch *format {
	case "text":
		return reporter.NewTextReporter(w, *verbose), cleanup, nil
	case "json":
		return reporter.NewJSONReporter(w, true), cleanup, nil
	case "junit":
		return reporter.NewJUnitReporter(w), cleanup, nil
	default:
		cleanup()
		return nil, nil, fmt.Errorf("unknown format: %s (supported: text, json, junit)", *format)
	}
}

// runDiscover browses mDNS for reflectors and prints what it finds.
func runDiscover() error {
	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	services, err := browser.Browse(ctx)
	if err != nil {
		return fmt.Errorf("browse failed: %w", err)
	}

	fmt.Printf("Browsing for reflectors (%s)...\n\n", discoverTimeout)
	found := 0
	for svc := range services {
		found++
		fmt.Printf("%s\n", svc.InstanceName)
		fmt.Printf("  Host:       %s:%d\n", svc.Host, svc.Port)
		if len(svc.Addresses) > 0 {
			fmt.Printf("  Addresses:  %v\n", svc.Addresses)
		}
		fmt.Printf("  Schemes:    %v\n", svc.Schemes)
		if svc.MaxPayload > 0 {
			fmt.Printf("  MaxPayload: %d\n", svc.MaxPayload)
		}
		if svc.Version != "" {
			fmt.Printf("  Version:    %s\n", svc.Version)
		}
		fmt.Println()
	}

	if found == 0 {
		fmt.Println("No reflectors found.")
	}
	return nil
}

func printBanner() {
	fmt.Print(`
 _____   ____  _   _    ___    ___   _   _     _     _
| ____| / ___|| | | |  / _ \  / _ \ | | | |   / \   | |
|  _|  | |    | |_| | | | | || | | || | | |  / _ \  | |
| |___ | |___ |  _  | | |_| || |_| || |_| | / ___ \ | |___
|_____| \____||_| |_|  \___/  \__\_\ \___/ /_/   \_\|_____|

Transport Qualification Runner
`)
}
