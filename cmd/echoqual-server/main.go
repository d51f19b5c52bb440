// Command echoqual-server runs echo reflectors for transport qualification.
//
// A reflector receives payloads and sends them back unchanged. One process
// can serve several transports at once; deterministic fault injection
// (payload drop, single-bit corruption) is available for exercising the
// qualification runner's failure paths.
//
// Usage:
//
//	echoqual-server [flags]
//
// Flags:
//
//	-udp string             UDP listen address (e.g. :9000)
//	-tcp string             TCP listen address
//	-tls string             TLS listen address
//	-ws string              WebSocket listen address
//	-cert string            TLS certificate file (with -key; default: self-signed)
//	-key string             TLS private key file
//	-advertise string       Advertise via mDNS under this instance name
//	-drop-every int         Drop every Nth reflected payload (0 = off)
//	-corrupt-every int      Corrupt every Nth reflected payload (0 = off)
//	-protocol-log string    File path for protocol event logging (CBOR format)
//
// Examples:
//
//	# UDP and TCP reflectors on the default port
//	echoqual-server -udp :9000 -tcp :9000
//
//	# TLS with a provisioned certificate, advertised on the bench network
//	echoqual-server -tls :9001 -cert bench.crt -key bench.key -advertise bench-reflector
//
//	# Lossy reflector for failure-path testing
//	echoqual-server -udp :9000 -drop-every 10
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/echoqual/echoqual-go/pkg/discovery"
	"github.com/echoqual/echoqual-go/pkg/echo"
	"github.com/echoqual/echoqual-go/pkg/echoserver"
	eqlog "github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/transport"
	"github.com/echoqual/echoqual-go/pkg/version"
)

var (
	udpAddr      = flag.String("udp", "", "UDP listen address (e.g. :9000)")
	tcpAddr      = flag.String("tcp", "", "TCP listen address")
	tlsAddr      = flag.String("tls", "", "TLS listen address")
	wsAddr       = flag.String("ws", "", "WebSocket listen address")
	certFile     = flag.String("cert", "", "TLS certificate file (with -key; default: self-signed)")
	keyFile      = flag.String("key", "", "TLS private key file")
	advertise    = flag.String("advertise", "", "Advertise via mDNS under this instance name")
	dropEvery    = flag.Int("drop-every", 0, "Drop every Nth reflected payload (0 = off)")
	corruptEvery = flag.Int("corrupt-every", 0, "Corrupt every Nth reflected payload (0 = off)")
	protocolLog  = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
)

// server is the start/stop surface shared by all reflector types.
type server interface {
	Start(ctx context.Context) error
	Stop() error
	Addr() net.Addr
}

func main() {
	flag.Parse()

	if *udpAddr == "" && *tcpAddr == "" && *tlsAddr == "" && *wsAddr == "" {
		fmt.Fprintln(os.Stderr, "Error: at least one listen address is required (-udp, -tcp, -tls, -ws)")
		flag.Usage()
		os.Exit(1)
	}

	stdlog.SetFlags(stdlog.Ltime)

	var logger eqlog.Logger
	if *protocolLog != "" {
		fileLogger, err := eqlog.NewFileLogger(*protocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create protocol logger: %v\n", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
		logger = fileLogger
		stdlog.Printf("Protocol logging to: %s", *protocolLog)
	}

	config := echoserver.Config{
		Logger:       logger,
		DropEvery:    *dropEvery,
		CorruptEvery: *corruptEvery,
		OnConnect: func(connID string, remote net.Addr) {
			stdlog.Printf("client connected: %s (%s)", remote, shortID(connID))
		},
		OnDisconnect: func(connID string, remote net.Addr) {
			stdlog.Printf("client disconnected: %s (%s)", remote, shortID(connID))
		},
		OnError: func(err error) {
			stdlog.Printf("reflect error: %v", err)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var servers []server
	var schemes []string

	if *udpAddr != "" {
		servers = append(servers, echoserver.NewUDPServer(*udpAddr, config))
		schemes = append(schemes, "udp")
	}
	if *tcpAddr != "" {
		servers = append(servers, echoserver.NewTCPServer(*tcpAddr, config))
		schemes = append(schemes, "tcp")
	}
	if *tlsAddr != "" {
		cert, err := loadCertificate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		servers = append(servers, echoserver.NewTLSServer(*tlsAddr, cert, config))
		schemes = append(schemes, "tls")
	}
	if *wsAddr != "" {
		servers = append(servers, echoserver.NewWSServer(*wsAddr, config))
		schemes = append(schemes, "ws")
	}

	for _, s := range servers {
		if err := s.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start reflector: %v\n", err)
			os.Exit(1)
		}
	}
	for i, s := range servers {
		stdlog.Printf("%s reflector listening on %s", schemes[i], s.Addr())
	}

	if *advertise != "" {
		stop, err := startAdvertiser(ctx, servers, schemes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to advertise: %v\n", err)
			os.Exit(1)
		}
		defer stop()
		stdlog.Printf("advertising as %q via mDNS", *advertise)
	}

	// Block until interrupted.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	stdlog.Println("shutting down")
	for _, s := range servers {
		if err := s.Stop(); err != nil {
			stdlog.Printf("stop error: %v", err)
		}
	}
}

// loadCertificate loads the -cert/-key pair, or generates a self-signed
// certificate when neither is given.
func loadCertificate() (tls.Certificate, error) {
	if *certFile == "" && *keyFile == "" {
		return transport.GenerateSelfSignedCert("localhost", "127.0.0.1")
	}
	if *certFile == "" || *keyFile == "" {
		return tls.Certificate{}, fmt.Errorf("-cert and -key must be given together")
	}
	cert, err := tls.LoadX509KeyPair(*certFile, *keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load certificate: %w", err)
	}
	return cert, nil
}

// startAdvertiser registers the reflectors via mDNS. All schemes share one
// instance name; the service type is derived per scheme.
func startAdvertiser(ctx context.Context, servers []server, schemes []string) (func(), error) {
	adv, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		return nil, err
	}

	// mDNS carries a single port per service; use the first listener's.
	port, err := listenPort(servers[0].Addr())
	if err != nil {
		return nil, err
	}

	info := &discovery.ReflectorInfo{
		InstanceName: *advertise,
		Schemes:      schemes,
		Port:         port,
		MaxPayload:   echo.DefaultMaxPayloadSize,
		Version:      version.Current,
	}
	if err := adv.Advertise(ctx, info); err != nil {
		return nil, err
	}
	return adv.StopAll, nil
}

func listenPort(addr net.Addr) (uint16, error) {
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0, fmt.Errorf("cannot determine listen port from %q: %w", addr, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("cannot determine listen port from %q: %w", addr, err)
	}
	return uint16(port), nil
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
