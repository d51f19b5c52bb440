// echoqual-shell is an interactive exerciser for transport backends.
//
// It speaks the transport contract directly from a readline prompt, which
// makes it the tool of choice when bringing up a new backend: connect to a
// reflector, push individual payloads through, watch what comes back, and
// only then hand the backend to the full qualification runner.
//
// Usage:
//
//	echoqual-shell [flags]
//
// Flags:
//
//	-protocol-log <path>  Write protocol events to a CBOR .eqlog file
//
// Commands (at the prompt):
//
//	connect <target>   - Connect to a reflector (e.g. udp://host:9000)
//	send <size|text>   - Send a pattern payload of <size> bytes, or raw text
//	recv [n]           - Receive up to n bytes (default 1460)
//	run [max-size]     - Run a full progressive echo qualification
//	status             - Show connection state and counters
//	disconnect         - Close the connection
//	help               - Show command help
//	quit               - Exit
//
// Examples:
//
//	echoqual-shell
//	echoqual-shell -protocol-log bringup.eqlog
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/echoqual/echoqual-go/pkg/echo"
	eqlog "github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

var protocolLog = flag.String("protocol-log", "", "write protocol events to a CBOR .eqlog file")

// recvDefault is the buffer size used by a bare recv command.
const recvDefault = echo.DefaultMaxPayloadSize

// shell holds the interactive session state. At most one connection is
// live at a time.
type shell struct {
	rl     *readline.Instance
	logger eqlog.Logger

	conn   transport.Conn
	target string
	connID string

	sentBytes int
	recvBytes int
	sends     int
	recvs     int
}

// loggable is satisfied by conns that support protocol event logging.
type loggable interface {
	SetLogger(logger eqlog.Logger, connID string)
}

func newShell(logger eqlog.Logger) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "echoqual> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &shell{rl: rl, logger: logger}, nil
}

func main() {
	flag.Parse()

	var logger eqlog.Logger
	if *protocolLog != "" {
		fl, err := eqlog.NewFileLogger(*protocolLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open protocol log: %v\n", err)
			os.Exit(1)
		}
		defer fl.Close()
		logger = fl
	}

	sh, err := newShell(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sh.run()
}

// run starts the interactive command loop.
func (s *shell) run() {
	defer s.rl.Close()
	defer func() {
		if s.conn != nil {
			_ = s.conn.Disconnect()
		}
	}()

	fmt.Fprintf(s.rl.Stdout(), "Transport bring-up shell. Schemes: %s. Type 'help' for commands.\n",
		strings.Join(transport.Schemes(), ", "))

	for {
		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "connect", "c":
			s.cmdConnect(args)

		case "send", "s":
			s.cmdSend(args)

		case "recv", "r":
			s.cmdRecv(args)

		case "run":
			s.cmdRun(args)

		case "status":
			s.cmdStatus()

		case "disconnect", "d":
			s.cmdDisconnect()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Commands:
  Connection:
    connect <target>   - Connect to a reflector (udp://host:port, tcp://, tls://, ws://, mem:)
    disconnect         - Close the connection
    status             - Show connection state and counters

  Traffic:
    send <size>        - Send a sequential-pattern payload of <size> bytes
    send <text>        - Send the literal text (anything that is not a number)
    recv [n]           - Receive up to n bytes (default 1460)
    run [max-size]     - Run a full progressive echo qualification (re-dials the target)

  General:
    help               - Show this help
    quit               - Exit

  Target Format:
    scheme://host[:port] - port defaults to 9000
    mem:                 - in-process loopback, no reflector needed`)
}

// cmdConnect handles the connect command.
func (s *shell) cmdConnect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: connect <target>")
		fmt.Fprintln(s.rl.Stdout(), "  Example: connect udp://192.168.1.50:9000")
		return
	}
	if s.conn != nil {
		fmt.Fprintf(s.rl.Stdout(), "Already connected to %s (disconnect first)\n", s.target)
		return
	}

	conn, ep, err := transport.ParseTarget(args[0], transport.Endpoint{})
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid target: %v\n", err)
		return
	}

	connID := uuid.New().String()
	if lc, ok := conn.(loggable); ok && s.logger != nil {
		lc.SetLogger(s.logger, connID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if err := conn.Connect(ctx, ep); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}

	s.conn = conn
	s.target = args[0]
	s.connID = connID
	s.sentBytes, s.recvBytes, s.sends, s.recvs = 0, 0, 0, 0

	remote := "-"
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	fmt.Fprintf(s.rl.Stdout(), "Connected to %s in %s\n", remote, time.Since(start).Round(time.Millisecond))
}

// cmdSend handles the send command. A numeric argument selects a
// pattern-filled payload of that size; anything else is sent verbatim.
func (s *shell) cmdSend(args []string) {
	if s.conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not connected")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: send <size|text>")
		return
	}

	var payload []byte
	if size, err := strconv.Atoi(args[0]); err == nil {
		if size <= 0 {
			fmt.Fprintln(s.rl.Stdout(), "Size must be positive")
			return
		}
		payload = make([]byte, size)
		if err := echo.PatternSequential.Fill(payload, [32]byte{}); err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Pattern fill failed: %v\n", err)
			return
		}
	} else {
		payload = []byte(strings.Join(args, " "))
	}

	n, err := s.conn.Send(payload)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Send failed: %v\n", err)
		return
	}

	s.sends++
	s.sentBytes += n
	if n < len(payload) {
		fmt.Fprintf(s.rl.Stdout(), "Sent %d of %d bytes (short write)\n", n, len(payload))
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Sent %d bytes\n", n)
}

// cmdRecv handles the recv command.
func (s *shell) cmdRecv(args []string) {
	if s.conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not connected")
		return
	}

	size := recvDefault
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			fmt.Fprintf(s.rl.Stdout(), "Invalid size: %s\n", args[0])
			return
		}
		size = v
	}

	buf := make([]byte, size)
	start := time.Now()
	n, err := s.conn.Receive(buf)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Receive failed: %v\n", err)
		return
	}

	s.recvs++
	s.recvBytes += n
	fmt.Fprintf(s.rl.Stdout(), "Received %d bytes in %s\n", n, time.Since(start).Round(time.Millisecond))
	fmt.Fprint(s.rl.Stdout(), hexDump(buf[:n]))
}

// cmdRun drives a full progressive echo qualification against the last
// connected target. The echo runner owns its conn end to end, so any live
// session connection is closed first and the session ends up disconnected.
func (s *shell) cmdRun(args []string) {
	if s.target == "" {
		fmt.Fprintln(s.rl.Stdout(), "No target (use 'connect' first)")
		return
	}

	cfg := echo.Config{}
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < echo.MinPayloadSize {
			fmt.Fprintf(s.rl.Stdout(), "Invalid max size: %s (minimum %d)\n", args[0], echo.MinPayloadSize)
			return
		}
		cfg.MaxPayloadSize = v
	}

	if s.conn != nil {
		_ = s.conn.Disconnect()
		s.conn = nil
		s.connID = ""
		fmt.Fprintln(s.rl.Stdout(), "Closed session connection (the run dials its own)")
	}

	conn, ep, err := transport.ParseTarget(s.target, transport.Endpoint{})
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid target: %v\n", err)
		return
	}
	if lc, ok := conn.(loggable); ok && s.logger != nil {
		lc.SetLogger(s.logger, uuid.New().String())
	}

	runner, err := echo.NewRunner(conn, ep, cfg, s.logger)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Cannot start run: %v\n", err)
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "Running echo qualification (run %s)...\n", runner.RunID())
	result := runner.Run(context.Background())

	if result.Pass {
		fmt.Fprintf(s.rl.Stdout(), "PASS: %d rounds, final size %d, %d losses, %s\n",
			result.RoundsPassed, result.Size, result.Losses, result.Duration.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "FAIL at size %d: %s", result.Size, result.Failure)
	if result.FailureDetail != "" {
		fmt.Fprintf(s.rl.Stdout(), " (%s)", result.FailureDetail)
	}
	fmt.Fprintf(s.rl.Stdout(), "\n  %d rounds passed, %d losses, %s\n",
		result.RoundsPassed, result.Losses, result.Duration.Round(time.Millisecond))
}

// cmdStatus shows the connection state and session counters.
func (s *shell) cmdStatus() {
	fmt.Fprintln(s.rl.Stdout(), "\nSession Status")
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")

	if s.conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "  State:     disconnected")
		fmt.Fprintln(s.rl.Stdout(), "")
		return
	}

	local, remote := "-", "-"
	if addr := s.conn.LocalAddr(); addr != nil {
		local = addr.String()
	}
	if addr := s.conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}

	shortID := s.connID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	fmt.Fprintln(s.rl.Stdout(), "  State:     connected")
	fmt.Fprintf(s.rl.Stdout(), "  Target:    %s\n", s.target)
	fmt.Fprintf(s.rl.Stdout(), "  Conn ID:   %s\n", shortID)
	fmt.Fprintf(s.rl.Stdout(), "  Local:     %s\n", local)
	fmt.Fprintf(s.rl.Stdout(), "  Remote:    %s\n", remote)
	fmt.Fprintf(s.rl.Stdout(), "  Sent:      %d bytes in %d sends\n", s.sentBytes, s.sends)
	fmt.Fprintf(s.rl.Stdout(), "  Received:  %d bytes in %d recvs\n", s.recvBytes, s.recvs)
	fmt.Fprintln(s.rl.Stdout(), "")
}

// cmdDisconnect handles the disconnect command.
func (s *shell) cmdDisconnect() {
	if s.conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not connected")
		return
	}
	if err := s.conn.Disconnect(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Disconnect failed: %v\n", err)
	} else {
		fmt.Fprintln(s.rl.Stdout(), "Disconnected")
	}
	s.conn = nil
	s.target = ""
	s.connID = ""
}

// hexDump renders data as a hex/ASCII dump, 16 bytes per row, capped at
// 256 bytes to keep the terminal usable.
func hexDump(data []byte) string {
	const maxDump = 256

	truncated := false
	if len(data) > maxDump {
		data = data[:maxDump]
		truncated = true
	}

	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		fmt.Fprintf(&b, "  %04x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				fmt.Fprintf(&b, "%02x ", row[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" ")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("\n")
	}
	if truncated {
		b.WriteString("  ...\n")
	}
	return b.String()
}
