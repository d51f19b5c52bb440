package echoserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

// streamReadBufferSize bounds one reflected chunk on stream connections.
const streamReadBufferSize = 64 * 1024

// TCPServer reflects the byte stream of every accepted connection. With a
// TLS config it terminates TLS 1.3 before reflecting.
type TCPServer struct {
	config  Config
	addr    string
	tlsConf *tls.Config
	scheme  string
	faults  *faultGate

	listener net.Listener

	// Active connections
	conns   map[net.Conn]struct{}
	connsMu sync.Mutex

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewTCPServer creates a plaintext TCP reflector listening on addr.
func NewTCPServer(addr string, config Config) *TCPServer {
	return &TCPServer{
		config: config,
		addr:   addr,
		scheme: "tcp",
		faults: newFaultGate(config),
		conns:  make(map[net.Conn]struct{}),
	}
}

// NewTLSServer creates a TLS reflector on addr using the given certificate.
func NewTLSServer(addr string, cert tls.Certificate, config Config) *TCPServer {
	return &TCPServer{
		config:  config,
		addr:    addr,
		tlsConf: transport.NewServerTLSConfig(cert),
		scheme:  "tls",
		faults:  newFaultGate(config),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start begins accepting connections.
func (s *TCPServer) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("%s reflector already running", s.scheme)
	}

	var listener net.Listener
	var err error
	if s.tlsConf != nil {
		listener, err = tls.Listen("tcp", s.addr, s.tlsConf)
	} else {
		listener, err = net.Listen("tcp", s.addr)
	}
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the reflector and closes all connections.
func (s *TCPServer) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)

	s.listener.Close()

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the listen address.
func (s *TCPServer) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *TCPServer) ConnectionCount() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

// acceptLoop accepts incoming connections.
func (s *TCPServer) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("accept error: %w", err))
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection reflects one connection until it closes.
func (s *TCPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	connID := uuid.New().String()
	remote := conn.RemoteAddr()

	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()

	s.logState(connID, remote, "", "CONNECTED")
	if s.config.OnConnect != nil {
		s.config.OnConnect(connID, remote)
	}

	buf := make([]byte, streamReadBufferSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			break
		}
		s.logFrame(connID, remote, log.DirectionIn, buf[:n])

		if s.faults.apply(buf[:n]) {
			continue
		}

		if _, err := conn.Write(buf[:n]); err != nil {
			if s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("reflect to %s: %w", remote, err))
			}
			break
		}
		s.logFrame(connID, remote, log.DirectionOut, buf[:n])
	}

	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()

	s.logState(connID, remote, "CONNECTED", "DISCONNECTED")
	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(connID, remote)
	}
}

func (s *TCPServer) logState(connID string, remote net.Addr, oldState, newState string) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		LocalRole:    log.RoleReflector,
		RemoteAddr:   remote.String(),
		Scheme:       s.scheme,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
		},
	})
}

func (s *TCPServer) logFrame(connID string, remote net.Addr, dir log.Direction, data []byte) {
	if s.config.Logger == nil {
		return
	}

	size := len(data)
	truncated := false
	if size > maxLogFrameData {
		data = data[:maxLogFrameData]
		truncated = true
	}
	logged := make([]byte, len(data))
	copy(logged, data)

	s.config.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		LocalRole:    log.RoleReflector,
		RemoteAddr:   remote.String(),
		Scheme:       s.scheme,
		Frame: &log.FrameEvent{
			Size:      size,
			Data:      logged,
			Truncated: truncated,
		},
	})
}
