package echoserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// udpReadBufferSize bounds one reflected datagram.
const udpReadBufferSize = 64 * 1024

// UDPServer reflects every datagram back to its source address.
type UDPServer struct {
	config Config
	addr   string
	faults *faultGate

	pc      net.PacketConn
	running atomic.Bool
	wg      sync.WaitGroup

	// Known source addresses, for the connect callback and logging.
	mu      sync.Mutex
	sources map[string]string // remote addr -> conn ID
}

// NewUDPServer creates a UDP reflector listening on addr
// (e.g. ":9000" or "127.0.0.1:9000").
func NewUDPServer(addr string, config Config) *UDPServer {
	return &UDPServer{
		config:  config,
		addr:    addr,
		faults:  newFaultGate(config),
		sources: make(map[string]string),
	}
}

// Start binds the socket and begins reflecting.
func (s *UDPServer) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("udp reflector already running")
	}

	pc, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.pc = pc
	s.running.Store(true)

	s.wg.Add(1)
	go s.reflectLoop()

	return nil
}

// Stop closes the socket and waits for the reflect loop.
func (s *UDPServer) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	s.pc.Close()
	s.wg.Wait()
	return nil
}

// Addr returns the bound address.
func (s *UDPServer) Addr() net.Addr {
	if s.pc != nil {
		return s.pc.LocalAddr()
	}
	return nil
}

// reflectLoop reads datagrams and sends them back to their source.
func (s *UDPServer) reflectLoop() {
	defer s.wg.Done()

	buf := make([]byte, udpReadBufferSize)
	for s.running.Load() {
		n, addr, err := s.pc.ReadFrom(buf)
		if err != nil {
			if s.running.Load() && s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("udp read: %w", err))
			}
			continue
		}

		connID := s.sourceID(addr)
		s.logFrame(connID, addr, log.DirectionIn, buf[:n])

		if s.faults.apply(buf[:n]) {
			continue
		}

		if _, err := s.pc.WriteTo(buf[:n], addr); err != nil {
			if s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("udp reflect to %s: %w", addr, err))
			}
			continue
		}
		s.logFrame(connID, addr, log.DirectionOut, buf[:n])
	}
}

// sourceID returns the conn ID for a source address, registering new ones.
func (s *UDPServer) sourceID(addr net.Addr) string {
	key := addr.String()

	s.mu.Lock()
	id, known := s.sources[key]
	if !known {
		id = uuid.New().String()
		s.sources[key] = id
	}
	s.mu.Unlock()

	if !known && s.config.OnConnect != nil {
		s.config.OnConnect(id, addr)
	}
	return id
}

func (s *UDPServer) logFrame(connID string, addr net.Addr, dir log.Direction, data []byte) {
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
		RemoteAddr:   addr.String(),
		Scheme:       "udp",
		Frame: &log.FrameEvent{
			Size:      size,
			Data:      logged,
			Truncated: truncated,
		},
	})
}
