package echoserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// WSServer reflects binary WebSocket messages.
type WSServer struct {
	config Config
	addr   string
	faults *faultGate

	listener net.Listener
	httpSrv  *http.Server
	running  atomic.Bool
	active   atomic.Int64
	wg       sync.WaitGroup
}

// NewWSServer creates a WebSocket reflector listening on addr.
func NewWSServer(addr string, config Config) *WSServer {
	return &WSServer{
		config: config,
		addr:   addr,
		faults: newFaultGate(config),
	}
}

// Start begins accepting WebSocket connections.
func (s *WSServer) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("ws reflector already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.httpSrv = &http.Server{Handler: http.HandlerFunc(s.handleUpgrade)}
	s.running.Store(true)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.httpSrv.Serve(listener)
	}()

	return nil
}

// Stop shuts the HTTP server down and closes active connections.
func (s *WSServer) Stop() error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	s.httpSrv.Close()
	s.wg.Wait()
	return nil
}

// Addr returns the listen address.
func (s *WSServer) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *WSServer) ConnectionCount() int {
	return int(s.active.Load())
}

// handleUpgrade upgrades one HTTP request and reflects its messages.
func (s *WSServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		if s.config.OnError != nil {
			s.config.OnError(fmt.Errorf("ws accept: %w", err))
		}
		return
	}
	defer ws.Close(websocket.StatusInternalError, "handler exit")
	ws.SetReadLimit(-1)

	connID := uuid.New().String()
	remote := wsRemote(r.RemoteAddr)

	s.active.Add(1)
	defer s.active.Add(-1)

	s.logState(connID, remote, "", "CONNECTED")
	if s.config.OnConnect != nil {
		s.config.OnConnect(connID, remote)
	}
	defer func() {
		s.logState(connID, remote, "CONNECTED", "DISCONNECTED")
		if s.config.OnDisconnect != nil {
			s.config.OnDisconnect(connID, remote)
		}
	}()

	ctx := r.Context()
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		s.logFrame(connID, remote, log.DirectionIn, data)

		if s.faults.apply(data) {
			continue
		}

		if err := ws.Write(ctx, typ, data); err != nil {
			if s.config.OnError != nil {
				s.config.OnError(fmt.Errorf("ws reflect to %s: %w", remote, err))
			}
			return
		}
		s.logFrame(connID, remote, log.DirectionOut, data)
	}
}

func (s *WSServer) logState(connID string, remote net.Addr, oldState, newState string) {
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
		Scheme:       "ws",
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
		},
	})
}

func (s *WSServer) logFrame(connID string, remote net.Addr, dir log.Direction, data []byte) {
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
		Scheme:       "ws",
		Frame: &log.FrameEvent{
			Size:      size,
			Data:      logged,
			Truncated: truncated,
		},
	})
}

// wsRemote wraps the HTTP remote address string as a net.Addr.
type wsRemote string

func (a wsRemote) Network() string { return "ws" }
func (a wsRemote) String() string  { return string(a) }
