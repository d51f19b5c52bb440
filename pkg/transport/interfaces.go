package transport

import (
	"context"
	"errors"
	"net"
)

// Transport constants.
const (
	// DefaultPort is the default echo reflector port.
	DefaultPort = 9000

	// ALPNProtocol is the ALPN identifier negotiated on TLS connections.
	ALPNProtocol = "echoqual/1"

	// MaxLogFrameDataSize is the maximum payload size included in log events (4 KB).
	// Larger payloads are truncated in log events to avoid excessive memory usage.
	MaxLogFrameDataSize = 4096
)

// Transport errors.
var (
	// ErrInvalidParameter indicates caller misuse: nil buffer, zero length,
	// or an endpoint that fails validation. Detected before touching the
	// network, never retried.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotConnected indicates an operation on a conn with no live connection.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates Connect on a conn that is already live.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrConnectFailure indicates the backend could not establish the connection.
	ErrConnectFailure = errors.New("connect failure")

	// ErrTimeout indicates a bounded Send/Receive wait elapsed with nothing
	// transferred. Distinct from ErrClosed: the peer may still be alive.
	ErrTimeout = errors.New("operation timed out")

	// ErrClosed indicates the peer shut the connection down; no more data
	// will arrive.
	ErrClosed = errors.New("connection closed")
)

// Conn is the uniform blocking transport contract the qualification code
// uses regardless of backend. A Conn is bound to at most one live connection
// at a time; all operations on a disconnected conn fail with ErrNotConnected.
//
// Send and Receive are blocking, bounded by the timeouts in the Endpoint
// passed to Connect. Both may transfer fewer bytes than requested; a short
// positive result is valid data, not an error. Between Connect and
// Disconnect a Conn is owned by a single goroutine.
type Conn interface {
	// Connect establishes the connection to the endpoint. The endpoint is
	// validated before any backend call is attempted.
	Connect(ctx context.Context, ep Endpoint) error

	// Disconnect closes the connection. The close itself is best-effort;
	// a second Disconnect fails with ErrNotConnected.
	Disconnect() error

	// Send writes p and returns the number of bytes the backend accepted.
	Send(p []byte) (int, error)

	// Receive reads up to len(p) bytes into p. Returns ErrTimeout when the
	// bounded wait elapses and ErrClosed when the peer has shut down.
	Receive(p []byte) (int, error)

	// LocalAddr returns the local address, or nil while disconnected.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer address, or nil while disconnected.
	RemoteAddr() net.Addr
}

// Compile-time interface satisfaction checks.
var (
	_ Conn = (*UDPConn)(nil)
	_ Conn = (*TCPConn)(nil)
	_ Conn = (*TLSConn)(nil)
	_ Conn = (*WSConn)(nil)
	_ Conn = (*MemConn)(nil)
	_ Conn = (*FaultConn)(nil)
)
