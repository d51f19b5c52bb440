package transport

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// netConn is the shared core of every backend built on a net.Conn. It holds
// the connection state flag, enforces the parameter and lifecycle checks of
// the Conn contract, and maps I/O errors to the transport error taxonomy.
// Concrete backends embed it and supply Connect.
type netConn struct {
	mu     sync.Mutex
	nc     net.Conn
	ep     Endpoint
	connID string
	logx   connLogger
}

// SetLogger configures protocol logging for this conn. Must be called before
// Connect. Pass nil to disable logging.
func (c *netConn) SetLogger(logger log.Logger, connID string) {
	c.logx.logger = logger
	c.logx.connID = connID
	c.connID = connID
}

// attach installs a freshly dialed connection. Called by the backend's
// Connect while holding no lock; the state flag is the nc field itself.
func (c *netConn) attach(nc net.Conn, ep Endpoint, scheme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nc = nc
	c.ep = ep.withDefaults()
	c.logx.scheme = scheme
	c.logx.remote = nc.RemoteAddr().String()
	c.logx.logState("", "CONNECTED", "")
}

// live returns the underlying connection, or nil when disconnected.
func (c *netConn) live() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nc
}

// connected reports whether a connection is live. Backends use it to guard
// against double Connect.
func (c *netConn) connected() bool {
	return c.live() != nil
}

// Disconnect closes the connection. The backend close is best-effort; a
// disconnected or never-connected conn fails with ErrNotConnected so a
// double disconnect is always caught.
func (c *netConn) Disconnect() error {
	c.mu.Lock()
	nc := c.nc
	c.nc = nil
	c.mu.Unlock()

	if nc == nil {
		return ErrNotConnected
	}
	c.logx.logState("CONNECTED", "DISCONNECTED", "")
	nc.Close()
	return nil
}

// Send writes p bounded by the endpoint's send timeout.
func (c *netConn) Send(p []byte) (int, error) {
	if err := checkBuffer(p); err != nil {
		return 0, err
	}
	nc := c.live()
	if nc == nil {
		return 0, ErrNotConnected
	}

	if c.ep.SendTimeout > 0 {
		nc.SetWriteDeadline(time.Now().Add(c.ep.SendTimeout))
		defer nc.SetWriteDeadline(time.Time{})
	}

	n, err := nc.Write(p)
	if err != nil {
		err = classifyIOError(err)
		c.logx.logError(err, "send")
		return n, err
	}
	c.logx.logFrame(log.DirectionOut, p[:n])
	return n, nil
}

// Receive reads up to len(p) bytes bounded by the endpoint's receive timeout.
func (c *netConn) Receive(p []byte) (int, error) {
	if err := checkBuffer(p); err != nil {
		return 0, err
	}
	nc := c.live()
	if nc == nil {
		return 0, ErrNotConnected
	}

	if c.ep.RecvTimeout > 0 {
		nc.SetReadDeadline(time.Now().Add(c.ep.RecvTimeout))
		defer nc.SetReadDeadline(time.Time{})
	}

	n, err := nc.Read(p)
	if err != nil {
		err = classifyIOError(err)
		c.logx.logError(err, "receive")
		return n, err
	}
	c.logx.logFrame(log.DirectionIn, p[:n])
	return n, nil
}

// LocalAddr returns the local address, or nil while disconnected.
func (c *netConn) LocalAddr() net.Addr {
	if nc := c.live(); nc != nil {
		return nc.LocalAddr()
	}
	return nil
}

// RemoteAddr returns the peer address, or nil while disconnected.
func (c *netConn) RemoteAddr() net.Addr {
	if nc := c.live(); nc != nil {
		return nc.RemoteAddr()
	}
	return nil
}

// checkBuffer rejects the programmer-error buffers the contract forbids.
func checkBuffer(p []byte) error {
	if p == nil {
		return ErrInvalidParameter
	}
	if len(p) == 0 {
		return ErrInvalidParameter
	}
	return nil
}

// classifyIOError maps backend I/O errors onto the transport taxonomy.
// Deadline expiry becomes ErrTimeout; EOF and use-of-closed become ErrClosed.
// Anything else passes through verbatim.
func classifyIOError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}
