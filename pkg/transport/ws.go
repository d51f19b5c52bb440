package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"nhooyr.io/websocket"

	"github.com/echoqual/echoqual-go/pkg/log"
)

// WSConn is the WebSocket backend. Each Send transmits one binary message;
// each Receive delivers one message, which maps onto datagram semantics:
// a message larger than the receive buffer is truncated to fit and the
// excess is discarded.
type WSConn struct {
	mu   sync.Mutex
	ws   *websocket.Conn
	ep   Endpoint
	logx connLogger

	localAddr  net.Addr
	remoteAddr net.Addr
}

// NewWSConn creates a disconnected WebSocket conn.
func NewWSConn() *WSConn {
	return &WSConn{}
}

// SetLogger configures protocol logging. Must be called before Connect.
func (c *WSConn) SetLogger(logger log.Logger, connID string) {
	c.logx.logger = logger
	c.logx.connID = connID
}

// Connect dials ws://host:port/ and performs the WebSocket handshake.
func (c *WSConn) Connect(ctx context.Context, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	already := c.ws != nil
	c.mu.Unlock()
	if already {
		return ErrAlreadyConnected
	}

	url := fmt.Sprintf("ws://%s/", ep.Address())
	ws, resp, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w: %w", url, ErrConnectFailure, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	// Message boundaries replace any framing concern; never limit payload
	// size below what the escalation loop may reach.
	ws.SetReadLimit(-1)

	c.mu.Lock()
	c.ws = ws
	c.ep = ep.withDefaults()
	c.logx.scheme = "ws"
	c.logx.remote = ep.Address()
	c.remoteAddr = wsAddr(ep.Address())
	c.localAddr = wsAddr("local")
	c.mu.Unlock()

	c.logx.logState("", "CONNECTED", "")
	return nil
}

// Disconnect closes the WebSocket with a normal-closure status.
func (c *WSConn) Disconnect() error {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()

	if ws == nil {
		return ErrNotConnected
	}
	c.logx.logState("CONNECTED", "DISCONNECTED", "")
	ws.Close(websocket.StatusNormalClosure, "disconnect")
	return nil
}

// Send writes p as one binary message.
func (c *WSConn) Send(p []byte) (int, error) {
	if err := checkBuffer(p); err != nil {
		return 0, err
	}
	ws := c.live()
	if ws == nil {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.ep.SendTimeout)
	defer cancel()

	if err := ws.Write(ctx, websocket.MessageBinary, p); err != nil {
		err = classifyWSError(err)
		c.logx.logError(err, "send")
		return 0, err
	}
	c.logx.logFrame(log.DirectionOut, p)
	return len(p), nil
}

// Receive reads one binary message into p.
func (c *WSConn) Receive(p []byte) (int, error) {
	if err := checkBuffer(p); err != nil {
		return 0, err
	}
	ws := c.live()
	if ws == nil {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.ep.RecvTimeout)
	defer cancel()

	_, data, err := ws.Read(ctx)
	if err != nil {
		err = classifyWSError(err)
		c.logx.logError(err, "receive")
		return 0, err
	}

	n := copy(p, data)
	c.logx.logFrame(log.DirectionIn, p[:n])
	return n, nil
}

// LocalAddr returns a synthetic local address while connected.
func (c *WSConn) LocalAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return nil
	}
	return c.localAddr
}

// RemoteAddr returns the peer address while connected.
func (c *WSConn) RemoteAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil {
		return nil
	}
	return c.remoteAddr
}

func (c *WSConn) live() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws
}

// classifyWSError maps websocket errors onto the transport taxonomy.
// A deadline expiry becomes ErrTimeout; a close status means no more data.
func classifyWSError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if websocket.CloseStatus(err) != -1 || errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}

// wsAddr is the net.Addr shim for WebSocket endpoints, where the underlying
// socket address is hidden behind the websocket library.
type wsAddr string

func (a wsAddr) Network() string { return "ws" }
func (a wsAddr) String() string  { return string(a) }
