package transport

import (
	"context"
	"net"
)

// memEchoBufferSize bounds one echoed chunk on the loopback pair.
const memEchoBufferSize = 64 * 1024

// MemConn is the in-process loopback backend. Connect creates a synchronous
// pipe with a built-in echo peer on the far end, so the full qualification
// flow runs without touching the network. Used by unit tests, the fault
// injector and `echoqual-test -target mem:`.
type MemConn struct {
	netConn

	peer net.Conn
}

// NewMemConn creates a disconnected loopback conn.
func NewMemConn() *MemConn {
	return &MemConn{}
}

// Connect builds the pipe and starts the echo peer. The endpoint host and
// port are accepted for contract uniformity but name nothing reachable.
func (c *MemConn) Connect(ctx context.Context, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return err
	}
	if c.connected() {
		return ErrAlreadyConnected
	}

	client, server := net.Pipe()
	c.peer = server
	go memEchoPeer(server)

	c.attach(client, ep, "mem")
	return nil
}

// Disconnect tears down both pipe ends; the echo peer exits on the close.
func (c *MemConn) Disconnect() error {
	err := c.netConn.Disconnect()
	if c.peer != nil {
		c.peer.Close()
		c.peer = nil
	}
	return err
}

// memEchoPeer reflects every chunk back until the pipe closes.
func memEchoPeer(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, memEchoBufferSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			return
		}
	}
}
