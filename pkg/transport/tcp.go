package transport

import (
	"context"
	"fmt"
	"net"
)

// TCPConn is the plaintext TCP stream backend. Receive may legitimately
// deliver fewer bytes than requested; callers accumulate until satisfied.
type TCPConn struct {
	netConn
}

// NewTCPConn creates a disconnected TCP conn.
func NewTCPConn() *TCPConn {
	return &TCPConn{}
}

// Connect establishes the TCP connection.
func (c *TCPConn) Connect(ctx context.Context, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return err
	}
	if c.connected() {
		return ErrAlreadyConnected
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		return fmt.Errorf("connect %s: %w: %w", ep.Address(), ErrConnectFailure, err)
	}

	c.attach(nc, ep, "tcp")
	return nil
}
