package transport

import (
	"context"
	"fmt"
	"net"
)

// UDPConn is the plaintext UDP datagram backend, the primary qualification
// target class. Each Send transmits one datagram; each Receive delivers one
// datagram, possibly shorter than the buffer. Datagram loss is expected and
// surfaces as ErrTimeout on Receive.
type UDPConn struct {
	netConn
}

// NewUDPConn creates a disconnected UDP conn.
func NewUDPConn() *UDPConn {
	return &UDPConn{}
}

// Connect binds the conn to the endpoint. UDP is connectionless, so this
// cannot detect an absent peer; the first Receive timeout does.
func (c *UDPConn) Connect(ctx context.Context, ep Endpoint) error {
	if err := ep.Validate(); err != nil {
		return err
	}
	if c.connected() {
		return ErrAlreadyConnected
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "udp", ep.Address())
	if err != nil {
		return fmt.Errorf("connect %s: %w: %w", ep.Address(), ErrConnectFailure, err)
	}

	c.attach(nc, ep, "udp")
	return nil
}
