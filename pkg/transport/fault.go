package transport

import (
	"context"
	"net"
	"sync"
)

// FaultPlan configures the failure classes a FaultConn injects. The zero
// value injects nothing.
type FaultPlan struct {
	// DropReceives swallows this many Receive results, surfacing each as
	// ErrTimeout, before delivering data again. Models datagram loss.
	DropReceives int

	// CorruptOffset, when CorruptEnabled, flips the low bit of the byte at
	// this offset in the next delivered Receive. Models data corruption.
	CorruptOffset  int
	CorruptEnabled bool

	// ShortWriteEvery reports one byte fewer than actually written on every
	// Nth Send (1 = every Send). Models a misbehaving backend write path.
	ShortWriteEvery int

	// SplitReceives caps each of this many Receives at half the delivered
	// byte count, forcing the caller's accumulate path. The undelivered
	// remainder is carried over to the next Receive.
	SplitReceives int
}

// FaultConn wraps any Conn and injects transport failures on demand, so the
// loss, corruption and short-write scenarios are reproducible without a
// lossy network.
type FaultConn struct {
	inner Conn

	mu      sync.Mutex
	plan    FaultPlan
	sends   int
	carry   []byte
	dropped int
}

// NewFaultConn wraps inner with the given fault plan.
func NewFaultConn(inner Conn, plan FaultPlan) *FaultConn {
	return &FaultConn{inner: inner, plan: plan}
}

// SetPlan replaces the fault plan mid-run.
func (c *FaultConn) SetPlan(plan FaultPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = plan
	c.dropped = 0
}

// Dropped reports how many receives have been swallowed so far.
func (c *FaultConn) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Connect delegates to the wrapped conn.
func (c *FaultConn) Connect(ctx context.Context, ep Endpoint) error {
	return c.inner.Connect(ctx, ep)
}

// Disconnect delegates to the wrapped conn.
func (c *FaultConn) Disconnect() error {
	return c.inner.Disconnect()
}

// Send delegates to the wrapped conn, then understates the byte count when a
// short write is due.
func (c *FaultConn) Send(p []byte) (int, error) {
	n, err := c.inner.Send(p)
	if err != nil {
		return n, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	if c.plan.ShortWriteEvery > 0 && c.sends%c.plan.ShortWriteEvery == 0 && n > 0 {
		return n - 1, nil
	}
	return n, nil
}

// Receive delegates to the wrapped conn and applies the plan's drop, split
// and corruption faults to the result.
func (c *FaultConn) Receive(p []byte) (int, error) {
	if err := checkBuffer(p); err != nil {
		return 0, err
	}

	c.mu.Lock()
	if len(c.carry) > 0 {
		n := copy(p, c.carry)
		c.carry = c.carry[n:]
		c.mu.Unlock()
		return n, nil
	}
	c.mu.Unlock()

	n, err := c.inner.Receive(p)
	if err != nil {
		return n, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.plan.DropReceives > 0 {
		c.plan.DropReceives--
		c.dropped++
		return 0, ErrTimeout
	}

	if c.plan.SplitReceives > 0 && n > 1 {
		c.plan.SplitReceives--
		half := n / 2
		c.carry = append(c.carry[:0], p[half:n]...)
		n = half
	}

	if c.plan.CorruptEnabled && c.plan.CorruptOffset < n {
		p[c.plan.CorruptOffset] ^= 0x01
		c.plan.CorruptEnabled = false
	}

	return n, nil
}

// LocalAddr delegates to the wrapped conn.
func (c *FaultConn) LocalAddr() net.Addr {
	return c.inner.LocalAddr()
}

// RemoteAddr delegates to the wrapped conn.
func (c *FaultConn) RemoteAddr() net.Addr {
	return c.inner.RemoteAddr()
}
