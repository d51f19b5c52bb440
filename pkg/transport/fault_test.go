package transport

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// connectedFaultConn returns a FaultConn over a connected loopback pair.
func connectedFaultConn(t *testing.T, plan FaultPlan) *FaultConn {
	t.Helper()

	inner := NewMemConn()
	conn := NewFaultConn(inner, plan)
	if err := conn.Connect(context.Background(), memEndpoint()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { conn.Disconnect() })
	return conn
}

func TestFaultConnDropReceives(t *testing.T) {
	conn := connectedFaultConn(t, FaultPlan{DropReceives: 2})
	payload := []byte("droppable")
	buf := make([]byte, len(payload))

	// The first two receives are swallowed as timeouts even though the
	// peer echoed; the third delivers.
	for i := 0; i < 2; i++ {
		if _, err := conn.Send(payload); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
		if _, err := conn.Receive(buf); !errors.Is(err, ErrTimeout) {
			t.Fatalf("Receive %d = %v, want ErrTimeout", i, err)
		}
	}
	if conn.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", conn.Dropped())
	}

	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	n, err := conn.Receive(buf)
	if err != nil || n != len(payload) {
		t.Fatalf("Receive = (%d, %v), want full payload", n, err)
	}
	if !bytes.Equal(buf, payload) {
		t.Errorf("Receive = %q, want %q", buf, payload)
	}
}

func TestFaultConnCorruptByte(t *testing.T) {
	conn := connectedFaultConn(t, FaultPlan{CorruptOffset: 3, CorruptEnabled: true})
	payload := []byte{0, 1, 2, 3, 4, 5}
	buf := make([]byte, len(payload))

	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	n, err := conn.Receive(buf)
	if err != nil || n != len(payload) {
		t.Fatalf("Receive = (%d, %v)", n, err)
	}
	if buf[3] == payload[3] {
		t.Error("byte 3 not corrupted")
	}
	if !bytes.Equal(buf[:3], payload[:3]) || !bytes.Equal(buf[4:], payload[4:]) {
		t.Error("corruption touched bytes outside offset 3")
	}

	// One-shot: the next round is clean.
	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := conn.Receive(buf); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !bytes.Equal(buf, payload) {
		t.Error("second round corrupted, want clean")
	}
}

func TestFaultConnShortWrite(t *testing.T) {
	conn := connectedFaultConn(t, FaultPlan{ShortWriteEvery: 2})
	payload := []byte("0123456789")
	buf := make([]byte, len(payload))

	n, err := conn.Send(payload)
	if err != nil || n != len(payload) {
		t.Fatalf("Send 1 = (%d, %v), want full", n, err)
	}
	if _, err := conn.Receive(buf); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	// Second send is understated by one byte.
	n, err = conn.Send(payload)
	if err != nil {
		t.Fatalf("Send 2: %v", err)
	}
	if n != len(payload)-1 {
		t.Errorf("Send 2 = %d, want %d", n, len(payload)-1)
	}
}

func TestFaultConnSplitReceive(t *testing.T) {
	conn := connectedFaultConn(t, FaultPlan{SplitReceives: 1})
	payload := []byte("0123456789")
	buf := make([]byte, len(payload))

	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// First receive is capped at half; the carry delivers the rest.
	n1, err := conn.Receive(buf)
	if err != nil {
		t.Fatalf("Receive 1: %v", err)
	}
	if n1 != len(payload)/2 {
		t.Fatalf("Receive 1 = %d bytes, want %d", n1, len(payload)/2)
	}
	n2, err := conn.Receive(buf[n1:])
	if err != nil {
		t.Fatalf("Receive 2: %v", err)
	}
	if n1+n2 != len(payload) {
		t.Fatalf("accumulated %d bytes, want %d", n1+n2, len(payload))
	}
	if !bytes.Equal(buf, payload) {
		t.Errorf("reassembled = %q, want %q", buf, payload)
	}
}
