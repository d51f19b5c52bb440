package echoserver

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/echoqual/echoqual-go/pkg/transport"
)

func testEndpoint(t *testing.T, addr net.Addr) transport.Endpoint {
	t.Helper()
	host, port := splitAddr(t, addr)
	return transport.Endpoint{
		Host:        host,
		Port:        port,
		RecvTimeout: 500 * time.Millisecond,
		SendTimeout: 500 * time.Millisecond,
	}
}

func splitAddr(t *testing.T, addr net.Addr) (string, int) {
	t.Helper()
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP.String(), a.Port
	case *net.TCPAddr:
		return a.IP.String(), a.Port
	default:
		t.Fatalf("unexpected addr type %T", addr)
		return "", 0
	}
}

func TestUDPServerReflects(t *testing.T) {
	var connects atomic.Int64
	srv := NewUDPServer("127.0.0.1:0", Config{
		OnConnect: func(connID string, remote net.Addr) { connects.Add(1) },
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	conn := transport.NewUDPConn()
	if err := conn.Connect(context.Background(), testEndpoint(t, srv.Addr())); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := []byte("reflect me")
	buf := make([]byte, len(payload))
	for i := 0; i < 3; i++ {
		if _, err := conn.Send(payload); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
		n, err := conn.Receive(buf)
		if err != nil || n != len(payload) {
			t.Fatalf("Receive %d = (%d, %v)", i, n, err)
		}
		if !bytes.Equal(buf, payload) {
			t.Fatalf("Receive %d: payload mismatch", i)
		}
	}

	if got := connects.Load(); got != 1 {
		t.Errorf("OnConnect fired %d times, want once per source", got)
	}
}

func TestUDPServerDropEvery(t *testing.T) {
	srv := NewUDPServer("127.0.0.1:0", Config{DropEvery: 2})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	conn := transport.NewUDPConn()
	if err := conn.Connect(context.Background(), testEndpoint(t, srv.Addr())); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := []byte("sometimes lost")
	buf := make([]byte, len(payload))

	// First datagram reflected, second dropped.
	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send 1: %v", err)
	}
	if _, err := conn.Receive(buf); err != nil {
		t.Fatalf("Receive 1: %v", err)
	}

	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send 2: %v", err)
	}
	if _, err := conn.Receive(buf); !errors.Is(err, transport.ErrTimeout) {
		t.Fatalf("Receive 2 = %v, want ErrTimeout (dropped)", err)
	}
}

func TestTCPServerReflects(t *testing.T) {
	srv := NewTCPServer("127.0.0.1:0", Config{})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	conn := transport.NewTCPConn()
	if err := conn.Connect(context.Background(), testEndpoint(t, srv.Addr())); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := []byte("stream bytes")
	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, len(payload))
	got := 0
	for got < len(payload) {
		n, err := conn.Receive(buf[got:])
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		got += n
	}
	if !bytes.Equal(buf, payload) {
		t.Error("payload mismatch")
	}

	// The accept loop tracks active connections.
	deadline := time.Now().Add(time.Second)
	for srv.ConnectionCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ConnectionCount = %d, want 1", srv.ConnectionCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTCPServerCorruptEvery(t *testing.T) {
	srv := NewTCPServer("127.0.0.1:0", Config{CorruptEvery: 1})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	conn := transport.NewTCPConn()
	if err := conn.Connect(context.Background(), testEndpoint(t, srv.Addr())); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := []byte{0x10, 0x20, 0x30}
	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, len(payload))
	n, err := conn.Receive(buf)
	if err != nil || n != len(payload) {
		t.Fatalf("Receive = (%d, %v)", n, err)
	}
	if buf[0] != 0x11 {
		t.Errorf("buf[0] = 0x%02x, want corrupted 0x11", buf[0])
	}
	if buf[1] != 0x20 || buf[2] != 0x30 {
		t.Error("corruption touched bytes beyond the first")
	}
}

func TestTLSServerReflects(t *testing.T) {
	cert, err := transport.GenerateSelfSignedCert("127.0.0.1")
	if err != nil {
		t.Fatalf("generate cert: %v", err)
	}

	srv := NewTLSServer("127.0.0.1:0", cert, Config{})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	conn := transport.NewTLSConn(nil)
	if err := conn.Connect(context.Background(), testEndpoint(t, srv.Addr())); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := []byte("over tls")
	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buf := make([]byte, len(payload))
	got := 0
	for got < len(payload) {
		n, err := conn.Receive(buf[got:])
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		got += n
	}
	if !bytes.Equal(buf, payload) {
		t.Error("payload mismatch")
	}
}

func TestWSServerReflects(t *testing.T) {
	srv := NewWSServer("127.0.0.1:0", Config{})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	conn := transport.NewWSConn()
	if err := conn.Connect(context.Background(), testEndpoint(t, srv.Addr())); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	payload := []byte("one message")
	buf := make([]byte, len(payload))
	if _, err := conn.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	n, err := conn.Receive(buf)
	if err != nil || n != len(payload) {
		t.Fatalf("Receive = (%d, %v)", n, err)
	}
	if !bytes.Equal(buf, payload) {
		t.Error("payload mismatch")
	}
}

func TestServerStopIdempotent(t *testing.T) {
	srv := NewTCPServer("127.0.0.1:0", Config{})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
