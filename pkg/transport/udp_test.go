package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// startUDPEcho starts a loopback UDP echo reflector and returns its endpoint.
func startUDPEcho(t *testing.T) Endpoint {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { pc.Close() })

	go func() {
		buf := make([]byte, 64*1024)
		for {
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			pc.WriteTo(buf[:n], addr)
		}
	}()

	addr := pc.LocalAddr().(*net.UDPAddr)
	return Endpoint{
		Host:        "127.0.0.1",
		Port:        addr.Port,
		RecvTimeout: 2 * time.Second,
		SendTimeout: 2 * time.Second,
	}
}

func TestUDPConnRoundTrip(t *testing.T) {
	ep := startUDPEcho(t)

	conn := NewUDPConn()
	if err := conn.Connect(context.Background(), ep); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	sizes := []int{1, 10, 100, 1460}
	for _, size := range sizes {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i % 256)
		}

		n, err := conn.Send(payload)
		if err != nil {
			t.Fatalf("Send(%d): %v", size, err)
		}
		if n != size {
			t.Fatalf("Send(%d) = %d bytes", size, n)
		}

		buf := make([]byte, size)
		n, err = conn.Receive(buf)
		if err != nil {
			t.Fatalf("Receive(%d): %v", size, err)
		}
		if n != size {
			t.Fatalf("Receive(%d) = %d bytes", size, n)
		}
		if !bytes.Equal(buf, payload) {
			t.Fatalf("size %d: payload mismatch", size)
		}
	}
}

func TestUDPConnReceiveTimeout(t *testing.T) {
	// A bound socket that never answers.
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { pc.Close() })

	conn := NewUDPConn()
	ep := Endpoint{
		Host:        "127.0.0.1",
		Port:        pc.LocalAddr().(*net.UDPAddr).Port,
		RecvTimeout: 50 * time.Millisecond,
	}
	if err := conn.Connect(context.Background(), ep); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	if _, err := conn.Send([]byte("anyone there")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buf := make([]byte, 16)
	if _, err := conn.Receive(buf); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Receive = %v, want ErrTimeout", err)
	}
}

func TestUDPConnShortDatagram(t *testing.T) {
	// A receive buffer smaller than the datagram truncates; a datagram
	// smaller than the buffer yields a short positive count.
	ep := startUDPEcho(t)

	conn := NewUDPConn()
	if err := conn.Connect(context.Background(), ep); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	if _, err := conn.Send([]byte("abc")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buf := make([]byte, 16)
	n, err := conn.Receive(buf)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if n != 3 || !bytes.Equal(buf[:n], []byte("abc")) {
		t.Fatalf("Receive = (%d, %q), want (3, abc)", n, buf[:n])
	}
}
