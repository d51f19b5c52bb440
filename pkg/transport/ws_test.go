package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// startWSEcho starts a loopback WebSocket echo server and returns its endpoint.
func startWSEcho(t *testing.T) Endpoint {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close(websocket.StatusInternalError, "handler exit")
		ws.SetReadLimit(-1)
		ctx := r.Context()
		for {
			typ, data, err := ws.Read(ctx)
			if err != nil {
				return
			}
			if err := ws.Write(ctx, typ, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	addr := srv.Listener.Addr().(*net.TCPAddr)
	return Endpoint{
		Host:        "127.0.0.1",
		Port:        addr.Port,
		RecvTimeout: 2 * time.Second,
		SendTimeout: 2 * time.Second,
	}
}

func TestWSConnRoundTrip(t *testing.T) {
	ep := startWSEcho(t)

	conn := NewWSConn()
	if err := conn.Connect(context.Background(), ep); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	for _, size := range []int{1, 10, 1460, 8192} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i % 256)
		}

		n, err := conn.Send(payload)
		if err != nil || n != size {
			t.Fatalf("Send(%d) = (%d, %v)", size, n, err)
		}

		buf := make([]byte, size)
		n, err = conn.Receive(buf)
		if err != nil || n != size {
			t.Fatalf("Receive(%d) = (%d, %v)", size, n, err)
		}
		if !bytes.Equal(buf, payload) {
			t.Fatalf("size %d: payload mismatch", size)
		}
	}
}

func TestWSConnLifecycle(t *testing.T) {
	ep := startWSEcho(t)
	conn := NewWSConn()

	buf := make([]byte, 8)
	if _, err := conn.Receive(buf); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Receive before connect = %v, want ErrNotConnected", err)
	}

	if err := conn.Connect(context.Background(), ep); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := conn.Connect(context.Background(), ep); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("double Connect = %v, want ErrAlreadyConnected", err)
	}
	if conn.RemoteAddr() == nil {
		t.Error("RemoteAddr while connected should not be nil")
	}

	if err := conn.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := conn.Disconnect(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("double Disconnect = %v, want ErrNotConnected", err)
	}
}

func TestWSConnConnectFailure(t *testing.T) {
	// Nothing listens here.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	conn := NewWSConn()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	connectErr := conn.Connect(ctx, Endpoint{Host: "127.0.0.1", Port: port})
	if !errors.Is(connectErr, ErrConnectFailure) {
		t.Fatalf("Connect = %v, want ErrConnectFailure", connectErr)
	}
}

func TestWSConnReceiveTimeout(t *testing.T) {
	// A server that accepts the handshake but never echoes.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close(websocket.StatusNormalClosure, "")
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	conn := NewWSConn()
	ep := Endpoint{
		Host:        "127.0.0.1",
		Port:        srv.Listener.Addr().(*net.TCPAddr).Port,
		RecvTimeout: 50 * time.Millisecond,
	}
	if err := conn.Connect(context.Background(), ep); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	buf := make([]byte, 8)
	if _, err := conn.Receive(buf); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Receive = %v, want ErrTimeout", err)
	}
}
