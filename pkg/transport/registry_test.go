package transport

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryNew(t *testing.T) {
	tests := []struct {
		scheme string
		want   any
	}{
		{"udp", (*UDPConn)(nil)},
		{"tcp", (*TCPConn)(nil)},
		{"tls", (*TLSConn)(nil)},
		{"ws", (*WSConn)(nil)},
		{"mem", (*MemConn)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.scheme, func(t *testing.T) {
			conn, err := New(tt.scheme)
			if err != nil {
				t.Fatalf("New(%q): %v", tt.scheme, err)
			}
			if conn == nil {
				t.Fatalf("New(%q) = nil conn", tt.scheme)
			}
		})
	}

	if _, err := New("carrier-pigeon"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("New(unknown) = %v, want ErrInvalidParameter", err)
	}
}

func TestRegistryRegister(t *testing.T) {
	Register("faulty-mem", func() Conn {
		return NewFaultConn(NewMemConn(), FaultPlan{DropReceives: 1})
	})
	t.Cleanup(func() { delete(registry, "faulty-mem") })

	conn, err := New("faulty-mem")
	if err != nil {
		t.Fatalf("New(faulty-mem): %v", err)
	}
	if _, ok := conn.(*FaultConn); !ok {
		t.Fatalf("New(faulty-mem) = %T, want *FaultConn", conn)
	}
}

func TestValidateTargetDoesNotConstruct(t *testing.T) {
	// A factory may be expensive or stateful (a modem driver handing out
	// a fixed sequence of conns); validating a target must not burn an
	// invocation.
	invoked := 0
	Register("modem", func() Conn {
		invoked++
		return NewMemConn()
	})
	t.Cleanup(func() { delete(registry, "modem") })

	scheme, ep, err := ValidateTarget("modem://bench-01:9100", Endpoint{RecvTimeout: time.Second, SendTimeout: time.Second})
	if err != nil {
		t.Fatalf("ValidateTarget: %v", err)
	}
	if scheme != "modem" || ep.Host != "bench-01" || ep.Port != 9100 {
		t.Errorf("scheme/endpoint = %s %s:%d, want modem bench-01:9100", scheme, ep.Host, ep.Port)
	}
	if invoked != 0 {
		t.Errorf("factory invoked %d time(s) during validation, want 0", invoked)
	}

	if _, _, err := ParseTarget("modem://bench-01:9100", Endpoint{RecvTimeout: time.Second, SendTimeout: time.Second}); err != nil {
		t.Fatalf("ParseTarget: %v", err)
	}
	if invoked != 1 {
		t.Errorf("factory invoked %d time(s) by ParseTarget, want exactly 1", invoked)
	}
}

func TestParseTarget(t *testing.T) {
	def := Endpoint{RecvTimeout: 3 * time.Second, SendTimeout: 4 * time.Second}

	tests := []struct {
		name     string
		target   string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"udp with port", "udp://echo.lab:9100", "echo.lab", 9100, false},
		{"tcp default port", "tcp://echo.lab", "echo.lab", DefaultPort, false},
		{"tls ipv4", "tls://10.1.2.3:8443", "10.1.2.3", 8443, false},
		{"ws trailing slash", "ws://echo.lab:9000/", "echo.lab", 9000, false},
		{"mem", "mem:", "localhost", DefaultPort, false},
		{"unknown scheme", "smoke://echo.lab:1", "", 0, true},
		{"no scheme", "echo.lab:9000", "", 0, true},
		{"bad port", "udp://echo.lab:many", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, ep, err := ParseTarget(tt.target, def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTarget(%q) = nil error, want error", tt.target)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q): %v", tt.target, err)
			}
			if conn == nil {
				t.Fatal("nil conn")
			}
			if ep.Host != tt.wantHost || ep.Port != tt.wantPort {
				t.Errorf("endpoint = %s:%d, want %s:%d", ep.Host, ep.Port, tt.wantHost, tt.wantPort)
			}
			if ep.RecvTimeout != def.RecvTimeout || ep.SendTimeout != def.SendTimeout {
				t.Errorf("timeouts = %v/%v, want defaults carried", ep.RecvTimeout, ep.SendTimeout)
			}
		})
	}
}
