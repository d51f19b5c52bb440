package transport

import (
	"errors"
	"testing"
	"time"
)

func TestEndpointValidate(t *testing.T) {
	tests := []struct {
		name    string
		ep      Endpoint
		wantErr bool
	}{
		{"valid", Endpoint{Host: "localhost", Port: 9000}, false},
		{"valid with timeouts", Endpoint{Host: "10.0.0.1", Port: 1, RecvTimeout: time.Second, SendTimeout: time.Second}, false},
		{"empty host", Endpoint{Port: 9000}, true},
		{"zero port", Endpoint{Host: "localhost"}, true},
		{"negative port", Endpoint{Host: "localhost", Port: -1}, true},
		{"port too large", Endpoint{Host: "localhost", Port: 70000}, true},
		{"negative recv timeout", Endpoint{Host: "localhost", Port: 9000, RecvTimeout: -time.Second}, true},
		{"negative send timeout", Endpoint{Host: "localhost", Port: 9000, SendTimeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ep.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("Validate() = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestEndpointAddress(t *testing.T) {
	ep := Endpoint{Host: "example.com", Port: 9000}
	if got := ep.Address(); got != "example.com:9000" {
		t.Errorf("Address() = %q, want %q", got, "example.com:9000")
	}

	// IPv6 hosts must be bracketed.
	ep = Endpoint{Host: "::1", Port: 9000}
	if got := ep.Address(); got != "[::1]:9000" {
		t.Errorf("Address() = %q, want %q", got, "[::1]:9000")
	}
}

func TestEndpointWithDefaults(t *testing.T) {
	ep := Endpoint{Host: "localhost", Port: 9000}.withDefaults()
	if ep.RecvTimeout != DefaultRecvTimeout {
		t.Errorf("RecvTimeout = %v, want %v", ep.RecvTimeout, DefaultRecvTimeout)
	}
	if ep.SendTimeout != DefaultSendTimeout {
		t.Errorf("SendTimeout = %v, want %v", ep.SendTimeout, DefaultSendTimeout)
	}

	// Explicit timeouts survive.
	ep = Endpoint{Host: "localhost", Port: 9000, RecvTimeout: time.Minute}.withDefaults()
	if ep.RecvTimeout != time.Minute {
		t.Errorf("RecvTimeout = %v, want %v", ep.RecvTimeout, time.Minute)
	}
}
