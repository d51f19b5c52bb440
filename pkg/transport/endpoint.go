package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Default per-operation timeouts applied when an Endpoint leaves them zero.
const (
	DefaultRecvTimeout = 5 * time.Second
	DefaultSendTimeout = 5 * time.Second
)

// Endpoint identifies the remote peer and the per-operation time bounds for
// a connection. It is passed to Connect and is immutable afterwards.
type Endpoint struct {
	// Host is the peer hostname or IP address.
	Host string

	// Port is the peer port.
	Port int

	// RecvTimeout bounds each blocking Receive (default: 5s).
	RecvTimeout time.Duration

	// SendTimeout bounds each blocking Send (default: 5s).
	SendTimeout time.Duration
}

// Validate checks the endpoint before any backend call is attempted.
func (ep Endpoint) Validate() error {
	if ep.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidParameter)
	}
	if ep.Port <= 0 || ep.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidParameter, ep.Port)
	}
	if ep.RecvTimeout < 0 || ep.SendTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidParameter)
	}
	return nil
}

// Address returns the host:port dial string.
func (ep Endpoint) Address() string {
	return net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
}

// withDefaults returns a copy with zero timeouts replaced by the defaults.
func (ep Endpoint) withDefaults() Endpoint {
	if ep.RecvTimeout == 0 {
		ep.RecvTimeout = DefaultRecvTimeout
	}
	if ep.SendTimeout == 0 {
		ep.SendTimeout = DefaultSendTimeout
	}
	return ep
}
