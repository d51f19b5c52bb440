package transport

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
)

// ConnFactory constructs a disconnected conn for one backend scheme.
type ConnFactory func() Conn

// registry maps backend schemes to constructors. A registry dial always
// builds a fresh conn; conns are never reused across backends.
var registry = map[string]ConnFactory{
	"udp": func() Conn { return NewUDPConn() },
	"tcp": func() Conn { return NewTCPConn() },
	"tls": func() Conn { return NewTLSConn(nil) },
	"ws":  func() Conn { return NewWSConn() },
	"mem": func() Conn { return NewMemConn() },
}

// Register adds or replaces a backend scheme. Intended for external backends
// (a modem driver, a vendor SDK shim) qualified through this kit.
func Register(scheme string, factory ConnFactory) {
	registry[scheme] = factory
}

// Schemes returns the registered backend schemes, sorted.
func Schemes() []string {
	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// New constructs a disconnected conn for the given scheme.
func New(scheme string) (Conn, error) {
	factory, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scheme %q", ErrInvalidParameter, scheme)
	}
	return factory(), nil
}

// ValidateTarget checks a target URL like "udp://host:9000", "tls://host"
// or "mem:" without constructing a conn, and returns its scheme and
// endpoint. Timeouts come from def; a target without a port gets
// DefaultPort. A plan uses this to vet targets ahead of a run, so no
// backend factory fires before the run itself dials.
func ValidateTarget(target string, def Endpoint) (string, Endpoint, error) {
	scheme, rest, found := strings.Cut(target, "://")
	if !found {
		// "mem:" has no authority part.
		scheme, rest, found = strings.Cut(target, ":")
		if !found || rest != "" {
			return "", Endpoint{}, fmt.Errorf("%w: target %q (want scheme://host:port)", ErrInvalidParameter, target)
		}
	}
	if _, ok := registry[scheme]; !ok {
		return "", Endpoint{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidParameter, scheme)
	}

	ep := Endpoint{
		Host:        "localhost",
		Port:        DefaultPort,
		RecvTimeout: def.RecvTimeout,
		SendTimeout: def.SendTimeout,
	}
	if rest != "" {
		host, portStr, splitErr := net.SplitHostPort(strings.TrimSuffix(rest, "/"))
		if splitErr != nil {
			ep.Host = strings.TrimSuffix(rest, "/")
		} else {
			port, convErr := strconv.Atoi(portStr)
			if convErr != nil {
				return "", Endpoint{}, fmt.Errorf("%w: port %q in target %q", ErrInvalidParameter, portStr, target)
			}
			ep.Host = host
			ep.Port = port
		}
	}
	if err := ep.Validate(); err != nil {
		return "", Endpoint{}, err
	}

	return scheme, ep, nil
}

// ParseTarget resolves a target into a fresh disconnected conn and an
// endpoint.
func ParseTarget(target string, def Endpoint) (Conn, Endpoint, error) {
	scheme, ep, err := ValidateTarget(target, def)
	if err != nil {
		return nil, Endpoint{}, err
	}
	conn, err := New(scheme)
	if err != nil {
		return nil, Endpoint{}, err
	}
	return conn, ep, nil
}
