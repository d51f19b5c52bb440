package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeDatagram is the service type for datagram reflectors.
	ServiceTypeDatagram = "_echoqual._udp"

	// ServiceTypeStream is the service type for stream reflectors (tcp, tls, ws).
	ServiceTypeStream = "_echoqual-tcp._tcp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// TXT record key constants.
const (
	TXTKeySchemes    = "sc" // Supported schemes (comma-separated)
	TXTKeyMaxPayload = "mp" // Maximum payload size the reflector echoes
	TXTKeyVersion    = "vn" // Software version (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrBrowseTimeout       = errors.New("browse timeout")
)

// ReflectorInfo contains information for advertising a reflector.
type ReflectorInfo struct {
	// InstanceName is the mDNS instance name (e.g., "bench-reflector").
	InstanceName string

	// Schemes lists the transport schemes the reflector serves
	// (e.g., "udp", "tcp", "tls", "ws"). At least one is required.
	Schemes []string

	// Port is the service port.
	Port uint16

	// MaxPayload is the largest payload the reflector echoes without
	// truncation. Zero is omitted from the TXT records.
	MaxPayload int

	// Version is the optional software version.
	Version string

	// Host is the hostname to advertise. Empty uses the OS hostname.
	Host string
}

// ReflectorService represents a reflector found via mDNS.
type ReflectorService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the hostname (e.g., "bench-01.local").
	Host string

	// Port is the service port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// Schemes lists the transport schemes the reflector serves (from TXT "sc").
	Schemes []string

	// MaxPayload is the reflector's payload ceiling (from TXT "mp").
	MaxPayload int

	// Version is the optional software version (from TXT "vn").
	Version string
}

// ServesScheme reports whether the reflector advertises the given scheme.
func (s *ReflectorService) ServesScheme(scheme string) bool {
	for _, sc := range s.Schemes {
		if sc == scheme {
			return true
		}
	}
	return false
}
