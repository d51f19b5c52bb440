package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser provides mDNS service advertising for reflectors.
type Advertiser interface {
	// Advertise starts advertising a reflector. A reflector serving both
	// datagram and stream schemes is registered under both service types.
	Advertise(ctx context.Context, info *ReflectorInfo) error

	// Update updates the TXT records of an advertised reflector.
	Update(instanceName string, info *ReflectorInfo) error

	// Stop stops advertising a specific reflector.
	Stop(instanceName string) error

	// StopAll stops all advertisements.
	StopAll()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// serviceTypesFor maps the advertised schemes onto mDNS service types.
func serviceTypesFor(schemes []string) []string {
	var datagram, stream bool
	for _, sc := range schemes {
		if sc == "udp" {
			datagram = true
		} else {
			stream = true
		}
	}

	var types []string
	if datagram {
		types = append(types, ServiceTypeDatagram)
	}
	if stream {
		types = append(types, ServiceTypeStream)
	}
	return types
}

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu sync.Mutex

	// Active zeroconf servers, keyed by instance name. A reflector serving
	// both datagram and stream schemes holds one server per service type.
	servers map[string][]*zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	return &MDNSAdvertiser{
		config:  config,
		servers: make(map[string][]*zeroconf.Server),
	}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising a reflector.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *ReflectorInfo) error {
	if err := ValidateInstanceName(info.InstanceName); err != nil {
		return err
	}
	serviceTypes := serviceTypesFor(info.Schemes)
	if len(serviceTypes) == 0 {
		return fmt.Errorf("%w: schemes", ErrMissingRequired)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Stop existing registration for this instance if any
	a.stopLocked(info.InstanceName)

	txtStrings := TXTRecordsToStrings(EncodeReflectorTXT(info))

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	ifaces := a.getInterfaces()

	var servers []*zeroconf.Server
	for _, serviceType := range serviceTypes {
		server, err := zeroconf.Register(
			info.InstanceName,
			serviceType,
			Domain,
			int(info.Port),
			txtStrings,
			ifaces,
			opts...,
		)
		if err != nil {
			for _, s := range servers {
				s.Shutdown()
			}
			return fmt.Errorf("failed to register %s service: %w", serviceType, err)
		}
		servers = append(servers, server)
	}

	a.servers[info.InstanceName] = servers
	return nil
}

// Update updates TXT records for an advertised reflector.
func (a *MDNSAdvertiser) Update(instanceName string, info *ReflectorInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	servers, exists := a.servers[instanceName]
	if !exists {
		return ErrNotFound
	}

	txtStrings := TXTRecordsToStrings(EncodeReflectorTXT(info))
	for _, server := range servers {
		server.SetText(txtStrings)
	}
	return nil
}

// Stop stops advertising a specific reflector.
func (a *MDNSAdvertiser) Stop(instanceName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.servers[instanceName]; !exists {
		return ErrNotFound
	}
	a.stopLocked(instanceName)
	return nil
}

// StopAll stops all advertisements.
func (a *MDNSAdvertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name := range a.servers {
		a.stopLocked(name)
	}
}

// stopLocked shuts down the servers for an instance. Caller holds a.mu.
func (a *MDNSAdvertiser) stopLocked(instanceName string) {
	for _, server := range a.servers[instanceName] {
		server.Shutdown()
	}
	delete(a.servers, instanceName)
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)
