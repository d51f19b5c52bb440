package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// Browser provides mDNS browsing for reflectors.
type Browser interface {
	// Browse searches for reflectors under both service types. The channel
	// is closed when ctx is done. A reflector advertised under both types
	// is emitted once with its schemes merged.
	Browse(ctx context.Context) (<-chan *ReflectorService, error)

	// FindByInstanceName searches for a specific reflector by name.
	FindByInstanceName(ctx context.Context, name string) (*ReflectorService, error)
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to browse on.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{}
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{config: config}, nil
}

// Browse searches for reflectors. Answers from the datagram and stream
// service types are aggregated by instance name, and addresses seen on
// multiple interfaces are merged into a single entry.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *ReflectorService, error) {
	out := make(chan *ReflectorService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	// Process entries with aggregation
	go func() {
		defer close(out)

		// Track services by instance name, aggregating addresses and schemes
		services := make(map[string]*ReflectorService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := b.entryToReflector(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeStrings(existing.Addresses, svc.Addresses)
					existing.Schemes = mergeStrings(existing.Schemes, svc.Schemes)
				} else {
					services[svc.InstanceName] = svc
					select {
					case out <- svc:
					case <-ctx.Done():
						return
					}
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				// Remove addresses that came from this interface
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Browse both service types into the same entry channels.
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeDatagram, Domain, entries, removed, opts...)
	}()
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeStream, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindByInstanceName searches for a specific reflector by name.
func (b *MDNSBrowser) FindByInstanceName(ctx context.Context, name string) (*ReflectorService, error) {
	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.InstanceName == name {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToReflector converts a zeroconf entry to a ReflectorService.
func (b *MDNSBrowser) entryToReflector(entry *zeroconf.ServiceEntry) *ReflectorService {
	txt := StringsToTXTRecords(entry.Text)
	info, err := DecodeReflectorTXT(txt)
	if err != nil {
		return nil
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &ReflectorService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
		Schemes:      info.Schemes,
		MaxPayload:   info.MaxPayload,
		Version:      info.Version,
	}
}

// mergeStrings adds new values to the existing list, avoiding duplicates.
func mergeStrings(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}

	for _, v := range extra {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}

// removeAddresses removes addresses from a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
