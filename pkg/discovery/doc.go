// Package discovery provides mDNS advertising and browsing for echo
// reflectors on the bench network.
//
// Reflectors announce themselves under two service types depending on the
// transports they serve:
//
//   - "_echoqual._udp" for datagram reflectors
//   - "_echoqual-tcp._tcp" for stream reflectors (tcp, tls, ws)
//
// TXT records carry the supported schemes, the maximum payload size the
// reflector echoes without truncation, and the software version. A test
// client browses both service types and aggregates answers by instance
// name, so a reflector serving udp and tcp shows up once with both
// schemes listed.
//
// Advertising:
//
//	adv, _ := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
//	err := adv.Advertise(ctx, &discovery.ReflectorInfo{
//		InstanceName: "bench-reflector",
//		Schemes:      []string{"udp", "tcp"},
//		Port:         9000,
//		MaxPayload:   1460,
//	})
//	defer adv.StopAll()
//
// Browsing:
//
//	browser, _ := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
//	services, _ := browser.Browse(ctx)
//	for svc := range services {
//		fmt.Println(svc.InstanceName, svc.Schemes, svc.Addresses)
//	}
package discovery
