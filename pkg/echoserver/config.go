package echoserver

import (
	"net"
	"sync"

	"github.com/echoqual/echoqual-go/pkg/log"
	"github.com/echoqual/echoqual-go/pkg/transport"
)

// maxLogFrameData mirrors the transport-side truncation bound so client and
// reflector logs stay comparable.
const maxLogFrameData = transport.MaxLogFrameDataSize

// Config configures a reflector.
type Config struct {
	// Logger for protocol logging (optional).
	Logger log.Logger

	// DropEvery drops every Nth reflected payload (0 = off). Models
	// deterministic datagram loss.
	DropEvery int

	// CorruptEvery flips the low bit of the first byte in every Nth
	// reflected payload (0 = off). Models deterministic corruption.
	CorruptEvery int

	// OnConnect is called when a client connection is established.
	// UDP has no connections; the callback fires per new source address.
	OnConnect func(connID string, remote net.Addr)

	// OnDisconnect is called when a client connection closes.
	OnDisconnect func(connID string, remote net.Addr)

	// OnError is called when an accept or reflect error occurs.
	OnError func(err error)
}

// faultGate applies the deterministic drop/corrupt knobs to reflected
// payloads. Safe for concurrent use across connections.
type faultGate struct {
	mu           sync.Mutex
	dropEvery    int
	corruptEvery int
	seen         int
}

func newFaultGate(cfg Config) *faultGate {
	return &faultGate{
		dropEvery:    cfg.DropEvery,
		corruptEvery: cfg.CorruptEvery,
	}
}

// apply counts one payload and reports whether to drop it; when kept, the
// corruption knob may flip a bit in place.
func (g *faultGate) apply(payload []byte) (drop bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seen++
	if g.dropEvery > 0 && g.seen%g.dropEvery == 0 {
		return true
	}
	if g.corruptEvery > 0 && g.seen%g.corruptEvery == 0 && len(payload) > 0 {
		payload[0] ^= 0x01
	}
	return false
}
