package echo

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// Pattern selects the deterministic payload generator for a run. Both sides
// of a comparison regenerate the same bytes, so verification never depends
// on shared state.
type Pattern uint8

const (
	// PatternSequential fills the payload with value[i] = i mod 256.
	PatternSequential Pattern = 0

	// PatternSeeded fills the payload with a ChaCha20 keystream derived
	// from a 32-byte seed. Seeded payloads surface byte-order and
	// duplication bugs the sequential ramp masks.
	PatternSeeded Pattern = 1
)

// String returns the pattern name.
func (p Pattern) String() string {
	switch p {
	case PatternSequential:
		return "sequential"
	case PatternSeeded:
		return "seeded"
	default:
		return "unknown"
	}
}

// ParsePattern resolves a pattern name from configuration input.
func ParsePattern(name string) (Pattern, error) {
	switch name {
	case "", "sequential":
		return PatternSequential, nil
	case "seeded":
		return PatternSeeded, nil
	default:
		return 0, fmt.Errorf("unknown payload pattern %q", name)
	}
}

// SeedFromUint64 expands a numeric seed, as given on a command line or in
// a plan file, into the 32-byte seed the keystream needs.
func SeedFromUint64(v uint64) [32]byte {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:8], v)
	return seed
}

// Fill writes the deterministic payload for this pattern into buf.
func (p Pattern) Fill(buf []byte, seed [32]byte) error {
	switch p {
	case PatternSequential:
		for i := range buf {
			buf[i] = byte(i % 256)
		}
		return nil
	case PatternSeeded:
		var nonce [chacha20.NonceSize]byte
		cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
		if err != nil {
			return fmt.Errorf("seeded pattern: %w", err)
		}
		for i := range buf {
			buf[i] = 0
		}
		cipher.XORKeyStream(buf, buf)
		return nil
	default:
		return fmt.Errorf("unknown payload pattern %d", p)
	}
}
