// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/hex"
	"fmt"
	"io"
)

// SeedLength is the byte length of an entropy seed.
const SeedLength = 32

// Seed is a single-use random value supplied with every seeded
// request. It contributes entropy to the random draw and doubles as
// the replay-prevention nonce: once consumed, the same seed is
// rejected forever, in every flow, from every caller.
type Seed [SeedLength]byte

// ZeroSeed is the all-zero seed.
var ZeroSeed Seed

// ParseSeed parses "0x"-prefixed hex into a Seed. The input must be
// exactly SeedLength bytes of hex after the prefix.
func ParseSeed(s string) (Seed, error) {
	raw, err := parseHex(s, SeedLength, "seed")
	if err != nil {
		return Seed{}, err
	}
	var seed Seed
	copy(seed[:], raw)
	return seed, nil
}

// SeedFromBytes constructs a Seed from a raw 32-byte slice.
func SeedFromBytes(b []byte) (Seed, error) {
	if len(b) != SeedLength {
		return Seed{}, fmt.Errorf("invalid seed: %d bytes, want %d", len(b), SeedLength)
	}
	var seed Seed
	copy(seed[:], b)
	return seed, nil
}

// RandomSeed draws a fresh seed from r. Callers outside tests pass
// crypto/rand.Reader.
func RandomSeed(r io.Reader) (Seed, error) {
	var seed Seed
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return Seed{}, fmt.Errorf("reading seed entropy: %w", err)
	}
	return seed, nil
}

// String returns the canonical lowercase "0x" hex form.
func (s Seed) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// IsZero reports whether s is the all-zero seed.
func (s Seed) IsZero() bool {
	return s == ZeroSeed
}

// Bytes returns a copy of the raw seed bytes.
func (s Seed) Bytes() []byte {
	b := make([]byte, SeedLength)
	copy(b, s[:])
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (s Seed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Seed) UnmarshalText(text []byte) error {
	parsed, err := ParseSeed(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
