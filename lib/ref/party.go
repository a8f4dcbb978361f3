// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// PartyLength is the byte length of a party address. Addresses are
// the low 20 bytes of a Keccak-256 hash of a secp256k1 public key,
// matching the form recovered from coupon signatures.
const PartyLength = 20

// Party identifies an account: a claimant, a pass holder, an admin,
// or the recovered signer of a coupon. The zero value is never a
// valid participant — signature recovery that would yield it is
// treated as malformed, and stores reject it as an actor.
type Party [PartyLength]byte

// ZeroParty is the all-zero address.
var ZeroParty Party

// ParseParty parses "0x"-prefixed hex into a Party. The input must
// be exactly PartyLength bytes of hex after the prefix.
func ParseParty(s string) (Party, error) {
	raw, err := parseHex(s, PartyLength, "party")
	if err != nil {
		return Party{}, err
	}
	var p Party
	copy(p[:], raw)
	return p, nil
}

// PartyFromBytes constructs a Party from a raw 20-byte slice.
func PartyFromBytes(b []byte) (Party, error) {
	if len(b) != PartyLength {
		return Party{}, fmt.Errorf("invalid party: %d bytes, want %d", len(b), PartyLength)
	}
	var p Party
	copy(p[:], b)
	return p, nil
}

// String returns the canonical lowercase "0x" hex form.
func (p Party) String() string {
	return "0x" + hex.EncodeToString(p[:])
}

// IsZero reports whether p is the all-zero address.
func (p Party) IsZero() bool {
	return p == ZeroParty
}

// Bytes returns a copy of the raw address bytes.
func (p Party) Bytes() []byte {
	b := make([]byte, PartyLength)
	copy(b, p[:])
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (p Party) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Party) UnmarshalText(text []byte) error {
	parsed, err := ParseParty(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// parseHex decodes a "0x"-prefixed hex string of exactly byteLen
// bytes. The kind string names the value in error messages.
func parseHex(s string, byteLen int, kind string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("invalid %s %q: missing 0x prefix", kind, s)
	}
	body := s[2:]
	if len(body) != byteLen*2 {
		return nil, fmt.Errorf("invalid %s %q: %d hex digits, want %d", kind, s, len(body), byteLen*2)
	}
	raw, err := hex.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", kind, s, err)
	}
	return raw, nil
}
