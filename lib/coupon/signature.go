// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// SignatureLength is the serialized byte length of a coupon
// signature: R (32) ‖ S (32) ‖ V (1).
const SignatureLength = 65

// ErrInvalidSignature is returned when signer recovery fails — the
// triple is malformed, its recovery bit is out of range, or the point
// it names does not exist. A well-formed signature from the wrong key
// is not this error; it recovers cleanly to a different address and
// verification reports a mismatch instead.
var ErrInvalidSignature = errors.New("invalid coupon signature")

// Signature is the {R,S,V} triple a coupon carries. V is the compact
// recovery code offset to 27, matching the convention of the signing
// ecosystem the issuer keys come from.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint8
}

// ParseSignature parses the "0x" hex form of R ‖ S ‖ V.
func ParseSignature(s string) (Signature, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Signature{}, fmt.Errorf("invalid signature %q: missing 0x prefix", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature: %w", err)
	}
	return SignatureFromBytes(raw)
}

// SignatureFromBytes assembles a Signature from the 65-byte
// R ‖ S ‖ V serialization.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureLength {
		return Signature{}, fmt.Errorf("invalid signature: %d bytes, want %d", len(b), SignatureLength)
	}
	var sig Signature
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:64])
	sig.V = b[64]
	return sig, nil
}

// Bytes returns the R ‖ S ‖ V serialization.
func (sig Signature) Bytes() []byte {
	b := make([]byte, SignatureLength)
	copy(b[:32], sig.R[:])
	copy(b[32:64], sig.S[:])
	b[64] = sig.V
	return b
}

// String returns the canonical "0x" hex form.
func (sig Signature) String() string {
	return "0x" + hex.EncodeToString(sig.Bytes())
}

// MarshalText implements encoding.TextMarshaler.
func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (sig *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}

// compact returns the signature in the recovery library's order:
// V ‖ R ‖ S.
func (sig Signature) compact() []byte {
	b := make([]byte, SignatureLength)
	b[0] = sig.V
	copy(b[1:33], sig.R[:])
	copy(b[33:], sig.S[:])
	return b
}

// RecoverSigner recovers the address that signed digest. Returns
// ErrInvalidSignature when recovery fails.
func RecoverSigner(digest Digest, sig Signature) (ref.Party, error) {
	publicKey, _, err := ecdsa.RecoverCompact(sig.compact(), digest[:])
	if err != nil {
		return ref.Party{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	signer := AddressOf(publicKey)
	if signer.IsZero() {
		return ref.Party{}, ErrInvalidSignature
	}
	return signer, nil
}

// AddressOf derives the party address of a secp256k1 public key: the
// low 20 bytes of the Keccak-256 hash of the uncompressed point
// (without the format prefix byte).
func AddressOf(publicKey *secp256k1.PublicKey) ref.Party {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(publicKey.SerializeUncompressed()[1:])
	sum := hash.Sum(nil)

	var party ref.Party
	copy(party[:], sum[12:])
	return party
}

// Issuer signs coupons with the drop's secp256k1 signing key. The
// production issuer lives outside this service; this type backs the
// operator CLI's signing verb and the test suites.
type Issuer struct {
	key *secp256k1.PrivateKey
}

// NewIssuer wraps a 32-byte secp256k1 private key.
func NewIssuer(privateKey []byte) (*Issuer, error) {
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("issuer key: %d bytes, want 32", len(privateKey))
	}
	return &Issuer{key: secp256k1.PrivKeyFromBytes(privateKey)}, nil
}

// GenerateIssuer creates a fresh issuer from the given entropy
// source (crypto/rand.Reader outside tests).
func GenerateIssuer(random io.Reader) (*Issuer, error) {
	key, err := secp256k1.GeneratePrivateKeyFromRand(random)
	if err != nil {
		return nil, fmt.Errorf("generating issuer key: %w", err)
	}
	return &Issuer{key: key}, nil
}

// Sign produces the {R,S,V} triple for digest.
func (i *Issuer) Sign(digest Digest) Signature {
	compact := ecdsa.SignCompact(i.key, digest[:], false)

	var sig Signature
	sig.V = compact[0]
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:])
	return sig
}

// Address returns the issuer's party address — the value a service
// configures as its trusted signer.
func (i *Issuer) Address() ref.Party {
	return AddressOf(i.key.PubKey())
}

// KeyBytes returns the raw 32-byte private key, for sealing to disk.
func (i *Issuer) KeyBytes() []byte {
	return i.key.Serialize()
}
