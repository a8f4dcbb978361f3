// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package operator

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// signatureSize is the fixed size of an Ed25519 signature.
const signatureSize = ed25519.SignatureSize // 64 bytes

// Scopes recognized by the mint service. A token's scope list gates
// which request classes it may submit; admin requests are additionally
// checked against the store's role grants for the token's Party.
const (
	// ScopeGateway authorizes flow submissions: mint-pass claims and
	// pilot/racecraft/inventory/reward redemptions.
	ScopeGateway = "gateway"

	// ScopeAdmin authorizes mutating administration: series and
	// fragment registration, airdrops, signer rotation, flow toggles,
	// item bundles, and treasury movement.
	ScopeAdmin = "admin"
)

// Token is the CBOR-encoded payload of an operator token.
type Token struct {
	// Subject is a human-readable caller name recorded in the audit
	// trail (e.g., "ops/amelia", "gateway/eu-west"). It carries no
	// authority of its own.
	Subject string `cbor:"1,keyasint"`

	// Party is the on-ledger identity the caller acts as. Admin
	// handlers pass it as the actor for the store's role checks, so
	// the token alone never suffices for mutation — the party must
	// also hold the matching role grant. Gateway tokens may leave it
	// zero.
	Party ref.Party `cbor:"2,keyasint"`

	// Scopes is the list of request classes this token authorizes.
	Scopes []string `cbor:"3,keyasint"`

	// ID is a unique token identifier (hex string). Recorded in the
	// audit trail so individual tokens can be traced and, if needed,
	// rotated out.
	ID string `cbor:"4,keyasint"`

	// IssuedAt is a Unix timestamp (seconds) of when the token was
	// minted.
	IssuedAt int64 `cbor:"5,keyasint"`

	// ExpiresAt is a Unix timestamp (seconds) after which the token
	// is no longer valid.
	ExpiresAt int64 `cbor:"6,keyasint"`
}

// HasScope reports whether the token carries the given scope.
func (t *Token) HasScope(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Errors returned by Verify and related functions.
var (
	ErrTokenTooShort    = errors.New("operator: token too short for signature")
	ErrInvalidSignature = errors.New("operator: invalid Ed25519 signature")
	ErrTokenExpired     = errors.New("operator: token has expired")
	ErrScopeMissing     = errors.New("operator: token lacks required scope")
)

// NewID returns a fresh random token identifier: 8 bytes of entropy
// as a 16-character hex string.
func NewID() (string, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("operator: generating token ID: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}

// Mint signs a Token with the service's private key and returns the
// raw wire-format bytes: CBOR-encoded payload followed by the 64-byte
// Ed25519 signature.
func Mint(privateKey ed25519.PrivateKey, token *Token) ([]byte, error) {
	payload, err := codec.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("operator: encoding token payload: %w", err)
	}

	signature := ed25519.Sign(privateKey, payload)

	// Concatenate payload and signature.
	result := make([]byte, len(payload)+signatureSize)
	copy(result, payload)
	copy(result[len(payload):], signature)

	return result, nil
}

// Verify splits the raw token bytes, verifies the Ed25519 signature,
// CBOR-decodes the payload, and checks expiry. Returns the decoded
// Token on success.
//
// The caller should additionally check the Scopes field against the
// request class being served; [VerifyForScope] combines both steps.
func Verify(publicKey ed25519.PublicKey, tokenBytes []byte) (*Token, error) {
	return VerifyAt(publicKey, tokenBytes, time.Now())
}

// VerifyAt is like Verify but accepts an explicit time for expiry
// checks. This supports deterministic testing.
func VerifyAt(publicKey ed25519.PublicKey, tokenBytes []byte, now time.Time) (*Token, error) {
	if len(tokenBytes) <= signatureSize {
		return nil, ErrTokenTooShort
	}

	splitPoint := len(tokenBytes) - signatureSize
	payload := tokenBytes[:splitPoint]
	signature := tokenBytes[splitPoint:]

	if !ed25519.Verify(publicKey, payload, signature) {
		return nil, ErrInvalidSignature
	}

	var token Token
	if err := codec.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("operator: decoding token payload: %w", err)
	}

	if now.Unix() >= token.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &token, nil
}

// VerifyForScope combines Verify with a scope check. This is the
// standard verification path for mutating socket actions: verify
// signature, check expiry, and confirm the token carries the scope
// the action requires.
func VerifyForScope(publicKey ed25519.PublicKey, tokenBytes []byte, scope string) (*Token, error) {
	return VerifyForScopeAt(publicKey, tokenBytes, scope, time.Now())
}

// VerifyForScopeAt is like VerifyForScope but accepts an explicit time.
func VerifyForScopeAt(publicKey ed25519.PublicKey, tokenBytes []byte, scope string, now time.Time) (*Token, error) {
	token, err := VerifyAt(publicKey, tokenBytes, now)
	if err != nil {
		return nil, err
	}

	if !token.HasScope(scope) {
		return nil, fmt.Errorf("%w: %q", ErrScopeMissing, scope)
	}

	return token, nil
}
