// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package coupon implements Hangar's request authorization protocol.
//
// A coupon is a secp256k1 signature over a purpose-tagged digest. The
// issuer (the drop's backend, holding the signing key) computes the
// digest for one specific request — claim these passes at this price,
// redeem with this seed — signs it, and hands the {R,S,V} triple to
// the party. The service recomputes the digest from the request it
// actually received, recovers the signer address from the triple, and
// compares it to the trusted signer on record.
//
// The purpose tag is part of every digest. A coupon minted for a
// mint-pass claim can never authorize a pilot redemption, even when
// every other field coincides: the digests differ by construction.
//
// Digest preimages are deterministic CBOR (lib/codec), hashed with
// Keccak-256. Recovery failure — the malformed-signature case that
// would otherwise surface as a zero recovered address — is
// ErrInvalidSignature; an honest signer mismatch is a false result,
// not an error, and callers treat it as authorization denied.
package coupon
