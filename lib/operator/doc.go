// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package operator implements Ed25519-signed bearer tokens for
// authenticating callers to the mint service over its Unix socket.
//
// The service socket is shared: connections arrive from gateway
// processes relaying player submissions and from operator tooling
// performing administration, with no inherent way to distinguish
// callers (SO_PEERCRED is unreliable across namespace boundaries).
// Every request therefore carries a token minted with the service's
// signing key. The service verifies tokens cryptographically without
// consulting any external authority.
//
// # Scopes
//
// A token carries one or more scopes naming the request classes it
// authorizes:
//
//   - "gateway": flow submissions (mint-pass claims and pilot,
//     racecraft, inventory, and reward redemptions)
//   - "admin": mutating administration (series and fragment
//     registration, airdrops, signer rotation, flow toggles, item
//     bundles, treasury movement)
//
// Read-only actions such as status queries accept any valid token.
//
// Scopes gate the socket action only. Admin requests are additionally
// authorized against the role grants recorded in the store: the
// token's Party is the on-ledger identity the caller acts as, and a
// handler passes it as the actor for the store's own role checks. A
// stolen admin token whose party holds no roles can mutate nothing.
// Gateway tokens may carry the zero party — flow submissions name
// their own beneficiary and prove entitlement by coupon.
//
// # Wire format
//
// A token is raw bytes: CBOR-encoded payload followed by a 64-byte
// Ed25519 signature over the payload bytes.
//
//	[CBOR payload bytes] [64-byte Ed25519 signature]
//
// The split point is always len(token) - 64. No header, no length
// prefix, no base64 — the algorithm is fixed and the signature size
// is constant.
//
// # Keys
//
// The service keeps its signing keypair in the state directory
// (written by hangar-keygen or generated on first boot via
// [LoadOrGenerateKeypair]). Operators mint tokens with the private
// key through the hangar CLI; the service verifies with the public
// key. [VerifyAt] takes an explicit time so expiry behavior is
// testable without sleeping.
//
// # Dependencies
//
// This package depends on crypto/ed25519 for signing, lib/codec for
// CBOR encoding, lib/ref for the party type, and standard library
// packages. It does not depend on the store or any flow engine —
// clients import it without pulling in the service's dependency tree.
package operator
