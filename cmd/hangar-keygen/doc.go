// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Hangar-keygen generates the key material a deployment needs: the
// secp256k1 coupon issuer key (sealed to age recipients, never written
// in the clear), the Ed25519 keypair the service signs operator tokens
// with, and age identities for unsealing. Subcommands: issuer,
// operator, identity, version.
package main
