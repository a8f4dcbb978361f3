// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed provides age encryption for Hangar key files.
//
// The issuer's secp256k1 signing key and the operator token key are
// sealed at rest: encrypted to one or more age x25519 recipients and
// stored as base64 text files. [GenerateKeypair] creates a sealing
// identity, [SealToFile] and [UnsealFile] move keys between disk and
// protected memory, and [Encrypt]/[Decrypt] are the underlying
// string-level operations.
//
// All private key material flows through [secret.Buffer] values —
// mmap-backed memory outside the Go heap, locked against swap and
// zeroed on close. Nothing in this package writes a private key to
// disk unencrypted.
//
// Depends on filippo.io/age and lib/secret.
package sealed
