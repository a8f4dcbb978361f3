// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec centralizes Hangar's CBOR configuration.
//
// Everything that crosses a process or durability boundary — socket
// requests and responses, coupon digest preimages, snapshot payloads,
// audit details — is CBOR encoded through this package. Encoding is
// Core Deterministic (RFC 8949 §4.2), so equal values always produce
// equal bytes; digests and checksums are computed over these bytes
// and rely on that property.
package codec
