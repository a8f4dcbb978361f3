// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot exports the full issuance state as one portable,
// deterministic document: series, fragments, draw slots, assets, pass
// and item balances, vault accounts, reward categories, consumed
// seeds, role grants, flow switches, and the audit log.
//
// A snapshot is a faithful copy of everything the store knows at one
// instant. Operators take them for cold backups, for migrating a
// deployment between hosts, and for off-line reconciliation against
// the upstream chain record after a drop closes.
//
// # Determinism
//
// The same database state always produces byte-identical output.
// Capture reads every table in primary-key order and the document is
// encoded as deterministic CBOR, so two exports of an untouched
// database can be compared with a plain byte comparison, and a
// snapshot's checksum is a stable fingerprint of the state itself.
//
// # Wire format
//
// A snapshot file is a fixed 60-byte header followed by the payload:
//
//	[8]  magic "HANGAR" + format version + zero
//	[1]  compression tag
//	[3]  reserved (zero)
//	[8]  uncompressed document size, little-endian
//	[8]  compressed payload size, little-endian
//	[32] keyed BLAKE3 checksum of the uncompressed document
//	[..] payload (compressed document bytes)
//
// The checksum is computed over the uncompressed CBOR document, so
// recompressing a snapshot with a different algorithm does not change
// its identity. Export probes the document and picks zstd, lz4, or no
// compression by measured ratio.
//
// Capture runs against a borrowed read connection; it never writes.
// The orchestrator wraps it in a read transaction so the document is
// a consistent point-in-time view even while flows are committing.
package snapshot
