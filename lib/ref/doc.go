// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides the typed identifier values used throughout
// Hangar: party addresses and one-time entropy seeds.
//
// Both types are fixed-size byte arrays with a canonical lowercase
// hex text form ("0x" prefixed). They are comparable, usable as map
// keys, and marshal to their text form in CBOR, JSON, and YAML via
// encoding.TextMarshaler. Parsing is strict: the prefix is required,
// the length is exact, and uppercase hex is accepted on input but
// never produced on output.
package ref
