// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package series

// Response types for decoding CBOR responses from the mint service
// socket. These mirror the types defined in the service's query.go
// (which lives in package main and cannot be imported). The cbor tags
// must match the service's encoding; the json tags shape --json
// output.

// seriesInfo is the wire form of one pass series.
type seriesInfo struct {
	ID             uint64 `cbor:"id" json:"id"`
	Label          string `cbor:"label,omitempty" json:"label,omitempty"`
	MaxSupply      uint64 `cbor:"max_supply" json:"max_supply"`
	ReservedSize   uint64 `cbor:"reserved_size" json:"reserved_size"`
	MintedPublic   uint64 `cbor:"minted_public" json:"minted_public"`
	MintedReserved uint64 `cbor:"minted_reserved" json:"minted_reserved"`
}

type seriesListResponse struct {
	Series []seriesInfo `cbor:"series"`
}
