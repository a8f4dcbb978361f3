// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package reward

// Response types for decoding CBOR responses from the mint service
// socket. These mirror the types defined in the service's query.go
// (which lives in package main and cannot be imported). The cbor tags
// must match the service's encoding; the json tags shape --json
// output.

// categoryInfo is the wire form of one reward category.
type categoryInfo struct {
	ID      uint64   `cbor:"id" json:"id"`
	Label   string   `cbor:"label,omitempty" json:"label,omitempty"`
	Items   []uint64 `cbor:"items" json:"items"`
	Weights weights  `cbor:"weights" json:"weights"`
}

type weights struct {
	Common uint64 `cbor:"common" json:"common"`
	Mid    uint64 `cbor:"mid" json:"mid"`
	Rare   uint64 `cbor:"rare" json:"rare"`
}

type rewardListResponse struct {
	Categories []categoryInfo `cbor:"categories"`
}
