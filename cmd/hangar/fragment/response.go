// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

// Response types for decoding CBOR responses from the mint service
// socket. These mirror the types defined in the service's query.go
// and admin.go (which live in package main and cannot be imported).
// The cbor tags must match the service's encoding; the json tags
// shape --json output.

// fragmentInfo is the wire form of one fragment.
type fragmentInfo struct {
	Space          string `cbor:"space" json:"space"`
	ID             uint64 `cbor:"id" json:"id"`
	Label          string `cbor:"label,omitempty" json:"label,omitempty"`
	FirstID        uint64 `cbor:"first_id" json:"first_id"`
	Supply         uint64 `cbor:"supply" json:"supply"`
	ReservedSize   uint64 `cbor:"reserved_size" json:"reserved_size"`
	ReservedIssued uint64 `cbor:"reserved_issued" json:"reserved_issued"`
	PublicIssued   uint64 `cbor:"public_issued" json:"public_issued"`
	Locked         bool   `cbor:"locked" json:"locked"`
}

type fragmentListResponse struct {
	Fragments []fragmentInfo `cbor:"fragments"`
}

type createPairedResponse struct {
	Pilot     fragmentInfo `cbor:"pilot" json:"pilot"`
	Racecraft fragmentInfo `cbor:"racecraft" json:"racecraft"`
}
