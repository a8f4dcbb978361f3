// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// Realm identifies the deployment a coupon is bound to: the service's
// own address and a network number. Both are baked into every digest,
// so a coupon signed for one deployment is inert against every other,
// including a staging copy of the same drop running the same signer.
type Realm struct {
	// Address is the deployment's own party address.
	Address ref.Party

	// Network distinguishes otherwise-identical deployments
	// (production, staging, local test harnesses).
	Network uint64
}

// Digest is the Keccak-256 hash a coupon signs.
type Digest [32]byte

// String returns the "0x" hex form, for logs and audit records.
func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

// Each purpose has its own preimage struct. The purpose constant is a
// field of the preimage, not implied by layout, so two purposes with
// coincidentally identical field sets still hash apart. Fields use
// keyasint tags: the digest is a protocol constant, and integer keys
// keep it independent of Go field renames.

type mintPassPreimage struct {
	Realm    ref.Party `cbor:"1,keyasint"`
	Network  uint64    `cbor:"2,keyasint"`
	Purpose  Purpose   `cbor:"3,keyasint"`
	Price    uint64    `cbor:"4,keyasint"`
	Allotted uint64    `cbor:"5,keyasint"`
	Party    ref.Party `cbor:"6,keyasint"`
}

type seededPreimage struct {
	Realm   ref.Party `cbor:"1,keyasint"`
	Network uint64    `cbor:"2,keyasint"`
	Purpose Purpose   `cbor:"3,keyasint"`
	Seed    ref.Seed  `cbor:"4,keyasint"`
	Party   ref.Party `cbor:"5,keyasint"`
}

type rewardPreimage struct {
	Realm    ref.Party `cbor:"1,keyasint"`
	Network  uint64    `cbor:"2,keyasint"`
	Purpose  Purpose   `cbor:"3,keyasint"`
	Seed     ref.Seed  `cbor:"4,keyasint"`
	Party    ref.Party `cbor:"5,keyasint"`
	Category uint64    `cbor:"6,keyasint"`
}

// DigestMintPass builds the digest a mint-pass claim coupon signs:
// the price per pass and the party's total allotment are fixed by the
// issuer; quantity is not part of the digest — the allotment caps it.
func DigestMintPass(realm Realm, price, allotted uint64, party ref.Party) Digest {
	return hashPreimage(mintPassPreimage{
		Realm:    realm.Address,
		Network:  realm.Network,
		Purpose:  PurposeMintPass,
		Price:    price,
		Allotted: allotted,
		Party:    party,
	})
}

// DigestPilot builds the digest for a pilot redemption coupon.
func DigestPilot(realm Realm, seed ref.Seed, party ref.Party) Digest {
	return hashSeeded(realm, PurposePilot, seed, party)
}

// DigestRacecraft builds the digest for a racecraft redemption
// coupon.
func DigestRacecraft(realm Realm, seed ref.Seed, party ref.Party) Digest {
	return hashSeeded(realm, PurposeRacecraft, seed, party)
}

// DigestInventory builds the digest for an inventory redemption
// coupon.
func DigestInventory(realm Realm, seed ref.Seed, party ref.Party) Digest {
	return hashSeeded(realm, PurposeInventory, seed, party)
}

// DigestReward builds the digest for a reward draw coupon. The
// category is signed: the issuer decides which catalog the party may
// draw from.
func DigestReward(realm Realm, seed ref.Seed, party ref.Party, category uint64) Digest {
	return hashPreimage(rewardPreimage{
		Realm:    realm.Address,
		Network:  realm.Network,
		Purpose:  PurposeReward,
		Seed:     seed,
		Party:    party,
		Category: category,
	})
}

func hashSeeded(realm Realm, purpose Purpose, seed ref.Seed, party ref.Party) Digest {
	return hashPreimage(seededPreimage{
		Realm:   realm.Address,
		Network: realm.Network,
		Purpose: purpose,
		Seed:    seed,
		Party:   party,
	})
}

func hashPreimage(preimage any) Digest {
	encoded, err := codec.Marshal(preimage)
	if err != nil {
		// Preimage structs contain only fixed-size fields; a marshal
		// failure is a programming error, not an input error.
		panic("coupon: preimage marshal failed: " + err.Error())
	}

	hash := sha3.NewLegacyKeccak256()
	hash.Write(encoded)

	var digest Digest
	hash.Sum(digest[:0])
	return digest
}
