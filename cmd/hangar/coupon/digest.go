// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import (
	"fmt"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// digestParams is the flag set shared by sign and verify: everything
// that goes into a coupon digest. The service hashes the same fields
// in the same order, so a digest built here matches what the service
// checks a signature against.
type digestParams struct {
	Purpose  string `flag:"purpose" desc:"coupon purpose: mint-pass, pilot, racecraft, inventory, or reward"`
	Realm    string `flag:"realm" desc:"deployment address the coupon is bound to (0x hex)"`
	Network  uint64 `flag:"network" desc:"deployment network number" default:"1"`
	Party    string `flag:"party" desc:"party the coupon is issued to (0x hex)"`
	Price    uint64 `flag:"price" desc:"price per pass (mint-pass only)"`
	Allotted uint64 `flag:"allotted" desc:"total passes the party may claim (mint-pass only)"`
	Seed     string `flag:"seed" desc:"32-byte seed (0x hex; redemption and reward purposes)"`
	Category uint64 `flag:"category" desc:"reward category to draw from (reward only)"`
}

// digest validates the parameters for the chosen purpose and builds
// the digest.
func (p *digestParams) digest() (coupon.Digest, error) {
	purpose, err := coupon.ParsePurpose(p.Purpose)
	if err != nil {
		return coupon.Digest{}, err
	}
	if p.Realm == "" {
		return coupon.Digest{}, fmt.Errorf("missing --realm")
	}
	realmAddress, err := ref.ParseParty(p.Realm)
	if err != nil {
		return coupon.Digest{}, fmt.Errorf("--realm: %w", err)
	}
	if p.Party == "" {
		return coupon.Digest{}, fmt.Errorf("missing --party")
	}
	party, err := ref.ParseParty(p.Party)
	if err != nil {
		return coupon.Digest{}, fmt.Errorf("--party: %w", err)
	}
	realm := coupon.Realm{Address: realmAddress, Network: p.Network}

	if purpose == coupon.PurposeMintPass {
		if p.Allotted == 0 {
			return coupon.Digest{}, fmt.Errorf("mint-pass coupons need --allotted >= 1")
		}
		if p.Seed != "" {
			return coupon.Digest{}, fmt.Errorf("--seed does not apply to mint-pass coupons")
		}
		return coupon.DigestMintPass(realm, p.Price, p.Allotted, party), nil
	}

	if p.Seed == "" {
		return coupon.Digest{}, fmt.Errorf("%s coupons need --seed", purpose)
	}
	seed, err := ref.ParseSeed(p.Seed)
	if err != nil {
		return coupon.Digest{}, fmt.Errorf("--seed: %w", err)
	}
	if p.Price != 0 || p.Allotted != 0 {
		return coupon.Digest{}, fmt.Errorf("--price and --allotted apply to mint-pass coupons only")
	}

	switch purpose {
	case coupon.PurposePilot:
		return coupon.DigestPilot(realm, seed, party), nil
	case coupon.PurposeRacecraft:
		return coupon.DigestRacecraft(realm, seed, party), nil
	case coupon.PurposeInventory:
		return coupon.DigestInventory(realm, seed, party), nil
	case coupon.PurposeReward:
		return coupon.DigestReward(realm, seed, party, p.Category), nil
	}
	return coupon.Digest{}, fmt.Errorf("unsupported purpose %q", p.Purpose)
}
