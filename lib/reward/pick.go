// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package reward

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// pickDomain separates reward-roll hashing from every other BLAKE3 use
// in the system.
const pickDomain = "hangar/reward/v1"

// Pick is the outcome of one reward roll.
type Pick struct {
	Slot   int
	ItemID uint64
	Tier   Tier
}

// PickItem rolls one item from a category, deterministically from the
// redemption seed. The seed is signature-verified and single-use, so
// the issuer fixed the outcome when it signed the coupon; no server
// entropy is mixed in, and replaying the roll for audit reproduces it
// exactly.
//
// The first eight hash bytes choose the tier against the per-mille
// weights, the next eight choose a slot within the tier.
func PickItem(conn *sqlite.Conn, categoryID uint64, seed ref.Seed) (Pick, error) {
	cat, err := GetCategory(conn, categoryID)
	if err != nil {
		return Pick{}, err
	}

	hasher := blake3.New()
	hasher.Write([]byte(pickDomain))
	hasher.Write(seed[:])
	sum := hasher.Sum(nil)

	roll := binary.BigEndian.Uint64(sum[:8]) % 1000
	var tier Tier
	switch {
	case roll < cat.Weights.Common:
		tier = TierCommon
	case roll < cat.Weights.Common+cat.Weights.Mid:
		tier = TierMid
	default:
		tier = TierRare
	}

	slot := tierBase(tier) + int(binary.BigEndian.Uint64(sum[8:16])%SlotsPerTier)
	return Pick{Slot: slot, ItemID: cat.Items[slot], Tier: tier}, nil
}
