// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/reward"
)

func seedN(n uint64) ref.Seed {
	var s ref.Seed
	binary.BigEndian.PutUint64(s[24:], n)
	return s
}

// preparePassSale arranges a priced claim: series registered, alice
// funded. The coupon quotes price 100 with an allotment of 5.
func preparePassSale(t *testing.T, f *fixture) coupon.Signature {
	t.Helper()
	if _, err := f.store.RegisterSeries(f.ctx, admin, pilotPassSeries, "pilot pass", 1000, 0); err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}
	if err := f.store.Deposit(f.ctx, admin, alice, 500); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	return f.issuer.Sign(coupon.DigestMintPass(f.realm, 100, 5, alice))
}

func TestClaimPassThroughSocket(t *testing.T) {
	f := newFixture(t)
	sig := preparePassSale(t, f)
	client := f.gatewayClient(t)

	var claim claimResponse
	err := client.Call(f.ctx, "claim-pass", map[string]any{
		"party":     alice,
		"series_id": uint64(pilotPassSeries),
		"quantity":  uint64(2),
		"paid":      uint64(250),
		"price":     uint64(100),
		"allotted":  uint64(5),
		"coupon":    sig,
	}, &claim)
	if err != nil {
		t.Fatalf("claim-pass: %v", err)
	}
	if claim.Minted != 2 || claim.Owed != 200 || claim.Refund != 50 {
		t.Errorf("claim = %+v, want minted 2 owed 200 refund 50", claim)
	}

	adminClient := f.adminClient(t)
	var status statusResponse
	if err := adminClient.Call(f.ctx, "status", nil, &status); err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Treasury != 200 {
		t.Errorf("treasury = %d, want the owed 200", status.Treasury)
	}
	var series seriesListResponse
	if err := adminClient.Call(f.ctx, "series-list", nil, &series); err != nil {
		t.Fatalf("series-list: %v", err)
	}
	if series.Series[0].MintedPublic != 2 {
		t.Errorf("minted public = %d, want 2", series.Series[0].MintedPublic)
	}
}

func TestClaimPassRejectsWrongSigner(t *testing.T) {
	f := newFixture(t)
	preparePassSale(t, f)

	impostor, err := coupon.GenerateIssuer(cryptorand.Reader)
	if err != nil {
		t.Fatalf("GenerateIssuer: %v", err)
	}

	err = f.gatewayClient(t).Call(f.ctx, "claim-pass", map[string]any{
		"party":     alice,
		"series_id": uint64(pilotPassSeries),
		"quantity":  uint64(1),
		"paid":      uint64(100),
		"price":     uint64(100),
		"allotted":  uint64(5),
		"coupon":    impostor.Sign(coupon.DigestMintPass(f.realm, 100, 5, alice)),
	}, nil)
	if !strings.Contains(serviceError(t, err), "coupon not signed by trusted signer") {
		t.Errorf("error = %v, want coupon rejection", err)
	}
}

func TestClaimPassFlowInactive(t *testing.T) {
	f := newFixture(t)
	sig := preparePassSale(t, f)

	if err := f.store.SetFlowActive(f.ctx, admin, redemption.FlowClaim, false); err != nil {
		t.Fatalf("SetFlowActive: %v", err)
	}

	err := f.gatewayClient(t).Call(f.ctx, "claim-pass", map[string]any{
		"party":     alice,
		"series_id": uint64(pilotPassSeries),
		"quantity":  uint64(1),
		"paid":      uint64(100),
		"price":     uint64(100),
		"allotted":  uint64(5),
		"coupon":    sig,
	}, nil)
	if !strings.Contains(serviceError(t, err), "flow is not active") {
		t.Errorf("error = %v, want inactive flow", err)
	}
}

// prepareFragment registers both pass series, creates the shared
// paired fragment (supply 100, ten reserved each side), and airdrops
// passes to alice.
func prepareFragment(t *testing.T, f *fixture) {
	t.Helper()
	for id, label := range map[uint64]string{
		pilotPassSeries:     "pilot pass",
		racecraftPassSeries: "racecraft pass",
	} {
		if _, err := f.store.RegisterSeries(f.ctx, admin, id, label, 1000, 0); err != nil {
			t.Fatalf("RegisterSeries(%s): %v", label, err)
		}
		err := f.store.Airdrop(f.ctx, admin, id, redemption.AllocationPublic, []redemption.PassGrant{{To: alice, Quantity: 2}})
		if err != nil {
			t.Fatalf("Airdrop(%s): %v", label, err)
		}
	}
	_, _, err := f.store.CreatePairedFragments(f.ctx, admin, redemption.PairedSpec{
		ID: 0, Supply: 100, FirstID: 0, ReservedPilots: 10, ReservedRacecraft: 10, Label: "wave one",
	})
	if err != nil {
		t.Fatalf("CreatePairedFragments: %v", err)
	}
}

func TestRedeemPilotThroughSocket(t *testing.T) {
	f := newFixture(t)
	prepareFragment(t, f)
	client := f.gatewayClient(t)

	seed := seedN(1)
	var redeemed redeemResponse
	err := client.Call(f.ctx, "redeem-pilot", map[string]any{
		"party":       alice,
		"fragment_id": uint64(0),
		"seed":        seed,
		"coupon":      f.issuer.Sign(coupon.DigestPilot(f.realm, seed, alice)),
	}, &redeemed)
	if err != nil {
		t.Fatalf("redeem-pilot: %v", err)
	}
	if redeemed.Space != "pilot" {
		t.Errorf("space = %s, want pilot", redeemed.Space)
	}
	// Ten reserved IDs, so public draws land in [10, 100).
	if redeemed.TokenID < 10 || redeemed.TokenID >= 100 {
		t.Errorf("token ID = %d, want a public draw in [10, 100)", redeemed.TokenID)
	}

	// The seed is spent even though alice still holds a pass.
	err = client.Call(f.ctx, "redeem-pilot", map[string]any{
		"party":       alice,
		"fragment_id": uint64(0),
		"seed":        seed,
		"coupon":      f.issuer.Sign(coupon.DigestPilot(f.realm, seed, alice)),
	}, nil)
	if !strings.Contains(serviceError(t, err), "seed already used") {
		t.Errorf("error = %v, want replay refusal", err)
	}
}

func TestRedeemRacecraftThroughSocket(t *testing.T) {
	f := newFixture(t)
	prepareFragment(t, f)

	seed := seedN(2)
	var redeemed redeemResponse
	err := f.gatewayClient(t).Call(f.ctx, "redeem-racecraft", map[string]any{
		"party":       alice,
		"fragment_id": uint64(0),
		"seed":        seed,
		"coupon":      f.issuer.Sign(coupon.DigestRacecraft(f.realm, seed, alice)),
	}, &redeemed)
	if err != nil {
		t.Fatalf("redeem-racecraft: %v", err)
	}
	if redeemed.Space != "racecraft" {
		t.Errorf("space = %s, want racecraft", redeemed.Space)
	}

	// A pilot coupon does not open the racecraft flow: the digests
	// differ even for the same seed and party.
	crossSeed := seedN(3)
	err = f.gatewayClient(t).Call(f.ctx, "redeem-racecraft", map[string]any{
		"party":       alice,
		"fragment_id": uint64(0),
		"seed":        crossSeed,
		"coupon":      f.issuer.Sign(coupon.DigestPilot(f.realm, crossSeed, alice)),
	}, nil)
	if !strings.Contains(serviceError(t, err), "coupon not signed by trusted signer") {
		t.Errorf("error = %v, want coupon rejection", err)
	}
}

func TestRedeemInventoryThroughSocket(t *testing.T) {
	f := newFixture(t)

	if _, err := f.store.RegisterSeries(f.ctx, admin, inventorySeries, "inventory pack", 500, 0); err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}
	bundle := []ledger.ItemAmount{{ItemID: 100, Amount: 3}, {ItemID: 200, Amount: 1}}
	if err := f.store.SetItemBundle(f.ctx, admin, inventorySeries, bundle); err != nil {
		t.Fatalf("SetItemBundle: %v", err)
	}
	err := f.store.Airdrop(f.ctx, admin, inventorySeries, redemption.AllocationPublic, []redemption.PassGrant{{To: alice, Quantity: 1}})
	if err != nil {
		t.Fatalf("Airdrop: %v", err)
	}

	seed := seedN(4)
	var response inventoryResponse
	err = f.gatewayClient(t).Call(f.ctx, "redeem-inventory", map[string]any{
		"party":     alice,
		"series_id": uint64(inventorySeries),
		"seed":      seed,
		"coupon":    f.issuer.Sign(coupon.DigestInventory(f.realm, seed, alice)),
	}, &response)
	if err != nil {
		t.Fatalf("redeem-inventory: %v", err)
	}
	if len(response.Items) != 2 {
		t.Fatalf("items = %d lines, want the bundle's 2", len(response.Items))
	}
	for i, want := range bundle {
		if response.Items[i].Item != want.ItemID || response.Items[i].Amount != want.Amount {
			t.Errorf("line %d = %+v, want item %d x%d", i, response.Items[i], want.ItemID, want.Amount)
		}
	}
}

func TestRedeemRewardThroughSocket(t *testing.T) {
	f := newFixture(t)

	category := reward.Category{
		ID:      7,
		Label:   "podium",
		Items:   [9]uint64{9000, 9001, 9002, 9003, 9004, 9005, 9006, 9007, 9008},
		Weights: reward.DefaultWeights,
	}
	if err := f.store.SetRewardCategory(f.ctx, admin, category); err != nil {
		t.Fatalf("SetRewardCategory: %v", err)
	}

	seed := seedN(5)
	var pick rewardRedeemResponse
	err := f.gatewayClient(t).Call(f.ctx, "redeem-reward", map[string]any{
		"party":       alice,
		"category_id": uint64(7),
		"seed":        seed,
		"coupon":      f.issuer.Sign(coupon.DigestReward(f.realm, seed, alice, 7)),
	}, &pick)
	if err != nil {
		t.Fatalf("redeem-reward: %v", err)
	}
	if pick.Slot < 0 || pick.Slot >= reward.SlotCount {
		t.Fatalf("slot = %d, want within [0, %d)", pick.Slot, reward.SlotCount)
	}
	if pick.Item != category.Items[pick.Slot] {
		t.Errorf("item = %d, slot %d holds %d", pick.Item, pick.Slot, category.Items[pick.Slot])
	}
	wantTier := string(reward.SlotTier(pick.Slot))
	if pick.Tier != wantTier {
		t.Errorf("tier = %s, slot %d sits in the %s band", pick.Tier, pick.Slot, wantTier)
	}

	// The coupon is the entitlement: a different seed needs a fresh
	// signature, and the spent seed stays spent.
	err = f.gatewayClient(t).Call(f.ctx, "redeem-reward", map[string]any{
		"party":       alice,
		"category_id": uint64(7),
		"seed":        seed,
		"coupon":      f.issuer.Sign(coupon.DigestReward(f.realm, seed, alice, 7)),
	}, nil)
	if !strings.Contains(serviceError(t, err), "seed already used") {
		t.Errorf("error = %v, want replay refusal", err)
	}
}
