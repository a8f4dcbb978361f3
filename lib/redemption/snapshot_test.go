// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"bytes"
	"testing"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/reward"
	"github.com/hangar-foundation/hangar/lib/snapshot"
)

// populatedStore drives real operations through the harness so the
// exported document has every section filled: a redeemed asset with
// its consumed seed, a vault deposit, an item bundle, and a reward
// category.
func populatedStore(t *testing.T) (*harness, RedeemResult) {
	t.Helper()
	h := newHarness(t)
	h.pairedFragment(t)
	h.givePass(t, alice, pilotPassSeries)

	if err := h.store.Deposit(h.ctx, admin, bob, 5000); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	bundle := []ledger.ItemAmount{{ItemID: 1001, Amount: 3}, {ItemID: 1002, Amount: 1}}
	if err := h.store.SetItemBundle(h.ctx, admin, pilotPassSeries, bundle); err != nil {
		t.Fatalf("SetItemBundle: %v", err)
	}
	category := reward.Category{
		ID:      7,
		Label:   "launch crate",
		Items:   [reward.SlotCount]uint64{201, 202, 203, 204, 205, 206, 207, 208, 209},
		Weights: reward.DefaultWeights,
	}
	if err := h.store.SetRewardCategory(h.ctx, admin, category); err != nil {
		t.Fatalf("SetRewardCategory: %v", err)
	}

	seed := h.seed(7)
	result, err := h.store.RedeemPilot(h.ctx, RedeemRequest{
		Party:      alice,
		FragmentID: 0,
		Seed:       seed,
		Coupon:     h.issuer.Sign(coupon.DigestPilot(h.realm, seed, alice)),
	})
	if err != nil {
		t.Fatalf("RedeemPilot: %v", err)
	}
	return h, result
}

func TestExportSnapshot(t *testing.T) {
	h, redeemed := populatedStore(t)

	var buffer bytes.Buffer
	header, err := h.store.ExportSnapshot(h.ctx, &buffer)
	if err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	if header.UncompressedSize == 0 {
		t.Fatal("header reports an empty document")
	}

	document, readHeader, err := snapshot.Read(&buffer)
	if err != nil {
		t.Fatalf("reading exported snapshot: %v", err)
	}
	if readHeader != header {
		t.Errorf("read header %+v does not match export header %+v", readHeader, header)
	}

	if document.Version != snapshot.DocumentVersion {
		t.Errorf("document version = %d, want %d", document.Version, snapshot.DocumentVersion)
	}
	if document.CapturedAt != h.clock.Now().Unix() {
		t.Errorf("captured at %d, want %d", document.CapturedAt, h.clock.Now().Unix())
	}
	if document.Realm.Address != h.realm.Address || document.Realm.Network != h.realm.Network {
		t.Errorf("document realm %+v does not match store realm %+v", document.Realm, h.realm)
	}
	if document.Signer != h.issuer.Address() {
		t.Errorf("document signer = %v, want %v", document.Signer, h.issuer.Address())
	}

	for _, flow := range Flows() {
		if !document.Flows[string(flow)] {
			t.Errorf("flow %s not recorded as active", flow)
		}
	}

	if len(document.Series) != 2 {
		t.Fatalf("len(Series) = %d, want 2", len(document.Series))
	}
	if document.Series[0].ID != pilotPassSeries || document.Series[0].MintedPublic != 1 {
		t.Errorf("series[0] = %+v, want id %d with one public mint", document.Series[0], pilotPassSeries)
	}

	if len(document.Fragments) != 2 {
		t.Fatalf("len(Fragments) = %d, want pilot and racecraft", len(document.Fragments))
	}
	for _, frag := range document.Fragments {
		if frag.Space == string(fragment.SpacePilot) && frag.PublicIssued != 1 {
			t.Errorf("pilot fragment public issued = %d, want 1", frag.PublicIssued)
		}
	}

	if len(document.Assets) != 1 {
		t.Fatalf("len(Assets) = %d, want 1", len(document.Assets))
	}
	asset := document.Assets[0]
	if asset.Space != string(fragment.SpacePilot) || asset.TokenID != redeemed.TokenID || asset.Owner != alice {
		t.Errorf("asset = %+v, want pilot token %d owned by alice", asset, redeemed.TokenID)
	}
	if asset.Seed != h.seed(7) {
		t.Errorf("asset seed = %v, want the redemption seed", asset.Seed)
	}

	if len(document.Seeds) != 1 {
		t.Fatalf("len(Seeds) = %d, want 1", len(document.Seeds))
	}
	if document.Seeds[0].Seed != h.seed(7) || document.Seeds[0].Flow != string(FlowPilot) {
		t.Errorf("consumed seed = %+v, want the pilot redemption seed", document.Seeds[0])
	}

	var bobBalance uint64
	for _, account := range document.Accounts {
		if account.Party == bob {
			bobBalance = account.Balance
		}
	}
	if bobBalance != 5000 {
		t.Errorf("bob's exported balance = %d, want 5000", bobBalance)
	}

	if len(document.Bundles) != 2 {
		t.Errorf("len(Bundles) = %d, want 2", len(document.Bundles))
	}
	if len(document.Categories) != 1 {
		t.Fatalf("len(Categories) = %d, want 1", len(document.Categories))
	}
	exported := document.Categories[0]
	if exported.ID != 7 || exported.Common != 700 || exported.Mid != 250 || exported.Rare != 50 {
		t.Errorf("category = %+v, want id 7 with default weights", exported)
	}
	if len(exported.Items) != reward.SlotCount || exported.Items[0] != 201 || exported.Items[8] != 209 {
		t.Errorf("category items = %v, want 201..209 in slot order", exported.Items)
	}

	var adminGranted bool
	for _, grant := range document.Grants {
		if grant.Party == admin && grant.Role == "admin" {
			adminGranted = true
		}
	}
	if !adminGranted {
		t.Error("bootstrap admin grant missing from document")
	}

	if len(document.Audit) == 0 {
		t.Fatal("audit section is empty")
	}
	if document.Audit[0].Event != "bootstrap-admin" {
		t.Errorf("first audit event = %q, want bootstrap-admin", document.Audit[0].Event)
	}
}

func TestExportSnapshotDeterministic(t *testing.T) {
	h, _ := populatedStore(t)

	// The fake clock pins CapturedAt, so two exports of untouched
	// state must be byte-identical.
	var first, second bytes.Buffer
	if _, err := h.store.ExportSnapshot(h.ctx, &first); err != nil {
		t.Fatalf("first ExportSnapshot: %v", err)
	}
	if _, err := h.store.ExportSnapshot(h.ctx, &second); err != nil {
		t.Fatalf("second ExportSnapshot: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two exports of unchanged state differ")
	}

	// Any committed write must change the fingerprint.
	if err := h.store.SetFlowActive(h.ctx, admin, FlowReward, false); err != nil {
		t.Fatalf("SetFlowActive: %v", err)
	}
	var third bytes.Buffer
	thirdHeader, err := h.store.ExportSnapshot(h.ctx, &third)
	if err != nil {
		t.Fatalf("third ExportSnapshot: %v", err)
	}
	firstHeader, err := snapshot.ReadHeader(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if thirdHeader.Checksum == firstHeader.Checksum {
		t.Error("checksum unchanged after a committed write")
	}
}

func TestExportSnapshotFreshStore(t *testing.T) {
	h := newHarness(t)

	var buffer bytes.Buffer
	if _, err := h.store.ExportSnapshot(h.ctx, &buffer); err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}

	document, _, err := snapshot.Read(&buffer)
	if err != nil {
		t.Fatalf("reading exported snapshot: %v", err)
	}

	// The harness registers two series and switches flows on, but no
	// flow has run: no assets, no seeds, no vault accounts.
	if len(document.Assets) != 0 {
		t.Errorf("fresh store exported %d assets", len(document.Assets))
	}
	if len(document.Seeds) != 0 {
		t.Errorf("fresh store exported %d consumed seeds", len(document.Seeds))
	}
	if len(document.Accounts) != 0 {
		t.Errorf("fresh store exported %d vault accounts", len(document.Accounts))
	}
	if document.Treasury != 0 {
		t.Errorf("fresh store treasury = %d, want 0", document.Treasury)
	}
	if len(document.Series) != 2 {
		t.Errorf("len(Series) = %d, want 2", len(document.Series))
	}
}
