// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package reward

import (
	"errors"
	"testing"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/testutil"
)

func newRewardConn(t *testing.T) *sqlite.Conn {
	t.Helper()
	return testutil.NewConn(t, InitSchema)
}

func testCategory(id uint64) Category {
	cat := Category{ID: id, Label: "wave-one", Weights: DefaultWeights}
	for slot := range cat.Items {
		cat.Items[slot] = 100*id + uint64(slot)
	}
	return cat
}

func TestSetAndGetCategory(t *testing.T) {
	conn := newRewardConn(t)

	want := testCategory(1)
	if err := SetCategory(conn, want); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}

	got, err := GetCategory(conn, 1)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got != want {
		t.Fatalf("GetCategory = %+v, want %+v", got, want)
	}

	// Replacement retargets every slot.
	want.Label = "wave-two"
	want.Items[4] = 999
	if err := SetCategory(conn, want); err != nil {
		t.Fatalf("SetCategory replace: %v", err)
	}
	got, err = GetCategory(conn, 1)
	if err != nil {
		t.Fatalf("GetCategory after replace: %v", err)
	}
	if got != want {
		t.Fatalf("GetCategory after replace = %+v, want %+v", got, want)
	}
}

func TestSetCategoryRejectsBadWeights(t *testing.T) {
	conn := newRewardConn(t)

	cat := testCategory(1)
	cat.Weights = Weights{Common: 700, Mid: 250, Rare: 49}
	if err := SetCategory(conn, cat); !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("SetCategory error = %v, want ErrInvalidWeights", err)
	}
}

func TestRemoveCategory(t *testing.T) {
	conn := newRewardConn(t)

	if err := SetCategory(conn, testCategory(1)); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if err := RemoveCategory(conn, 1); err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}
	if _, err := GetCategory(conn, 1); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("GetCategory after remove error = %v, want ErrCategoryNotFound", err)
	}
	if err := RemoveCategory(conn, 1); err != nil {
		t.Fatalf("RemoveCategory of absent category: %v", err)
	}
}

func TestListCategories(t *testing.T) {
	conn := newRewardConn(t)

	for _, id := range []uint64{3, 1, 2} {
		if err := SetCategory(conn, testCategory(id)); err != nil {
			t.Fatalf("SetCategory(%d): %v", id, err)
		}
	}

	categories, err := ListCategories(conn)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("len(categories) = %d, want 3", len(categories))
	}
	for i, want := range []uint64{1, 2, 3} {
		if categories[i].ID != want {
			t.Fatalf("categories[%d].ID = %d, want %d", i, categories[i].ID, want)
		}
	}
}

func TestSlotTier(t *testing.T) {
	wants := []Tier{
		TierCommon, TierCommon, TierCommon,
		TierMid, TierMid, TierMid,
		TierRare, TierRare, TierRare,
	}
	for slot, want := range wants {
		if got := SlotTier(slot); got != want {
			t.Fatalf("SlotTier(%d) = %q, want %q", slot, got, want)
		}
	}
}

func TestPickItemDeterministic(t *testing.T) {
	conn := newRewardConn(t)
	if err := SetCategory(conn, testCategory(1)); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}

	seed := ref.Seed{7}
	first, err := PickItem(conn, 1, seed)
	if err != nil {
		t.Fatalf("PickItem: %v", err)
	}
	second, err := PickItem(conn, 1, seed)
	if err != nil {
		t.Fatalf("PickItem repeat: %v", err)
	}
	if first != second {
		t.Fatalf("PickItem not deterministic: %+v then %+v", first, second)
	}
	if first.Slot < 0 || first.Slot >= SlotCount {
		t.Fatalf("Pick.Slot = %d, out of range", first.Slot)
	}
	if first.ItemID != testCategory(1).Items[first.Slot] {
		t.Fatalf("Pick.ItemID = %d, want slot %d item %d",
			first.ItemID, first.Slot, testCategory(1).Items[first.Slot])
	}
	if first.Tier != SlotTier(first.Slot) {
		t.Fatalf("Pick.Tier = %q, want %q", first.Tier, SlotTier(first.Slot))
	}
}

func TestPickItemHonorsWeights(t *testing.T) {
	conn := newRewardConn(t)

	// All weight on rare: every roll must land in slots 6-8.
	cat := testCategory(1)
	cat.Weights = Weights{Common: 0, Mid: 0, Rare: 1000}
	if err := SetCategory(conn, cat); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}

	for i := range 64 {
		seed := ref.Seed{byte(i), byte(i >> 8)}
		pick, err := PickItem(conn, 1, seed)
		if err != nil {
			t.Fatalf("PickItem: %v", err)
		}
		if pick.Tier != TierRare {
			t.Fatalf("pick %d tier = %q, want %q (slot %d)", i, pick.Tier, TierRare, pick.Slot)
		}
	}
}

func TestPickItemSpreadsAcrossTiers(t *testing.T) {
	conn := newRewardConn(t)
	if err := SetCategory(conn, testCategory(1)); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}

	counts := map[Tier]int{}
	for i := range 512 {
		seed := ref.Seed{byte(i), byte(i >> 8), 0xaa}
		pick, err := PickItem(conn, 1, seed)
		if err != nil {
			t.Fatalf("PickItem: %v", err)
		}
		counts[pick.Tier]++
	}

	// With 512 seeds at 700/250/50 per mille, each tier shows up. The
	// exact split is hash-determined and stable across runs.
	for _, tier := range []Tier{TierCommon, TierMid, TierRare} {
		if counts[tier] == 0 {
			t.Fatalf("tier %q never selected in 512 rolls: %v", tier, counts)
		}
	}
	if counts[TierCommon] <= counts[TierRare] {
		t.Fatalf("common (%d) not more frequent than rare (%d)", counts[TierCommon], counts[TierRare])
	}
}

func TestPickItemUnknownCategory(t *testing.T) {
	conn := newRewardConn(t)
	if _, err := PickItem(conn, 42, ref.Seed{1}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("PickItem error = %v, want ErrCategoryNotFound", err)
	}
}
