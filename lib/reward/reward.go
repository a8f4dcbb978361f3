// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package reward holds the reward catalog: numbered categories of nine
// fungible items each, split into three rarity tiers, with per-mille
// tier weights that drive the seeded pick in [PickItem].
package reward

import (
	"errors"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SlotCount is the number of item slots in every category. Slots 0-2
// are common, 3-5 are mid, 6-8 are rare.
const SlotCount = 9

// SlotsPerTier is how many of a category's slots belong to each tier.
const SlotsPerTier = 3

// Reward catalog errors.
var (
	// ErrCategoryNotFound is returned when a redemption names a
	// category the catalog does not hold.
	ErrCategoryNotFound = errors.New("reward category not found")

	// ErrInvalidWeights rejects tier weights that do not sum to 1000
	// per mille. A short sum would leave rolls that select no tier.
	ErrInvalidWeights = errors.New("tier weights must sum to 1000")
)

// Tier is an item rarity band.
type Tier string

const (
	TierCommon Tier = "common"
	TierMid    Tier = "mid"
	TierRare   Tier = "rare"
)

// SlotTier maps a slot index to its rarity tier.
func SlotTier(slot int) Tier {
	switch {
	case slot < SlotsPerTier:
		return TierCommon
	case slot < 2*SlotsPerTier:
		return TierMid
	default:
		return TierRare
	}
}

func tierBase(tier Tier) int {
	switch tier {
	case TierCommon:
		return 0
	case TierMid:
		return SlotsPerTier
	default:
		return 2 * SlotsPerTier
	}
}

// Weights are per-mille tier probabilities. They must sum to 1000.
type Weights struct {
	Common uint64
	Mid    uint64
	Rare   uint64
}

// DefaultWeights is the stock tier split: 70% common, 25% mid,
// 5% rare.
var DefaultWeights = Weights{Common: 700, Mid: 250, Rare: 50}

// Valid reports whether the weights cover the whole roll range.
func (w Weights) Valid() bool {
	return w.Common+w.Mid+w.Rare == 1000
}

// Category is one reward table: nine item IDs and the tier weights
// that govern how a roll lands among them.
type Category struct {
	ID      uint64
	Label   string
	Items   [SlotCount]uint64
	Weights Weights
}

// InitSchema creates the reward catalog tables if they do not exist.
func InitSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS reward_categories (
			category_id   INTEGER PRIMARY KEY,
			label         TEXT    NOT NULL,
			weight_common INTEGER NOT NULL,
			weight_mid    INTEGER NOT NULL,
			weight_rare   INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reward_slots (
			category_id INTEGER NOT NULL,
			slot        INTEGER NOT NULL,
			item_id     INTEGER NOT NULL,
			PRIMARY KEY (category_id, slot)
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("reward schema: %w", err)
	}
	return nil
}

// SetCategory installs or replaces one category. Replacing is
// deliberate: operators retarget live categories between drop waves.
func SetCategory(conn *sqlite.Conn, cat Category) error {
	if !cat.Weights.Valid() {
		return fmt.Errorf("%w: %d+%d+%d", ErrInvalidWeights,
			cat.Weights.Common, cat.Weights.Mid, cat.Weights.Rare)
	}

	err := sqlitex.Execute(conn, `
		INSERT INTO reward_categories (category_id, label, weight_common, weight_mid, weight_rare)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (category_id) DO UPDATE SET
			label = excluded.label,
			weight_common = excluded.weight_common,
			weight_mid = excluded.weight_mid,
			weight_rare = excluded.weight_rare
	`, &sqlitex.ExecOptions{
		Args: []any{int64(cat.ID), cat.Label,
			int64(cat.Weights.Common), int64(cat.Weights.Mid), int64(cat.Weights.Rare)},
	})
	if err != nil {
		return fmt.Errorf("writing reward category: %w", err)
	}

	for slot, itemID := range cat.Items {
		err := sqlitex.Execute(conn, `
			INSERT INTO reward_slots (category_id, slot, item_id)
			VALUES (?, ?, ?)
			ON CONFLICT (category_id, slot) DO UPDATE SET item_id = excluded.item_id
		`, &sqlitex.ExecOptions{
			Args: []any{int64(cat.ID), int64(slot), int64(itemID)},
		})
		if err != nil {
			return fmt.Errorf("writing reward slot %d: %w", slot, err)
		}
	}
	return nil
}

// RemoveCategory deletes a category and its slots. Removing an absent
// category is not an error.
func RemoveCategory(conn *sqlite.Conn, categoryID uint64) error {
	err := sqlitex.Execute(conn, `
		DELETE FROM reward_categories WHERE category_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(categoryID)},
	})
	if err != nil {
		return fmt.Errorf("removing reward category: %w", err)
	}
	err = sqlitex.Execute(conn, `
		DELETE FROM reward_slots WHERE category_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(categoryID)},
	})
	if err != nil {
		return fmt.Errorf("removing reward slots: %w", err)
	}
	return nil
}

// GetCategory loads one category.
func GetCategory(conn *sqlite.Conn, categoryID uint64) (Category, error) {
	var cat Category
	found := false
	err := sqlitex.Execute(conn, `
		SELECT category_id, label, weight_common, weight_mid, weight_rare
		FROM reward_categories WHERE category_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(categoryID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			cat.ID = uint64(stmt.ColumnInt64(0))
			cat.Label = stmt.ColumnText(1)
			cat.Weights.Common = uint64(stmt.ColumnInt64(2))
			cat.Weights.Mid = uint64(stmt.ColumnInt64(3))
			cat.Weights.Rare = uint64(stmt.ColumnInt64(4))
			found = true
			return nil
		},
	})
	if err != nil {
		return Category{}, fmt.Errorf("loading reward category: %w", err)
	}
	if !found {
		return Category{}, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
	}

	err = sqlitex.Execute(conn, `
		SELECT slot, item_id FROM reward_slots WHERE category_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(categoryID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			slot := stmt.ColumnInt64(0)
			if slot < 0 || slot >= SlotCount {
				return fmt.Errorf("reward slot %d out of range", slot)
			}
			cat.Items[slot] = uint64(stmt.ColumnInt64(1))
			return nil
		},
	})
	if err != nil {
		return Category{}, fmt.Errorf("loading reward slots: %w", err)
	}
	return cat, nil
}

// ListCategories returns all categories ordered by ID.
func ListCategories(conn *sqlite.Conn) ([]Category, error) {
	var ids []uint64
	err := sqlitex.Execute(conn, `
		SELECT category_id FROM reward_categories ORDER BY category_id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, uint64(stmt.ColumnInt64(0)))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing reward categories: %w", err)
	}

	categories := make([]Category, 0, len(ids))
	for _, id := range ids {
		cat, err := GetCategory(conn, id)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, nil
}
