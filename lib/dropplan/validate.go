// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package dropplan

import (
	"fmt"

	"github.com/hangar-foundation/hangar/lib/cron"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/reward"
)

// Validate checks a Plan for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the plan is
// valid.
//
// Structural checks include:
//   - The plan must have a label
//   - Series need a nonzero ID, a label, and a positive supply that
//     covers the reserved size; IDs must be unique within the plan
//   - Fragments need a supply greater than 1 and strictly greater
//     than each reserved count; IDs must be unique within the plan
//   - Bundles need at least one item with a positive amount; item IDs
//     must be unique within a bundle and series unique across bundles
//   - Categories need exactly nine item IDs; explicit weights must
//     sum to 1000; IDs must be unique within the plan
//   - Windows need a known flow, at least one boundary, and parseable
//     cron expressions
//
// Cross-plan ordering constraints (fragment first_id continuity,
// series referenced by bundles already existing) are the store's to
// enforce at Apply time; a plan may legitimately extend state created
// by an earlier plan.
func Validate(plan *Plan) []string {
	var issues []string

	if plan.Label == "" {
		issues = append(issues, "plan has no label")
	}

	seriesIDs := make(map[uint64]int, len(plan.Series))
	for index, series := range plan.Series {
		prefix := fmt.Sprintf("series[%d]", index)
		if series.ID == 0 {
			issues = append(issues, fmt.Sprintf("%s: id is required", prefix))
		} else if firstIndex, exists := seriesIDs[series.ID]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s: duplicate series id %d (first used at series[%d])",
				prefix, series.ID, firstIndex,
			))
		} else {
			seriesIDs[series.ID] = index
		}
		if series.Label == "" {
			issues = append(issues, fmt.Sprintf("%s: label is required", prefix))
		}
		if series.MaxSupply == 0 {
			issues = append(issues, fmt.Sprintf("%s: max_supply must be positive", prefix))
		}
		if series.Reserved > series.MaxSupply {
			issues = append(issues, fmt.Sprintf(
				"%s: reserved %d exceeds max_supply %d",
				prefix, series.Reserved, series.MaxSupply,
			))
		}
	}

	fragmentIDs := make(map[uint64]int, len(plan.Fragments))
	for index, frag := range plan.Fragments {
		prefix := fmt.Sprintf("fragments[%d]", index)
		if firstIndex, exists := fragmentIDs[frag.ID]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s: duplicate fragment id %d (first used at fragments[%d])",
				prefix, frag.ID, firstIndex,
			))
		} else {
			fragmentIDs[frag.ID] = index
		}
		if frag.Supply <= 1 {
			issues = append(issues, fmt.Sprintf("%s: supply must be greater than 1", prefix))
		}
		if frag.ReservedPilots >= frag.Supply {
			issues = append(issues, fmt.Sprintf(
				"%s: reserved_pilots %d leaves no public room in supply %d",
				prefix, frag.ReservedPilots, frag.Supply,
			))
		}
		if frag.ReservedRacecraft >= frag.Supply {
			issues = append(issues, fmt.Sprintf(
				"%s: reserved_racecraft %d leaves no public room in supply %d",
				prefix, frag.ReservedRacecraft, frag.Supply,
			))
		}
	}

	bundleSeries := make(map[uint64]int, len(plan.Bundles))
	for index, bundle := range plan.Bundles {
		prefix := fmt.Sprintf("bundles[%d]", index)
		if bundle.Series == 0 {
			issues = append(issues, fmt.Sprintf("%s: series is required", prefix))
		} else if firstIndex, exists := bundleSeries[bundle.Series]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s: duplicate bundle for series %d (first used at bundles[%d])",
				prefix, bundle.Series, firstIndex,
			))
		} else {
			bundleSeries[bundle.Series] = index
		}
		if len(bundle.Items) == 0 {
			issues = append(issues, fmt.Sprintf("%s: at least one item is required", prefix))
		}
		itemIDs := make(map[uint64]bool, len(bundle.Items))
		for itemIndex, item := range bundle.Items {
			itemPrefix := fmt.Sprintf("%s.items[%d]", prefix, itemIndex)
			if item.Item == 0 {
				issues = append(issues, fmt.Sprintf("%s: item is required", itemPrefix))
			} else if itemIDs[item.Item] {
				issues = append(issues, fmt.Sprintf("%s: duplicate item %d in bundle", itemPrefix, item.Item))
			} else {
				itemIDs[item.Item] = true
			}
			if item.Amount == 0 {
				issues = append(issues, fmt.Sprintf("%s: amount must be positive", itemPrefix))
			}
		}
	}

	categoryIDs := make(map[uint64]int, len(plan.Categories))
	for index, category := range plan.Categories {
		prefix := fmt.Sprintf("categories[%d]", index)
		if firstIndex, exists := categoryIDs[category.ID]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s: duplicate category id %d (first used at categories[%d])",
				prefix, category.ID, firstIndex,
			))
		} else {
			categoryIDs[category.ID] = index
		}
		if len(category.Items) != reward.SlotCount {
			issues = append(issues, fmt.Sprintf(
				"%s: need exactly %d items, got %d",
				prefix, reward.SlotCount, len(category.Items),
			))
		}
		for itemIndex, item := range category.Items {
			if item == 0 {
				issues = append(issues, fmt.Sprintf("%s.items[%d]: item is required", prefix, itemIndex))
			}
		}
		if category.Weights != nil {
			weights := reward.Weights{
				Common: category.Weights.Common,
				Mid:    category.Weights.Mid,
				Rare:   category.Weights.Rare,
			}
			if !weights.Valid() {
				issues = append(issues, fmt.Sprintf(
					"%s: weights must sum to 1000 per mille, got %d",
					prefix, weights.Common+weights.Mid+weights.Rare,
				))
			}
		}
	}

	for index, window := range plan.Windows {
		prefix := fmt.Sprintf("windows[%d]", index)
		if !redemption.Flow(window.Flow).Valid() {
			issues = append(issues, fmt.Sprintf("%s: unknown flow %q", prefix, window.Flow))
		}
		if window.Open == "" && window.Close == "" {
			issues = append(issues, fmt.Sprintf("%s: at least one of open and close is required", prefix))
		}
		if window.Open != "" {
			if _, err := cron.Parse(window.Open); err != nil {
				issues = append(issues, fmt.Sprintf("%s: open: %v", prefix, err))
			}
		}
		if window.Close != "" {
			if _, err := cron.Parse(window.Close); err != nil {
				issues = append(issues, fmt.Sprintf("%s: close: %v", prefix, err))
			}
		}
	}

	return issues
}
