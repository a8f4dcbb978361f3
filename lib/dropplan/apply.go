// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package dropplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/reward"
)

// Apply executes a plan against a store in declaration order: series,
// then fragments, then bundles, then categories. The actor must hold
// the roles each operation requires.
//
// Apply refuses structurally invalid plans outright. Beyond that it
// does not second-guess the store: each operation is its own
// transaction, and the first store rejection (duplicate series,
// non-sequential fragment, unknown bundle series) stops the run with
// everything before it committed. Fix the plan and re-apply; the
// already-applied entries will then fail loudly as duplicates, which
// is the cue to split the remainder into a fresh plan.
//
// Windows are not applied. They are service configuration; the CLI
// prints them after a successful apply.
func Apply(ctx context.Context, store *redemption.Store, actor ref.Party, plan *Plan) error {
	if issues := Validate(plan); len(issues) > 0 {
		return fmt.Errorf("dropplan: plan %q is invalid: %s", plan.Label, strings.Join(issues, "; "))
	}

	for _, series := range plan.Series {
		_, err := store.RegisterSeries(ctx, actor, series.ID, series.Label, series.MaxSupply, series.Reserved)
		if err != nil {
			return fmt.Errorf("dropplan: series %d: %w", series.ID, err)
		}
	}

	for _, frag := range plan.Fragments {
		_, _, err := store.CreatePairedFragments(ctx, actor, redemption.PairedSpec{
			ID:                frag.ID,
			Supply:            frag.Supply,
			FirstID:           frag.FirstID,
			ReservedPilots:    frag.ReservedPilots,
			ReservedRacecraft: frag.ReservedRacecraft,
			Label:             frag.Label,
		})
		if err != nil {
			return fmt.Errorf("dropplan: fragment %d: %w", frag.ID, err)
		}
	}

	for _, bundle := range plan.Bundles {
		items := make([]ledger.ItemAmount, len(bundle.Items))
		for i, item := range bundle.Items {
			items[i] = ledger.ItemAmount{ItemID: item.Item, Amount: item.Amount}
		}
		if err := store.SetItemBundle(ctx, actor, bundle.Series, items); err != nil {
			return fmt.Errorf("dropplan: bundle for series %d: %w", bundle.Series, err)
		}
	}

	for _, category := range plan.Categories {
		cat := reward.Category{
			ID:      category.ID,
			Label:   category.Label,
			Weights: reward.DefaultWeights,
		}
		copy(cat.Items[:], category.Items)
		if category.Weights != nil {
			cat.Weights = reward.Weights{
				Common: category.Weights.Common,
				Mid:    category.Weights.Mid,
				Rare:   category.Weights.Rare,
			}
		}
		if err := store.SetRewardCategory(ctx, actor, cat); err != nil {
			return fmt.Errorf("dropplan: category %d: %w", category.ID, err)
		}
	}

	return nil
}
