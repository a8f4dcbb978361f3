// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"
	"math"
	"time"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/authorization"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/reward"
)

// CreateFragment creates one fragment in one space against the
// space's configured ceiling.
func (s *Store) CreateFragment(ctx context.Context, actor ref.Party, space fragment.Space, spec fragment.Spec) (fragment.Fragment, error) {
	if !space.Valid() {
		return fragment.Fragment{}, fmt.Errorf("unknown space %q", space)
	}
	ceiling := s.spaceConfig(space).Ceiling
	var created fragment.Fragment
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "fragment/create"); err != nil {
			return err
		}
		if ceiling == 0 {
			return fmt.Errorf("%w: %s", ErrCeilingUnconfigured, space)
		}
		frag, err := fragment.Create(conn, space, spec, ceiling, s.clock.Now())
		if err != nil {
			return err
		}
		created = frag
		return s.appendAudit(conn, actor, "fragment-create", map[string]any{
			"space":    string(space),
			"fragment": spec.ID,
			"supply":   spec.Supply,
			"first":    spec.FirstID,
			"reserved": spec.ReservedSize,
		})
	})
	if err != nil {
		return fragment.Fragment{}, err
	}
	s.logger.Info("fragment created",
		"space", space, "fragment", created.ID, "supply", created.Supply, "actor", actor)
	return created, nil
}

// PairedSpec describes matching fragments in both spaces: identical
// ID, supply, and first ID, with independently sized reserved pools.
type PairedSpec struct {
	ID                uint64
	Supply            uint64
	FirstID           uint64
	ReservedPilots    uint64
	ReservedRacecraft uint64
	Label             string
}

// CreatePairedFragments creates same-shaped fragments in the pilot
// and racecraft spaces. Public allocations pair 1:1 across spaces;
// reserved counts may differ, so each reserved size must leave public
// room (supply strictly greater than both).
func (s *Store) CreatePairedFragments(ctx context.Context, actor ref.Party, spec PairedSpec) (pilot, racecraft fragment.Fragment, err error) {
	if spec.Supply <= spec.ReservedPilots {
		return fragment.Fragment{}, fragment.Fragment{},
			fmt.Errorf("%w: pilot reserved %d, supply %d", ErrPairedReservedTooLarge, spec.ReservedPilots, spec.Supply)
	}
	if spec.Supply <= spec.ReservedRacecraft {
		return fragment.Fragment{}, fragment.Fragment{},
			fmt.Errorf("%w: racecraft reserved %d, supply %d", ErrPairedReservedTooLarge, spec.ReservedRacecraft, spec.Supply)
	}

	err = s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "fragment/create"); err != nil {
			return err
		}
		for _, space := range []fragment.Space{fragment.SpacePilot, fragment.SpaceRacecraft} {
			if s.spaceConfig(space).Ceiling == 0 {
				return fmt.Errorf("%w: %s", ErrCeilingUnconfigured, space)
			}
		}

		now := s.clock.Now()
		pilotFrag, err := fragment.Create(conn, fragment.SpacePilot, fragment.Spec{
			ID:           spec.ID,
			Supply:       spec.Supply,
			FirstID:      spec.FirstID,
			ReservedSize: spec.ReservedPilots,
			Label:        spec.Label,
		}, s.spaceConfig(fragment.SpacePilot).Ceiling, now)
		if err != nil {
			return fmt.Errorf("pilot space: %w", err)
		}
		racecraftFrag, err := fragment.Create(conn, fragment.SpaceRacecraft, fragment.Spec{
			ID:           spec.ID,
			Supply:       spec.Supply,
			FirstID:      spec.FirstID,
			ReservedSize: spec.ReservedRacecraft,
			Label:        spec.Label,
		}, s.spaceConfig(fragment.SpaceRacecraft).Ceiling, now)
		if err != nil {
			return fmt.Errorf("racecraft space: %w", err)
		}
		pilot, racecraft = pilotFrag, racecraftFrag

		return s.appendAudit(conn, actor, "fragment-create-paired", map[string]any{
			"fragment":           spec.ID,
			"supply":             spec.Supply,
			"first":              spec.FirstID,
			"reserved_pilot":     spec.ReservedPilots,
			"reserved_racecraft": spec.ReservedRacecraft,
		})
	})
	if err != nil {
		return fragment.Fragment{}, fragment.Fragment{}, err
	}
	s.logger.Info("paired fragments created",
		"fragment", spec.ID, "supply", spec.Supply, "first", spec.FirstID, "actor", actor)
	return pilot, racecraft, nil
}

// RegisterSeries registers a pass series.
func (s *Store) RegisterSeries(ctx context.Context, actor ref.Party, id uint64, label string, maxSupply, reservedSize uint64) (ledger.Series, error) {
	var series ledger.Series
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "series/register"); err != nil {
			return err
		}
		registered, err := ledger.RegisterSeries(conn, id, label, maxSupply, reservedSize, s.clock.Now())
		if err != nil {
			return err
		}
		series = registered
		return s.appendAudit(conn, actor, "series-register", map[string]any{
			"series":   id,
			"label":    label,
			"supply":   maxSupply,
			"reserved": reservedSize,
		})
	})
	if err != nil {
		return ledger.Series{}, err
	}
	s.logger.Info("series registered", "series", id, "label", label, "supply", maxSupply, "actor", actor)
	return series, nil
}

// Allocation names which side of a series an airdrop draws from.
type Allocation string

const (
	AllocationPublic   Allocation = "public"
	AllocationReserved Allocation = "reserved"
)

// Valid reports whether a is a known allocation.
func (a Allocation) Valid() bool {
	return a == AllocationPublic || a == AllocationReserved
}

// PassGrant is one airdrop line.
type PassGrant struct {
	To       ref.Party
	Quantity uint64
}

// Airdrop mints passes to a list of recipients. The pre-summed batch
// total is checked against the targeted allocation before any mint,
// so a batch never fails midway.
func (s *Store) Airdrop(ctx context.Context, actor ref.Party, seriesID uint64, pool Allocation, grants []PassGrant) error {
	if !pool.Valid() {
		return fmt.Errorf("unknown allocation %q", pool)
	}
	if len(grants) == 0 {
		return ErrNoRecipients
	}
	var total uint64
	for _, grant := range grants {
		if grant.To.IsZero() {
			return fmt.Errorf("%w: airdrop recipient", ErrZeroParty)
		}
		if grant.Quantity == 0 {
			return ErrZeroQuantity
		}
		if grant.Quantity > math.MaxUint64-total {
			return ErrPaymentOverflow
		}
		total += grant.Quantity
	}

	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "airdrop/pass"); err != nil {
			return err
		}
		series, err := ledger.GetSeries(conn, seriesID)
		if err != nil {
			return err
		}
		remaining := series.PublicRemaining()
		if pool == AllocationReserved {
			remaining = series.ReservedRemaining()
		}
		if total > remaining {
			return fmt.Errorf("%w: batch of %d, %s allocation has %d left",
				ledger.ErrSeriesSupplyExceeded, total, pool, remaining)
		}

		for _, grant := range grants {
			if pool == AllocationReserved {
				err = ledger.MintReserved(conn, grant.To, seriesID, grant.Quantity)
			} else {
				err = ledger.MintPublic(conn, grant.To, seriesID, grant.Quantity)
			}
			if err != nil {
				return err
			}
		}
		return s.appendAudit(conn, actor, "airdrop", map[string]any{
			"series":     seriesID,
			"pool":       string(pool),
			"recipients": uint64(len(grants)),
			"total":      total,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("airdrop",
		"series", seriesID, "pool", pool, "recipients", len(grants), "total", total, "actor", actor)
	return nil
}

// AirdropReservedAsset issues a specific reserved token ID to a
// recipient: the reserved analog of a redemption, placed by hand.
func (s *Store) AirdropReservedAsset(ctx context.Context, actor ref.Party, space fragment.Space, fragmentID, tokenID uint64, recipient ref.Party) error {
	if !space.Valid() {
		return fmt.Errorf("unknown space %q", space)
	}
	if recipient.IsZero() {
		return fmt.Errorf("%w: asset recipient", ErrZeroParty)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "airdrop/reserved"); err != nil {
			return err
		}
		if err := fragment.IssueReserved(conn, space, fragmentID, tokenID); err != nil {
			return err
		}
		if err := ledger.MintAsset(conn, string(space), tokenID, fragmentID, recipient, ref.Seed{}, s.clock.Now()); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "airdrop-reserved", map[string]any{
			"space":    string(space),
			"fragment": fragmentID,
			"token":    tokenID,
			"to":       recipient.String(),
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("reserved asset placed",
		"space", space, "fragment", fragmentID, "token", tokenID, "to", recipient, "actor", actor)
	return nil
}

// Deposit credits external funds to a party's vault account.
func (s *Store) Deposit(ctx context.Context, actor, party ref.Party, amount uint64) error {
	if party.IsZero() {
		return fmt.Errorf("%w: deposit target", ErrZeroParty)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "vault/deposit"); err != nil {
			return err
		}
		if err := s.vault.Deposit(conn, party, amount); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "deposit", map[string]any{
			"party":  party.String(),
			"amount": amount,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("deposit", "party", party, "amount", amount, "actor", actor)
	return nil
}

// SetAccountFrozen freezes or thaws a vault account.
func (s *Store) SetAccountFrozen(ctx context.Context, actor, party ref.Party, frozen bool) error {
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "vault/freeze"); err != nil {
			return err
		}
		if err := s.vault.SetFrozen(conn, party, frozen); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "vault-freeze", map[string]any{
			"party":  party.String(),
			"frozen": frozen,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("account freeze", "party", party, "frozen", frozen, "actor", actor)
	return nil
}

// Withdraw moves accumulated sale proceeds from the treasury to a
// party account.
func (s *Store) Withdraw(ctx context.Context, actor, to ref.Party, amount uint64) error {
	if to.IsZero() {
		return fmt.Errorf("%w: withdrawal target", ErrZeroParty)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "treasury/withdraw"); err != nil {
			return err
		}
		if err := s.vault.Withdraw(conn, to, amount); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "withdraw", map[string]any{
			"to":     to.String(),
			"amount": amount,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("treasury withdrawal", "to", to, "amount", amount, "actor", actor)
	return nil
}

// SetRewardCategory installs or replaces a reward category.
func (s *Store) SetRewardCategory(ctx context.Context, actor ref.Party, cat reward.Category) error {
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "catalog/set"); err != nil {
			return err
		}
		if err := reward.SetCategory(conn, cat); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "reward-set", map[string]any{
			"category": cat.ID,
			"label":    cat.Label,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("reward category set", "category", cat.ID, "actor", actor)
	return nil
}

// RemoveRewardCategory deletes a reward category.
func (s *Store) RemoveRewardCategory(ctx context.Context, actor ref.Party, categoryID uint64) error {
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "catalog/remove"); err != nil {
			return err
		}
		if err := reward.RemoveCategory(conn, categoryID); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "reward-remove", map[string]any{
			"category": categoryID,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("reward category removed", "category", categoryID, "actor", actor)
	return nil
}

// RewardCategory returns one reward category, or
// reward.ErrCategoryNotFound.
func (s *Store) RewardCategory(ctx context.Context, categoryID uint64) (reward.Category, error) {
	var cat reward.Category
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		loaded, err := reward.GetCategory(conn, categoryID)
		if err != nil {
			return err
		}
		cat = loaded
		return nil
	})
	if err != nil {
		return reward.Category{}, err
	}
	return cat, nil
}

// RewardCategories returns every reward category ordered by ID.
func (s *Store) RewardCategories(ctx context.Context) ([]reward.Category, error) {
	var categories []reward.Category
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		loaded, err := reward.ListCategories(conn)
		if err != nil {
			return err
		}
		categories = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GrantRole gives a party a role. A zero expiresAt grants forever.
func (s *Store) GrantRole(ctx context.Context, actor, party ref.Party, role authorization.Role, expiresAt time.Time) error {
	if party.IsZero() {
		return fmt.Errorf("%w: grant target", ErrZeroParty)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "role/grant"); err != nil {
			return err
		}
		if err := authorization.Grant(conn, party, role, actor, s.clock.Now(), expiresAt); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "role-grant", map[string]any{
			"party": party.String(),
			"role":  string(role),
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("role granted", "party", party, "role", role, "actor", actor)
	return nil
}

// RevokeRole removes a role from a party.
func (s *Store) RevokeRole(ctx context.Context, actor, party ref.Party, role authorization.Role) error {
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "role/revoke"); err != nil {
			return err
		}
		if err := authorization.Revoke(conn, party, role); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "role-revoke", map[string]any{
			"party": party.String(),
			"role":  string(role),
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("role revoked", "party", party, "role", role, "actor", actor)
	return nil
}

// LockFragment sets a fragment's one-way metadata lock.
func (s *Store) LockFragment(ctx context.Context, actor ref.Party, space fragment.Space, fragmentID uint64) error {
	if !space.Valid() {
		return fmt.Errorf("unknown space %q", space)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "fragment/lock"); err != nil {
			return err
		}
		if err := fragment.Lock(conn, space, fragmentID); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "fragment-lock", map[string]any{
			"space":    string(space),
			"fragment": fragmentID,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("fragment locked", "space", space, "fragment", fragmentID, "actor", actor)
	return nil
}

// SetFragmentLabel updates a fragment's label while it is unlocked.
func (s *Store) SetFragmentLabel(ctx context.Context, actor ref.Party, space fragment.Space, fragmentID uint64, label string) error {
	if !space.Valid() {
		return fmt.Errorf("unknown space %q", space)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "fragment/label"); err != nil {
			return err
		}
		if err := fragment.SetLabel(conn, space, fragmentID, label); err != nil {
			return err
		}
		return s.appendAudit(conn, actor, "fragment-label", map[string]any{
			"space":    string(space),
			"fragment": fragmentID,
			"label":    label,
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("fragment relabeled", "space", space, "fragment", fragmentID, "actor", actor)
	return nil
}
