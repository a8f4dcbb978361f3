// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/replay"
	"github.com/hangar-foundation/hangar/lib/reward"
)

// RedeemRequest is one asset redemption: burn a pass, draw a random
// token ID from the fragment's public pool, mint the asset there.
type RedeemRequest struct {
	Party      ref.Party
	FragmentID uint64
	Seed       ref.Seed
	Coupon     coupon.Signature
}

// RedeemResult reports a committed redemption.
type RedeemResult struct {
	Space   fragment.Space
	TokenID uint64
}

// RedeemPilot redeems one pilot pass for a pilot asset.
func (s *Store) RedeemPilot(ctx context.Context, req RedeemRequest) (RedeemResult, error) {
	return s.redeemAsset(ctx, fragment.SpacePilot, FlowPilot, coupon.DigestPilot, req)
}

// RedeemRacecraft redeems one racecraft pass for a racecraft asset.
func (s *Store) RedeemRacecraft(ctx context.Context, req RedeemRequest) (RedeemResult, error) {
	return s.redeemAsset(ctx, fragment.SpaceRacecraft, FlowRacecraft, coupon.DigestRacecraft, req)
}

// redeemAsset is the shared pilot/racecraft path. The two flows
// differ only in space, flow switch, digest purpose, and which pass
// series burns.
//
// Check order: flow switch, fragment existence, space ceiling
// configured, seed unconsumed (consumed here, rolled back with
// everything else on failure), pass held, coupon verification. Then:
// burn one pass, draw, mint the asset at the drawn ID.
func (s *Store) redeemAsset(ctx context.Context, space fragment.Space, flow Flow, digest func(coupon.Realm, ref.Seed, ref.Party) coupon.Digest, req RedeemRequest) (RedeemResult, error) {
	spaceCfg := s.spaceConfig(space)
	var result RedeemResult
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := requireActive(conn, flow); err != nil {
			return err
		}
		if _, err := fragment.Get(conn, space, req.FragmentID); err != nil {
			return err
		}
		if spaceCfg.Ceiling == 0 {
			return fmt.Errorf("%w: %s", ErrCeilingUnconfigured, space)
		}
		if err := replay.Consume(conn, req.Seed, string(flow), s.clock.Now()); err != nil {
			return err
		}

		balance, err := ledger.BalanceOf(conn, req.Party, spaceCfg.PassSeries)
		if err != nil {
			return err
		}
		if balance == 0 {
			return fmt.Errorf("%w: series %d", ledger.ErrNoPassToBurn, spaceCfg.PassSeries)
		}

		verifier, err := s.verifierFor(conn)
		if err != nil {
			return err
		}
		ok, err := verifier.Verify(digest(s.realm, req.Seed, req.Party), req.Coupon)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponRejected
		}

		if err := ledger.BurnOne(conn, req.Party, spaceCfg.PassSeries); err != nil {
			return err
		}
		tokenID, err := fragment.DrawRandom(conn, space, req.FragmentID, req.Seed, s.entropy)
		if err != nil {
			return err
		}
		if err := ledger.MintAsset(conn, string(space), tokenID, req.FragmentID, req.Party, req.Seed, s.clock.Now()); err != nil {
			return err
		}

		result = RedeemResult{Space: space, TokenID: tokenID}
		return s.appendAudit(conn, req.Party, "redeem-"+string(space), map[string]any{
			"fragment": req.FragmentID,
			"token":    tokenID,
		})
	})
	if err != nil {
		return RedeemResult{}, err
	}

	s.logger.Info("asset redeemed",
		"party", req.Party,
		"space", space,
		"fragment", req.FragmentID,
		"token", result.TokenID)
	return result, nil
}

// InventoryRequest is one inventory redemption: burn a pass of the
// series, mint its configured item bundle.
type InventoryRequest struct {
	Party    ref.Party
	SeriesID uint64
	Seed     ref.Seed
	Coupon   coupon.Signature
}

// RedeemInventory redeems one pass of a bundled series for its items.
func (s *Store) RedeemInventory(ctx context.Context, req InventoryRequest) ([]ledger.ItemAmount, error) {
	var items []ledger.ItemAmount
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := requireActive(conn, FlowInventory); err != nil {
			return err
		}
		bundle, err := bundleFor(conn, req.SeriesID)
		if err != nil {
			return err
		}
		if err := replay.Consume(conn, req.Seed, string(FlowInventory), s.clock.Now()); err != nil {
			return err
		}

		balance, err := ledger.BalanceOf(conn, req.Party, req.SeriesID)
		if err != nil {
			return err
		}
		if balance == 0 {
			return fmt.Errorf("%w: series %d", ledger.ErrNoPassToBurn, req.SeriesID)
		}

		verifier, err := s.verifierFor(conn)
		if err != nil {
			return err
		}
		ok, err := verifier.Verify(coupon.DigestInventory(s.realm, req.Seed, req.Party), req.Coupon)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponRejected
		}

		if err := ledger.BurnOne(conn, req.Party, req.SeriesID); err != nil {
			return err
		}
		if err := ledger.MintItems(conn, req.Party, bundle); err != nil {
			return err
		}

		items = bundle
		return s.appendAudit(conn, req.Party, "redeem-inventory", map[string]any{
			"series": req.SeriesID,
			"items":  uint64(len(bundle)),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory redeemed",
		"party", req.Party,
		"series", req.SeriesID,
		"items", len(items))
	return items, nil
}

// RewardRequest is one reward roll against a catalog category.
type RewardRequest struct {
	Party      ref.Party
	CategoryID uint64
	Seed       ref.Seed
	Coupon     coupon.Signature
}

// RedeemReward rolls one item from a reward category. The coupon
// itself is the entitlement; no pass burns. The seed fixes the
// outcome, so the issuer signed away the roll when it signed the
// coupon.
func (s *Store) RedeemReward(ctx context.Context, req RewardRequest) (reward.Pick, error) {
	var pick reward.Pick
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := requireActive(conn, FlowReward); err != nil {
			return err
		}
		if _, err := reward.GetCategory(conn, req.CategoryID); err != nil {
			return err
		}
		if err := replay.Consume(conn, req.Seed, string(FlowReward), s.clock.Now()); err != nil {
			return err
		}

		verifier, err := s.verifierFor(conn)
		if err != nil {
			return err
		}
		digest := coupon.DigestReward(s.realm, req.Seed, req.Party, req.CategoryID)
		ok, err := verifier.Verify(digest, req.Coupon)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponRejected
		}

		drawn, err := reward.PickItem(conn, req.CategoryID, req.Seed)
		if err != nil {
			return err
		}
		if err := ledger.MintItems(conn, req.Party, []ledger.ItemAmount{{ItemID: drawn.ItemID, Amount: 1}}); err != nil {
			return err
		}

		pick = drawn
		return s.appendAudit(conn, req.Party, "redeem-reward", map[string]any{
			"category": req.CategoryID,
			"item":     drawn.ItemID,
			"tier":     string(drawn.Tier),
		})
	})
	if err != nil {
		return reward.Pick{}, err
	}

	s.logger.Info("reward redeemed",
		"party", req.Party,
		"category", req.CategoryID,
		"item", pick.ItemID,
		"tier", pick.Tier)
	return pick, nil
}
