// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"
	"math"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// ClaimRequest is one pass claim. Price and Allotted are quoted by
// the coupon issuer and bound into the digest; Quantity is the
// claimer's choice within the allotment and is deliberately not part
// of the digest, so one coupon covers a party's whole allotment
// across multiple claims.
type ClaimRequest struct {
	Party    ref.Party
	SeriesID uint64
	Quantity uint64

	// Paid is the credit tendered with the claim. Anything beyond
	// price times quantity is refunded.
	Paid uint64

	Price    uint64
	Allotted uint64
	Coupon   coupon.Signature
}

// ClaimResult reports a committed claim.
type ClaimResult struct {
	Minted uint64
	Owed   uint64
	Refund uint64
}

// ClaimPass sells passes from a series' public allocation.
//
// Check order: flow switch, series existence, series supply
// configured, quantity and allotment non-zero, public allocation
// headroom, payment covers price times quantity, per-party allotment,
// coupon verification. Only then: debit the tendered amount, credit
// the treasury what is owed, record the claims, mint, and refund the
// difference. A refund failure aborts the whole claim; no pass is
// minted and no counter moves.
func (s *Store) ClaimPass(ctx context.Context, req ClaimRequest) (ClaimResult, error) {
	var result ClaimResult
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := requireActive(conn, FlowClaim); err != nil {
			return err
		}

		series, err := ledger.GetSeries(conn, req.SeriesID)
		if err != nil {
			return err
		}
		if series.MaxSupply == 0 {
			return fmt.Errorf("%w: series %d", ErrSeriesUnconfigured, req.SeriesID)
		}
		if req.Quantity == 0 {
			return ErrZeroQuantity
		}
		if req.Allotted == 0 {
			return ErrZeroAllotment
		}
		if req.Quantity > series.PublicRemaining() {
			return fmt.Errorf("%w: series %d has %d public passes left",
				ledger.ErrSeriesSupplyExceeded, req.SeriesID, series.PublicRemaining())
		}

		if req.Price != 0 && req.Quantity > math.MaxUint64/req.Price {
			return ErrPaymentOverflow
		}
		owed := req.Price * req.Quantity
		if req.Paid < owed {
			return fmt.Errorf("%w: paid %d, owed %d", ErrInsufficientPayment, req.Paid, owed)
		}

		claimed, err := ledger.ClaimCount(conn, req.SeriesID, req.Party)
		if err != nil {
			return err
		}
		if claimed >= req.Allotted || req.Quantity > req.Allotted-claimed {
			return fmt.Errorf("%w: claimed %d of %d, requested %d",
				ErrAllotmentExceeded, claimed, req.Allotted, req.Quantity)
		}

		verifier, err := s.verifierFor(conn)
		if err != nil {
			return err
		}
		digest := coupon.DigestMintPass(s.realm, req.Price, req.Allotted, req.Party)
		ok, err := verifier.Verify(digest, req.Coupon)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponRejected
		}

		if err := s.vault.Debit(conn, req.Party, req.Paid); err != nil {
			return fmt.Errorf("collecting payment: %w", err)
		}
		if owed > 0 {
			if err := s.vault.TreasuryAdd(conn, owed); err != nil {
				return fmt.Errorf("crediting treasury: %w", err)
			}
		}
		if err := ledger.AddClaims(conn, req.SeriesID, req.Party, req.Quantity); err != nil {
			return err
		}
		if err := ledger.MintPublic(conn, req.Party, req.SeriesID, req.Quantity); err != nil {
			return err
		}

		refund := req.Paid - owed
		if refund > 0 {
			if err := s.vault.Credit(conn, req.Party, refund); err != nil {
				return fmt.Errorf("refunding overpayment: %w", err)
			}
		}

		result = ClaimResult{Minted: req.Quantity, Owed: owed, Refund: refund}
		return s.appendAudit(conn, req.Party, "claim-pass", map[string]any{
			"series": req.SeriesID,
			"qty":    req.Quantity,
			"owed":   owed,
			"refund": refund,
		})
	})
	if err != nil {
		return ClaimResult{}, err
	}

	s.logger.Info("pass claim",
		"party", req.Party,
		"series", req.SeriesID,
		"qty", result.Minted,
		"owed", result.Owed,
		"refund", result.Refund)
	return result, nil
}
