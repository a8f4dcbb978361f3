// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/vault"
)

func TestClaimOverpaymentRefunded(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Deposit(h.ctx, admin, alice, 25); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	result, err := h.store.ClaimPass(h.ctx, ClaimRequest{
		Party:    alice,
		SeriesID: pilotPassSeries,
		Quantity: 2,
		Paid:     25,
		Price:    10,
		Allotted: 5,
		Coupon:   h.claimCoupon(10, 5, alice),
	})
	if err != nil {
		t.Fatalf("ClaimPass: %v", err)
	}
	want := ClaimResult{Minted: 2, Owed: 20, Refund: 5}
	if result != want {
		t.Fatalf("ClaimPass = %+v, want %+v", result, want)
	}

	if got := h.balance(t, alice); got != 5 {
		t.Errorf("alice balance = %d, want 5", got)
	}
	if got := h.treasury(t); got != 20 {
		t.Errorf("treasury = %d, want 20", got)
	}
	if got := h.passBalance(t, alice, pilotPassSeries); got != 2 {
		t.Errorf("pass balance = %d, want 2", got)
	}
	if got := h.claimCount(t, alice, pilotPassSeries); got != 2 {
		t.Errorf("claim count = %d, want 2", got)
	}
}

func TestClaimRefundFailureAbortsEverything(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Deposit(h.ctx, admin, alice, 25); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	refundFault := errors.New("refund leg down")
	h.vault.creditErr = func(party ref.Party, amount uint64) error {
		if party == alice && amount == 5 {
			return refundFault
		}
		return nil
	}
	defer func() { h.vault.creditErr = nil }()

	_, err := h.store.ClaimPass(h.ctx, ClaimRequest{
		Party:    alice,
		SeriesID: pilotPassSeries,
		Quantity: 2,
		Paid:     25,
		Price:    10,
		Allotted: 5,
		Coupon:   h.claimCoupon(10, 5, alice),
	})
	if !errors.Is(err, refundFault) {
		t.Fatalf("ClaimPass error = %v, want refund fault", err)
	}

	// The transaction rolled back: payment returned, nothing minted,
	// no counter moved.
	if got := h.balance(t, alice); got != 25 {
		t.Errorf("alice balance = %d, want 25", got)
	}
	if got := h.treasury(t); got != 0 {
		t.Errorf("treasury = %d, want 0", got)
	}
	if got := h.passBalance(t, alice, pilotPassSeries); got != 0 {
		t.Errorf("pass balance = %d, want 0", got)
	}
	if got := h.claimCount(t, alice, pilotPassSeries); got != 0 {
		t.Errorf("claim count = %d, want 0", got)
	}
}

func TestClaimAllotmentSpansClaims(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Deposit(h.ctx, admin, alice, 100); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	// One coupon covers the whole allotment of five.
	sig := h.claimCoupon(1, 5, alice)
	claim := func(qty uint64) error {
		_, err := h.store.ClaimPass(h.ctx, ClaimRequest{
			Party:    alice,
			SeriesID: pilotPassSeries,
			Quantity: qty,
			Paid:     qty,
			Price:    1,
			Allotted: 5,
			Coupon:   sig,
		})
		return err
	}

	if err := claim(3); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := claim(3); !errors.Is(err, ErrAllotmentExceeded) {
		t.Fatalf("claim past allotment: %v, want ErrAllotmentExceeded", err)
	}
	if err := claim(2); err != nil {
		t.Fatalf("claim of remainder: %v", err)
	}
	if err := claim(1); !errors.Is(err, ErrAllotmentExceeded) {
		t.Fatalf("claim after exhaustion: %v, want ErrAllotmentExceeded", err)
	}
	if got := h.passBalance(t, alice, pilotPassSeries); got != 5 {
		t.Errorf("pass balance = %d, want 5", got)
	}
}

func TestClaimFreeSeries(t *testing.T) {
	h := newHarness(t)

	result, err := h.store.ClaimPass(h.ctx, ClaimRequest{
		Party:    bob,
		SeriesID: racecraftPassSeries,
		Quantity: 1,
		Paid:     0,
		Price:    0,
		Allotted: 1,
		Coupon:   h.claimCoupon(0, 1, bob),
	})
	if err != nil {
		t.Fatalf("ClaimPass: %v", err)
	}
	if result.Owed != 0 || result.Refund != 0 {
		t.Fatalf("free claim result = %+v, want zero owed and refund", result)
	}
	if got := h.treasury(t); got != 0 {
		t.Errorf("treasury = %d, want 0", got)
	}
}

func TestClaimRejections(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Deposit(h.ctx, admin, alice, 1000); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	// A tiny series to exercise the supply check.
	if _, err := h.store.RegisterSeries(h.ctx, admin, 7, "limited", 2, 0); err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}

	good := func() ClaimRequest {
		return ClaimRequest{
			Party:    alice,
			SeriesID: pilotPassSeries,
			Quantity: 1,
			Paid:     10,
			Price:    10,
			Allotted: 5,
			Coupon:   h.claimCoupon(10, 5, alice),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ClaimRequest)
		wantErr error
	}{
		{
			name:    "unknown series",
			mutate:  func(r *ClaimRequest) { r.SeriesID = 99 },
			wantErr: ledger.ErrSeriesNotFound,
		},
		{
			name:    "zero quantity",
			mutate:  func(r *ClaimRequest) { r.Quantity = 0 },
			wantErr: ErrZeroQuantity,
		},
		{
			name: "zero allotment",
			mutate: func(r *ClaimRequest) {
				r.Allotted = 0
				r.Coupon = h.claimCoupon(10, 0, alice)
			},
			wantErr: ErrZeroAllotment,
		},
		{
			name: "supply exceeded",
			mutate: func(r *ClaimRequest) {
				r.SeriesID = 7
				r.Quantity = 3
				r.Paid = 30
			},
			wantErr: ledger.ErrSeriesSupplyExceeded,
		},
		{
			name: "payment overflow",
			mutate: func(r *ClaimRequest) {
				r.Price = math.MaxUint64
				r.Quantity = 2
				r.Coupon = h.claimCoupon(math.MaxUint64, 5, alice)
			},
			wantErr: ErrPaymentOverflow,
		},
		{
			name:    "insufficient payment",
			mutate:  func(r *ClaimRequest) { r.Paid = 9 },
			wantErr: ErrInsufficientPayment,
		},
		{
			name: "coupon for other party",
			mutate: func(r *ClaimRequest) {
				r.Coupon = h.claimCoupon(10, 5, bob)
			},
			wantErr: ErrCouponRejected,
		},
		{
			name: "coupon quotes different price",
			mutate: func(r *ClaimRequest) {
				r.Coupon = h.claimCoupon(9, 5, alice)
			},
			wantErr: ErrCouponRejected,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := good()
			test.mutate(&req)
			_, err := h.store.ClaimPass(h.ctx, req)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("ClaimPass error = %v, want %v", err, test.wantErr)
			}
		})
	}

	// Nothing above should have moved state.
	if got := h.passBalance(t, alice, pilotPassSeries); got != 0 {
		t.Errorf("pass balance = %d, want 0", got)
	}
	if got := h.balance(t, alice); got != 1000 {
		t.Errorf("alice balance = %d, want 1000", got)
	}
}

func TestClaimFlowInactive(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SetFlowActive(h.ctx, admin, FlowClaim, false); err != nil {
		t.Fatalf("SetFlowActive: %v", err)
	}
	_, err := h.store.ClaimPass(h.ctx, ClaimRequest{
		Party:    alice,
		SeriesID: pilotPassSeries,
		Quantity: 1,
		Allotted: 1,
		Coupon:   h.claimCoupon(0, 1, alice),
	})
	if !errors.Is(err, ErrFlowInactive) {
		t.Fatalf("ClaimPass error = %v, want ErrFlowInactive", err)
	}
}

func TestClaimFrozenAccount(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Deposit(h.ctx, admin, alice, 50); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := h.store.SetAccountFrozen(h.ctx, admin, alice, true); err != nil {
		t.Fatalf("SetAccountFrozen: %v", err)
	}
	_, err := h.store.ClaimPass(h.ctx, ClaimRequest{
		Party:    alice,
		SeriesID: pilotPassSeries,
		Quantity: 1,
		Paid:     10,
		Price:    10,
		Allotted: 5,
		Coupon:   h.claimCoupon(10, 5, alice),
	})
	if !errors.Is(err, vault.ErrAccountFrozen) {
		t.Fatalf("ClaimPass error = %v, want ErrAccountFrozen", err)
	}
	if got := h.passBalance(t, alice, pilotPassSeries); got != 0 {
		t.Errorf("pass balance = %d, want 0", got)
	}
}

func TestClaimSignerUnconfigured(t *testing.T) {
	ctx := context.Background()
	issuer, err := coupon.GenerateIssuer(cryptorand.Reader)
	if err != nil {
		t.Fatalf("GenerateIssuer: %v", err)
	}
	realm := coupon.Realm{Address: admin, Network: 1}

	// A store with no trusted signer installed.
	store, err := Open(ctx, Config{
		Path:      "file::memory:?mode=memory",
		PoolSize:  1,
		Realm:     realm,
		Pilot:     SpaceConfig{Ceiling: 100, PassSeries: pilotPassSeries},
		Racecraft: SpaceConfig{Ceiling: 100, PassSeries: racecraftPassSeries},
		Admin:     admin,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if err := store.SetFlowActive(ctx, admin, FlowClaim, true); err != nil {
		t.Fatalf("SetFlowActive: %v", err)
	}
	if _, err := store.RegisterSeries(ctx, admin, pilotPassSeries, "pass", 10, 0); err != nil {
		t.Fatalf("RegisterSeries: %v", err)
	}

	_, err = store.ClaimPass(ctx, ClaimRequest{
		Party:    alice,
		SeriesID: pilotPassSeries,
		Quantity: 1,
		Allotted: 1,
		Coupon:   issuer.Sign(coupon.DigestMintPass(realm, 0, 1, alice)),
	})
	if !errors.Is(err, ErrSignerUnconfigured) {
		t.Fatalf("ClaimPass error = %v, want ErrSignerUnconfigured", err)
	}
}

func TestClaimManyParties(t *testing.T) {
	h := newHarness(t)

	for i := 1; i <= 20; i++ {
		party := mustParty(fmt.Sprintf("0x%040x", i))
		_, err := h.store.ClaimPass(h.ctx, ClaimRequest{
			Party:    party,
			SeriesID: pilotPassSeries,
			Quantity: 2,
			Allotted: 2,
			Coupon:   h.claimCoupon(0, 2, party),
		})
		if err != nil {
			t.Fatalf("claim for party %d: %v", i, err)
		}
	}

	status, err := h.store.Status(h.ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	found := false
	for _, series := range status.Series {
		if series.ID != pilotPassSeries {
			continue
		}
		found = true
		if series.MintedPublic != 40 {
			t.Fatalf("minted public = %d, want 40", series.MintedPublic)
		}
	}
	if !found {
		t.Fatalf("series %d missing from status", pilotPassSeries)
	}
}
