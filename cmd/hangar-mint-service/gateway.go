// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// Gateway actions submit flows on behalf of end parties. The token
// identifies the gateway deployment, not the party: the party rides
// in the request, bound into the coupon digest the issuer signed, and
// seeded flows are additionally replay-guarded. A gateway can
// therefore only submit what the issuer already authorized.

type claimRequest struct {
	Party    ref.Party        `cbor:"party"`
	SeriesID uint64           `cbor:"series_id"`
	Quantity uint64           `cbor:"quantity"`
	Paid     uint64           `cbor:"paid"`
	Price    uint64           `cbor:"price"`
	Allotted uint64           `cbor:"allotted"`
	Coupon   coupon.Signature `cbor:"coupon"`
}

type claimResponse struct {
	Minted uint64 `cbor:"minted"`
	Owed   uint64 `cbor:"owed"`
	Refund uint64 `cbor:"refund"`
}

func (m *mintService) handleClaimPass(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request claimRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	result, err := m.store.ClaimPass(ctx, redemption.ClaimRequest{
		Party:    request.Party,
		SeriesID: request.SeriesID,
		Quantity: request.Quantity,
		Paid:     request.Paid,
		Price:    request.Price,
		Allotted: request.Allotted,
		Coupon:   request.Coupon,
	})
	if err != nil {
		return nil, err
	}
	return claimResponse{
		Minted: result.Minted,
		Owed:   result.Owed,
		Refund: result.Refund,
	}, nil
}

type redeemRequest struct {
	Party      ref.Party        `cbor:"party"`
	FragmentID uint64           `cbor:"fragment_id"`
	Seed       ref.Seed         `cbor:"seed"`
	Coupon     coupon.Signature `cbor:"coupon"`
}

type redeemResponse struct {
	Space   string `cbor:"space"`
	TokenID uint64 `cbor:"token_id"`
}

func (m *mintService) handleRedeemPilot(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	return m.handleRedeemAsset(ctx, raw, m.store.RedeemPilot)
}

func (m *mintService) handleRedeemRacecraft(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	return m.handleRedeemAsset(ctx, raw, m.store.RedeemRacecraft)
}

func (m *mintService) handleRedeemAsset(ctx context.Context, raw []byte, redeem func(context.Context, redemption.RedeemRequest) (redemption.RedeemResult, error)) (any, error) {
	var request redeemRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	result, err := redeem(ctx, redemption.RedeemRequest{
		Party:      request.Party,
		FragmentID: request.FragmentID,
		Seed:       request.Seed,
		Coupon:     request.Coupon,
	})
	if err != nil {
		return nil, err
	}
	return redeemResponse{
		Space:   string(result.Space),
		TokenID: result.TokenID,
	}, nil
}

type inventoryRequest struct {
	Party    ref.Party        `cbor:"party"`
	SeriesID uint64           `cbor:"series_id"`
	Seed     ref.Seed         `cbor:"seed"`
	Coupon   coupon.Signature `cbor:"coupon"`
}

type inventoryResponse struct {
	Items []itemAmount `cbor:"items"`
}

func (m *mintService) handleRedeemInventory(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request inventoryRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	items, err := m.store.RedeemInventory(ctx, redemption.InventoryRequest{
		Party:    request.Party,
		SeriesID: request.SeriesID,
		Seed:     request.Seed,
		Coupon:   request.Coupon,
	})
	if err != nil {
		return nil, err
	}
	response := inventoryResponse{Items: make([]itemAmount, 0, len(items))}
	for _, item := range items {
		response.Items = append(response.Items, itemAmount{Item: item.ItemID, Amount: item.Amount})
	}
	return response, nil
}

type rewardRedeemRequest struct {
	Party      ref.Party        `cbor:"party"`
	CategoryID uint64           `cbor:"category_id"`
	Seed       ref.Seed         `cbor:"seed"`
	Coupon     coupon.Signature `cbor:"coupon"`
}

type rewardRedeemResponse struct {
	Slot int    `cbor:"slot"`
	Item uint64 `cbor:"item"`
	Tier string `cbor:"tier"`
}

func (m *mintService) handleRedeemReward(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request rewardRedeemRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	pick, err := m.store.RedeemReward(ctx, redemption.RewardRequest{
		Party:      request.Party,
		CategoryID: request.CategoryID,
		Seed:       request.Seed,
		Coupon:     request.Coupon,
	})
	if err != nil {
		return nil, err
	}
	return rewardRedeemResponse{
		Slot: pick.Slot,
		Item: pick.ItemID,
		Tier: string(pick.Tier),
	}, nil
}
