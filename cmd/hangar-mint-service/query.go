// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/reward"
)

// fragmentInfo is the wire form of one fragment.
type fragmentInfo struct {
	Space          string `cbor:"space"`
	ID             uint64 `cbor:"id"`
	Label          string `cbor:"label,omitempty"`
	FirstID        uint64 `cbor:"first_id"`
	Supply         uint64 `cbor:"supply"`
	ReservedSize   uint64 `cbor:"reserved_size"`
	ReservedIssued uint64 `cbor:"reserved_issued"`
	PublicIssued   uint64 `cbor:"public_issued"`
	Locked         bool   `cbor:"locked"`
}

func fragmentInfoFrom(f fragment.Fragment) fragmentInfo {
	return fragmentInfo{
		Space:          string(f.Space),
		ID:             f.ID,
		Label:          f.Label,
		FirstID:        f.FirstID,
		Supply:         f.Supply,
		ReservedSize:   f.ReservedSize,
		ReservedIssued: f.ReservedIssued,
		PublicIssued:   f.PublicIssued,
		Locked:         f.Locked,
	}
}

// seriesInfo is the wire form of one pass series.
type seriesInfo struct {
	ID             uint64 `cbor:"id"`
	Label          string `cbor:"label,omitempty"`
	MaxSupply      uint64 `cbor:"max_supply"`
	ReservedSize   uint64 `cbor:"reserved_size"`
	MintedPublic   uint64 `cbor:"minted_public"`
	MintedReserved uint64 `cbor:"minted_reserved"`
}

func seriesInfoFrom(s ledger.Series) seriesInfo {
	return seriesInfo{
		ID:             s.ID,
		Label:          s.Label,
		MaxSupply:      s.MaxSupply,
		ReservedSize:   s.ReservedSize,
		MintedPublic:   s.MintedPublic,
		MintedReserved: s.MintedReserved,
	}
}

// categoryInfo is the wire form of one reward category.
type categoryInfo struct {
	ID      uint64   `cbor:"id"`
	Label   string   `cbor:"label,omitempty"`
	Items   []uint64 `cbor:"items"`
	Weights weights  `cbor:"weights"`
}

type weights struct {
	Common uint64 `cbor:"common"`
	Mid    uint64 `cbor:"mid"`
	Rare   uint64 `cbor:"rare"`
}

func categoryInfoFrom(c reward.Category) categoryInfo {
	return categoryInfo{
		ID:    c.ID,
		Label: c.Label,
		Items: c.Items[:],
		Weights: weights{
			Common: c.Weights.Common,
			Mid:    c.Weights.Mid,
			Rare:   c.Weights.Rare,
		},
	}
}

// itemAmount is one fungible item grant line.
type itemAmount struct {
	Item   uint64 `cbor:"item"`
	Amount uint64 `cbor:"amount"`
}

type fragmentListRequest struct {
	Space string `cbor:"space"`
}

type fragmentListResponse struct {
	Fragments []fragmentInfo `cbor:"fragments"`
}

func (m *mintService) handleFragmentList(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request fragmentListRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	space := fragment.Space(request.Space)
	if !space.Valid() {
		return nil, fmt.Errorf("unknown space %q", request.Space)
	}

	fragments, err := m.store.Fragments(ctx, space)
	if err != nil {
		return nil, err
	}
	response := fragmentListResponse{Fragments: make([]fragmentInfo, 0, len(fragments))}
	for _, f := range fragments {
		response.Fragments = append(response.Fragments, fragmentInfoFrom(f))
	}
	return response, nil
}

type seriesListResponse struct {
	Series []seriesInfo `cbor:"series"`
}

func (m *mintService) handleSeriesList(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	series, err := m.store.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	response := seriesListResponse{Series: make([]seriesInfo, 0, len(series))}
	for _, s := range series {
		response.Series = append(response.Series, seriesInfoFrom(s))
	}
	return response, nil
}

type rewardListResponse struct {
	Categories []categoryInfo `cbor:"categories"`
}

func (m *mintService) handleRewardList(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	categories, err := m.store.RewardCategories(ctx)
	if err != nil {
		return nil, err
	}
	response := rewardListResponse{Categories: make([]categoryInfo, 0, len(categories))}
	for _, c := range categories {
		response.Categories = append(response.Categories, categoryInfoFrom(c))
	}
	return response, nil
}

type bundleShowRequest struct {
	SeriesID uint64 `cbor:"series_id"`
}

type bundleShowResponse struct {
	SeriesID uint64       `cbor:"series_id"`
	Items    []itemAmount `cbor:"items"`
}

func (m *mintService) handleBundleShow(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request bundleShowRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	bundle, err := m.store.ItemBundle(ctx, request.SeriesID)
	if err != nil {
		return nil, err
	}
	response := bundleShowResponse{
		SeriesID: request.SeriesID,
		Items:    make([]itemAmount, 0, len(bundle)),
	}
	for _, item := range bundle {
		response.Items = append(response.Items, itemAmount{Item: item.ItemID, Amount: item.Amount})
	}
	return response, nil
}
