// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hangar-foundation/hangar/lib/authorization"
	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/dropplan"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/reward"
)

// Admin actions act as the token's party. The store checks that
// party against its role grants, so admin-scope tokens only reach as
// far as the roles their party actually holds.

type fragmentCreatePairedRequest struct {
	ID                uint64 `cbor:"id"`
	Supply            uint64 `cbor:"supply"`
	FirstID           uint64 `cbor:"first_id"`
	ReservedPilots    uint64 `cbor:"reserved_pilots"`
	ReservedRacecraft uint64 `cbor:"reserved_racecraft"`
	Label             string `cbor:"label,omitempty"`
}

type fragmentCreatePairedResponse struct {
	Pilot     fragmentInfo `cbor:"pilot"`
	Racecraft fragmentInfo `cbor:"racecraft"`
}

func (m *mintService) handleFragmentCreatePaired(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request fragmentCreatePairedRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	pilot, racecraft, err := m.store.CreatePairedFragments(ctx, token.Party, redemption.PairedSpec{
		ID:                request.ID,
		Supply:            request.Supply,
		FirstID:           request.FirstID,
		ReservedPilots:    request.ReservedPilots,
		ReservedRacecraft: request.ReservedRacecraft,
		Label:             request.Label,
	})
	if err != nil {
		return nil, err
	}
	return fragmentCreatePairedResponse{
		Pilot:     fragmentInfoFrom(pilot),
		Racecraft: fragmentInfoFrom(racecraft),
	}, nil
}

type fragmentLockRequest struct {
	Space string `cbor:"space"`
	ID    uint64 `cbor:"id"`
}

func (m *mintService) handleFragmentLock(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request fragmentLockRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	space := fragment.Space(request.Space)
	if !space.Valid() {
		return nil, fmt.Errorf("unknown space %q", request.Space)
	}
	return nil, m.store.LockFragment(ctx, token.Party, space, request.ID)
}

type fragmentLabelRequest struct {
	Space string `cbor:"space"`
	ID    uint64 `cbor:"id"`
	Label string `cbor:"label"`
}

func (m *mintService) handleFragmentLabel(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request fragmentLabelRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	space := fragment.Space(request.Space)
	if !space.Valid() {
		return nil, fmt.Errorf("unknown space %q", request.Space)
	}
	return nil, m.store.SetFragmentLabel(ctx, token.Party, space, request.ID, request.Label)
}

type seriesRegisterRequest struct {
	ID           uint64 `cbor:"id"`
	Label        string `cbor:"label,omitempty"`
	MaxSupply    uint64 `cbor:"max_supply"`
	ReservedSize uint64 `cbor:"reserved_size"`
}

func (m *mintService) handleSeriesRegister(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request seriesRegisterRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	series, err := m.store.RegisterSeries(ctx, token.Party, request.ID, request.Label, request.MaxSupply, request.ReservedSize)
	if err != nil {
		return nil, err
	}
	return seriesInfoFrom(series), nil
}

type airdropRequest struct {
	SeriesID uint64      `cbor:"series_id"`
	Pool     string      `cbor:"pool"`
	Grants   []passGrant `cbor:"grants"`
}

type passGrant struct {
	To       ref.Party `cbor:"to"`
	Quantity uint64    `cbor:"quantity"`
}

type airdropResponse struct {
	Recipients int    `cbor:"recipients"`
	Passes     uint64 `cbor:"passes"`
}

func (m *mintService) handleAirdrop(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request airdropRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	grants := make([]redemption.PassGrant, len(request.Grants))
	for i, grant := range request.Grants {
		grants[i] = redemption.PassGrant{To: grant.To, Quantity: grant.Quantity}
	}
	err := m.store.Airdrop(ctx, token.Party, request.SeriesID, redemption.Allocation(request.Pool), grants)
	if err != nil {
		return nil, err
	}

	response := airdropResponse{Recipients: len(grants)}
	for _, grant := range grants {
		response.Passes += grant.Quantity
	}
	return response, nil
}

type airdropReservedRequest struct {
	Space      string    `cbor:"space"`
	FragmentID uint64    `cbor:"fragment_id"`
	TokenID    uint64    `cbor:"token_id"`
	Recipient  ref.Party `cbor:"recipient"`
}

func (m *mintService) handleAirdropReserved(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request airdropReservedRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	space := fragment.Space(request.Space)
	if !space.Valid() {
		return nil, fmt.Errorf("unknown space %q", request.Space)
	}
	return nil, m.store.AirdropReservedAsset(ctx, token.Party, space, request.FragmentID, request.TokenID, request.Recipient)
}

type flowSetRequest struct {
	Flow   string `cbor:"flow"`
	Active bool   `cbor:"active"`
}

func (m *mintService) handleFlowSet(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request flowSetRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return nil, m.store.SetFlowActive(ctx, token.Party, redemption.Flow(request.Flow), request.Active)
}

func (m *mintService) handleEmergencyStop(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	return nil, m.store.EmergencyStop(ctx, token.Party)
}

type signerRotateRequest struct {
	Signer ref.Party `cbor:"signer"`
}

func (m *mintService) handleSignerRotate(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request signerRotateRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return nil, m.store.SetSigner(ctx, token.Party, request.Signer)
}

type rewardSetRequest struct {
	ID      uint64   `cbor:"id"`
	Label   string   `cbor:"label,omitempty"`
	Items   []uint64 `cbor:"items"`
	Weights *weights `cbor:"weights,omitempty"`
}

func (m *mintService) handleRewardSet(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request rewardSetRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	if len(request.Items) != reward.SlotCount {
		return nil, fmt.Errorf("category needs exactly %d items, got %d", reward.SlotCount, len(request.Items))
	}

	category := reward.Category{
		ID:      request.ID,
		Label:   request.Label,
		Weights: reward.DefaultWeights,
	}
	copy(category.Items[:], request.Items)
	if request.Weights != nil {
		category.Weights = reward.Weights{
			Common: request.Weights.Common,
			Mid:    request.Weights.Mid,
			Rare:   request.Weights.Rare,
		}
	}
	return nil, m.store.SetRewardCategory(ctx, token.Party, category)
}

type rewardRemoveRequest struct {
	ID uint64 `cbor:"id"`
}

func (m *mintService) handleRewardRemove(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request rewardRemoveRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return nil, m.store.RemoveRewardCategory(ctx, token.Party, request.ID)
}

type bundleSetRequest struct {
	SeriesID uint64       `cbor:"series_id"`
	Items    []itemAmount `cbor:"items"`
}

func (m *mintService) handleBundleSet(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request bundleSetRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	items := make([]ledger.ItemAmount, len(request.Items))
	for i, item := range request.Items {
		items[i] = ledger.ItemAmount{ItemID: item.Item, Amount: item.Amount}
	}
	return nil, m.store.SetItemBundle(ctx, token.Party, request.SeriesID, items)
}

type roleGrantRequest struct {
	Party ref.Party `cbor:"party"`
	Role  string    `cbor:"role"`

	// ExpiresAt is a Unix timestamp; zero grants without expiry.
	ExpiresAt int64 `cbor:"expires_at,omitempty"`
}

func (m *mintService) handleRoleGrant(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request roleGrantRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	role, err := authorization.ParseRole(request.Role)
	if err != nil {
		return nil, err
	}
	var expiresAt time.Time
	if request.ExpiresAt != 0 {
		expiresAt = time.Unix(request.ExpiresAt, 0).UTC()
	}
	return nil, m.store.GrantRole(ctx, token.Party, request.Party, role, expiresAt)
}

type roleRevokeRequest struct {
	Party ref.Party `cbor:"party"`
	Role  string    `cbor:"role"`
}

func (m *mintService) handleRoleRevoke(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request roleRevokeRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	role, err := authorization.ParseRole(request.Role)
	if err != nil {
		return nil, err
	}
	return nil, m.store.RevokeRole(ctx, token.Party, request.Party, role)
}

type vaultDepositRequest struct {
	Party  ref.Party `cbor:"party"`
	Amount uint64    `cbor:"amount"`
}

func (m *mintService) handleVaultDeposit(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request vaultDepositRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return nil, m.store.Deposit(ctx, token.Party, request.Party, request.Amount)
}

type vaultFreezeRequest struct {
	Party  ref.Party `cbor:"party"`
	Frozen bool      `cbor:"frozen"`
}

func (m *mintService) handleVaultFreeze(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request vaultFreezeRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return nil, m.store.SetAccountFrozen(ctx, token.Party, request.Party, request.Frozen)
}

type withdrawRequest struct {
	To     ref.Party `cbor:"to"`
	Amount uint64    `cbor:"amount"`
}

func (m *mintService) handleWithdraw(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request withdrawRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return nil, m.store.Withdraw(ctx, token.Party, request.To, request.Amount)
}

type auditRequest struct {
	// Limit caps the number of records returned, newest first. Zero
	// returns everything.
	Limit uint64 `cbor:"limit,omitempty"`
}

type auditResponse struct {
	Records []auditRecord `cbor:"records"`
}

type auditRecord struct {
	Seq    uint64           `cbor:"seq"`
	At     int64            `cbor:"at"`
	Actor  string           `cbor:"actor"`
	Event  string           `cbor:"event"`
	Detail codec.RawMessage `cbor:"detail,omitempty"`
}

func (m *mintService) handleAudit(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request auditRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	records, err := m.store.Audit(ctx, request.Limit)
	if err != nil {
		return nil, err
	}
	response := auditResponse{Records: make([]auditRecord, 0, len(records))}
	for _, record := range records {
		response.Records = append(response.Records, auditRecord{
			Seq:    record.Seq,
			At:     record.At.Unix(),
			Actor:  record.Actor.String(),
			Event:  record.Event,
			Detail: record.Detail,
		})
	}
	return response, nil
}

type planApplyRequest struct {
	// Plan is a JSONC drop plan document.
	Plan []byte `cbor:"plan"`
}

type planApplyResponse struct {
	Label      string `cbor:"label,omitempty"`
	Series     int    `cbor:"series"`
	Fragments  int    `cbor:"fragments"`
	Bundles    int    `cbor:"bundles"`
	Categories int    `cbor:"categories"`

	// WindowsIgnored counts the plan's windows, which are service
	// configuration and not applied here.
	WindowsIgnored int `cbor:"windows_ignored,omitempty"`
}

func (m *mintService) handlePlanApply(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	var request planApplyRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	if len(request.Plan) == 0 {
		return nil, fmt.Errorf("missing required field: plan")
	}

	plan, err := dropplan.Parse(request.Plan)
	if err != nil {
		return nil, err
	}
	if err := dropplan.Apply(ctx, m.store, token.Party, plan); err != nil {
		return nil, err
	}

	m.logger.Info("drop plan applied",
		"label", plan.Label,
		"series", len(plan.Series),
		"fragments", len(plan.Fragments),
		"actor", token.Party,
	)
	return planApplyResponse{
		Label:          plan.Label,
		Series:         len(plan.Series),
		Fragments:      len(plan.Fragments),
		Bundles:        len(plan.Bundles),
		Categories:     len(plan.Categories),
		WindowsIgnored: len(plan.Windows),
	}, nil
}
