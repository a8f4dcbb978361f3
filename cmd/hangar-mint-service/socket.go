// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/service"
)

// mintService is the state shared by every socket handler.
type mintService struct {
	store     *redemption.Store
	clock     clock.Clock
	windows   []window
	startedAt time.Time
	logger    *slog.Logger
}

// registerActions registers the socket surface.
//
// Three tiers: ping is unauthenticated liveness; read-only queries
// accept any valid operator token; claims and redemptions run under
// the gateway scope; everything that changes configuration or moves
// funds requires the admin scope. The scope gates the action class
// only — mutating handlers name the token's party as the acting
// party, and the store checks that party against its role grants.
func (m *mintService) registerActions(server *service.SocketServer) {
	server.Handle("ping", m.handlePing)

	server.HandleAuth("status", "", m.handleStatus)
	server.HandleAuth("fragment-list", "", m.handleFragmentList)
	server.HandleAuth("series-list", "", m.handleSeriesList)
	server.HandleAuth("reward-list", "", m.handleRewardList)
	server.HandleAuth("bundle-show", "", m.handleBundleShow)

	server.HandleAuth("claim-pass", operator.ScopeGateway, m.handleClaimPass)
	server.HandleAuth("redeem-pilot", operator.ScopeGateway, m.handleRedeemPilot)
	server.HandleAuth("redeem-racecraft", operator.ScopeGateway, m.handleRedeemRacecraft)
	server.HandleAuth("redeem-inventory", operator.ScopeGateway, m.handleRedeemInventory)
	server.HandleAuth("redeem-reward", operator.ScopeGateway, m.handleRedeemReward)

	server.HandleAuth("fragment-create-paired", operator.ScopeAdmin, m.handleFragmentCreatePaired)
	server.HandleAuth("fragment-lock", operator.ScopeAdmin, m.handleFragmentLock)
	server.HandleAuth("fragment-label", operator.ScopeAdmin, m.handleFragmentLabel)
	server.HandleAuth("series-register", operator.ScopeAdmin, m.handleSeriesRegister)
	server.HandleAuth("airdrop", operator.ScopeAdmin, m.handleAirdrop)
	server.HandleAuth("airdrop-reserved", operator.ScopeAdmin, m.handleAirdropReserved)
	server.HandleAuth("flow-set", operator.ScopeAdmin, m.handleFlowSet)
	server.HandleAuth("emergency-stop", operator.ScopeAdmin, m.handleEmergencyStop)
	server.HandleAuth("signer-rotate", operator.ScopeAdmin, m.handleSignerRotate)
	server.HandleAuth("reward-set", operator.ScopeAdmin, m.handleRewardSet)
	server.HandleAuth("reward-remove", operator.ScopeAdmin, m.handleRewardRemove)
	server.HandleAuth("bundle-set", operator.ScopeAdmin, m.handleBundleSet)
	server.HandleAuth("role-grant", operator.ScopeAdmin, m.handleRoleGrant)
	server.HandleAuth("role-revoke", operator.ScopeAdmin, m.handleRoleRevoke)
	server.HandleAuth("vault-deposit", operator.ScopeAdmin, m.handleVaultDeposit)
	server.HandleAuth("vault-freeze", operator.ScopeAdmin, m.handleVaultFreeze)
	server.HandleAuth("withdraw", operator.ScopeAdmin, m.handleWithdraw)
	server.HandleAuth("audit", operator.ScopeAdmin, m.handleAudit)
	server.HandleAuth("plan-apply", operator.ScopeAdmin, m.handlePlanApply)

	server.HandleAuthStream("export", operator.ScopeAdmin, m.handleExport)
}

// pingResponse is the response to the unauthenticated "ping" action.
// Liveness only; everything else about the drop requires a token.
type pingResponse struct {
	UptimeSeconds float64 `cbor:"uptime_seconds"`
}

func (m *mintService) handlePing(ctx context.Context, raw []byte) (any, error) {
	uptime := m.clock.Now().Sub(m.startedAt)
	return pingResponse{
		UptimeSeconds: uptime.Seconds(),
	}, nil
}

// statusResponse is one consistent snapshot of the drop.
type statusResponse struct {
	At            int64        `cbor:"at"`
	UptimeSeconds float64      `cbor:"uptime_seconds"`
	Flows         []flowInfo   `cbor:"flows"`
	Signer        string       `cbor:"signer,omitempty"`
	Treasury      uint64       `cbor:"treasury"`
	Series        []seriesInfo `cbor:"series,omitempty"`
	Spaces        []spaceInfo  `cbor:"spaces"`
	SeedsConsumed uint64       `cbor:"seeds_consumed"`
	Windows       []windowInfo `cbor:"windows,omitempty"`
}

type flowInfo struct {
	Flow   string `cbor:"flow"`
	Active bool   `cbor:"active"`
}

type spaceInfo struct {
	Space     string         `cbor:"space"`
	Ceiling   uint64         `cbor:"ceiling"`
	Fragments []fragmentInfo `cbor:"fragments,omitempty"`
	Assets    uint64         `cbor:"assets"`
}

// windowInfo reports one configured sale window and its next
// boundaries. A zero next time means the expression has no upcoming
// occurrence, or the window lacks that leg.
type windowInfo struct {
	Flow      string `cbor:"flow"`
	Open      string `cbor:"open,omitempty"`
	Close     string `cbor:"close,omitempty"`
	NextOpen  int64  `cbor:"next_open,omitempty"`
	NextClose int64  `cbor:"next_close,omitempty"`
}

func (m *mintService) handleStatus(ctx context.Context, token *operator.Token, raw []byte) (any, error) {
	status, err := m.store.Status(ctx)
	if err != nil {
		return nil, err
	}

	response := statusResponse{
		At:            status.At.Unix(),
		UptimeSeconds: m.clock.Now().Sub(m.startedAt).Seconds(),
		Treasury:      status.Treasury,
		SeedsConsumed: status.SeedsConsumed,
	}
	if !status.Signer.IsZero() {
		response.Signer = status.Signer.String()
	}
	for _, flow := range redemption.Flows() {
		response.Flows = append(response.Flows, flowInfo{
			Flow:   string(flow),
			Active: status.Flows[flow],
		})
	}
	for _, series := range status.Series {
		response.Series = append(response.Series, seriesInfoFrom(series))
	}
	for _, space := range status.Spaces {
		info := spaceInfo{
			Space:   string(space.Space),
			Ceiling: space.Ceiling,
			Assets:  space.Assets,
		}
		for _, frag := range space.Fragments {
			info.Fragments = append(info.Fragments, fragmentInfoFrom(frag))
		}
		response.Spaces = append(response.Spaces, info)
	}

	now := m.clock.Now()
	for _, w := range m.windows {
		info := windowInfo{
			Flow:  string(w.flow),
			Open:  w.openExpr,
			Close: w.closeExpr,
		}
		if w.open != nil {
			if next, err := w.open.Next(now); err == nil {
				info.NextOpen = next.Unix()
			}
		}
		if w.close != nil {
			if next, err := w.close.Next(now); err == nil {
				info.NextClose = next.Unix()
			}
		}
		response.Windows = append(response.Windows, info)
	}

	return response, nil
}
