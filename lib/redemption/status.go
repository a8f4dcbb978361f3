// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/replay"
)

// SpaceStatus summarizes one identifier space.
type SpaceStatus struct {
	Space     fragment.Space
	Ceiling   uint64
	Fragments []fragment.Fragment
	Assets    uint64
}

// Status is a consistent snapshot of the drop: flow switches, signer,
// treasury, series, spaces, and replay-guard size, all read in one
// transaction.
type Status struct {
	At            time.Time
	Flows         map[Flow]bool
	Signer        ref.Party
	Treasury      uint64
	Series        []ledger.Series
	Spaces        []SpaceStatus
	SeedsConsumed uint64
}

// Fragments lists a space's fragments in ID order.
func (s *Store) Fragments(ctx context.Context, space fragment.Space) ([]fragment.Fragment, error) {
	var fragments []fragment.Fragment
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		list, err := fragment.List(conn, space)
		if err != nil {
			return err
		}
		fragments = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}

// ListSeries lists every registered pass series in ID order.
func (s *Store) ListSeries(ctx context.Context) ([]ledger.Series, error) {
	var series []ledger.Series
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		list, err := ledger.ListSeries(conn)
		if err != nil {
			return err
		}
		series = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// Status assembles the read-only snapshot.
func (s *Store) Status(ctx context.Context) (Status, error) {
	status := Status{
		At:    s.clock.Now(),
		Flows: make(map[Flow]bool, len(Flows())),
	}
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		for _, flow := range Flows() {
			active, err := flowActive(conn, flow)
			if err != nil {
				return err
			}
			status.Flows[flow] = active
		}

		signer, err := signerParty(conn)
		switch {
		case err == nil:
			status.Signer = signer
		case errors.Is(err, ErrSignerUnconfigured):
			// Zero signer in the snapshot.
		default:
			return err
		}

		treasury, err := s.vault.TreasuryBalance(conn)
		if err != nil {
			return err
		}
		status.Treasury = treasury

		series, err := ledger.ListSeries(conn)
		if err != nil {
			return err
		}
		status.Series = series

		for _, space := range []fragment.Space{fragment.SpacePilot, fragment.SpaceRacecraft} {
			fragments, err := fragment.List(conn, space)
			if err != nil {
				return err
			}
			assets, err := ledger.CountAssets(conn, string(space))
			if err != nil {
				return err
			}
			status.Spaces = append(status.Spaces, SpaceStatus{
				Space:     space,
				Ceiling:   s.spaceConfig(space).Ceiling,
				Fragments: fragments,
				Assets:    assets,
			})
		}

		seeds, err := replay.Count(conn)
		if err != nil {
			return err
		}
		status.SeedsConsumed = seeds
		return nil
	})
	if err != nil {
		return Status{}, fmt.Errorf("assembling status: %w", err)
	}
	return status, nil
}
