// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// bundleFor loads the item bundle configured for a series, ordered by
// item ID. An absent bundle fails with ErrNoBundle.
func bundleFor(conn *sqlite.Conn, seriesID uint64) ([]ledger.ItemAmount, error) {
	var bundle []ledger.ItemAmount
	err := sqlitex.Execute(conn, `
		SELECT item_id, amount FROM item_bundles
		WHERE series_id = ? ORDER BY item_id
	`, &sqlitex.ExecOptions{
		Args: []any{int64(seriesID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			bundle = append(bundle, ledger.ItemAmount{
				ItemID: uint64(stmt.ColumnInt64(0)),
				Amount: uint64(stmt.ColumnInt64(1)),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("loading item bundle: %w", err)
	}
	if len(bundle) == 0 {
		return nil, fmt.Errorf("%w: series %d", ErrNoBundle, seriesID)
	}
	return bundle, nil
}

// SetItemBundle configures the items minted when a pass of the series
// is redeemed through the inventory flow. An empty bundle removes the
// configuration. The series must already exist; bundles for
// unregistered series are configuration mistakes caught here rather
// than at redemption time.
func (s *Store) SetItemBundle(ctx context.Context, actor ref.Party, seriesID uint64, bundle []ledger.ItemAmount) error {
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "bundle/set"); err != nil {
			return err
		}
		if _, err := ledger.GetSeries(conn, seriesID); err != nil {
			return err
		}

		err := sqlitex.Execute(conn, `
			DELETE FROM item_bundles WHERE series_id = ?
		`, &sqlitex.ExecOptions{
			Args: []any{int64(seriesID)},
		})
		if err != nil {
			return fmt.Errorf("clearing item bundle: %w", err)
		}
		for _, item := range bundle {
			err := sqlitex.Execute(conn, `
				INSERT INTO item_bundles (series_id, item_id, amount) VALUES (?, ?, ?)
				ON CONFLICT (series_id, item_id) DO UPDATE SET amount = excluded.amount
			`, &sqlitex.ExecOptions{
				Args: []any{int64(seriesID), int64(item.ItemID), int64(item.Amount)},
			})
			if err != nil {
				return fmt.Errorf("writing item bundle: %w", err)
			}
		}
		return s.appendAudit(conn, actor, "bundle-set", map[string]any{
			"series": seriesID,
			"items":  uint64(len(bundle)),
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("item bundle set", "series", seriesID, "items", len(bundle), "actor", actor)
	return nil
}

// ItemBundle returns the bundle configured for a series, or
// ErrNoBundle.
func (s *Store) ItemBundle(ctx context.Context, seriesID uint64) ([]ledger.ItemAmount, error) {
	var bundle []ledger.ItemAmount
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		loaded, err := bundleFor(conn, seriesID)
		if err != nil {
			return err
		}
		bundle = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bundle, nil
}
