// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// signerParty reads the trusted signer row.
func signerParty(conn *sqlite.Conn) (ref.Party, error) {
	var signer ref.Party
	found := false
	err := sqlitex.Execute(conn, `
		SELECT signer FROM trusted_signer WHERE id = 1
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			parsed, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			signer = parsed
			found = true
			return nil
		},
	})
	if err != nil {
		return ref.Party{}, fmt.Errorf("reading trusted signer: %w", err)
	}
	if !found {
		return ref.Party{}, ErrSignerUnconfigured
	}
	return signer, nil
}

// SetSigner rotates the trusted coupon signer. The new signer applies
// to every verification after this commit; coupons signed by the old
// key fail from then on, with no transition window.
func (s *Store) SetSigner(ctx context.Context, actor, signer ref.Party) error {
	if signer.IsZero() {
		return fmt.Errorf("%w: trusted signer", ErrZeroParty)
	}
	err := s.writeTx(ctx, func(conn *sqlite.Conn) error {
		if err := s.requireRole(conn, actor, "signer/rotate"); err != nil {
			return err
		}
		err := sqlitex.Execute(conn, `
			INSERT INTO trusted_signer (id, signer, rotated_at) VALUES (1, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				signer = excluded.signer,
				rotated_at = excluded.rotated_at
		`, &sqlitex.ExecOptions{
			Args: []any{signer.String(), s.clock.Now().Unix()},
		})
		if err != nil {
			return fmt.Errorf("writing trusted signer: %w", err)
		}
		return s.appendAudit(conn, actor, "signer-rotate", map[string]any{
			"signer": signer.String(),
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("trusted signer rotated", "signer", signer, "actor", actor)
	return nil
}
