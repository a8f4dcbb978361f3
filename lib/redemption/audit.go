// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// AuditRecord is one committed flow or admin operation. Records are
// written inside the flow's transaction, so a rolled-back flow leaves
// no record and a committed one always has exactly one.
type AuditRecord struct {
	Seq   uint64
	At    time.Time
	Actor ref.Party
	Event string

	// Detail is the event's CBOR payload. Shape varies by event.
	Detail codec.RawMessage
}

// appendAudit writes one audit row. The detail map is encoded as
// deterministic CBOR.
func (s *Store) appendAudit(conn *sqlite.Conn, actor ref.Party, event string, detail map[string]any) error {
	blob, err := codec.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encoding audit detail: %w", err)
	}
	err = sqlitex.Execute(conn, `
		INSERT INTO audit_log (at, actor, event, detail) VALUES (?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{s.clock.Now().Unix(), actor.String(), event, blob},
	})
	if err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Audit returns the most recent audit records, newest first. A zero
// limit returns everything.
func (s *Store) Audit(ctx context.Context, limit uint64) ([]AuditRecord, error) {
	query := `
		SELECT seq, at, actor, event, detail FROM audit_log
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, int64(limit))
	}

	var records []AuditRecord
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				actor, err := ref.ParseParty(stmt.ColumnText(2))
				if err != nil {
					return err
				}
				detail := make([]byte, stmt.ColumnLen(4))
				stmt.ColumnBytes(4, detail)
				records = append(records, AuditRecord{
					Seq:    uint64(stmt.ColumnInt64(0)),
					At:     time.Unix(stmt.ColumnInt64(1), 0).UTC(),
					Actor:  actor,
					Event:  stmt.ColumnText(3),
					Detail: detail,
				})
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	return records, nil
}
