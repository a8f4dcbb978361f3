// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package replay enforces one-time seed consumption.
//
// Every seeded flow calls Consume before any value-bearing write in
// its transaction. The consumed-seeds table is append-only and
// permanent: a seed burned by any flow, from any caller, stays
// burned. There is no expiry and no removal — replay protection that
// forgets is no protection.
package replay

import (
	"errors"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// ErrSeedAlreadyUsed is returned when a seed was consumed by any
// earlier request, in this flow or another.
var ErrSeedAlreadyUsed = errors.New("seed already used")

// InitSchema creates the consumed-seeds table if it does not exist.
func InitSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS consumed_seeds (
			seed        BLOB    PRIMARY KEY,
			flow        TEXT    NOT NULL,
			consumed_at INTEGER NOT NULL
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("replay schema: %w", err)
	}
	return nil
}

// Consume marks seed used by flow. Fails with ErrSeedAlreadyUsed if
// any request consumed it before; on success the mark commits or
// rolls back with the caller's transaction.
func Consume(conn *sqlite.Conn, seed ref.Seed, flow string, now time.Time) error {
	used, err := IsConsumed(conn, seed)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: %s", ErrSeedAlreadyUsed, seed)
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO consumed_seeds (seed, flow, consumed_at) VALUES (?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{seed.Bytes(), flow, now.Unix()},
	})
	if err != nil {
		return fmt.Errorf("consuming seed: %w", err)
	}
	return nil
}

// IsConsumed reports whether seed was ever consumed.
func IsConsumed(conn *sqlite.Conn, seed ref.Seed) (bool, error) {
	used := false
	err := sqlitex.Execute(conn, `
		SELECT 1 FROM consumed_seeds WHERE seed = ?
	`, &sqlitex.ExecOptions{
		Args: []any{seed.Bytes()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			used = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("checking seed: %w", err)
	}
	return used, nil
}

// Count returns the number of consumed seeds, for status reporting.
func Count(conn *sqlite.Conn) (uint64, error) {
	var count uint64
	err := sqlitex.Execute(conn, `
		SELECT COUNT(*) FROM consumed_seeds
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("counting seeds: %w", err)
	}
	return count, nil
}
