// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// Asset ledger errors.
var (
	// ErrAssetExists guards token ID uniqueness. The draw never
	// repeats an ID, so hitting this means draw state and asset state
	// have diverged — it is an integrity failure, not a user error.
	ErrAssetExists = errors.New("asset already minted")

	// ErrAssetNotFound is returned for token IDs never minted.
	ErrAssetNotFound = errors.New("asset not found")
)

// Asset is one serially-numbered unique token.
type Asset struct {
	Space      string
	TokenID    uint64
	FragmentID uint64
	Owner      ref.Party
	Seed       ref.Seed
	MintedAt   time.Time
}

// InitAssetSchema creates the asset table if it does not exist.
func InitAssetSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS assets (
			space       TEXT    NOT NULL,
			token_id    INTEGER NOT NULL,
			fragment_id INTEGER NOT NULL,
			owner       TEXT    NOT NULL,
			seed        BLOB    NOT NULL,
			minted_at   INTEGER NOT NULL,
			PRIMARY KEY (space, token_id)
		);

		CREATE INDEX IF NOT EXISTS assets_by_owner ON assets (space, owner);
	`, nil)
	if err != nil {
		return fmt.Errorf("asset schema: %w", err)
	}
	return nil
}

// MintAsset records a unique token at a specific ID. The seed that
// drove (or, for reserved issues, accompanied) the issuance is stored
// for audit.
func MintAsset(conn *sqlite.Conn, space string, tokenID, fragmentID uint64, owner ref.Party, seed ref.Seed, now time.Time) error {
	exists, err := AssetExists(conn, space, tokenID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s token %d", ErrAssetExists, space, tokenID)
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO assets (space, token_id, fragment_id, owner, seed, minted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{space, int64(tokenID), int64(fragmentID), owner.String(), seed.Bytes(), now.Unix()},
	})
	if err != nil {
		return fmt.Errorf("minting asset: %w", err)
	}
	return nil
}

// AssetExists reports whether a token ID was minted in a space.
func AssetExists(conn *sqlite.Conn, space string, tokenID uint64) (bool, error) {
	exists := false
	err := sqlitex.Execute(conn, `
		SELECT 1 FROM assets WHERE space = ? AND token_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{space, int64(tokenID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("checking asset: %w", err)
	}
	return exists, nil
}

// OwnerOf returns the owner of a minted token.
func OwnerOf(conn *sqlite.Conn, space string, tokenID uint64) (ref.Party, error) {
	var owner ref.Party
	found := false
	err := sqlitex.Execute(conn, `
		SELECT owner FROM assets WHERE space = ? AND token_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{space, int64(tokenID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			parsed, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			owner = parsed
			found = true
			return nil
		},
	})
	if err != nil {
		return ref.Party{}, fmt.Errorf("loading asset owner: %w", err)
	}
	if !found {
		return ref.Party{}, fmt.Errorf("%w: %s token %d", ErrAssetNotFound, space, tokenID)
	}
	return owner, nil
}

// CountAssets returns the number of minted tokens in a space.
func CountAssets(conn *sqlite.Conn, space string) (uint64, error) {
	var count uint64
	err := sqlitex.Execute(conn, `
		SELECT COUNT(*) FROM assets WHERE space = ?
	`, &sqlitex.ExecOptions{
		Args: []any{space},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("counting assets: %w", err)
	}
	return count, nil
}
