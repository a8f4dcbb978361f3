// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// ItemAmount is one line of an item grant: a fungible item ID and how
// many units to credit.
type ItemAmount struct {
	ItemID uint64
	Amount uint64
}

// InitItemSchema creates the fungible item balance table if it does
// not exist.
func InitItemSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS item_balances (
			party   TEXT    NOT NULL,
			item_id INTEGER NOT NULL,
			balance INTEGER NOT NULL,
			PRIMARY KEY (party, item_id)
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("item schema: %w", err)
	}
	return nil
}

// MintItems credits a batch of fungible items to one party. Zero
// amounts are skipped rather than rejected so bundle definitions can
// carry optional lines.
func MintItems(conn *sqlite.Conn, to ref.Party, items []ItemAmount) error {
	for _, item := range items {
		if item.Amount == 0 {
			continue
		}
		err := sqlitex.Execute(conn, `
			INSERT INTO item_balances (party, item_id, balance)
			VALUES (?, ?, ?)
			ON CONFLICT (party, item_id) DO UPDATE SET balance = balance + excluded.balance
		`, &sqlitex.ExecOptions{
			Args: []any{to.String(), int64(item.ItemID), int64(item.Amount)},
		})
		if err != nil {
			return fmt.Errorf("minting item %d: %w", item.ItemID, err)
		}
	}
	return nil
}

// ItemBalance returns how many units of one item a party holds.
// Unknown parties and unknown items read as zero.
func ItemBalance(conn *sqlite.Conn, party ref.Party, itemID uint64) (uint64, error) {
	var balance uint64
	err := sqlitex.Execute(conn, `
		SELECT balance FROM item_balances WHERE party = ? AND item_id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), int64(itemID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			balance = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("loading item balance: %w", err)
	}
	return balance, nil
}
