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

// Pass ledger errors.
var (
	// ErrSeriesExists rejects registering a series ID twice.
	ErrSeriesExists = errors.New("pass series already exists")

	// ErrSeriesNotFound is returned for series never registered.
	ErrSeriesNotFound = errors.New("pass series not found")

	// ErrSeriesReservedExceedsSupply rejects series whose reserved
	// allocation exceeds their max supply.
	ErrSeriesReservedExceedsSupply = errors.New("series reserved size exceeds max supply")

	// ErrSeriesSupplyExceeded is returned when a mint would pass the
	// targeted allocation's ceiling.
	ErrSeriesSupplyExceeded = errors.New("series supply exceeded")

	// ErrNoPassToBurn is returned when a burn targets a party holding
	// no pass of the series.
	ErrNoPassToBurn = errors.New("no pass to burn")

	// ErrInvalidQuantity rejects zero-quantity mints and burns.
	ErrInvalidQuantity = errors.New("quantity must be non-zero")
)

// Series is one pass type: a sale wave, an inventory pass, a reward
// pass. MaxSupply caps lifetime mints; ReservedSize carves out an
// allocation only airdrops may touch.
type Series struct {
	ID             uint64
	Label          string
	MaxSupply      uint64
	ReservedSize   uint64
	MintedPublic   uint64
	MintedReserved uint64
	CreatedAt      time.Time
}

// PublicSize is the claimable allocation.
func (s Series) PublicSize() uint64 { return s.MaxSupply - s.ReservedSize }

// PublicRemaining is the unminted claimable allocation.
func (s Series) PublicRemaining() uint64 { return s.PublicSize() - s.MintedPublic }

// ReservedRemaining is the unminted reserved allocation.
func (s Series) ReservedRemaining() uint64 { return s.ReservedSize - s.MintedReserved }

// InitPassSchema creates the pass tables if they do not exist.
func InitPassSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS pass_series (
			id              INTEGER PRIMARY KEY,
			label           TEXT    NOT NULL DEFAULT '',
			max_supply      INTEGER NOT NULL,
			reserved_size   INTEGER NOT NULL,
			minted_public   INTEGER NOT NULL DEFAULT 0,
			minted_reserved INTEGER NOT NULL DEFAULT 0,
			created_at      INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pass_balances (
			party   TEXT    NOT NULL,
			series  INTEGER NOT NULL,
			balance INTEGER NOT NULL,
			PRIMARY KEY (party, series)
		);

		CREATE TABLE IF NOT EXISTS pass_claims (
			series  INTEGER NOT NULL,
			party   TEXT    NOT NULL,
			claimed INTEGER NOT NULL,
			PRIMARY KEY (series, party)
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("pass schema: %w", err)
	}
	return nil
}

// RegisterSeries adds a pass series.
func RegisterSeries(conn *sqlite.Conn, id uint64, label string, maxSupply, reservedSize uint64, now time.Time) (Series, error) {
	if reservedSize > maxSupply {
		return Series{}, fmt.Errorf("%w: reserved %d, max %d",
			ErrSeriesReservedExceedsSupply, reservedSize, maxSupply)
	}

	_, err := GetSeries(conn, id)
	if err == nil {
		return Series{}, fmt.Errorf("%w: series %d", ErrSeriesExists, id)
	}
	if !errors.Is(err, ErrSeriesNotFound) {
		return Series{}, err
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO pass_series (id, label, max_supply, reserved_size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{int64(id), label, int64(maxSupply), int64(reservedSize), now.Unix()},
	})
	if err != nil {
		return Series{}, fmt.Errorf("registering series: %w", err)
	}
	return Series{
		ID:           id,
		Label:        label,
		MaxSupply:    maxSupply,
		ReservedSize: reservedSize,
		CreatedAt:    time.Unix(now.Unix(), 0).UTC(),
	}, nil
}

// GetSeries loads one series.
func GetSeries(conn *sqlite.Conn, id uint64) (Series, error) {
	var series Series
	found := false
	err := sqlitex.Execute(conn, `
		SELECT id, label, max_supply, reserved_size, minted_public, minted_reserved, created_at
		FROM pass_series WHERE id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			series = scanSeries(stmt)
			return nil
		},
	})
	if err != nil {
		return Series{}, fmt.Errorf("loading series: %w", err)
	}
	if !found {
		return Series{}, fmt.Errorf("%w: series %d", ErrSeriesNotFound, id)
	}
	return series, nil
}

// ListSeries returns every series in ID order.
func ListSeries(conn *sqlite.Conn) ([]Series, error) {
	var all []Series
	err := sqlitex.Execute(conn, `
		SELECT id, label, max_supply, reserved_size, minted_public, minted_reserved, created_at
		FROM pass_series ORDER BY id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			all = append(all, scanSeries(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing series: %w", err)
	}
	return all, nil
}

// MintPublic mints qty passes to a party from the claimable
// allocation.
func MintPublic(conn *sqlite.Conn, to ref.Party, seriesID, qty uint64) error {
	return mintPasses(conn, to, seriesID, qty, false)
}

// MintReserved mints qty passes to a party from the reserved
// allocation.
func MintReserved(conn *sqlite.Conn, to ref.Party, seriesID, qty uint64) error {
	return mintPasses(conn, to, seriesID, qty, true)
}

func mintPasses(conn *sqlite.Conn, to ref.Party, seriesID, qty uint64, reserved bool) error {
	if qty == 0 {
		return ErrInvalidQuantity
	}
	series, err := GetSeries(conn, seriesID)
	if err != nil {
		return err
	}

	column := "minted_public"
	remaining := series.PublicRemaining()
	if reserved {
		column = "minted_reserved"
		remaining = series.ReservedRemaining()
	}
	if qty > remaining {
		return fmt.Errorf("%w: series %d has %d of the %s allocation left, need %d",
			ErrSeriesSupplyExceeded, seriesID, remaining, allocationName(reserved), qty)
	}

	err = sqlitex.Execute(conn,
		"UPDATE pass_series SET "+column+" = "+column+" + ? WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{int64(qty), int64(seriesID)}})
	if err != nil {
		return fmt.Errorf("recording series mint: %w", err)
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO pass_balances (party, series, balance) VALUES (?, ?, ?)
		ON CONFLICT (party, series) DO UPDATE SET balance = balance + excluded.balance
	`, &sqlitex.ExecOptions{
		Args: []any{to.String(), int64(seriesID), int64(qty)},
	})
	if err != nil {
		return fmt.Errorf("minting passes: %w", err)
	}
	return nil
}

func allocationName(reserved bool) string {
	if reserved {
		return "reserved"
	}
	return "public"
}

// BurnOne burns one pass of a series from a party's balance.
func BurnOne(conn *sqlite.Conn, party ref.Party, seriesID uint64) error {
	balance, err := BalanceOf(conn, party, seriesID)
	if err != nil {
		return err
	}
	if balance == 0 {
		return fmt.Errorf("%w: %s holds no series %d pass", ErrNoPassToBurn, party, seriesID)
	}

	err = sqlitex.Execute(conn, `
		UPDATE pass_balances SET balance = balance - 1 WHERE party = ? AND series = ?
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), int64(seriesID)},
	})
	if err != nil {
		return fmt.Errorf("burning pass: %w", err)
	}
	return nil
}

// BalanceOf returns a party's pass balance for a series.
func BalanceOf(conn *sqlite.Conn, party ref.Party, seriesID uint64) (uint64, error) {
	var balance uint64
	err := sqlitex.Execute(conn, `
		SELECT balance FROM pass_balances WHERE party = ? AND series = ?
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), int64(seriesID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			balance = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("loading pass balance: %w", err)
	}
	return balance, nil
}

// TotalSupply returns the live (minted minus burned) pass count of a
// series.
func TotalSupply(conn *sqlite.Conn, seriesID uint64) (uint64, error) {
	var total uint64
	err := sqlitex.Execute(conn, `
		SELECT COALESCE(SUM(balance), 0) FROM pass_balances WHERE series = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(seriesID)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			total = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("loading series supply: %w", err)
	}
	return total, nil
}

// ClaimCount returns how many passes a party has claimed from a
// series through the paid flow. Airdrops do not count against it.
func ClaimCount(conn *sqlite.Conn, seriesID uint64, party ref.Party) (uint64, error) {
	var claimed uint64
	err := sqlitex.Execute(conn, `
		SELECT claimed FROM pass_claims WHERE series = ? AND party = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(seriesID), party.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			claimed = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("loading claim count: %w", err)
	}
	return claimed, nil
}

// AddClaims increments a party's claim counter. Counters only grow.
func AddClaims(conn *sqlite.Conn, seriesID uint64, party ref.Party, qty uint64) error {
	if qty == 0 {
		return ErrInvalidQuantity
	}
	err := sqlitex.Execute(conn, `
		INSERT INTO pass_claims (series, party, claimed) VALUES (?, ?, ?)
		ON CONFLICT (series, party) DO UPDATE SET claimed = claimed + excluded.claimed
	`, &sqlitex.ExecOptions{
		Args: []any{int64(seriesID), party.String(), int64(qty)},
	})
	if err != nil {
		return fmt.Errorf("recording claims: %w", err)
	}
	return nil
}

func scanSeries(stmt *sqlite.Stmt) Series {
	return Series{
		ID:             uint64(stmt.ColumnInt64(0)),
		Label:          stmt.ColumnText(1),
		MaxSupply:      uint64(stmt.ColumnInt64(2)),
		ReservedSize:   uint64(stmt.ColumnInt64(3)),
		MintedPublic:   uint64(stmt.ColumnInt64(4)),
		MintedReserved: uint64(stmt.ColumnInt64(5)),
		CreatedAt:      time.Unix(stmt.ColumnInt64(6), 0).UTC(),
	}
}
