// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault is the credit ledger behind the payable flows.
//
// Parties hold prepaid credit balances; a claim debits the tendered
// amount, accrues the amount owed to the treasury, and credits the
// overpayment back. Accounts can be frozen, which blocks every
// movement — including refunds, which is how a failed refund
// surfaces: the credit fails, and the claim transaction around it
// rolls back whole.
//
// Real money never moves here. Settlement happens in the web layer
// that sells credit and issues coupons; the vault is the service-side
// boundary of that system.
package vault

import (
	"errors"
	"fmt"
	"math"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// Movement errors.
var (
	// ErrInsufficientFunds is returned when a debit or withdrawal
	// exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountFrozen is returned for any movement touching a frozen
	// account.
	ErrAccountFrozen = errors.New("account frozen")

	// ErrAmountTooLarge rejects amounts beyond the ledger's integer
	// range.
	ErrAmountTooLarge = errors.New("amount too large")
)

// InitSchema creates the vault tables if they do not exist. The
// treasury is a single fixed row.
func InitSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS vault_accounts (
			party   TEXT    PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			frozen  INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS vault_treasury (
			id      INTEGER PRIMARY KEY CHECK (id = 1),
			balance INTEGER NOT NULL DEFAULT 0
		);

		INSERT OR IGNORE INTO vault_treasury (id, balance) VALUES (1, 0);
	`, nil)
	if err != nil {
		return fmt.Errorf("vault schema: %w", err)
	}
	return nil
}

// Account is one party's vault state.
type Account struct {
	Party   ref.Party
	Balance uint64
	Frozen  bool
}

// Deposit adds credit to a party's account, creating it on first use.
func Deposit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	return Credit(conn, party, amount)
}

// Credit adds credit to an account. Fails if the account is frozen or
// the balance would leave the ledger's range.
func Credit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	if amount > math.MaxInt64 {
		return fmt.Errorf("%w: %d", ErrAmountTooLarge, amount)
	}

	account, err := Get(conn, party)
	if err != nil {
		return err
	}
	if account.Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, party)
	}
	if account.Balance > math.MaxInt64-amount {
		return fmt.Errorf("%w: balance %d + %d", ErrAmountTooLarge, account.Balance, amount)
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO vault_accounts (party, balance) VALUES (?, ?)
		ON CONFLICT (party) DO UPDATE SET balance = balance + excluded.balance
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), int64(amount)},
	})
	if err != nil {
		return fmt.Errorf("crediting %s: %w", party, err)
	}
	return nil
}

// Debit removes credit from an account. Fails if the account is
// frozen or holds less than amount.
func Debit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	account, err := Get(conn, party)
	if err != nil {
		return err
	}
	if account.Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, party)
	}
	if account.Balance < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, party, account.Balance, amount)
	}

	err = sqlitex.Execute(conn, `
		UPDATE vault_accounts SET balance = balance - ? WHERE party = ?
	`, &sqlitex.ExecOptions{
		Args: []any{int64(amount), party.String()},
	})
	if err != nil {
		return fmt.Errorf("debiting %s: %w", party, err)
	}
	return nil
}

// Get returns a party's account. Unknown parties have a zero, open
// account.
func Get(conn *sqlite.Conn, party ref.Party) (Account, error) {
	account := Account{Party: party}
	err := sqlitex.Execute(conn, `
		SELECT balance, frozen FROM vault_accounts WHERE party = ?
	`, &sqlitex.ExecOptions{
		Args: []any{party.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			account.Balance = uint64(stmt.ColumnInt64(0))
			account.Frozen = stmt.ColumnInt64(1) != 0
			return nil
		},
	})
	if err != nil {
		return Account{}, fmt.Errorf("loading account %s: %w", party, err)
	}
	return account, nil
}

// SetFrozen freezes or unfreezes an account, creating it if needed.
func SetFrozen(conn *sqlite.Conn, party ref.Party, frozen bool) error {
	value := 0
	if frozen {
		value = 1
	}
	err := sqlitex.Execute(conn, `
		INSERT INTO vault_accounts (party, frozen) VALUES (?, ?)
		ON CONFLICT (party) DO UPDATE SET frozen = excluded.frozen
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), value},
	})
	if err != nil {
		return fmt.Errorf("freezing %s: %w", party, err)
	}
	return nil
}

// TreasuryAdd accrues sale proceeds to the treasury.
func TreasuryAdd(conn *sqlite.Conn, amount uint64) error {
	if amount > math.MaxInt64 {
		return fmt.Errorf("%w: %d", ErrAmountTooLarge, amount)
	}
	balance, err := TreasuryBalance(conn)
	if err != nil {
		return err
	}
	if balance > math.MaxInt64-amount {
		return fmt.Errorf("%w: treasury %d + %d", ErrAmountTooLarge, balance, amount)
	}

	err = sqlitex.Execute(conn, `
		UPDATE vault_treasury SET balance = balance + ? WHERE id = 1
	`, &sqlitex.ExecOptions{
		Args: []any{int64(amount)},
	})
	if err != nil {
		return fmt.Errorf("accruing to treasury: %w", err)
	}
	return nil
}

// TreasuryBalance returns the accumulated proceeds.
func TreasuryBalance(conn *sqlite.Conn) (uint64, error) {
	var balance uint64
	err := sqlitex.Execute(conn, `
		SELECT balance FROM vault_treasury WHERE id = 1
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			balance = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("loading treasury: %w", err)
	}
	return balance, nil
}

// Withdraw moves treasury credit to a party's account. Fails if the
// treasury holds less than amount or the recipient is frozen.
func Withdraw(conn *sqlite.Conn, to ref.Party, amount uint64) error {
	balance, err := TreasuryBalance(conn)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: treasury holds %d, needs %d", ErrInsufficientFunds, balance, amount)
	}

	err = sqlitex.Execute(conn, `
		UPDATE vault_treasury SET balance = balance - ? WHERE id = 1
	`, &sqlitex.ExecOptions{
		Args: []any{int64(amount)},
	})
	if err != nil {
		return fmt.Errorf("withdrawing from treasury: %w", err)
	}
	return Credit(conn, to, amount)
}
