// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// GrantRecord is one stored role grant.
type GrantRecord struct {
	Party     ref.Party
	Role      Role
	GrantedBy ref.Party
	GrantedAt time.Time

	// ExpiresAt is the grant's expiry. Zero means the grant never
	// expires.
	ExpiresAt time.Time
}

// Expired reports whether the grant has lapsed at now.
func (g GrantRecord) Expired(now time.Time) bool {
	return !g.ExpiresAt.IsZero() && !now.Before(g.ExpiresAt)
}

// InitSchema creates the role grant table if it does not exist.
func InitSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS role_grants (
			party      TEXT    NOT NULL,
			role       TEXT    NOT NULL,
			granted_by TEXT    NOT NULL,
			granted_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (party, role)
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("authorization schema: %w", err)
	}
	return nil
}

// Grant gives a party a role. Re-granting an existing role refreshes
// its expiry and provenance. A zero expiresAt grants forever.
func Grant(conn *sqlite.Conn, party ref.Party, role Role, grantedBy ref.Party, now, expiresAt time.Time) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	var expiry int64
	if !expiresAt.IsZero() {
		expiry = expiresAt.Unix()
	}
	err := sqlitex.Execute(conn, `
		INSERT INTO role_grants (party, role, granted_by, granted_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (party, role) DO UPDATE SET
			granted_by = excluded.granted_by,
			granted_at = excluded.granted_at,
			expires_at = excluded.expires_at
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), string(role), grantedBy.String(), now.Unix(), expiry},
	})
	if err != nil {
		return fmt.Errorf("writing role grant: %w", err)
	}
	return nil
}

// Revoke removes a role from a party. Revoking an absent grant is not
// an error.
func Revoke(conn *sqlite.Conn, party ref.Party, role Role) error {
	err := sqlitex.Execute(conn, `
		DELETE FROM role_grants WHERE party = ? AND role = ?
	`, &sqlitex.ExecOptions{
		Args: []any{party.String(), string(role)},
	})
	if err != nil {
		return fmt.Errorf("revoking role grant: %w", err)
	}
	return nil
}

// GrantsFor returns a party's grants, expired ones included, ordered
// by role.
func GrantsFor(conn *sqlite.Conn, party ref.Party) ([]GrantRecord, error) {
	var grants []GrantRecord
	err := sqlitex.Execute(conn, `
		SELECT party, role, granted_by, granted_at, expires_at
		FROM role_grants WHERE party = ? ORDER BY role
	`, &sqlitex.ExecOptions{
		Args: []any{party.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			record, err := scanGrant(stmt)
			if err != nil {
				return err
			}
			grants = append(grants, record)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("loading role grants: %w", err)
	}
	return grants, nil
}

// ListGrants returns every grant in the table, ordered by party then
// role.
func ListGrants(conn *sqlite.Conn) ([]GrantRecord, error) {
	var grants []GrantRecord
	err := sqlitex.Execute(conn, `
		SELECT party, role, granted_by, granted_at, expires_at
		FROM role_grants ORDER BY party, role
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			record, err := scanGrant(stmt)
			if err != nil {
				return err
			}
			grants = append(grants, record)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing role grants: %w", err)
	}
	return grants, nil
}

func scanGrant(stmt *sqlite.Stmt) (GrantRecord, error) {
	party, err := ref.ParseParty(stmt.ColumnText(0))
	if err != nil {
		return GrantRecord{}, err
	}
	grantedBy, err := ref.ParseParty(stmt.ColumnText(2))
	if err != nil {
		return GrantRecord{}, err
	}
	record := GrantRecord{
		Party:     party,
		Role:      Role(stmt.ColumnText(1)),
		GrantedBy: grantedBy,
		GrantedAt: time.Unix(stmt.ColumnInt64(3), 0).UTC(),
	}
	if expiry := stmt.ColumnInt64(4); expiry != 0 {
		record.ExpiresAt = time.Unix(expiry, 0).UTC()
	}
	return record, nil
}
