// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"zombiezen.com/go/sqlite"
)

// NewConn opens a single in-memory SQLite connection, applies each
// schema function in order, and registers cleanup. Engine packages
// (fragment, replay, vault, ledger) test against a bare connection;
// pooled behavior is covered by the store tests.
func NewConn(t *testing.T, schemas ...func(*sqlite.Conn) error) *sqlite.Conn {
	t.Helper()

	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenMemory)
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("closing test connection: %v", err)
		}
	})

	for _, schema := range schemas {
		if err := schema(conn); err != nil {
			t.Fatalf("applying test schema: %v", err)
		}
	}
	return conn
}
