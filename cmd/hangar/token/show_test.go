// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/operator"
)

// mintTestToken signs a token directly so tests control the expiry.
func mintTestToken(t *testing.T, keysDir string, expiresAt int64) string {
	t.Helper()
	_, private, err := operator.LoadKeypair(keysDir)
	if err != nil {
		t.Fatalf("LoadKeypair: %v", err)
	}
	raw, err := operator.Mint(private, &operator.Token{
		Subject:   "ops/test",
		Scopes:    []string{operator.ScopeGateway},
		ID:        "deadbeefdeadbeef",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	path := filepath.Join(t.TempDir(), "operator.token")
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("writing token: %v", err)
	}
	return path
}

func TestRunShow_ValidToken(t *testing.T) {
	keysDir := newTestKeys(t)
	path := mintTestToken(t, keysDir, time.Now().Add(time.Hour).Unix())

	params := showParams{Keys: keysDir}
	if err := runShow(&params, path); err != nil {
		t.Fatalf("runShow: %v", err)
	}
}

// Expired tokens still decode and display: inspecting them is how an
// operator learns the token expired rather than broke.
func TestRunShow_ExpiredToken(t *testing.T) {
	keysDir := newTestKeys(t)
	path := mintTestToken(t, keysDir, time.Now().Add(-time.Hour).Unix())

	params := showParams{Keys: keysDir}
	if err := runShow(&params, path); err != nil {
		t.Fatalf("runShow on expired token: %v", err)
	}
}

func TestRunShow_CorruptedSignature(t *testing.T) {
	keysDir := newTestKeys(t)
	path := mintTestToken(t, keysDir, time.Now().Add(time.Hour).Unix())

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading token: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("writing corrupted token: %v", err)
	}

	params := showParams{Keys: keysDir}
	err = runShow(&params, path)
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("runShow = %v, want *cli.ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
}

func TestRunShow_WithoutKeys(t *testing.T) {
	keysDir := newTestKeys(t)
	path := mintTestToken(t, keysDir, time.Now().Add(time.Hour).Unix())

	// Decode-only mode has no keys to verify against; it must still
	// print the payload and succeed.
	params := showParams{}
	if err := runShow(&params, path); err != nil {
		t.Fatalf("runShow without keys: %v", err)
	}
}

func TestRunShow_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operator.token")
	if err := os.WriteFile(path, []byte("short"), 0600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	params := showParams{}
	if err := runShow(&params, path); err == nil {
		t.Fatal("expected error for truncated token file")
	}
}
