// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/ref"
)

const testPartyAddress = "0x52908400098527886e0f7030069857d2e4169ee7"

// newTestKeys generates a signing keypair in a fresh keys directory.
func newTestKeys(t *testing.T) string {
	t.Helper()
	keysDir := t.TempDir()
	public, private, err := operator.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if err := operator.SaveKeypair(keysDir, public, private); err != nil {
		t.Fatalf("SaveKeypair: %v", err)
	}
	return keysDir
}

func TestRunMint_VerifiableToken(t *testing.T) {
	keysDir := newTestKeys(t)
	outPath := filepath.Join(t.TempDir(), "operator.token")

	params := mintParams{
		Keys:    keysDir,
		Subject: "ops/amelia",
		Party:   testPartyAddress,
		Scopes:  []string{operator.ScopeAdmin},
		TTL:     time.Hour,
		Out:     outPath,
	}
	if err := runMint(&params); err != nil {
		t.Fatalf("runMint: %v", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("token file mode = %o, want 0600", mode)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading token: %v", err)
	}
	public, err := operator.LoadPublicKey(keysDir)
	if err != nil {
		t.Fatalf("LoadPublicKey: %v", err)
	}

	token, err := operator.VerifyForScopeAt(public, raw, operator.ScopeAdmin, time.Now())
	if err != nil {
		t.Fatalf("VerifyForScopeAt: %v", err)
	}
	if token.Subject != "ops/amelia" {
		t.Errorf("subject = %q, want %q", token.Subject, "ops/amelia")
	}
	wantParty, _ := ref.ParseParty(testPartyAddress)
	if token.Party != wantParty {
		t.Errorf("party = %s, want %s", token.Party, wantParty)
	}
	if token.ID == "" {
		t.Error("token ID is empty")
	}
}

func TestRunMint_GatewayWithoutParty(t *testing.T) {
	keysDir := newTestKeys(t)
	outPath := filepath.Join(t.TempDir(), "gateway.token")

	params := mintParams{
		Keys:    keysDir,
		Subject: "gateway/eu-west",
		Scopes:  []string{operator.ScopeGateway},
		TTL:     time.Hour,
		Out:     outPath,
	}
	if err := runMint(&params); err != nil {
		t.Fatalf("runMint: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading token: %v", err)
	}
	public, err := operator.LoadPublicKey(keysDir)
	if err != nil {
		t.Fatalf("LoadPublicKey: %v", err)
	}
	token, err := operator.VerifyForScopeAt(public, raw, operator.ScopeGateway, time.Now())
	if err != nil {
		t.Fatalf("VerifyForScopeAt: %v", err)
	}
	if !token.Party.IsZero() {
		t.Errorf("gateway token party = %s, want zero", token.Party)
	}
}

func TestRunMint_Rejections(t *testing.T) {
	keysDir := newTestKeys(t)
	outPath := filepath.Join(t.TempDir(), "t.token")

	tests := []struct {
		name   string
		params mintParams
	}{
		{
			name: "missing subject",
			params: mintParams{
				Keys: keysDir, Scopes: []string{operator.ScopeGateway},
				TTL: time.Hour, Out: outPath,
			},
		},
		{
			name: "missing scope",
			params: mintParams{
				Keys: keysDir, Subject: "ops/x", TTL: time.Hour, Out: outPath,
			},
		},
		{
			name: "unknown scope",
			params: mintParams{
				Keys: keysDir, Subject: "ops/x", Scopes: []string{"root"},
				TTL: time.Hour, Out: outPath,
			},
		},
		{
			name: "admin without party",
			params: mintParams{
				Keys: keysDir, Subject: "ops/x", Scopes: []string{operator.ScopeAdmin},
				TTL: time.Hour, Out: outPath,
			},
		},
		{
			name: "zero ttl",
			params: mintParams{
				Keys: keysDir, Subject: "ops/x", Scopes: []string{operator.ScopeGateway},
				Out: outPath,
			},
		},
		{
			name: "bad party",
			params: mintParams{
				Keys: keysDir, Subject: "ops/x", Party: "0x123",
				Scopes: []string{operator.ScopeGateway}, TTL: time.Hour, Out: outPath,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := runMint(&test.params); err == nil {
				t.Error("expected error, got none")
			}
		})
	}
}
