// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/sealed"
	"github.com/hangar-foundation/hangar/lib/secret"
)

func TestRunIssuer_SealedRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	sealedPath := filepath.Join(tempDir, "issuer.sealed")

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	err = runIssuer([]string{"--out", sealedPath, "--recipient", keypair.PublicKey})
	if err != nil {
		t.Fatalf("runIssuer: %v", err)
	}

	info, err := os.Stat(sealedPath)
	if err != nil {
		t.Fatalf("sealed file missing: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("sealed file mode = %o, want 0600", mode)
	}

	plaintext, err := sealed.UnsealFile(sealedPath, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("UnsealFile: %v", err)
	}
	defer plaintext.Close()

	// The sealed payload is the key as hex text.
	raw, err := hex.DecodeString(plaintext.String())
	if err != nil {
		t.Fatalf("sealed payload is not hex: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("decoded key is %d bytes, want 32", len(raw))
	}

	issuer, err := coupon.NewIssuer(raw)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	if issuer.Address().IsZero() {
		t.Error("issuer address is zero")
	}
}

func TestRunIssuer_RejectsBadRecipient(t *testing.T) {
	tempDir := t.TempDir()
	sealedPath := filepath.Join(tempDir, "issuer.sealed")

	err := runIssuer([]string{"--out", sealedPath, "--recipient", "not-an-age-key"})
	if err == nil {
		t.Fatal("expected error for invalid recipient")
	}
	if _, statErr := os.Stat(sealedPath); statErr == nil {
		t.Error("sealed file was written despite invalid recipient")
	}
}

func TestRunOperator_GeneratesAndPreserves(t *testing.T) {
	keysDir := filepath.Join(t.TempDir(), "keys")

	if err := runOperator([]string{"--keys", keysDir}); err != nil {
		t.Fatalf("runOperator: %v", err)
	}

	public, _, err := operator.LoadKeypair(keysDir)
	if err != nil {
		t.Fatalf("LoadKeypair after generation: %v", err)
	}

	// A second run must not rotate the keypair: outstanding tokens
	// would all go invalid.
	if err := runOperator([]string{"--keys", keysDir}); err != nil {
		t.Fatalf("second runOperator: %v", err)
	}
	publicAgain, _, err := operator.LoadKeypair(keysDir)
	if err != nil {
		t.Fatalf("LoadKeypair after second run: %v", err)
	}
	if !public.Equal(publicAgain) {
		t.Error("second run replaced the keypair")
	}
}

func TestRunIdentity_OutFile(t *testing.T) {
	identityPath := filepath.Join(t.TempDir(), "ops.age")

	if err := runIdentity([]string{"--out", identityPath}); err != nil {
		t.Fatalf("runIdentity: %v", err)
	}

	info, err := os.Stat(identityPath)
	if err != nil {
		t.Fatalf("identity file missing: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("identity file mode = %o, want 0600", mode)
	}

	privateKey, err := secret.ReadFromPath(identityPath)
	if err != nil {
		t.Fatalf("ReadFromPath: %v", err)
	}
	defer privateKey.Close()

	if err := sealed.ParsePrivateKey(privateKey); err != nil {
		t.Errorf("written identity does not parse: %v", err)
	}
}
