// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	cryptorand "crypto/rand"
	"errors"
	"testing"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/vault"
)

// Series IDs used throughout the tests.
const (
	pilotPassSeries     = 1
	racecraftPassSeries = 2
	inventorySeries     = 3
)

var (
	admin = mustParty("0x00000000000000000000000000000000000000ad")
	alice = mustParty("0x00000000000000000000000000000000000a11ce")
	bob   = mustParty("0x0000000000000000000000000000000000000b0b")
)

func mustParty(s string) ref.Party {
	p, err := ref.ParseParty(s)
	if err != nil {
		panic(err)
	}
	return p
}

// counterReader is a deterministic entropy source for draws.
type counterReader struct{ next byte }

func (c *counterReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = c.next
		c.next++
	}
	return len(p), nil
}

// hookVault wraps the SQLite vault and lets a test fault the refund
// leg of a payment.
type hookVault struct {
	sqliteVault
	creditErr func(party ref.Party, amount uint64) error
}

func (v *hookVault) Credit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	if v.creditErr != nil {
		if err := v.creditErr(party, amount); err != nil {
			return err
		}
	}
	return v.sqliteVault.Credit(conn, party, amount)
}

type harness struct {
	store  *Store
	issuer *coupon.Issuer
	realm  coupon.Realm
	clock  *clock.FakeClock
	vault  *hookVault
	ctx    context.Context
}

// newHarness opens an in-memory store with the admin bootstrapped,
// the issuer installed as trusted signer, every flow switched on, and
// the pilot and racecraft pass series registered.
func newHarness(t *testing.T) *harness {
	t.Helper()

	issuer, err := coupon.GenerateIssuer(cryptorand.Reader)
	if err != nil {
		t.Fatalf("GenerateIssuer: %v", err)
	}
	realm := coupon.Realm{
		Address: mustParty("0x00000000000000000000000000000000000d120b"),
		Network: 1284,
	}

	h := &harness{
		issuer: issuer,
		realm:  realm,
		clock:  clock.NewFake(),
		vault:  &hookVault{},
		ctx:    context.Background(),
	}

	store, err := Open(h.ctx, Config{
		Path:      "file::memory:?mode=memory",
		PoolSize:  1,
		Realm:     realm,
		Pilot:     SpaceConfig{Ceiling: 10_000, PassSeries: pilotPassSeries},
		Racecraft: SpaceConfig{Ceiling: 10_000, PassSeries: racecraftPassSeries},
		Admin:     admin,
		Clock:     h.clock,
		Entropy:   &counterReader{},
		Vault:     h.vault,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	h.store = store

	if err := store.SetSigner(h.ctx, admin, issuer.Address()); err != nil {
		t.Fatalf("SetSigner: %v", err)
	}
	for _, flow := range Flows() {
		if err := store.SetFlowActive(h.ctx, admin, flow, true); err != nil {
			t.Fatalf("SetFlowActive(%s): %v", flow, err)
		}
	}
	if _, err := store.RegisterSeries(h.ctx, admin, pilotPassSeries, "pilot pass", 1000, 0); err != nil {
		t.Fatalf("RegisterSeries(pilot pass): %v", err)
	}
	if _, err := store.RegisterSeries(h.ctx, admin, racecraftPassSeries, "racecraft pass", 1000, 0); err != nil {
		t.Fatalf("RegisterSeries(racecraft pass): %v", err)
	}
	return h
}

// givePass airdrops one pass of a series to a party.
func (h *harness) givePass(t *testing.T, party ref.Party, seriesID uint64) {
	t.Helper()
	err := h.store.Airdrop(h.ctx, admin, seriesID, AllocationPublic, []PassGrant{{To: party, Quantity: 1}})
	if err != nil {
		t.Fatalf("airdropping pass of series %d: %v", seriesID, err)
	}
}

// pairedFragment creates the shared test fragment: ID 0, supply 100,
// first ID 0, ten reserved in each space. Public pool is [10, 100).
func (h *harness) pairedFragment(t *testing.T) {
	t.Helper()
	_, _, err := h.store.CreatePairedFragments(h.ctx, admin, PairedSpec{
		ID:                0,
		Supply:            100,
		FirstID:           0,
		ReservedPilots:    10,
		ReservedRacecraft: 10,
		Label:             "wave one",
	})
	if err != nil {
		t.Fatalf("CreatePairedFragments: %v", err)
	}
}

func (h *harness) seed(fill byte) ref.Seed {
	return ref.Seed{0: fill, 31: fill}
}

// balance reads a party's vault balance through the store's pool.
func (h *harness) balance(t *testing.T, party ref.Party) uint64 {
	t.Helper()
	var balance uint64
	err := h.store.readTx(h.ctx, func(conn *sqlite.Conn) error {
		account, err := vault.Get(conn, party)
		if err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	if err != nil {
		t.Fatalf("reading balance: %v", err)
	}
	return balance
}

func (h *harness) treasury(t *testing.T) uint64 {
	t.Helper()
	var balance uint64
	err := h.store.readTx(h.ctx, func(conn *sqlite.Conn) error {
		b, err := vault.TreasuryBalance(conn)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		t.Fatalf("reading treasury: %v", err)
	}
	return balance
}

func (h *harness) passBalance(t *testing.T, party ref.Party, seriesID uint64) uint64 {
	t.Helper()
	var balance uint64
	err := h.store.readTx(h.ctx, func(conn *sqlite.Conn) error {
		b, err := ledger.BalanceOf(conn, party, seriesID)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		t.Fatalf("reading pass balance: %v", err)
	}
	return balance
}

func (h *harness) claimCount(t *testing.T, party ref.Party, seriesID uint64) uint64 {
	t.Helper()
	var count uint64
	err := h.store.readTx(h.ctx, func(conn *sqlite.Conn) error {
		c, err := ledger.ClaimCount(conn, seriesID, party)
		if err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		t.Fatalf("reading claim count: %v", err)
	}
	return count
}

func (h *harness) itemBalance(t *testing.T, party ref.Party, itemID uint64) uint64 {
	t.Helper()
	var balance uint64
	err := h.store.readTx(h.ctx, func(conn *sqlite.Conn) error {
		b, err := ledger.ItemBalance(conn, party, itemID)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		t.Fatalf("reading item balance: %v", err)
	}
	return balance
}

func (h *harness) assetOwner(t *testing.T, space fragment.Space, tokenID uint64) ref.Party {
	t.Helper()
	var owner ref.Party
	err := h.store.readTx(h.ctx, func(conn *sqlite.Conn) error {
		o, err := ledger.OwnerOf(conn, string(space), tokenID)
		if err != nil {
			return err
		}
		owner = o
		return nil
	})
	if err != nil {
		t.Fatalf("reading asset owner: %v", err)
	}
	return owner
}

// claimCoupon signs a mint-pass coupon for the harness realm.
func (h *harness) claimCoupon(price, allotted uint64, party ref.Party) coupon.Signature {
	return h.issuer.Sign(coupon.DigestMintPass(h.realm, price, allotted, party))
}

func TestOpenBootstrapsAdminOnce(t *testing.T) {
	h := newHarness(t)

	// The bootstrap grant lets admin act; a stranger stays locked out.
	if err := h.store.SetFlowActive(h.ctx, alice, FlowClaim, false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger flow toggle = %v, want ErrUnauthorized", err)
	}
	if err := h.store.SetFlowActive(h.ctx, admin, FlowClaim, false); err != nil {
		t.Fatalf("admin toggle: %v", err)
	}
}

func TestStatusSnapshot(t *testing.T) {
	h := newHarness(t)
	h.pairedFragment(t)

	status, err := h.store.Status(h.ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, flow := range Flows() {
		if !status.Flows[flow] {
			t.Fatalf("flow %s inactive in status", flow)
		}
	}
	if status.Signer != h.issuer.Address() {
		t.Fatalf("status signer = %v, want %v", status.Signer, h.issuer.Address())
	}
	if len(status.Series) != 2 {
		t.Fatalf("len(status.Series) = %d, want 2", len(status.Series))
	}
	if len(status.Spaces) != 2 {
		t.Fatalf("len(status.Spaces) = %d, want 2", len(status.Spaces))
	}
	for _, space := range status.Spaces {
		if len(space.Fragments) != 1 {
			t.Fatalf("space %s has %d fragments, want 1", space.Space, len(space.Fragments))
		}
		if space.Ceiling != 10_000 {
			t.Fatalf("space %s ceiling = %d, want 10000", space.Space, space.Ceiling)
		}
	}
}

func TestAuditOnlyRecordsCommits(t *testing.T) {
	h := newHarness(t)

	before, err := h.store.Audit(h.ctx, 0)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	// A failing claim must leave no audit trace.
	_, err = h.store.ClaimPass(h.ctx, ClaimRequest{
		Party: alice, SeriesID: 99, Quantity: 1, Allotted: 1,
	})
	if err == nil {
		t.Fatal("claim against unknown series succeeded")
	}

	after, err := h.store.Audit(h.ctx, 0)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("audit grew %d -> %d on a failed flow", len(before), len(after))
	}

	// A committed admin operation appends exactly one record.
	if err := h.store.SetFlowActive(h.ctx, admin, FlowClaim, false); err != nil {
		t.Fatalf("SetFlowActive: %v", err)
	}
	after, err = h.store.Audit(h.ctx, 1)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(after) != 1 || after[0].Event != "flow-set" {
		t.Fatalf("latest audit record = %+v, want flow-set", after)
	}
	if after[0].Actor != admin {
		t.Fatalf("audit actor = %v, want %v", after[0].Actor, admin)
	}
}
