// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"crypto/ed25519"
	cryptorand "crypto/rand"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/config"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/redemption"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/service"
)

// testEpoch is where the fake clock starts in every fixture.
var testEpoch = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// fixture is one mint service running against an in-memory store on a
// private socket. The store, the socket auth layer, and the status
// surface all share one fake clock.
type fixture struct {
	store      *redemption.Store
	mint       *mintService
	issuer     *coupon.Issuer
	realm      coupon.Realm
	clock      *clock.FakeClock
	socketPath string
	privateKey ed25519.PrivateKey
	ctx        context.Context
}

// newFixture boots the service: admin bootstrapped, issuer installed
// as trusted signer, every flow switched on, socket served until the
// test ends. Windows, when given, feed the status surface; the
// scheduler itself is exercised separately against the store.
func newFixture(t *testing.T, windowConfigs ...config.WindowConfig) *fixture {
	t.Helper()

	issuer, err := coupon.GenerateIssuer(cryptorand.Reader)
	if err != nil {
		t.Fatalf("GenerateIssuer: %v", err)
	}
	realm := coupon.Realm{
		Address: mustParty("0x00000000000000000000000000000000000d120b"),
		Network: 1284,
	}
	fake := clock.NewFake()
	fake.Set(testEpoch)
	ctx := context.Background()

	store, err := redemption.Open(ctx, redemption.Config{
		Path:      "file::memory:?mode=memory",
		PoolSize:  1,
		Realm:     realm,
		Pilot:     redemption.SpaceConfig{Ceiling: 10_000, PassSeries: pilotPassSeries},
		Racecraft: redemption.SpaceConfig{Ceiling: 10_000, PassSeries: racecraftPassSeries},
		Admin:     admin,
		Clock:     fake,
		Entropy:   &counterReader{},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.SetSigner(ctx, admin, issuer.Address()); err != nil {
		t.Fatalf("SetSigner: %v", err)
	}
	for _, flow := range redemption.Flows() {
		if err := store.SetFlowActive(ctx, admin, flow, true); err != nil {
			t.Fatalf("SetFlowActive(%s): %v", flow, err)
		}
	}

	windows, err := parseWindows(windowConfigs)
	if err != nil {
		t.Fatalf("parseWindows: %v", err)
	}

	public, privateKey, err := operator.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	socketPath := filepath.Join(t.TempDir(), "mint.sock")
	server := service.NewSocketServer(socketPath, testLogger(), &service.AuthConfig{
		PublicKey: public,
		Clock:     fake,
	})
	mint := &mintService{
		store:     store,
		clock:     fake,
		windows:   windows,
		startedAt: fake.Now(),
		logger:    testLogger(),
	}
	mint.registerActions(server)

	serveCtx, cancel := context.WithCancel(ctx)
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		server.Serve(serveCtx)
	}()
	t.Cleanup(func() {
		cancel()
		<-serveDone
	})
	waitForSocket(t, socketPath)

	return &fixture{
		store:      store,
		mint:       mint,
		issuer:     issuer,
		realm:      realm,
		clock:      fake,
		socketPath: socketPath,
		privateKey: privateKey,
		ctx:        ctx,
	}
}

// token mints an operator token for party, valid for an hour of
// fake-clock time.
func (f *fixture) token(t *testing.T, subject string, party ref.Party, scopes ...string) []byte {
	t.Helper()
	now := f.clock.Now()
	tokenBytes, err := operator.Mint(f.privateKey, &operator.Token{
		Subject:   subject,
		Party:     party,
		Scopes:    scopes,
		ID:        "fixture-token",
		IssuedAt:  now.Add(-time.Minute).Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return tokenBytes
}

// adminClient acts as the bootstrap admin under the admin scope.
func (f *fixture) adminClient(t *testing.T) *service.ServiceClient {
	t.Helper()
	return service.NewServiceClientFromToken(f.socketPath, f.token(t, "ops/test", admin, operator.ScopeAdmin))
}

// gatewayClient acts as a storefront gateway: gateway scope, no
// on-ledger party of its own.
func (f *fixture) gatewayClient(t *testing.T) *service.ServiceClient {
	t.Helper()
	return service.NewServiceClientFromToken(f.socketPath, f.token(t, "gateway/test", ref.Party{}, operator.ScopeGateway))
}

// anonClient sends unauthenticated requests.
func (f *fixture) anonClient() *service.ServiceClient {
	return service.NewServiceClientFromToken(f.socketPath, nil)
}

// waitForSocket polls until the socket file exists. Bounded by the
// test context timeout (no wall-clock access).
func waitForSocket(t *testing.T, path string) {
	t.Helper()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if t.Context().Err() != nil {
			t.Fatalf("socket %s did not appear before test context expired", path)
		}
		runtime.Gosched()
	}
}

// waitUntil polls a condition, bounded by the test context.
func waitUntil(t *testing.T, what string, condition func() bool) {
	t.Helper()
	for !condition() {
		if t.Context().Err() != nil {
			t.Fatalf("%s did not happen before test context expired", what)
		}
		runtime.Gosched()
	}
}

// serviceError asserts err is a server-side failure and returns its
// message.
func serviceError(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a service error, got nil")
	}
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *service.ServiceError, got %T: %v", err, err)
	}
	return svcErr.Message
}

func TestPingWithoutToken(t *testing.T) {
	f := newFixture(t)

	var response pingResponse
	if err := f.anonClient().Call(f.ctx, "ping", nil, &response); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if response.UptimeSeconds != 0 {
		t.Errorf("uptime = %v, want 0 on a fresh fake clock", response.UptimeSeconds)
	}

	f.clock.Advance(90 * time.Second)
	if err := f.anonClient().Call(f.ctx, "ping", nil, &response); err != nil {
		t.Fatalf("second ping: %v", err)
	}
	if response.UptimeSeconds != 90 {
		t.Errorf("uptime = %v, want 90", response.UptimeSeconds)
	}
}

func TestStatusRequiresToken(t *testing.T) {
	f := newFixture(t)

	err := f.anonClient().Call(f.ctx, "status", nil, nil)
	message := serviceError(t, err)
	if !strings.Contains(message, "missing token field") {
		t.Errorf("error = %q, want missing token mentioned", message)
	}
}

func TestStatusSnapshot(t *testing.T) {
	f := newFixture(t)

	var status statusResponse
	if err := f.gatewayClient(t).Call(f.ctx, "status", nil, &status); err != nil {
		t.Fatalf("status: %v", err)
	}

	if status.At != testEpoch.Unix() {
		t.Errorf("at = %d, want %d", status.At, testEpoch.Unix())
	}
	if len(status.Flows) != len(redemption.Flows()) {
		t.Fatalf("flows = %d entries, want %d", len(status.Flows), len(redemption.Flows()))
	}
	for _, flow := range status.Flows {
		if !flow.Active {
			t.Errorf("flow %s inactive, fixture switches every flow on", flow.Flow)
		}
	}
	if status.Signer != f.issuer.Address().String() {
		t.Errorf("signer = %s, want %s", status.Signer, f.issuer.Address())
	}
	if status.Treasury != 0 {
		t.Errorf("treasury = %d, want 0", status.Treasury)
	}
	if status.SeedsConsumed != 0 {
		t.Errorf("seeds consumed = %d, want 0", status.SeedsConsumed)
	}
	if len(status.Spaces) != 2 {
		t.Fatalf("spaces = %d entries, want 2", len(status.Spaces))
	}
	if status.Spaces[0].Space != "pilot" || status.Spaces[1].Space != "racecraft" {
		t.Errorf("space order = %s, %s; want pilot, racecraft", status.Spaces[0].Space, status.Spaces[1].Space)
	}
	for _, space := range status.Spaces {
		if space.Ceiling != 10_000 {
			t.Errorf("space %s ceiling = %d, want 10000", space.Space, space.Ceiling)
		}
	}
	if len(status.Windows) != 0 {
		t.Errorf("windows = %d entries, want none configured", len(status.Windows))
	}
}

func TestStatusReportsWindows(t *testing.T) {
	f := newFixture(t, config.WindowConfig{
		Flow:  "claim",
		Open:  "0 9 * * *",
		Close: "0 17 * * *",
	})

	var status statusResponse
	if err := f.gatewayClient(t).Call(f.ctx, "status", nil, &status); err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.Windows) != 1 {
		t.Fatalf("windows = %d entries, want 1", len(status.Windows))
	}

	w := status.Windows[0]
	if w.Flow != "claim" {
		t.Errorf("window flow = %s, want claim", w.Flow)
	}
	if w.Open != "0 9 * * *" || w.Close != "0 17 * * *" {
		t.Errorf("window expressions = %q / %q, want originals echoed", w.Open, w.Close)
	}
	// The clock sits at 12:00, inside the window: the next close is
	// today at 17:00, the next open tomorrow at 09:00.
	wantClose := time.Date(2026, 1, 15, 17, 0, 0, 0, time.UTC).Unix()
	wantOpen := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC).Unix()
	if w.NextClose != wantClose {
		t.Errorf("next close = %d, want %d", w.NextClose, wantClose)
	}
	if w.NextOpen != wantOpen {
		t.Errorf("next open = %d, want %d", w.NextOpen, wantOpen)
	}
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t)

	err := f.adminClient(t).Call(f.ctx, "self-destruct", nil, nil)
	message := serviceError(t, err)
	if !strings.Contains(message, `unknown action "self-destruct"`) {
		t.Errorf("error = %q, want unknown action named", message)
	}
}

func TestAdminActionNeedsAdminScope(t *testing.T) {
	f := newFixture(t)

	err := f.gatewayClient(t).Call(f.ctx, "flow-set", map[string]any{
		"flow":   "claim",
		"active": false,
	}, nil)
	message := serviceError(t, err)
	if !strings.Contains(message, `"admin"`) {
		t.Errorf("error = %q, want missing admin scope named", message)
	}
}

func TestGatewayActionNeedsGatewayScope(t *testing.T) {
	f := newFixture(t)

	err := f.adminClient(t).Call(f.ctx, "claim-pass", map[string]any{
		"party":     alice,
		"series_id": pilotPassSeries,
	}, nil)
	message := serviceError(t, err)
	if !strings.Contains(message, `"gateway"`) {
		t.Errorf("error = %q, want missing gateway scope named", message)
	}
}

// A stolen admin-scope token is only as strong as its party's role
// grants: the scope clears the front door, the store still refuses.
func TestAdminScopeDoesNotBypassRoles(t *testing.T) {
	f := newFixture(t)

	intruder := service.NewServiceClientFromToken(f.socketPath, f.token(t, "ops/intruder", bob, operator.ScopeAdmin))
	err := intruder.Call(f.ctx, "series-register", map[string]any{
		"id":         uint64(9),
		"label":      "sneaky series",
		"max_supply": uint64(10),
	}, nil)
	message := serviceError(t, err)
	if !strings.Contains(message, "lacks required role") {
		t.Errorf("error = %q, want role denial", message)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	f := newFixture(t)

	stale := f.token(t, "ops/test", admin, operator.ScopeAdmin)
	f.clock.Advance(2 * time.Hour)

	err := service.NewServiceClientFromToken(f.socketPath, stale).Call(f.ctx, "status", nil, nil)
	message := serviceError(t, err)
	if !strings.Contains(message, "token expired") {
		t.Errorf("error = %q, want expiry mentioned", message)
	}
}
