// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/authorization"
	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/fragment"
	"github.com/hangar-foundation/hangar/lib/ledger"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/hangar-foundation/hangar/lib/replay"
	"github.com/hangar-foundation/hangar/lib/reward"
	"github.com/hangar-foundation/hangar/lib/sqlitepool"
	"github.com/hangar-foundation/hangar/lib/vault"
)

// Orchestrator errors. Engine packages carry their own sentinels
// (fragment.ErrPoolExhausted, replay.ErrSeedAlreadyUsed, ...); these
// cover the checks the orchestrator itself performs.
var (
	// ErrFlowInactive is returned when a flow's switch is off.
	ErrFlowInactive = errors.New("flow is not active")

	// ErrSeriesUnconfigured is returned when a claim targets a series
	// registered with zero supply.
	ErrSeriesUnconfigured = errors.New("series has no supply configured")

	// ErrCeilingUnconfigured is returned when a redemption targets a
	// space whose token ceiling was never set.
	ErrCeilingUnconfigured = errors.New("space ceiling not configured")

	// ErrZeroQuantity rejects requests for zero passes.
	ErrZeroQuantity = errors.New("quantity must be non-zero")

	// ErrZeroAllotment rejects coupons quoting a zero per-party cap.
	ErrZeroAllotment = errors.New("allotment must be non-zero")

	// ErrZeroParty rejects the zero address where a real party is
	// required (signer rotation, airdrop recipients, deposits).
	ErrZeroParty = errors.New("party must be non-zero")

	// ErrPaymentOverflow guards price times quantity.
	ErrPaymentOverflow = errors.New("price times quantity overflows")

	// ErrInsufficientPayment is returned when the tendered amount is
	// below price times quantity.
	ErrInsufficientPayment = errors.New("payment below amount owed")

	// ErrAllotmentExceeded is returned when a claim would push a
	// party past the coupon's per-party cap.
	ErrAllotmentExceeded = errors.New("per-party allotment exceeded")

	// ErrCouponRejected is returned when a structurally valid coupon
	// recovers to an address other than the trusted signer.
	ErrCouponRejected = errors.New("coupon not signed by trusted signer")

	// ErrSignerUnconfigured is returned when coupon verification is
	// needed but no trusted signer has been set.
	ErrSignerUnconfigured = errors.New("trusted signer not configured")

	// ErrNoBundle is returned when an inventory redemption targets a
	// series without a configured item bundle.
	ErrNoBundle = errors.New("series has no item bundle")

	// ErrPairedReservedTooLarge is returned when a paired fragment's
	// supply does not strictly exceed one of the reserved sizes.
	ErrPairedReservedTooLarge = errors.New("reserved size must be below paired supply")

	// ErrNoRecipients rejects empty airdrop batches.
	ErrNoRecipients = errors.New("airdrop has no recipients")

	// ErrUnauthorized is returned when the acting party lacks a role
	// covering the attempted operation.
	ErrUnauthorized = errors.New("party lacks required role")
)

// Vault is the credit-ledger surface the orchestrator drives. It is
// an interface so tests can fault individual payment legs; production
// uses the SQLite-backed vault package unchanged.
type Vault interface {
	Deposit(conn *sqlite.Conn, party ref.Party, amount uint64) error
	Debit(conn *sqlite.Conn, party ref.Party, amount uint64) error
	Credit(conn *sqlite.Conn, party ref.Party, amount uint64) error
	SetFrozen(conn *sqlite.Conn, party ref.Party, frozen bool) error
	TreasuryAdd(conn *sqlite.Conn, amount uint64) error
	TreasuryBalance(conn *sqlite.Conn) (uint64, error)
	Withdraw(conn *sqlite.Conn, to ref.Party, amount uint64) error
}

type sqliteVault struct{}

func (sqliteVault) Deposit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	return vault.Deposit(conn, party, amount)
}

func (sqliteVault) Debit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	return vault.Debit(conn, party, amount)
}

func (sqliteVault) Credit(conn *sqlite.Conn, party ref.Party, amount uint64) error {
	return vault.Credit(conn, party, amount)
}

func (sqliteVault) SetFrozen(conn *sqlite.Conn, party ref.Party, frozen bool) error {
	return vault.SetFrozen(conn, party, frozen)
}

func (sqliteVault) TreasuryAdd(conn *sqlite.Conn, amount uint64) error {
	return vault.TreasuryAdd(conn, amount)
}

func (sqliteVault) TreasuryBalance(conn *sqlite.Conn) (uint64, error) {
	return vault.TreasuryBalance(conn)
}

func (sqliteVault) Withdraw(conn *sqlite.Conn, to ref.Party, amount uint64) error {
	return vault.Withdraw(conn, to, amount)
}

// SpaceConfig is the per-space issuance configuration.
type SpaceConfig struct {
	// Ceiling is the highest token ID the space may ever issue. Zero
	// means unconfigured: fragment creation and redemptions fail
	// until it is set.
	Ceiling uint64

	// PassSeries is the pass series burned to redeem an asset in
	// this space.
	PassSeries uint64
}

// Config assembles a Store.
type Config struct {
	// Path is the SQLite database path. ":memory:" with PoolSize 1
	// serves tests.
	Path string

	// PoolSize is the connection pool size. Zero picks the
	// sqlitepool default.
	PoolSize int

	// Realm identifies this deployment in every coupon digest.
	Realm coupon.Realm

	// Pilot and Racecraft configure the two identifier spaces.
	Pilot     SpaceConfig
	Racecraft SpaceConfig

	// Admin, when non-zero, is granted the admin role at open if the
	// role table is empty. This bootstraps a fresh database; an
	// established database keeps its grants.
	Admin ref.Party

	// Clock drives timestamps and grant expiry. Nil means real time.
	Clock clock.Clock

	// Entropy is the draw entropy source. Nil means crypto/rand.
	Entropy io.Reader

	// Vault overrides the credit ledger. Nil means the SQLite vault.
	Vault Vault

	// Logger receives flow events. Nil means discard.
	Logger *slog.Logger
}

// Store is the orchestrator. All methods are safe for concurrent use;
// SQLite serializes the write transactions underneath.
type Store struct {
	pool    *sqlitepool.Pool
	realm   coupon.Realm
	spaces  map[fragment.Space]SpaceConfig
	clock   clock.Clock
	entropy io.Reader
	vault   Vault
	logger  *slog.Logger
}

// Open opens the database, applies every engine schema, and
// bootstraps the admin role if configured and the database is fresh.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("redemption store: Path is required")
	}
	if cfg.Realm.Address.IsZero() {
		return nil, fmt.Errorf("redemption store: Realm address is required")
	}

	store := &Store{
		realm: cfg.Realm,
		spaces: map[fragment.Space]SpaceConfig{
			fragment.SpacePilot:     cfg.Pilot,
			fragment.SpaceRacecraft: cfg.Racecraft,
		},
		clock:   cfg.Clock,
		entropy: cfg.Entropy,
		vault:   cfg.Vault,
		logger:  cfg.Logger,
	}
	if store.clock == nil {
		store.clock = clock.Real()
	}
	if store.entropy == nil {
		store.entropy = rand.Reader
	}
	if store.vault == nil {
		store.vault = sqliteVault{}
	}
	if store.logger == nil {
		store.logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      cfg.Path,
		PoolSize:  cfg.PoolSize,
		Logger:    store.logger,
		OnConnect: initSchemas,
	})
	if err != nil {
		return nil, fmt.Errorf("redemption store: %w", err)
	}
	store.pool = pool

	if !cfg.Admin.IsZero() {
		if err := store.bootstrapAdmin(ctx, cfg.Admin); err != nil {
			pool.Close()
			return nil, fmt.Errorf("redemption store: bootstrap admin: %w", err)
		}
	}
	return store, nil
}

// Close closes the connection pool. Blocks until borrowed connections
// are returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// initSchemas applies every engine schema plus the orchestrator's own
// tables. All scripts are idempotent.
func initSchemas(conn *sqlite.Conn) error {
	schemas := []func(*sqlite.Conn) error{
		fragment.InitSchema,
		replay.InitSchema,
		vault.InitSchema,
		ledger.InitPassSchema,
		ledger.InitAssetSchema,
		ledger.InitItemSchema,
		reward.InitSchema,
		authorization.InitSchema,
		initOrchestratorSchema,
	}
	for _, schema := range schemas {
		if err := schema(conn); err != nil {
			return err
		}
	}
	return nil
}

func initOrchestratorSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS flow_flags (
			flow   TEXT    PRIMARY KEY,
			active INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trusted_signer (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			signer     TEXT    NOT NULL,
			rotated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS audit_log (
			seq    INTEGER PRIMARY KEY AUTOINCREMENT,
			at     INTEGER NOT NULL,
			actor  TEXT    NOT NULL,
			event  TEXT    NOT NULL,
			detail BLOB    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS item_bundles (
			series_id INTEGER NOT NULL,
			item_id   INTEGER NOT NULL,
			amount    INTEGER NOT NULL,
			PRIMARY KEY (series_id, item_id)
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("orchestrator schema: %w", err)
	}
	return nil
}

// bootstrapAdmin grants the configured admin the admin role when the
// grant table is empty.
func (s *Store) bootstrapAdmin(ctx context.Context, admin ref.Party) error {
	return s.writeTx(ctx, func(conn *sqlite.Conn) error {
		grants, err := authorization.ListGrants(conn)
		if err != nil {
			return err
		}
		if len(grants) > 0 {
			return nil
		}
		now := s.clock.Now()
		if err := authorization.Grant(conn, admin, authorization.RoleAdmin, admin, now, time.Time{}); err != nil {
			return err
		}
		return s.appendAudit(conn, admin, "bootstrap-admin", map[string]any{
			"party": admin.String(),
		})
	})
}

// writeTx runs fn inside one IMMEDIATE transaction. The transaction
// commits only when fn returns nil; any error rolls back every write
// fn made.
func (s *Store) writeTx(ctx context.Context, fn func(conn *sqlite.Conn) error) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = fn(conn)
	return err
}

// readTx runs fn inside a deferred transaction for a consistent
// snapshot across multiple reads.
func (s *Store) readTx(ctx context.Context, fn func(conn *sqlite.Conn) error) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction := sqlitex.Transaction(conn)
	defer endTransaction(&err)

	err = fn(conn)
	return err
}

// spaceConfig returns the configuration for a space. Unknown spaces
// read as zero (unconfigured).
func (s *Store) spaceConfig(space fragment.Space) SpaceConfig {
	return s.spaces[space]
}

// requireRole fails with ErrUnauthorized unless the actor holds a
// role covering the action.
func (s *Store) requireRole(conn *sqlite.Conn, actor ref.Party, action string) error {
	result, err := authorization.Authorize(conn, actor, action, s.clock.Now())
	if err != nil {
		return err
	}
	if result.Decision != authorization.Allow {
		return fmt.Errorf("%w: %s needs %s: %s", ErrUnauthorized, actor, action, result.Reason)
	}
	return nil
}

// verifierFor builds a coupon verifier from the current trusted
// signer row. Built per-flow so rotation applies to the next request
// with no transition window.
func (s *Store) verifierFor(conn *sqlite.Conn) (coupon.Verifier, error) {
	signer, err := signerParty(conn)
	if err != nil {
		return coupon.Verifier{}, err
	}
	return coupon.Verifier{Signer: signer}, nil
}
