// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/ref"
)

// DocumentVersion is the schema version written into every captured
// document. Bump it when a section changes shape; readers use it to
// decide whether they understand the document.
const DocumentVersion = 1

// Document is the full issuance state at one instant. Field tags are
// integers to keep the encoded form compact and stable; slices hold
// rows in primary-key order so encoding is deterministic.
//
// The row structs are snapshot-local rather than the engine types on
// purpose: engine types carry behavior and evolve with the code,
// while these define a wire contract that only changes with
// DocumentVersion.
type Document struct {
	Version    uint64     `cbor:"1,keyasint"`
	CapturedAt int64      `cbor:"2,keyasint"`
	Realm      RealmState `cbor:"3,keyasint"`

	Flows    map[string]bool `cbor:"4,keyasint,omitempty"`
	Signer   ref.Party       `cbor:"5,keyasint"`
	Treasury uint64          `cbor:"6,keyasint"`

	Accounts     []AccountState  `cbor:"7,keyasint,omitempty"`
	Series       []SeriesState   `cbor:"8,keyasint,omitempty"`
	PassHoldings []PassHolding   `cbor:"9,keyasint,omitempty"`
	ClaimCounts  []ClaimCount    `cbor:"10,keyasint,omitempty"`
	Fragments    []FragmentState `cbor:"11,keyasint,omitempty"`
	DrawSlots    []DrawSlot      `cbor:"12,keyasint,omitempty"`
	Assets       []AssetState    `cbor:"13,keyasint,omitempty"`
	Items        []ItemHolding   `cbor:"14,keyasint,omitempty"`
	Bundles      []BundleEntry   `cbor:"15,keyasint,omitempty"`
	Categories   []CategoryState `cbor:"16,keyasint,omitempty"`
	Seeds        []SeedState     `cbor:"17,keyasint,omitempty"`
	Grants       []GrantState    `cbor:"18,keyasint,omitempty"`
	Audit        []AuditEntry    `cbor:"19,keyasint,omitempty"`
}

// RealmState records which deployment the snapshot came from. A
// restore tool refuses to load a snapshot into a store configured for
// a different realm.
type RealmState struct {
	Address ref.Party `cbor:"1,keyasint"`
	Network uint64    `cbor:"2,keyasint"`
}

// AccountState is one vault account.
type AccountState struct {
	Party   ref.Party `cbor:"1,keyasint"`
	Balance uint64    `cbor:"2,keyasint"`
	Frozen  bool      `cbor:"3,keyasint"`
}

// SeriesState is one pass series with its mint counters.
type SeriesState struct {
	ID             uint64 `cbor:"1,keyasint"`
	Label          string `cbor:"2,keyasint"`
	MaxSupply      uint64 `cbor:"3,keyasint"`
	ReservedSize   uint64 `cbor:"4,keyasint"`
	MintedPublic   uint64 `cbor:"5,keyasint"`
	MintedReserved uint64 `cbor:"6,keyasint"`
	CreatedAt      int64  `cbor:"7,keyasint"`
}

// PassHolding is one party's pass balance in one series.
type PassHolding struct {
	Party   ref.Party `cbor:"1,keyasint"`
	Series  uint64    `cbor:"2,keyasint"`
	Balance uint64    `cbor:"3,keyasint"`
}

// ClaimCount is one party's lifetime claim total in one series. Kept
// separately from the balance because redeeming passes does not give
// allotment back.
type ClaimCount struct {
	Series  uint64    `cbor:"1,keyasint"`
	Party   ref.Party `cbor:"2,keyasint"`
	Claimed uint64    `cbor:"3,keyasint"`
}

// FragmentState is one fragment with its issuance counters.
type FragmentState struct {
	Space          string `cbor:"1,keyasint"`
	ID             uint64 `cbor:"2,keyasint"`
	Label          string `cbor:"3,keyasint"`
	FirstID        uint64 `cbor:"4,keyasint"`
	Supply         uint64 `cbor:"5,keyasint"`
	ReservedSize   uint64 `cbor:"6,keyasint"`
	ReservedIssued uint64 `cbor:"7,keyasint"`
	PublicIssued   uint64 `cbor:"8,keyasint"`
	Locked         bool   `cbor:"9,keyasint"`
	CreatedAt      int64  `cbor:"10,keyasint"`
}

// DrawSlot is one displaced entry in a fragment's draw state. Only
// slots the shuffle has touched have rows, so this section stays
// small even for large fragments.
type DrawSlot struct {
	Space    string `cbor:"1,keyasint"`
	Fragment uint64 `cbor:"2,keyasint"`
	Slot     uint64 `cbor:"3,keyasint"`
	Value    uint64 `cbor:"4,keyasint"`
}

// AssetState is one issued identifier with its provenance.
type AssetState struct {
	Space      string    `cbor:"1,keyasint"`
	TokenID    uint64    `cbor:"2,keyasint"`
	FragmentID uint64    `cbor:"3,keyasint"`
	Owner      ref.Party `cbor:"4,keyasint"`
	Seed       ref.Seed  `cbor:"5,keyasint"`
	MintedAt   int64     `cbor:"6,keyasint"`
}

// ItemHolding is one party's balance of one fungible item.
type ItemHolding struct {
	Party   ref.Party `cbor:"1,keyasint"`
	ItemID  uint64    `cbor:"2,keyasint"`
	Balance uint64    `cbor:"3,keyasint"`
}

// BundleEntry is one line of a series' inventory bundle.
type BundleEntry struct {
	Series uint64 `cbor:"1,keyasint"`
	ItemID uint64 `cbor:"2,keyasint"`
	Amount uint64 `cbor:"3,keyasint"`
}

// CategoryState is one reward category: its tier weights and its
// slot items in slot order.
type CategoryState struct {
	ID     uint64   `cbor:"1,keyasint"`
	Label  string   `cbor:"2,keyasint"`
	Common uint64   `cbor:"3,keyasint"`
	Mid    uint64   `cbor:"4,keyasint"`
	Rare   uint64   `cbor:"5,keyasint"`
	Items  []uint64 `cbor:"6,keyasint"`
}

// SeedState is one consumed request seed.
type SeedState struct {
	Seed       ref.Seed `cbor:"1,keyasint"`
	Flow       string   `cbor:"2,keyasint"`
	ConsumedAt int64    `cbor:"3,keyasint"`
}

// GrantState is one role grant.
type GrantState struct {
	Party     ref.Party `cbor:"1,keyasint"`
	Role      string    `cbor:"2,keyasint"`
	GrantedBy ref.Party `cbor:"3,keyasint"`
	GrantedAt int64     `cbor:"4,keyasint"`
	ExpiresAt int64     `cbor:"5,keyasint"`
}

// AuditEntry is one audit record. Detail is the record's raw CBOR
// payload, carried opaquely.
type AuditEntry struct {
	Seq    uint64    `cbor:"1,keyasint"`
	At     int64     `cbor:"2,keyasint"`
	Actor  ref.Party `cbor:"3,keyasint"`
	Event  string    `cbor:"4,keyasint"`
	Detail []byte    `cbor:"5,keyasint"`
}

// Capture reads every table into a Document. The connection should be
// inside a read transaction when other writers are live; Capture
// itself only issues SELECTs.
//
// Every query orders by primary key, which together with
// deterministic encoding makes repeated captures of unchanged state
// byte-identical.
func Capture(conn *sqlite.Conn, realm coupon.Realm, at time.Time) (*Document, error) {
	document := &Document{
		Version:    DocumentVersion,
		CapturedAt: at.Unix(),
		Realm: RealmState{
			Address: realm.Address,
			Network: realm.Network,
		},
	}

	steps := []struct {
		name string
		fn   func(*sqlite.Conn, *Document) error
	}{
		{"flows", captureFlows},
		{"signer", captureSigner},
		{"treasury", captureTreasury},
		{"accounts", captureAccounts},
		{"series", captureSeries},
		{"pass holdings", capturePassHoldings},
		{"claim counts", captureClaimCounts},
		{"fragments", captureFragments},
		{"draw slots", captureDrawSlots},
		{"assets", captureAssets},
		{"items", captureItems},
		{"bundles", captureBundles},
		{"categories", captureCategories},
		{"seeds", captureSeeds},
		{"grants", captureGrants},
		{"audit", captureAudit},
	}
	for _, step := range steps {
		if err := step.fn(conn, document); err != nil {
			return nil, fmt.Errorf("snapshot: capturing %s: %w", step.name, err)
		}
	}
	return document, nil
}

func captureFlows(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT flow, active FROM flow_flags ORDER BY flow
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if document.Flows == nil {
				document.Flows = make(map[string]bool)
			}
			document.Flows[stmt.ColumnText(0)] = stmt.ColumnInt64(1) != 0
			return nil
		},
	})
}

func captureSigner(conn *sqlite.Conn, document *Document) error {
	// At most one row. Absent means no signer configured yet; the
	// document keeps the zero party.
	return sqlitex.Execute(conn, `
		SELECT signer FROM trusted_signer WHERE id = 1
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			signer, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			document.Signer = signer
			return nil
		},
	})
}

func captureTreasury(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT balance FROM vault_treasury WHERE id = 1
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			document.Treasury = uint64(stmt.ColumnInt64(0))
			return nil
		},
	})
}

func captureAccounts(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT party, balance, frozen FROM vault_accounts ORDER BY party
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			party, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			document.Accounts = append(document.Accounts, AccountState{
				Party:   party,
				Balance: uint64(stmt.ColumnInt64(1)),
				Frozen:  stmt.ColumnInt64(2) != 0,
			})
			return nil
		},
	})
}

func captureSeries(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT id, label, max_supply, reserved_size, minted_public, minted_reserved, created_at
		FROM pass_series ORDER BY id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			document.Series = append(document.Series, SeriesState{
				ID:             uint64(stmt.ColumnInt64(0)),
				Label:          stmt.ColumnText(1),
				MaxSupply:      uint64(stmt.ColumnInt64(2)),
				ReservedSize:   uint64(stmt.ColumnInt64(3)),
				MintedPublic:   uint64(stmt.ColumnInt64(4)),
				MintedReserved: uint64(stmt.ColumnInt64(5)),
				CreatedAt:      stmt.ColumnInt64(6),
			})
			return nil
		},
	})
}

func capturePassHoldings(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT party, series, balance FROM pass_balances ORDER BY party, series
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			party, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			document.PassHoldings = append(document.PassHoldings, PassHolding{
				Party:   party,
				Series:  uint64(stmt.ColumnInt64(1)),
				Balance: uint64(stmt.ColumnInt64(2)),
			})
			return nil
		},
	})
}

func captureClaimCounts(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT series, party, claimed FROM pass_claims ORDER BY series, party
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			party, err := ref.ParseParty(stmt.ColumnText(1))
			if err != nil {
				return err
			}
			document.ClaimCounts = append(document.ClaimCounts, ClaimCount{
				Series:  uint64(stmt.ColumnInt64(0)),
				Party:   party,
				Claimed: uint64(stmt.ColumnInt64(2)),
			})
			return nil
		},
	})
}

func captureFragments(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT space, id, label, first_id, supply, reserved_size,
		       reserved_issued, public_issued, locked, created_at
		FROM fragments ORDER BY space, id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			document.Fragments = append(document.Fragments, FragmentState{
				Space:          stmt.ColumnText(0),
				ID:             uint64(stmt.ColumnInt64(1)),
				Label:          stmt.ColumnText(2),
				FirstID:        uint64(stmt.ColumnInt64(3)),
				Supply:         uint64(stmt.ColumnInt64(4)),
				ReservedSize:   uint64(stmt.ColumnInt64(5)),
				ReservedIssued: uint64(stmt.ColumnInt64(6)),
				PublicIssued:   uint64(stmt.ColumnInt64(7)),
				Locked:         stmt.ColumnInt64(8) != 0,
				CreatedAt:      stmt.ColumnInt64(9),
			})
			return nil
		},
	})
}

func captureDrawSlots(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT space, fragment_id, slot, value FROM draw_slots
		ORDER BY space, fragment_id, slot
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			document.DrawSlots = append(document.DrawSlots, DrawSlot{
				Space:    stmt.ColumnText(0),
				Fragment: uint64(stmt.ColumnInt64(1)),
				Slot:     uint64(stmt.ColumnInt64(2)),
				Value:    uint64(stmt.ColumnInt64(3)),
			})
			return nil
		},
	})
}

func captureAssets(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT space, token_id, fragment_id, owner, seed, minted_at
		FROM assets ORDER BY space, token_id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			owner, err := ref.ParseParty(stmt.ColumnText(3))
			if err != nil {
				return err
			}
			seedBytes := make([]byte, stmt.ColumnLen(4))
			stmt.ColumnBytes(4, seedBytes)
			seed, err := ref.SeedFromBytes(seedBytes)
			if err != nil {
				return err
			}
			document.Assets = append(document.Assets, AssetState{
				Space:      stmt.ColumnText(0),
				TokenID:    uint64(stmt.ColumnInt64(1)),
				FragmentID: uint64(stmt.ColumnInt64(2)),
				Owner:      owner,
				Seed:       seed,
				MintedAt:   stmt.ColumnInt64(5),
			})
			return nil
		},
	})
}

func captureItems(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT party, item_id, balance FROM item_balances ORDER BY party, item_id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			party, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			document.Items = append(document.Items, ItemHolding{
				Party:   party,
				ItemID:  uint64(stmt.ColumnInt64(1)),
				Balance: uint64(stmt.ColumnInt64(2)),
			})
			return nil
		},
	})
}

func captureBundles(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT series_id, item_id, amount FROM item_bundles ORDER BY series_id, item_id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			document.Bundles = append(document.Bundles, BundleEntry{
				Series: uint64(stmt.ColumnInt64(0)),
				ItemID: uint64(stmt.ColumnInt64(1)),
				Amount: uint64(stmt.ColumnInt64(2)),
			})
			return nil
		},
	})
}

func captureCategories(conn *sqlite.Conn, document *Document) error {
	err := sqlitex.Execute(conn, `
		SELECT category_id, label, weight_common, weight_mid, weight_rare
		FROM reward_categories ORDER BY category_id
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			document.Categories = append(document.Categories, CategoryState{
				ID:     uint64(stmt.ColumnInt64(0)),
				Label:  stmt.ColumnText(1),
				Common: uint64(stmt.ColumnInt64(2)),
				Mid:    uint64(stmt.ColumnInt64(3)),
				Rare:   uint64(stmt.ColumnInt64(4)),
			})
			return nil
		},
	})
	if err != nil {
		return err
	}

	// Second pass fills each category's slot items. Categories are
	// already ordered by id, matching the outer query.
	for i := range document.Categories {
		category := &document.Categories[i]
		err := sqlitex.Execute(conn, `
			SELECT item_id FROM reward_slots WHERE category_id = ? ORDER BY slot
		`, &sqlitex.ExecOptions{
			Args: []any{int64(category.ID)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				category.Items = append(category.Items, uint64(stmt.ColumnInt64(0)))
				return nil
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func captureSeeds(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT seed, flow, consumed_at FROM consumed_seeds ORDER BY seed
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			seedBytes := make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, seedBytes)
			seed, err := ref.SeedFromBytes(seedBytes)
			if err != nil {
				return err
			}
			document.Seeds = append(document.Seeds, SeedState{
				Seed:       seed,
				Flow:       stmt.ColumnText(1),
				ConsumedAt: stmt.ColumnInt64(2),
			})
			return nil
		},
	})
}

func captureGrants(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT party, role, granted_by, granted_at, expires_at
		FROM role_grants ORDER BY party, role
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			party, err := ref.ParseParty(stmt.ColumnText(0))
			if err != nil {
				return err
			}
			grantedBy, err := ref.ParseParty(stmt.ColumnText(2))
			if err != nil {
				return err
			}
			document.Grants = append(document.Grants, GrantState{
				Party:     party,
				Role:      stmt.ColumnText(1),
				GrantedBy: grantedBy,
				GrantedAt: stmt.ColumnInt64(3),
				ExpiresAt: stmt.ColumnInt64(4),
			})
			return nil
		},
	})
}

func captureAudit(conn *sqlite.Conn, document *Document) error {
	return sqlitex.Execute(conn, `
		SELECT seq, at, actor, event, detail FROM audit_log ORDER BY seq
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			actor, err := ref.ParseParty(stmt.ColumnText(2))
			if err != nil {
				return err
			}
			detail := make([]byte, stmt.ColumnLen(4))
			stmt.ColumnBytes(4, detail)
			document.Audit = append(document.Audit, AuditEntry{
				Seq:    uint64(stmt.ColumnInt64(0)),
				At:     stmt.ColumnInt64(1),
				Actor:  actor,
				Event:  stmt.ColumnText(3),
				Detail: detail,
			})
			return nil
		},
	})
}
