// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"errors"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Space names an identifier space. Each space has its own fragment
// sequence, ceiling, and draw state.
type Space string

const (
	// SpacePilot is the pilot asset identifier space.
	SpacePilot Space = "pilot"

	// SpaceRacecraft is the racecraft asset identifier space.
	SpaceRacecraft Space = "racecraft"
)

// Valid reports whether s is a known space.
func (s Space) Valid() bool {
	return s == SpacePilot || s == SpaceRacecraft
}

// Fragment creation and issuance errors. Creation checks run in a
// fixed order; callers distinguish outcomes with errors.Is.
var (
	// ErrInvalidSupply rejects fragments with supply of one or zero.
	ErrInvalidSupply = errors.New("fragment supply must exceed 1")

	// ErrSupplyExceedsCollection rejects fragments whose last ID
	// would pass the space's collection ceiling.
	ErrSupplyExceedsCollection = errors.New("fragment exceeds collection ceiling")

	// ErrReservedExceedsSupply rejects reserved sizes larger than the
	// fragment itself.
	ErrReservedExceedsSupply = errors.New("reserved size exceeds fragment supply")

	// ErrFragmentExists rejects re-creating an existing fragment ID.
	ErrFragmentExists = errors.New("fragment already exists")

	// ErrNonSequentialFragment rejects out-of-order creation: the
	// previous fragment ID must exist and the new first ID must equal
	// its end.
	ErrNonSequentialFragment = errors.New("fragment not sequential")

	// ErrFragmentNotFound is returned for lookups of fragments never
	// created.
	ErrFragmentNotFound = errors.New("fragment not found")

	// ErrFragmentLocked rejects metadata changes after the lock
	// latch.
	ErrFragmentLocked = errors.New("fragment is locked")

	// ErrPoolExhausted is returned by DrawRandom once every public ID
	// is issued.
	ErrPoolExhausted = errors.New("public pool exhausted")

	// ErrReservedPoolExhausted is returned by IssueReserved once
	// every reserved ID is issued.
	ErrReservedPoolExhausted = errors.New("reserved pool exhausted")

	// ErrTokenNotInReservedRange rejects reserved issuance of IDs
	// outside the reserved prefix.
	ErrTokenNotInReservedRange = errors.New("token not in reserved range")
)

// Spec describes a fragment to create.
type Spec struct {
	ID           uint64
	Supply       uint64
	FirstID      uint64
	ReservedSize uint64
	Label        string
}

// Fragment is one partition of a space.
type Fragment struct {
	Space          Space
	ID             uint64
	Label          string
	FirstID        uint64
	Supply         uint64
	ReservedSize   uint64
	ReservedIssued uint64
	PublicIssued   uint64
	Locked         bool
	CreatedAt      time.Time
}

// ReservedStart is the first reserved ID (equal to FirstID).
func (f Fragment) ReservedStart() uint64 { return f.FirstID }

// PublicStart is the first public ID.
func (f Fragment) PublicStart() uint64 { return f.FirstID + f.ReservedSize }

// PublicSize is the number of IDs in the public pool.
func (f Fragment) PublicSize() uint64 { return f.Supply - f.ReservedSize }

// PublicRemaining is the number of unissued public IDs.
func (f Fragment) PublicRemaining() uint64 { return f.PublicSize() - f.PublicIssued }

// ReservedRemaining is the number of unissued reserved IDs.
func (f Fragment) ReservedRemaining() uint64 { return f.ReservedSize - f.ReservedIssued }

// End is one past the fragment's last ID.
func (f Fragment) End() uint64 { return f.FirstID + f.Supply }

// InitSchema creates the fragment tables if they do not exist.
func InitSchema(conn *sqlite.Conn) error {
	err := sqlitex.ExecuteScript(conn, `
		CREATE TABLE IF NOT EXISTS fragments (
			space           TEXT    NOT NULL,
			id              INTEGER NOT NULL,
			label           TEXT    NOT NULL DEFAULT '',
			first_id        INTEGER NOT NULL,
			supply          INTEGER NOT NULL,
			reserved_size   INTEGER NOT NULL,
			reserved_issued INTEGER NOT NULL DEFAULT 0,
			public_issued   INTEGER NOT NULL DEFAULT 0,
			locked          INTEGER NOT NULL DEFAULT 0,
			created_at      INTEGER NOT NULL,
			PRIMARY KEY (space, id)
		);

		CREATE TABLE IF NOT EXISTS draw_slots (
			space       TEXT    NOT NULL,
			fragment_id INTEGER NOT NULL,
			slot        INTEGER NOT NULL,
			value       INTEGER NOT NULL,
			PRIMARY KEY (space, fragment_id, slot)
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("fragment schema: %w", err)
	}
	return nil
}

// Create adds a fragment to a space. ceiling is the space's highest
// permitted token ID. Checks run in order: supply bounds, ceiling,
// reserved bounds, duplicate ID, sequence. The first fragment of a
// space fixes the space's base ID; every later fragment must start
// exactly at the previous fragment's end.
func Create(conn *sqlite.Conn, space Space, spec Spec, ceiling uint64, now time.Time) (Fragment, error) {
	if spec.Supply <= 1 {
		return Fragment{}, fmt.Errorf("%w: supply %d", ErrInvalidSupply, spec.Supply)
	}
	if spec.FirstID > ceiling || spec.Supply > ceiling-spec.FirstID+1 {
		return Fragment{}, fmt.Errorf("%w: fragment [%d, %d) with ceiling %d",
			ErrSupplyExceedsCollection, spec.FirstID, spec.FirstID+spec.Supply, ceiling)
	}
	if spec.ReservedSize > spec.Supply {
		return Fragment{}, fmt.Errorf("%w: reserved %d, supply %d",
			ErrReservedExceedsSupply, spec.ReservedSize, spec.Supply)
	}

	exists, err := Exists(conn, space, spec.ID)
	if err != nil {
		return Fragment{}, err
	}
	if exists {
		return Fragment{}, fmt.Errorf("%w: %s fragment %d", ErrFragmentExists, space, spec.ID)
	}

	if spec.ID > 0 {
		previous, err := Get(conn, space, spec.ID-1)
		if errors.Is(err, ErrFragmentNotFound) {
			return Fragment{}, fmt.Errorf("%w: fragment %d created before %d",
				ErrNonSequentialFragment, spec.ID, spec.ID-1)
		}
		if err != nil {
			return Fragment{}, err
		}
		if spec.FirstID != previous.End() {
			return Fragment{}, fmt.Errorf("%w: first ID %d, previous fragment ends at %d",
				ErrNonSequentialFragment, spec.FirstID, previous.End())
		}
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO fragments (space, id, label, first_id, supply, reserved_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{
			string(space), int64(spec.ID), spec.Label, int64(spec.FirstID),
			int64(spec.Supply), int64(spec.ReservedSize), now.Unix(),
		},
	})
	if err != nil {
		return Fragment{}, fmt.Errorf("inserting fragment: %w", err)
	}

	return Fragment{
		Space:        space,
		ID:           spec.ID,
		Label:        spec.Label,
		FirstID:      spec.FirstID,
		Supply:       spec.Supply,
		ReservedSize: spec.ReservedSize,
		CreatedAt:    time.Unix(now.Unix(), 0).UTC(),
	}, nil
}

// Get loads one fragment.
func Get(conn *sqlite.Conn, space Space, id uint64) (Fragment, error) {
	var frag Fragment
	found := false
	err := sqlitex.Execute(conn, `
		SELECT id, label, first_id, supply, reserved_size, reserved_issued,
		       public_issued, locked, created_at
		FROM fragments WHERE space = ? AND id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			frag = scanFragment(space, stmt)
			return nil
		},
	})
	if err != nil {
		return Fragment{}, fmt.Errorf("loading fragment: %w", err)
	}
	if !found {
		return Fragment{}, fmt.Errorf("%w: %s fragment %d", ErrFragmentNotFound, space, id)
	}
	return frag, nil
}

// Exists reports whether a fragment ID was created in a space.
func Exists(conn *sqlite.Conn, space Space, id uint64) (bool, error) {
	exists := false
	err := sqlitex.Execute(conn, `
		SELECT 1 FROM fragments WHERE space = ? AND id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(id)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("checking fragment: %w", err)
	}
	return exists, nil
}

// List returns a space's fragments in ID order.
func List(conn *sqlite.Conn, space Space) ([]Fragment, error) {
	var fragments []Fragment
	err := sqlitex.Execute(conn, `
		SELECT id, label, first_id, supply, reserved_size, reserved_issued,
		       public_issued, locked, created_at
		FROM fragments WHERE space = ? ORDER BY id
	`, &sqlitex.ExecOptions{
		Args: []any{string(space)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			fragments = append(fragments, scanFragment(space, stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing fragments: %w", err)
	}
	return fragments, nil
}

// SetLabel updates a fragment's label. Fails once the fragment is
// locked.
func SetLabel(conn *sqlite.Conn, space Space, id uint64, label string) error {
	frag, err := Get(conn, space, id)
	if err != nil {
		return err
	}
	if frag.Locked {
		return fmt.Errorf("%w: %s fragment %d", ErrFragmentLocked, space, id)
	}
	err = sqlitex.Execute(conn, `
		UPDATE fragments SET label = ? WHERE space = ? AND id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{label, string(space), int64(id)},
	})
	if err != nil {
		return fmt.Errorf("updating fragment label: %w", err)
	}
	return nil
}

// Lock latches a fragment's metadata immutable. One-way: there is no
// unlock.
func Lock(conn *sqlite.Conn, space Space, id uint64) error {
	if _, err := Get(conn, space, id); err != nil {
		return err
	}
	err := sqlitex.Execute(conn, `
		UPDATE fragments SET locked = 1 WHERE space = ? AND id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(id)},
	})
	if err != nil {
		return fmt.Errorf("locking fragment: %w", err)
	}
	return nil
}

func scanFragment(space Space, stmt *sqlite.Stmt) Fragment {
	return Fragment{
		Space:          space,
		ID:             uint64(stmt.ColumnInt64(0)),
		Label:          stmt.ColumnText(1),
		FirstID:        uint64(stmt.ColumnInt64(2)),
		Supply:         uint64(stmt.ColumnInt64(3)),
		ReservedSize:   uint64(stmt.ColumnInt64(4)),
		ReservedIssued: uint64(stmt.ColumnInt64(5)),
		PublicIssued:   uint64(stmt.ColumnInt64(6)),
		Locked:         stmt.ColumnInt64(7) != 0,
		CreatedAt:      time.Unix(stmt.ColumnInt64(8), 0).UTC(),
	}
}
