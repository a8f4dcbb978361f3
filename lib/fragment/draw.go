// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// drawDomain separates draw-index hashing from every other BLAKE3 use
// in the system. Changing it changes every draw sequence.
const drawDomain = "hangar/draw/v1"

// DrawRandom issues one previously-unissued public token ID from a
// fragment, uniformly at random over the unissued remainder.
//
// The draw index mixes two inputs through BLAKE3: 32 bytes from
// entropy (the service's CSPRNG in production) and the caller's
// signature-verified seed. The seed holder cannot predict the index
// without the server entropy; the server cannot steer it to a chosen
// token without discarding the verified seed. Neither alone controls
// the outcome.
//
// The shuffle is Fisher–Yates over a virtual array A[0..remaining)
// where A[i] = i unless a draw_slots row overrides it: the picked
// slot's value is the assigned offset, the retiring tail slot's value
// moves into the picked slot, and the live range shrinks by one. The
// returned token ID is PublicStart() + offset.
func DrawRandom(conn *sqlite.Conn, space Space, fragmentID uint64, seed ref.Seed, entropy io.Reader) (uint64, error) {
	frag, err := Get(conn, space, fragmentID)
	if err != nil {
		return 0, err
	}

	remaining := frag.PublicRemaining()
	if remaining == 0 {
		return 0, fmt.Errorf("%w: %s fragment %d", ErrPoolExhausted, space, fragmentID)
	}

	index, err := drawIndex(entropy, seed, remaining)
	if err != nil {
		return 0, err
	}

	offset, err := slotValue(conn, space, fragmentID, index)
	if err != nil {
		return 0, err
	}

	// Retire the last live slot: its value moves into the slot just
	// drawn, and its own row (if any) is reclaimed. When the draw hit
	// the last slot itself no displacement is needed.
	lastSlot := remaining - 1
	if index == lastSlot {
		if err := deleteSlot(conn, space, fragmentID, lastSlot); err != nil {
			return 0, err
		}
	} else {
		tail, tailPresent, err := slotRow(conn, space, fragmentID, lastSlot)
		if err != nil {
			return 0, err
		}
		displaced := lastSlot
		if tailPresent {
			displaced = tail
			if err := deleteSlot(conn, space, fragmentID, lastSlot); err != nil {
				return 0, err
			}
		}
		if err := upsertSlot(conn, space, fragmentID, index, displaced); err != nil {
			return 0, err
		}
	}

	err = sqlitex.Execute(conn, `
		UPDATE fragments SET public_issued = public_issued + 1
		WHERE space = ? AND id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(fragmentID)},
	})
	if err != nil {
		return 0, fmt.Errorf("recording draw: %w", err)
	}

	return frag.PublicStart() + offset, nil
}

// IssueReserved issues a specific token ID from a fragment's reserved
// prefix. The caller records the recipient; this only accounts for
// the issuance.
func IssueReserved(conn *sqlite.Conn, space Space, fragmentID, tokenID uint64) error {
	frag, err := Get(conn, space, fragmentID)
	if err != nil {
		return err
	}

	if frag.ReservedIssued >= frag.ReservedSize {
		return fmt.Errorf("%w: %s fragment %d", ErrReservedPoolExhausted, space, fragmentID)
	}
	if tokenID < frag.ReservedStart() || tokenID >= frag.ReservedStart()+frag.ReservedSize {
		return fmt.Errorf("%w: token %d, reserved range [%d, %d)",
			ErrTokenNotInReservedRange, tokenID, frag.ReservedStart(), frag.ReservedStart()+frag.ReservedSize)
	}

	err = sqlitex.Execute(conn, `
		UPDATE fragments SET reserved_issued = reserved_issued + 1
		WHERE space = ? AND id = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(fragmentID)},
	})
	if err != nil {
		return fmt.Errorf("recording reserved issue: %w", err)
	}
	return nil
}

// drawIndex hashes server entropy and the request seed into a draw
// index in [0, remaining).
func drawIndex(entropy io.Reader, seed ref.Seed, remaining uint64) (uint64, error) {
	var serverEntropy [32]byte
	if _, err := io.ReadFull(entropy, serverEntropy[:]); err != nil {
		return 0, fmt.Errorf("reading draw entropy: %w", err)
	}

	hasher := blake3.New()
	hasher.Write([]byte(drawDomain))
	hasher.Write(serverEntropy[:])
	hasher.Write(seed[:])
	sum := hasher.Sum(nil)

	return binary.BigEndian.Uint64(sum[:8]) % remaining, nil
}

// slotValue reads the virtual array at slot: the stored displacement
// if a row exists, otherwise the slot's own index.
func slotValue(conn *sqlite.Conn, space Space, fragmentID, slot uint64) (uint64, error) {
	value, present, err := slotRow(conn, space, fragmentID, slot)
	if err != nil {
		return 0, err
	}
	if !present {
		return slot, nil
	}
	return value, nil
}

func slotRow(conn *sqlite.Conn, space Space, fragmentID, slot uint64) (value uint64, present bool, err error) {
	err = sqlitex.Execute(conn, `
		SELECT value FROM draw_slots
		WHERE space = ? AND fragment_id = ? AND slot = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(fragmentID), int64(slot)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = uint64(stmt.ColumnInt64(0))
			present = true
			return nil
		},
	})
	if err != nil {
		return 0, false, fmt.Errorf("reading draw slot: %w", err)
	}
	return value, present, nil
}

func upsertSlot(conn *sqlite.Conn, space Space, fragmentID, slot, value uint64) error {
	err := sqlitex.Execute(conn, `
		INSERT INTO draw_slots (space, fragment_id, slot, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (space, fragment_id, slot) DO UPDATE SET value = excluded.value
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(fragmentID), int64(slot), int64(value)},
	})
	if err != nil {
		return fmt.Errorf("writing draw slot: %w", err)
	}
	return nil
}

func deleteSlot(conn *sqlite.Conn, space Space, fragmentID, slot uint64) error {
	err := sqlitex.Execute(conn, `
		DELETE FROM draw_slots WHERE space = ? AND fragment_id = ? AND slot = ?
	`, &sqlitex.ExecOptions{
		Args: []any{string(space), int64(fragmentID), int64(slot)},
	})
	if err != nil {
		return fmt.Errorf("clearing draw slot: %w", err)
	}
	return nil
}
