// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment manages the partitioned identifier spaces.
//
// A space (pilot, racecraft) is a finite range of token IDs bounded
// by a collection ceiling. Fragments partition it into contiguous
// half-open ranges [FirstID, FirstID+Supply), created strictly in
// sequence: fragment k starts exactly where fragment k−1 ends, so
// the issued space is gap-free and no two fragments overlap. Each
// fragment splits into a reserved prefix, issued by explicit token
// ID, and a public remainder, issued by random draw.
//
// The draw is a Fisher–Yates shuffle over an array that is never
// materialized. A draw_slots row (space, fragment, slot) → value
// records only displaced slots; an absent row means the slot still
// holds its own index. Each draw reads the picked slot's value,
// moves the retiring tail slot's value into it, and shrinks the live
// range by one — constant work and at most one row per outstanding
// displacement, regardless of pool size.
//
// All functions operate on the caller's connection and participate
// in whatever transaction it has open. The orchestrator wraps every
// flow in one immediate transaction; nothing here commits.
package fragment
