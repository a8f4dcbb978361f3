// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger holds the three token books the orchestrator
// mutates: semi-fungible passes (per-series balances with claim
// counters and a public/reserved mint split), unique assets (one
// owner per serially-numbered token), and fungible items (batch-
// minted inventory).
//
// Like the other store packages, every function takes the caller's
// connection and joins its transaction. The pass series registry
// enforces its own allocation ceilings; the orchestrator re-checks
// them earlier in each flow so requests fail before payment moves.
package ledger
