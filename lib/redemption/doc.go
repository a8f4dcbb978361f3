// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package redemption is the drop orchestrator. It owns the database
// and composes the engine packages (fragment, replay, vault, ledger,
// reward, authorization) into the user-facing flows: pass claims,
// pilot and racecraft redemptions, inventory unpacking, reward rolls,
// and the privileged operations around them.
//
// Every flow runs as one IMMEDIATE transaction on one connection.
// Checks precede writes, and any failure rolls the whole flow back,
// audit record included. There is no retry anywhere in this package;
// callers retry after correcting whatever the error names.
package redemption
