// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"time"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/ref"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Deny means the action is not permitted.
	Deny Decision = iota

	// Allow means the action is permitted.
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// DenyReason describes why an authorization check was denied.
type DenyReason int

const (
	// ReasonNoGrant means no role held by the party covers the action.
	ReasonNoGrant DenyReason = iota

	// ReasonGrantExpired means a role covering the action was held but
	// its grant has lapsed.
	ReasonGrantExpired
)

// String returns a human-readable reason.
func (r DenyReason) String() string {
	switch r {
	case ReasonNoGrant:
		return "no matching role"
	case ReasonGrantExpired:
		return "matching role grant expired"
	default:
		return "unknown"
	}
}

// Result describes the outcome of an authorization check. The matched
// role feeds the audit log.
type Result struct {
	// Decision is Allow or Deny.
	Decision Decision

	// Reason describes why the check was denied. Only meaningful when
	// Decision is Deny.
	Reason DenyReason

	// Role is the role that allowed the action. Empty when denied.
	Role Role
}

// Authorize checks whether a party may perform an action.
//
// Evaluation:
//  1. Load the party's role grants.
//  2. Skip grants whose role does not cover the action.
//  3. The first covering, non-expired grant allows.
//  4. Covering grants that all expired deny with ReasonGrantExpired;
//     otherwise deny with ReasonNoGrant.
func Authorize(conn *sqlite.Conn, party ref.Party, action string, now time.Time) (Result, error) {
	grants, err := GrantsFor(conn, party)
	if err != nil {
		return Result{}, err
	}

	sawExpired := false
	for _, grant := range grants {
		if !matchAnyAction(grant.Role.Actions(), action) {
			continue
		}
		if grant.Expired(now) {
			sawExpired = true
			continue
		}
		return Result{Decision: Allow, Role: grant.Role}, nil
	}

	if sawExpired {
		return Result{Decision: Deny, Reason: ReasonGrantExpired}, nil
	}
	return Result{Decision: Deny, Reason: ReasonNoGrant}, nil
}
