// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"errors"
	"fmt"
)

// ErrUnknownRole rejects role names outside the fixed set.
var ErrUnknownRole = errors.New("unknown role")

// Role is a named bundle of action permissions.
type Role string

const (
	// RoleAdmin covers every action, including granting roles.
	RoleAdmin Role = "admin"

	// RoleCreator manages the catalog side: fragments, pass series,
	// reward categories, and item bundles.
	RoleCreator Role = "creator"

	// RoleTreasurer moves funds: treasury withdrawal and vault account
	// freezing.
	RoleTreasurer Role = "treasurer"

	// RoleOperator runs the drop day to day: flow switches, the
	// emergency stop, signer rotation, and airdrops.
	RoleOperator Role = "operator"
)

// roleActions maps each role to the action patterns it covers.
// Evaluation is allow-only; there are no per-role denials.
var roleActions = map[Role][]string{
	RoleAdmin:     {"**"},
	RoleCreator:   {"fragment/**", "series/**", "catalog/**", "bundle/**"},
	RoleTreasurer: {"treasury/**", "vault/**"},
	RoleOperator:  {"flow/**", "signer/**", "airdrop/**"},
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if _, ok := roleActions[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return role, nil
}

// Roles returns the fixed role set in a stable order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCreator, RoleTreasurer, RoleOperator}
}

// Actions returns the action patterns a role covers.
func (r Role) Actions() []string {
	return roleActions[r]
}
