// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/authorization"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type revokeParams struct {
	cli.MintConnection
}

func revokeCommand() *cli.Command {
	var params revokeParams

	return &cli.Command{
		Name:    "revoke",
		Summary: "Revoke a role from a party",
		Usage:   "hangar role revoke <address> <admin|creator|treasurer|operator>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("revoke", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: hangar role revoke <address> <role>")
			}
			return runRevoke(params, args[0], args[1])
		},
	}
}

func runRevoke(params revokeParams, address, roleName string) error {
	party, err := ref.ParseParty(address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	role, err := authorization.ParseRole(roleName)
	if err != nil {
		return err
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "role-revoke", map[string]any{
		"party": party.String(),
		"role":  string(role),
	}, nil); err != nil {
		return err
	}

	fmt.Printf("revoked %s from %s\n", role, party)
	return nil
}
