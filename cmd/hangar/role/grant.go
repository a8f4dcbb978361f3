// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"context"
	"fmt"
	"time"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/authorization"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type grantParams struct {
	cli.MintConnection
	Expires time.Duration `flag:"expires" desc:"grant lifetime from now (e.g. 720h); zero grants forever"`
}

func grantCommand() *cli.Command {
	var params grantParams

	return &cli.Command{
		Name:    "grant",
		Summary: "Grant a role to a party",
		Description: `Grant an administrative role. Re-granting an existing role updates
its expiry, so extending a lapsing grant is the same command with a
new --expires.`,
		Usage: "hangar role grant <address> <admin|creator|treasurer|operator> [--expires <duration>]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("grant", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: hangar role grant <address> <role>")
			}
			return runGrant(params, args[0], args[1])
		},
	}
}

func runGrant(params grantParams, address, roleName string) error {
	party, err := ref.ParseParty(address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	role, err := authorization.ParseRole(roleName)
	if err != nil {
		return err
	}
	if params.Expires < 0 {
		return fmt.Errorf("--expires must not be negative")
	}

	fields := map[string]any{
		"party": party.String(),
		"role":  string(role),
	}
	var expiresAt time.Time
	if params.Expires > 0 {
		expiresAt = time.Now().Add(params.Expires).UTC()
		fields["expires_at"] = expiresAt.Unix()
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "role-grant", fields, nil); err != nil {
		return err
	}

	if expiresAt.IsZero() {
		fmt.Printf("granted %s to %s\n", role, party)
	} else {
		fmt.Printf("granted %s to %s until %s\n", role, party, expiresAt.Format(time.RFC3339))
	}
	return nil
}
