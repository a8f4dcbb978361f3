// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package role implements the "hangar role" subcommands for managing
// administrative role grants.
package role

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "role" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "role",
		Summary: "Grant and revoke administrative roles",
		Description: `Manage role grants. Admin tokens alone authorize nothing: each
admin action also checks the acting party's role grants. The roles
are admin (everything, including granting roles), creator (catalog:
series, fragments, rewards, bundles), treasurer (withdrawal and
account freezing), and operator (flows, signer rotation, airdrops).

Grants may carry an expiry, after which they lapse without a
revocation.`,
		Subcommands: []*cli.Command{
			grantCommand(),
			revokeCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Permanent operator grant",
				Command:     "hangar role grant 0x52908400098527886e0f7030069857d2e4169ee7 operator",
			},
			{
				Description: "Treasurer for the launch month only",
				Command:     "hangar role grant 0x52908400098527886e0f7030069857d2e4169ee7 treasurer --expires 720h",
			},
		},
	}
}
