// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package token implements the "hangar token" subcommands for minting
// and inspecting operator tokens.
package token

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "token" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Summary: "Mint and inspect operator tokens",
		Description: `Operator tokens authenticate every socket request except ping. A
token is a signed payload naming a subject, an acting party, one or
more scopes, and an expiry; the service checks the signature against
its operator signing keypair.

"mint" needs the signing keypair from the service's keys directory,
so it runs on the service host (or wherever the keypair has been
copied). Admin tokens additionally name the party whose role grants
the service consults, which means a freshly minted admin token is
inert until that party holds a role.`,
		Subcommands: []*cli.Command{
			mintCommand(),
			showCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Mint a 30-day admin token for an operator",
				Command:     "hangar token mint --keys /var/lib/hangar/keys --subject ops/amelia --party 0x5290... --scope admin",
			},
			{
				Description: "Inspect the default token and verify its signature",
				Command:     "hangar token show --keys /var/lib/hangar/keys",
			},
		},
	}
}
