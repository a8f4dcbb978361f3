// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete hangar CLI command tree.
package commands

import (
	"fmt"

	airdropcmd "github.com/hangar-foundation/hangar/cmd/hangar/airdrop"
	bundlecmd "github.com/hangar-foundation/hangar/cmd/hangar/bundle"
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	couponcmd "github.com/hangar-foundation/hangar/cmd/hangar/coupon"
	flowcmd "github.com/hangar-foundation/hangar/cmd/hangar/flow"
	fragmentcmd "github.com/hangar-foundation/hangar/cmd/hangar/fragment"
	plancmd "github.com/hangar-foundation/hangar/cmd/hangar/plan"
	rewardcmd "github.com/hangar-foundation/hangar/cmd/hangar/reward"
	rolecmd "github.com/hangar-foundation/hangar/cmd/hangar/role"
	seriescmd "github.com/hangar-foundation/hangar/cmd/hangar/series"
	tokencmd "github.com/hangar-foundation/hangar/cmd/hangar/token"
	vaultcmd "github.com/hangar-foundation/hangar/cmd/hangar/vault"
	"github.com/hangar-foundation/hangar/lib/version"
)

// Root builds and returns the complete hangar CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "hangar",
		Description: `Hangar: operator CLI for the mint service.

Administer a drop over the service's unix socket: pass series, paired
fragments, sale flows, airdrops, reward catalogs, item bundles, vault
accounts, and the treasury. Offline verbs mint operator tokens, sign
coupons with a sealed issuer key, and validate drop plans.`,
		Subcommands: []*cli.Command{
			statusCommand(),
			pingCommand(),
			seriescmd.Command(),
			fragmentcmd.Command(),
			flowcmd.Command(),
			airdropcmd.Command(),
			rewardcmd.Command(),
			bundlecmd.Command(),
			vaultcmd.Command(),
			withdrawCommand(),
			rolecmd.Command(),
			signerCommand(),
			plancmd.Command(),
			couponcmd.Command(),
			tokencmd.Command(),
			auditCommand(),
			exportCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("hangar %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Show the drop state (flows, series, treasury, windows)",
				Command:     "hangar status",
			},
			{
				Description: "Mint an admin token against the service keypair",
				Command:     "hangar token mint --keys /var/lib/hangar/keys --subject ops/amelia --party 0x... --scope admin",
			},
			{
				Description: "Apply a drop plan",
				Command:     "hangar plan apply winter-drop.jsonc",
			},
			{
				Description: "Open the claim flow",
				Command:     "hangar flow open claim",
			},
			{
				Description: "Airdrop passes from the reserved allocation",
				Command:     "hangar airdrop passes --series 1 --pool reserved --grant 0x...=5",
			},
			{
				Description: "Export a snapshot of the full drop state",
				Command:     "hangar export --out drop-snapshot.bin",
			},
		},
	}
}
