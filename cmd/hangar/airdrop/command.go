// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package airdrop implements the "hangar airdrop" subcommands for
// granting passes and reserved assets without coupons.
package airdrop

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "airdrop" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "airdrop",
		Summary: "Grant passes and reserved assets directly",
		Description: `Grant without payment or coupons. "passes" credits mint passes to a
list of recipients, drawing from either the public or the reserved
pool of a series. "reserved" assigns one specific token ID from a
fragment's reserved head to a recipient.

Airdrops bypass flow switches: they work while the drop is closed,
which is how pre-launch allocations are placed.`,
		Subcommands: []*cli.Command{
			passesCommand(),
			reservedCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Give two partners passes from the reserved pool",
				Command:     "hangar airdrop passes --series 1 --pool reserved --grant 0x52908400098527886e0f7030069857d2e4169ee7=5 --grant 0x8617e340b3d01fa5f11f306f4090fd50e238070d=3",
			},
			{
				Description: "Place pilot #2001 with a named collector",
				Command:     "hangar airdrop reserved --space pilot --fragment 3 --token 2001 --to 0x52908400098527886e0f7030069857d2e4169ee7",
			},
		},
	}
}
