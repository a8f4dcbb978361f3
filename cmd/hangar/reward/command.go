// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package reward implements the "hangar reward" subcommands for
// managing reward categories.
package reward

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "reward" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "reward",
		Summary: "Manage reward categories",
		Description: `Manage the reward catalog. A category is a table of nine items in
three tiers (slots 0-2 common, 3-5 mid, 6-8 rare) plus a per-mille
tier weight split. Reward coupons name a category; redeeming one
draws a slot from the weighted table.

Setting an existing category ID replaces the whole table. Draws
already made are unaffected by later edits.`,
		Subcommands: []*cli.Command{
			setCommand(),
			removeCommand(),
			listCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Install category 1 with default 70/25/5 weights",
				Command:     "hangar reward set 1 --items 101,102,103,201,202,203,301,302,303 --label \"Launch Crates\"",
			},
			{
				Description: "Steeper rare odds",
				Command:     "hangar reward set 2 --items 101,102,103,201,202,203,301,302,303 --weights 800,150,50",
			},
		},
	}
}
