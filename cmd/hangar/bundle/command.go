// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle implements the "hangar bundle" subcommands for
// configuring the item bundles granted by inventory redemption.
package bundle

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "bundle" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "bundle",
		Summary: "Configure per-series item bundles",
		Description: `Configure the fungible item bundle a pass series grants on
inventory redemption. Setting a series' bundle replaces it whole;
redemptions already made keep what they received.`,
		Subcommands: []*cli.Command{
			setCommand(),
			showCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Series 1 grants 500 credits and 3 boosters",
				Command:     "hangar bundle set 1 --item 1001=500 --item 1002=3",
			},
			{
				Description: "Inspect a bundle",
				Command:     "hangar bundle show 1",
			},
		},
	}
}
