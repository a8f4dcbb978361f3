// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package series implements the "hangar series" subcommands for
// registering and listing mint pass series.
package series

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "series" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "series",
		Summary: "Register and inspect mint pass series",
		Description: `Manage mint pass series. A series is one sellable pass kind with a
hard supply cap and an optional reserved allocation for airdrops.
Registration is append-only: series are never deleted, and supply
parameters are fixed at registration.`,
		Subcommands: []*cli.Command{
			registerCommand(),
			listCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Register series 1 with 5000 passes, 500 reserved",
				Command:     "hangar series register 1 --max-supply 5000 --reserved 500 --label \"Season One\"",
			},
			{
				Description: "List all series with mint counts",
				Command:     "hangar series list",
			},
		},
	}
}
