// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan implements the "hangar plan" subcommands for
// validating and applying drop plan files.
package plan

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "plan" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "plan",
		Summary: "Validate and apply drop plans",
		Description: `Work with drop plan files. A plan is a JSONC document describing one
drop wave: the series to register, the paired fragments to open, the
item bundles and reward categories to configure, and the sale
windows the wave runs under.

"validate" checks a plan offline. "apply" submits it to the service,
which executes the entries in declaration order; each entry is its
own transaction, and the first store rejection stops the run with
everything before it committed. Windows are not applied over the
socket: they belong in the service configuration, and apply prints
them for installation.`,
		Subcommands: []*cli.Command{
			validateCommand(),
			applyCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Check a plan before the launch call",
				Command:     "hangar plan validate winter-drop.jsonc",
			},
			{
				Description: "Execute it",
				Command:     "hangar plan apply winter-drop.jsonc",
			},
		},
	}
}
