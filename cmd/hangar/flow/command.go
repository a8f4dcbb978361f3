// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package flow implements the "hangar flow" subcommands for switching
// user-facing workflows on and off.
package flow

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "flow" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "flow",
		Summary: "Open and close the drop's user-facing flows",
		Description: `Switch user-facing flows. Each flow gates one workflow: claim
(mint pass sales), pilot, racecraft, inventory, and reward
redemptions. All flows start closed; "stop" is the emergency
switch that closes every flow at once.

If the service is configured with sale windows, manual switches
(including the emergency stop) persist only until the flow's next
scheduled window boundary.`,
		Subcommands: []*cli.Command{
			openCommand(),
			closeCommand(),
			stopCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Open mint pass sales",
				Command:     "hangar flow open claim",
			},
			{
				Description: "Close reward draws",
				Command:     "hangar flow close reward",
			},
			{
				Description: "Emergency: close everything now",
				Command:     "hangar flow stop",
			},
		},
	}
}
