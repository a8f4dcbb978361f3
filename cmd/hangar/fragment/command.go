// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment implements the "hangar fragment" subcommands for
// managing identifier fragments in the pilot and racecraft spaces.
package fragment

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "fragment" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "fragment",
		Summary: "Create and manage identifier fragments",
		Description: `Manage identifier fragments. A fragment is one contiguous block of
token IDs inside a space (pilot or racecraft), with a reserved head
for airdrops and a public tail for redemptions.

Fragments are created in pairs: one pilot and one racecraft fragment
sharing an ID, supply, and first token ID, so a pilot and the
racecraft redeemed from the same pass carry matching numbers.
Locking a fragment permanently stops further issuance from it.`,
		Subcommands: []*cli.Command{
			createCommand(),
			listCommand(),
			lockCommand(),
			labelCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Open paired fragment 3: 1000 IDs starting at 2000",
				Command:     "hangar fragment create 3 --supply 1000 --first-id 2000 --reserved-pilots 50 --reserved-racecraft 50",
			},
			{
				Description: "List pilot-space fragments",
				Command:     "hangar fragment list pilot",
			},
			{
				Description: "Permanently stop issuance from racecraft fragment 3",
				Command:     "hangar fragment lock racecraft 3",
			},
		},
	}
}
