// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault implements the "hangar vault" subcommands for
// managing prepaid vault accounts.
package vault

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "vault" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "vault",
		Summary: "Manage prepaid vault accounts",
		Description: `Manage vault accounts. Claims are prepaid: a party's vault balance
is debited when its passes are claimed, and the debit lands in the
drop treasury. Deposits credit a balance; freezing an account
blocks every movement on it without touching the balance.`,
		Subcommands: []*cli.Command{
			depositCommand(),
			freezeCommand(),
			unfreezeCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Credit a buyer's vault",
				Command:     "hangar vault deposit 0x52908400098527886e0f7030069857d2e4169ee7 5000",
			},
			{
				Description: "Freeze a disputed account",
				Command:     "hangar vault freeze 0x52908400098527886e0f7030069857d2e4169ee7",
			},
		},
	}
}
