// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type depositParams struct {
	cli.MintConnection
}

func depositCommand() *cli.Command {
	var params depositParams

	return &cli.Command{
		Name:    "deposit",
		Summary: "Credit a party's vault balance",
		Description: `Credit funds to a party's vault account, creating the account on
first deposit. The balance funds future mint pass claims.`,
		Usage: "hangar vault deposit <address> <amount>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("deposit", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: hangar vault deposit <address> <amount>")
			}
			party, err := ref.ParseParty(args[0])
			if err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			if amount == 0 {
				return fmt.Errorf("amount must be positive")
			}
			return runDeposit(params, party, amount)
		},
	}
}

func runDeposit(params depositParams, party ref.Party, amount uint64) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "vault-deposit", map[string]any{
		"party":  party.String(),
		"amount": amount,
	}, nil); err != nil {
		return err
	}

	fmt.Printf("deposited %d to %s\n", amount, party)
	return nil
}
