// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type withdrawParams struct {
	cli.MintConnection
	To     string `flag:"to" desc:"recipient address (0x-prefixed)"`
	Amount uint64 `flag:"amount" desc:"amount to withdraw from the treasury"`
}

func withdrawCommand() *cli.Command {
	var params withdrawParams

	return &cli.Command{
		Name:    "withdraw",
		Summary: "Withdraw funds from the treasury",
		Description: `Move funds out of the drop treasury to a recipient address. The
treasury accumulates sale proceeds from claimed passes; withdrawal
is recorded in the audit trail with the acting operator.`,
		Usage: "hangar withdraw --to <address> --amount <n>",
		Examples: []cli.Example{
			{
				Description: "Sweep proceeds to the foundation wallet",
				Command:     "hangar withdraw --to 0x52908400098527886e0f7030069857d2e4169ee7 --amount 250000",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("withdraw", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runWithdraw(params)
		},
	}
}

func runWithdraw(params withdrawParams) error {
	to, err := ref.ParseParty(params.To)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	if params.Amount == 0 {
		return fmt.Errorf("--amount must be positive")
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "withdraw", map[string]any{
		"to":     to.String(),
		"amount": params.Amount,
	}, nil); err != nil {
		return err
	}

	fmt.Printf("withdrew %d to %s\n", params.Amount, to)
	return nil
}
