// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

// freezeCommand and unfreezeCommand are the two halves of the
// vault-freeze action; they differ only in the frozen value they
// send.

func freezeCommand() *cli.Command {
	var params freezeParams

	return &cli.Command{
		Name:    "freeze",
		Summary: "Freeze a vault account",
		Description: `Block every movement on an account: claims, deposits, and refunds
all fail while frozen. The balance stays intact. Reverse with
"vault unfreeze".`,
		Usage: "hangar vault freeze <address>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("freeze", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar vault freeze <address>")
			}
			return runFreeze(params, args[0], true)
		},
	}
}

func unfreezeCommand() *cli.Command {
	var params freezeParams

	return &cli.Command{
		Name:    "unfreeze",
		Summary: "Unfreeze a vault account",
		Usage:   "hangar vault unfreeze <address>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("unfreeze", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar vault unfreeze <address>")
			}
			return runFreeze(params, args[0], false)
		},
	}
}

type freezeParams struct {
	cli.MintConnection
}

func runFreeze(params freezeParams, address string, frozen bool) error {
	party, err := ref.ParseParty(address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "vault-freeze", map[string]any{
		"party":  party.String(),
		"frozen": frozen,
	}, nil); err != nil {
		return err
	}

	if frozen {
		fmt.Printf("froze %s\n", party)
	} else {
		fmt.Printf("unfroze %s\n", party)
	}
	return nil
}
