// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package airdrop

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type reservedParams struct {
	cli.MintConnection
	Space    string `flag:"space" desc:"identifier space: pilot or racecraft"`
	Fragment uint64 `flag:"fragment" desc:"fragment holding the reserved ID"`
	Token    uint64 `flag:"token" desc:"exact token ID to assign"`
	To       string `flag:"to" desc:"recipient address (0x-prefixed)"`
}

func reservedCommand() *cli.Command {
	var params reservedParams

	return &cli.Command{
		Name:    "reserved",
		Summary: "Assign one reserved token ID to a recipient",
		Description: `Assign a specific token ID out of a fragment's reserved head. The
ID must lie inside the reserved range and must not have been issued
already. This is how named allocations (partners, team, prizes) get
their exact numbers.`,
		Usage: "hangar airdrop reserved --space <pilot|racecraft> --fragment <id> --token <id> --to <address>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("reserved", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runReserved(params)
		},
	}
}

func runReserved(params reservedParams) error {
	recipient, err := ref.ParseParty(params.To)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	if params.Space == "" {
		return fmt.Errorf("no space: pass --space pilot or --space racecraft")
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "airdrop-reserved", map[string]any{
		"space":       params.Space,
		"fragment_id": params.Fragment,
		"token_id":    params.Token,
		"recipient":   recipient.String(),
	}, nil); err != nil {
		return err
	}

	fmt.Printf("assigned %s #%d to %s\n", params.Space, params.Token, recipient)
	return nil
}
