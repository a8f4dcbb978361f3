// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package series

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type registerParams struct {
	cli.MintConnection
	cli.JSONOutput
	MaxSupply uint64 `flag:"max-supply" desc:"hard cap on passes in this series"`
	Reserved  uint64 `flag:"reserved" desc:"passes held back for reserved-pool airdrops"`
	Label     string `flag:"label" desc:"human-readable series name"`
}

func registerCommand() *cli.Command {
	var params registerParams

	return &cli.Command{
		Name:    "register",
		Summary: "Register a new pass series",
		Description: `Register a pass series under an explicit numeric ID. The reserved
count is carved out of max-supply; public claims stop at
max-supply minus reserved, and the remainder is only reachable
through reserved-pool airdrops.

Series parameters are fixed once registered.`,
		Usage: "hangar series register <id> --max-supply <n> [--reserved <n>] [--label <name>]",
		Examples: []cli.Example{
			{
				Description: "A 5000-pass series with 500 held back",
				Command:     "hangar series register 1 --max-supply 5000 --reserved 500 --label \"Season One\"",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("register", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar series register <id> --max-supply <n>")
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid series id %q: %w", args[0], err)
			}
			return runRegister(params, id)
		},
	}
}

func runRegister(params registerParams, id uint64) error {
	if params.MaxSupply == 0 {
		return fmt.Errorf("--max-supply must be positive")
	}
	if params.Reserved > params.MaxSupply {
		return fmt.Errorf("--reserved (%d) exceeds --max-supply (%d)", params.Reserved, params.MaxSupply)
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	fields := map[string]any{
		"id":            id,
		"max_supply":    params.MaxSupply,
		"reserved_size": params.Reserved,
	}
	if params.Label != "" {
		fields["label"] = params.Label
	}

	var registered seriesInfo
	if err := client.Call(ctx, "series-register", fields, &registered); err != nil {
		return err
	}

	if done, err := params.EmitJSON(registered); done {
		return err
	}

	fmt.Printf("registered series %d", registered.ID)
	if registered.Label != "" {
		fmt.Printf(" (%s)", registered.Label)
	}
	fmt.Printf(": %d passes, %d reserved\n", registered.MaxSupply, registered.ReservedSize)
	return nil
}
