// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package reward

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type removeParams struct {
	cli.MintConnection
}

func removeCommand() *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove a reward category",
		Description: `Remove a category from the catalog. Outstanding coupons naming the
category stop redeeming; draws already made keep their items.`,
		Usage: "hangar reward remove <id>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar reward remove <id>")
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q: %w", args[0], err)
			}
			return runRemove(params, id)
		},
	}
}

func runRemove(params removeParams, id uint64) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "reward-remove", map[string]any{
		"id": id,
	}, nil); err != nil {
		return err
	}

	fmt.Printf("removed reward category %d\n", id)
	return nil
}
