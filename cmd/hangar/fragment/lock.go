// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type lockParams struct {
	cli.MintConnection
}

func lockCommand() *cli.Command {
	var params lockParams

	return &cli.Command{
		Name:    "lock",
		Summary: "Permanently stop issuance from a fragment",
		Description: `Lock one fragment in one space. Locking is irreversible: the
fragment's unissued IDs (reserved and public alike) become
permanently unreachable. Lock the pilot and racecraft sides
separately.`,
		Usage: "hangar fragment lock <pilot|racecraft> <id>",
		Examples: []cli.Example{
			{
				Description: "Close out the launch wave's pilot side",
				Command:     "hangar fragment lock pilot 1",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("lock", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: hangar fragment lock <pilot|racecraft> <id>")
			}
			id, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid fragment id %q: %w", args[1], err)
			}
			return runLock(params, args[0], id)
		},
	}
}

func runLock(params lockParams, space string, id uint64) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "fragment-lock", map[string]any{
		"space": space,
		"id":    id,
	}, nil); err != nil {
		return err
	}

	fmt.Printf("locked %s fragment %d\n", space, id)
	return nil
}
