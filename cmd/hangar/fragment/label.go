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

type labelParams struct {
	cli.MintConnection
}

func labelCommand() *cli.Command {
	var params labelParams

	return &cli.Command{
		Name:    "label",
		Summary: "Rename a fragment",
		Description: `Set a fragment's human-readable label. Labels are display metadata
only; an empty label clears it. This is the one fragment attribute
that stays mutable after creation.`,
		Usage: "hangar fragment label <pilot|racecraft> <id> <label>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("label", &params)
		},
		Run: func(args []string) error {
			if len(args) != 3 {
				return fmt.Errorf("usage: hangar fragment label <pilot|racecraft> <id> <label>")
			}
			id, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid fragment id %q: %w", args[1], err)
			}
			return runLabel(params, args[0], id, args[2])
		},
	}
}

func runLabel(params labelParams, space string, id uint64, label string) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "fragment-label", map[string]any{
		"space": space,
		"id":    id,
		"label": label,
	}, nil); err != nil {
		return err
	}

	fmt.Printf("labeled %s fragment %d %q\n", space, id, label)
	return nil
}
