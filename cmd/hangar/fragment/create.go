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

type createParams struct {
	cli.MintConnection
	cli.JSONOutput
	Supply            uint64 `flag:"supply" desc:"token IDs in each fragment of the pair"`
	FirstID           uint64 `flag:"first-id" desc:"first token ID of the block"`
	ReservedPilots    uint64 `flag:"reserved-pilots" desc:"pilot IDs held back for airdrops"`
	ReservedRacecraft uint64 `flag:"reserved-racecraft" desc:"racecraft IDs held back for airdrops"`
	Label             string `flag:"label" desc:"human-readable fragment name"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a paired pilot/racecraft fragment",
		Description: `Open one fragment in each space under a shared ID. Both fragments
cover the same token ID block [first-id, first-id+supply); only the
reserved counts may differ between the two spaces.

The block must not overlap any existing fragment in either space,
and both spaces must stay under their identifier ceilings.`,
		Usage: "hangar fragment create <id> --supply <n> --first-id <n> [--reserved-pilots <n>] [--reserved-racecraft <n>]",
		Examples: []cli.Example{
			{
				Description: "1000-ID block starting at 2000, 50 reserved each side",
				Command:     "hangar fragment create 3 --supply 1000 --first-id 2000 --reserved-pilots 50 --reserved-racecraft 50 --label \"Wave Three\"",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar fragment create <id> --supply <n> --first-id <n>")
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid fragment id %q: %w", args[0], err)
			}
			return runCreate(params, id)
		},
	}
}

func runCreate(params createParams, id uint64) error {
	if params.Supply == 0 {
		return fmt.Errorf("--supply must be positive")
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	fields := map[string]any{
		"id":                 id,
		"supply":             params.Supply,
		"first_id":           params.FirstID,
		"reserved_pilots":    params.ReservedPilots,
		"reserved_racecraft": params.ReservedRacecraft,
	}
	if params.Label != "" {
		fields["label"] = params.Label
	}

	var created createPairedResponse
	if err := client.Call(ctx, "fragment-create-paired", fields, &created); err != nil {
		return err
	}

	if done, err := params.EmitJSON(created); done {
		return err
	}

	fmt.Printf("created fragment %d: IDs %d-%d\n",
		id, created.Pilot.FirstID, created.Pilot.FirstID+created.Pilot.Supply-1)
	fmt.Printf("  pilot:     %d reserved, %d public\n",
		created.Pilot.ReservedSize, created.Pilot.Supply-created.Pilot.ReservedSize)
	fmt.Printf("  racecraft: %d reserved, %d public\n",
		created.Racecraft.ReservedSize, created.Racecraft.Supply-created.Racecraft.ReservedSize)
	return nil
}
