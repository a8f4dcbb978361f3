// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type stopParams struct {
	cli.MintConnection
}

func stopCommand() *cli.Command {
	var params stopParams

	return &cli.Command{
		Name:    "stop",
		Summary: "Emergency stop: close every flow",
		Description: `Close all five flows in one atomic step. Use this when something is
wrong with the drop and the first priority is halting user traffic;
sort out which flows to re-open afterwards.`,
		Usage: "hangar flow stop",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stop", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runStop(params)
		},
	}
}

func runStop(params stopParams) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "emergency-stop", nil, nil); err != nil {
		return err
	}

	fmt.Println("all flows closed")
	return nil
}
