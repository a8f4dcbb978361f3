// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package flow

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

// openCommand and closeCommand are the two halves of the flow-set
// action; they differ only in the active value they send.

func openCommand() *cli.Command {
	var params toggleParams

	return &cli.Command{
		Name:    "open",
		Summary: "Open a flow",
		Usage:   "hangar flow open <claim|pilot|racecraft|inventory|reward>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("open", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar flow open <flow>")
			}
			return runToggle(params, args[0], true)
		},
	}
}

func closeCommand() *cli.Command {
	var params toggleParams

	return &cli.Command{
		Name:    "close",
		Summary: "Close a flow",
		Usage:   "hangar flow close <claim|pilot|racecraft|inventory|reward>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("close", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar flow close <flow>")
			}
			return runToggle(params, args[0], false)
		},
	}
}

type toggleParams struct {
	cli.MintConnection
}

func runToggle(params toggleParams, flow string, active bool) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "flow-set", map[string]any{
		"flow":   flow,
		"active": active,
	}, nil); err != nil {
		return err
	}

	if active {
		fmt.Printf("flow %s open\n", flow)
	} else {
		fmt.Printf("flow %s closed\n", flow)
	}
	return nil
}
