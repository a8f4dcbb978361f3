// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type pingParams struct {
	cli.MintConnection
	cli.JSONOutput
}

type pingResponse struct {
	UptimeSeconds float64 `cbor:"uptime_seconds" json:"uptime_seconds"`
}

func pingCommand() *cli.Command {
	var params pingParams

	return &cli.Command{
		Name:    "ping",
		Summary: "Check that the mint service is alive",
		Description: `Send an unauthenticated liveness probe to the mint service socket.
Succeeds without an operator token; everything else about the drop
requires one.`,
		Usage: "hangar ping",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("ping", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runPing(params)
		},
	}
}

func runPing(params pingParams) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	var pong pingResponse
	if err := params.AnonymousClient().Call(ctx, "ping", nil, &pong); err != nil {
		return err
	}

	if done, err := params.EmitJSON(pong); done {
		return err
	}

	fmt.Printf("service up %s\n", formatUptime(pong.UptimeSeconds))
	return nil
}
