// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type listParams struct {
	cli.MintConnection
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List fragments in a space",
		Usage:   "hangar fragment list <pilot|racecraft>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar fragment list <pilot|racecraft>")
			}
			return runList(params, args[0])
		},
	}
}

func runList(params listParams, space string) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	var response fragmentListResponse
	if err := client.Call(ctx, "fragment-list", map[string]any{
		"space": space,
	}, &response); err != nil {
		return err
	}

	if done, err := params.EmitJSON(response.Fragments); done {
		return err
	}

	if len(response.Fragments) == 0 {
		fmt.Fprintf(os.Stderr, "no fragments in space %q\n", space)
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tLABEL\tFIRST-ID\tSUPPLY\tRESERVED\tRESERVED-ISSUED\tPUBLIC-ISSUED\tLOCKED")
	for _, frag := range response.Fragments {
		fmt.Fprintf(writer, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%v\n",
			frag.ID, frag.Label, frag.FirstID, frag.Supply, frag.ReservedSize,
			frag.ReservedIssued, frag.PublicIssued, frag.Locked)
	}
	writer.Flush()

	return nil
}
