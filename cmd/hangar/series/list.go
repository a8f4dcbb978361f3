// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package series

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
		Summary: "List registered pass series",
		Usage:   "hangar series list",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runList(params)
		},
	}
}

func runList(params listParams) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	var response seriesListResponse
	if err := client.Call(ctx, "series-list", nil, &response); err != nil {
		return err
	}

	if done, err := params.EmitJSON(response.Series); done {
		return err
	}

	if len(response.Series) == 0 {
		fmt.Fprintln(os.Stderr, "no series registered")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tLABEL\tMAX\tRESERVED\tPUBLIC-MINTED\tRESERVED-MINTED")
	for _, series := range response.Series {
		fmt.Fprintf(writer, "%d\t%s\t%d\t%d\t%d\t%d\n",
			series.ID, series.Label, series.MaxSupply, series.ReservedSize,
			series.MintedPublic, series.MintedReserved)
	}
	writer.Flush()

	return nil
}
