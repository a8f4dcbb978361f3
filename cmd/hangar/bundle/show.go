// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type showParams struct {
	cli.MintConnection
	cli.JSONOutput
}

// bundleShowResponse mirrors the service's bundle-show response.
type bundleShowResponse struct {
	SeriesID uint64       `cbor:"series_id" json:"series_id"`
	Items    []itemAmount `cbor:"items" json:"items"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a series' item bundle",
		Usage:   "hangar bundle show <series-id>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar bundle show <series-id>")
			}
			seriesID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid series id %q: %w", args[0], err)
			}
			return runShow(params, seriesID)
		},
	}
}

func runShow(params showParams, seriesID uint64) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	var response bundleShowResponse
	if err := client.Call(ctx, "bundle-show", map[string]any{
		"series_id": seriesID,
	}, &response); err != nil {
		return err
	}

	if done, err := params.EmitJSON(response); done {
		return err
	}

	if len(response.Items) == 0 {
		fmt.Fprintf(os.Stderr, "series %d has no bundle\n", seriesID)
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ITEM\tAMOUNT")
	for _, item := range response.Items {
		fmt.Fprintf(writer, "%d\t%d\n", item.Item, item.Amount)
	}
	writer.Flush()

	return nil
}
