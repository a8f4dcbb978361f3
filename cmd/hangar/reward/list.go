// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package reward

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
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
		Summary: "List reward categories",
		Usage:   "hangar reward list",
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

	var response rewardListResponse
	if err := client.Call(ctx, "reward-list", nil, &response); err != nil {
		return err
	}

	if done, err := params.EmitJSON(response.Categories); done {
		return err
	}

	if len(response.Categories) == 0 {
		fmt.Fprintln(os.Stderr, "no reward categories")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tLABEL\tWEIGHTS\tITEMS")
	for _, category := range response.Categories {
		fmt.Fprintf(writer, "%d\t%s\t%d/%d/%d\t%s\n",
			category.ID, category.Label,
			category.Weights.Common, category.Weights.Mid, category.Weights.Rare,
			joinItems(category.Items))
	}
	writer.Flush()

	return nil
}

func joinItems(items []uint64) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = strconv.FormatUint(item, 10)
	}
	return strings.Join(parts, ",")
}
