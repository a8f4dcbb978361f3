// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package reward

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/reward"
	"github.com/spf13/pflag"
)

type setParams struct {
	cli.MintConnection
	Items   []string `flag:"items" desc:"nine item IDs, comma-separated, common tier first"`
	Weights string   `flag:"weights" desc:"per-mille tier split as common,mid,rare (default 700,250,50)"`
	Label   string   `flag:"label" desc:"human-readable category name"`
}

func setCommand() *cli.Command {
	var params setParams

	return &cli.Command{
		Name:    "set",
		Summary: "Install or replace a reward category",
		Description: `Install a reward table under a numeric category ID. The nine items
fill the slots in order: three common, three mid, three rare. The
optional weights are per-mille and must sum to 1000; omitting them
applies the stock 700/250/50 split.`,
		Usage: "hangar reward set <id> --items <i1,...,i9> [--weights <common,mid,rare>] [--label <name>]",
		Examples: []cli.Example{
			{
				Description: "Launch crate table, stock odds",
				Command:     "hangar reward set 1 --items 101,102,103,201,202,203,301,302,303 --label \"Launch Crates\"",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("set", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar reward set <id> --items <i1,...,i9>")
			}
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q: %w", args[0], err)
			}
			return runSet(params, id)
		},
	}
}

func runSet(params setParams, id uint64) error {
	items, err := parseItems(params.Items)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"id":    id,
		"items": items,
	}
	if params.Label != "" {
		fields["label"] = params.Label
	}
	if params.Weights != "" {
		tierWeights, err := parseWeights(params.Weights)
		if err != nil {
			return err
		}
		fields["weights"] = tierWeights
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "reward-set", fields, nil); err != nil {
		return err
	}

	fmt.Printf("set reward category %d\n", id)
	return nil
}

// parseItems converts the --items values into the nine slot item IDs.
// pflag's slice flag already splits on commas; this validates count
// and numeric form.
func parseItems(specs []string) ([]uint64, error) {
	if len(specs) != reward.SlotCount {
		return nil, fmt.Errorf("--items needs exactly %d item IDs, got %d", reward.SlotCount, len(specs))
	}
	items := make([]uint64, len(specs))
	for i, spec := range specs {
		item, err := strconv.ParseUint(strings.TrimSpace(spec), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item %q: %w", spec, err)
		}
		items[i] = item
	}
	return items, nil
}

// parseWeights converts "common,mid,rare" into the wire weights
// struct. The per-mille sum check mirrors the service's, so a bad
// split fails locally with the same rule.
func parseWeights(spec string) (weights, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return weights{}, fmt.Errorf("invalid --weights %q: want <common>,<mid>,<rare>", spec)
	}
	values := make([]uint64, 3)
	for i, part := range parts {
		value, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return weights{}, fmt.Errorf("invalid --weights %q: %w", spec, err)
		}
		values[i] = value
	}
	parsed := weights{Common: values[0], Mid: values[1], Rare: values[2]}
	if parsed.Common+parsed.Mid+parsed.Rare != 1000 {
		return weights{}, fmt.Errorf("invalid --weights %q: per-mille values must sum to 1000", spec)
	}
	return parsed, nil
}
