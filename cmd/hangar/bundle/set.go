// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type setParams struct {
	cli.MintConnection
	Items []string `flag:"item" desc:"bundle line as <item>=<amount> (repeatable)"`
}

// itemAmount mirrors the bundle entry in the service's request and
// response encoding.
type itemAmount struct {
	Item   uint64 `cbor:"item" json:"item"`
	Amount uint64 `cbor:"amount" json:"amount"`
}

func setCommand() *cli.Command {
	var params setParams

	return &cli.Command{
		Name:    "set",
		Summary: "Set a series' item bundle",
		Description: `Replace the item bundle for one pass series. Each --item line names
a fungible item and the amount granted per redeemed pass. An empty
set of lines is rejected; series without bundles simply grant
nothing on inventory redemption.`,
		Usage: "hangar bundle set <series-id> --item <item>=<amount> [--item ...]",
		Examples: []cli.Example{
			{
				Description: "Credits plus boosters for series 1",
				Command:     "hangar bundle set 1 --item 1001=500 --item 1002=3",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("set", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar bundle set <series-id> --item <item>=<amount>")
			}
			seriesID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid series id %q: %w", args[0], err)
			}
			return runSet(params, seriesID)
		},
	}
}

func runSet(params setParams, seriesID uint64) error {
	if len(params.Items) == 0 {
		return fmt.Errorf("no items: pass at least one --item <item>=<amount>")
	}
	items, err := parseItems(params.Items)
	if err != nil {
		return err
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "bundle-set", map[string]any{
		"series_id": seriesID,
		"items":     items,
	}, nil); err != nil {
		return err
	}

	fmt.Printf("set bundle for series %d: %d item kinds\n", seriesID, len(items))
	return nil
}

// parseItems converts "--item <item>=<amount>" values into wire
// bundle lines.
func parseItems(specs []string) ([]itemAmount, error) {
	items := make([]itemAmount, 0, len(specs))
	for _, spec := range specs {
		itemText, amountText, found := strings.Cut(spec, "=")
		if !found {
			return nil, fmt.Errorf("invalid item %q: want <item>=<amount>", spec)
		}
		item, err := strconv.ParseUint(itemText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item %q: bad item ID: %w", spec, err)
		}
		amount, err := strconv.ParseUint(amountText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item %q: bad amount: %w", spec, err)
		}
		if amount == 0 {
			return nil, fmt.Errorf("invalid item %q: amount must be positive", spec)
		}
		items = append(items, itemAmount{Item: item, Amount: amount})
	}
	return items, nil
}
