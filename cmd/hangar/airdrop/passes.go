// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package airdrop

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type passesParams struct {
	cli.MintConnection
	cli.JSONOutput
	Series uint64   `flag:"series" desc:"pass series to draw from"`
	Pool   string   `flag:"pool" desc:"allocation pool: public or reserved" default:"reserved"`
	Grants []string `flag:"grant" desc:"recipient grant as <address>=<quantity> (repeatable)"`
}

// passGrant mirrors the grant entry in the service's airdrop request.
// The recipient travels as its canonical hex string.
type passGrant struct {
	To       string `cbor:"to" json:"to"`
	Quantity uint64 `cbor:"quantity" json:"quantity"`
}

type airdropResponse struct {
	Recipients int    `cbor:"recipients" json:"recipients"`
	Passes     uint64 `cbor:"passes" json:"passes"`
}

func passesCommand() *cli.Command {
	var params passesParams

	return &cli.Command{
		Name:    "passes",
		Summary: "Airdrop mint passes to recipients",
		Description: `Credit passes to one or more recipients in a single atomic batch:
either every grant lands or none do. The pool decides which side of
the series supply is consumed; reserved-pool drops cannot eat into
public availability.`,
		Usage: "hangar airdrop passes --series <id> [--pool <public|reserved>] --grant <address>=<qty> [--grant ...]",
		Examples: []cli.Example{
			{
				Description: "Five reserved passes to one address",
				Command:     "hangar airdrop passes --series 1 --grant 0x52908400098527886e0f7030069857d2e4169ee7=5",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("passes", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runPasses(params)
		},
	}
}

func runPasses(params passesParams) error {
	if len(params.Grants) == 0 {
		return fmt.Errorf("no grants: pass at least one --grant <address>=<qty>")
	}
	grants, err := parseGrants(params.Grants)
	if err != nil {
		return err
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	var response airdropResponse
	if err := client.Call(ctx, "airdrop", map[string]any{
		"series_id": params.Series,
		"pool":      params.Pool,
		"grants":    grants,
	}, &response); err != nil {
		return err
	}

	if done, err := params.EmitJSON(response); done {
		return err
	}

	fmt.Printf("airdropped %d passes to %d recipients from series %d (%s pool)\n",
		response.Passes, response.Recipients, params.Series, params.Pool)
	return nil
}

// parseGrants converts "--grant <address>=<qty>" values into wire
// grants. Addresses are validated and canonicalized locally so a typo
// fails before the batch reaches the service.
func parseGrants(specs []string) ([]passGrant, error) {
	grants := make([]passGrant, 0, len(specs))
	for _, spec := range specs {
		address, quantity, found := strings.Cut(spec, "=")
		if !found {
			return nil, fmt.Errorf("invalid grant %q: want <address>=<quantity>", spec)
		}
		to, err := ref.ParseParty(address)
		if err != nil {
			return nil, fmt.Errorf("invalid grant %q: %w", spec, err)
		}
		count, err := strconv.ParseUint(quantity, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid grant %q: bad quantity: %w", spec, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("invalid grant %q: quantity must be positive", spec)
		}
		grants = append(grants, passGrant{To: to.String(), Quantity: count})
	}
	return grants, nil
}
