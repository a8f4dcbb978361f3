// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/spf13/pflag"
)

type statusParams struct {
	cli.MintConnection
	cli.JSONOutput
}

// The response mirrors below match the wire types in the mint
// service's socket.go and query.go (package main, not importable).

type statusResponse struct {
	At            int64        `cbor:"at" json:"at"`
	UptimeSeconds float64      `cbor:"uptime_seconds" json:"uptime_seconds"`
	Flows         []flowInfo   `cbor:"flows" json:"flows"`
	Signer        string       `cbor:"signer,omitempty" json:"signer,omitempty"`
	Treasury      uint64       `cbor:"treasury" json:"treasury"`
	Series        []seriesInfo `cbor:"series,omitempty" json:"series,omitempty"`
	Spaces        []spaceInfo  `cbor:"spaces" json:"spaces"`
	SeedsConsumed uint64       `cbor:"seeds_consumed" json:"seeds_consumed"`
	Windows       []windowInfo `cbor:"windows,omitempty" json:"windows,omitempty"`
}

type flowInfo struct {
	Flow   string `cbor:"flow" json:"flow"`
	Active bool   `cbor:"active" json:"active"`
}

type seriesInfo struct {
	ID             uint64 `cbor:"id" json:"id"`
	Label          string `cbor:"label,omitempty" json:"label,omitempty"`
	MaxSupply      uint64 `cbor:"max_supply" json:"max_supply"`
	ReservedSize   uint64 `cbor:"reserved_size" json:"reserved_size"`
	MintedPublic   uint64 `cbor:"minted_public" json:"minted_public"`
	MintedReserved uint64 `cbor:"minted_reserved" json:"minted_reserved"`
}

type fragmentInfo struct {
	Space          string `cbor:"space" json:"space"`
	ID             uint64 `cbor:"id" json:"id"`
	Label          string `cbor:"label,omitempty" json:"label,omitempty"`
	FirstID        uint64 `cbor:"first_id" json:"first_id"`
	Supply         uint64 `cbor:"supply" json:"supply"`
	ReservedSize   uint64 `cbor:"reserved_size" json:"reserved_size"`
	ReservedIssued uint64 `cbor:"reserved_issued" json:"reserved_issued"`
	PublicIssued   uint64 `cbor:"public_issued" json:"public_issued"`
	Locked         bool   `cbor:"locked" json:"locked"`
}

type spaceInfo struct {
	Space     string         `cbor:"space" json:"space"`
	Ceiling   uint64         `cbor:"ceiling" json:"ceiling"`
	Fragments []fragmentInfo `cbor:"fragments,omitempty" json:"fragments,omitempty"`
	Assets    uint64         `cbor:"assets" json:"assets"`
}

type windowInfo struct {
	Flow      string `cbor:"flow" json:"flow"`
	Open      string `cbor:"open,omitempty" json:"open,omitempty"`
	Close     string `cbor:"close,omitempty" json:"close,omitempty"`
	NextOpen  int64  `cbor:"next_open,omitempty" json:"next_open,omitempty"`
	NextClose int64  `cbor:"next_close,omitempty" json:"next_close,omitempty"`
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show the full drop state",
		Description: `Fetch one consistent snapshot of the drop: flow switches, coupon
signer, treasury balance, per-series mint counts, per-space fragment
layout, and configured sale windows.`,
		Usage: "hangar status",
		Examples: []cli.Example{
			{
				Description: "Human-readable drop overview",
				Command:     "hangar status",
			},
			{
				Description: "Machine-readable, for dashboards",
				Command:     "hangar status --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runStatus(params)
		},
	}
}

func runStatus(params statusParams) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	var status statusResponse
	if err := client.Call(ctx, "status", nil, &status); err != nil {
		return err
	}

	if done, err := params.EmitJSON(status); done {
		return err
	}

	fmt.Printf("At:        %s\n", time.Unix(status.At, 0).UTC().Format(time.RFC3339))
	fmt.Printf("Uptime:    %s\n", formatUptime(status.UptimeSeconds))
	if status.Signer != "" {
		fmt.Printf("Signer:    %s\n", status.Signer)
	} else {
		fmt.Printf("Signer:    (none)\n")
	}
	fmt.Printf("Treasury:  %d\n", status.Treasury)
	fmt.Printf("Seeds:     %d consumed\n", status.SeedsConsumed)

	fmt.Printf("\nFlows:\n")
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "  FLOW\tACTIVE")
	for _, flow := range status.Flows {
		fmt.Fprintf(writer, "  %s\t%v\n", flow.Flow, flow.Active)
	}
	writer.Flush()

	if len(status.Series) > 0 {
		fmt.Printf("\nSeries:\n")
		writer = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "  ID\tLABEL\tMAX\tRESERVED\tPUBLIC-MINTED\tRESERVED-MINTED")
		for _, series := range status.Series {
			fmt.Fprintf(writer, "  %d\t%s\t%d\t%d\t%d\t%d\n",
				series.ID, series.Label, series.MaxSupply, series.ReservedSize,
				series.MintedPublic, series.MintedReserved)
		}
		writer.Flush()
	}

	fmt.Printf("\nSpaces:\n")
	writer = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "  SPACE\tCEILING\tFRAGMENTS\tASSETS")
	for _, space := range status.Spaces {
		fmt.Fprintf(writer, "  %s\t%d\t%d\t%d\n",
			space.Space, space.Ceiling, len(space.Fragments), space.Assets)
	}
	writer.Flush()

	if len(status.Windows) > 0 {
		fmt.Printf("\nWindows:\n")
		writer = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "  FLOW\tOPEN\tCLOSE\tNEXT-OPEN\tNEXT-CLOSE")
		for _, window := range status.Windows {
			fmt.Fprintf(writer, "  %s\t%s\t%s\t%s\t%s\n",
				window.Flow, window.Open, window.Close,
				formatNext(window.NextOpen), formatNext(window.NextClose))
		}
		writer.Flush()
	}

	return nil
}

// formatUptime renders seconds as a coarse duration, dropping
// sub-second noise from the wire value.
func formatUptime(seconds float64) string {
	return (time.Duration(seconds) * time.Second).String()
}

// formatNext renders a unix timestamp, or "-" for the zero value
// (no upcoming occurrence, or the window lacks that leg).
func formatNext(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
