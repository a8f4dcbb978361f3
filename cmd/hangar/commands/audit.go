// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/spf13/pflag"
)

type auditParams struct {
	cli.MintConnection
	cli.JSONOutput
	Limit uint64 `flag:"limit,n" desc:"max records to fetch, newest first (0 = all)" default:"50"`
}

type auditResponse struct {
	Records []auditRecord `cbor:"records"`
}

type auditRecord struct {
	Seq    uint64           `cbor:"seq" json:"seq"`
	At     int64            `cbor:"at" json:"at"`
	Actor  string           `cbor:"actor" json:"actor"`
	Event  string           `cbor:"event" json:"event"`
	Detail codec.RawMessage `cbor:"detail,omitempty" json:"-"`
}

// auditRecordJSON is the --json form of a record: the CBOR detail
// payload decoded into plain maps so it survives encoding/json.
type auditRecordJSON struct {
	Seq    uint64 `json:"seq"`
	At     int64  `json:"at"`
	Actor  string `json:"actor"`
	Event  string `json:"event"`
	Detail any    `json:"detail,omitempty"`
}

func auditCommand() *cli.Command {
	var params auditParams

	return &cli.Command{
		Name:    "audit",
		Summary: "Show the administrative audit trail",
		Description: `List recent administrative events: who did what, when, with the
event-specific detail the service recorded. Records are returned
newest first.`,
		Usage: "hangar audit [--limit <n>]",
		Examples: []cli.Example{
			{
				Description: "The last 50 events",
				Command:     "hangar audit",
			},
			{
				Description: "The complete trail, as JSON",
				Command:     "hangar audit --limit 0 --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("audit", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runAudit(params)
		},
	}
}

func runAudit(params auditParams) error {
	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if params.Limit > 0 {
		fields["limit"] = params.Limit
	}

	var response auditResponse
	if err := client.Call(ctx, "audit", fields, &response); err != nil {
		return err
	}

	if params.OutputJSON {
		records := make([]auditRecordJSON, len(response.Records))
		for i, record := range response.Records {
			records[i] = auditRecordJSON{
				Seq:    record.Seq,
				At:     record.At,
				Actor:  record.Actor,
				Event:  record.Event,
				Detail: decodeDetail(record.Detail),
			}
		}
		return cli.WriteJSON(records)
	}

	if len(response.Records) == 0 {
		fmt.Fprintln(os.Stderr, "no audit records")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SEQ\tAT\tACTOR\tEVENT\tDETAIL")
	for _, record := range response.Records {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
			record.Seq,
			time.Unix(record.At, 0).UTC().Format(time.RFC3339),
			record.Actor,
			record.Event,
			detailSummary(record.Detail),
		)
	}
	writer.Flush()

	return nil
}

// decodeDetail turns the raw CBOR detail into plain Go values
// (map[string]any and friends). Returns nil when the record has no
// detail or it cannot be decoded.
func decodeDetail(raw codec.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := codec.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

// detailSummary renders the detail payload as compact JSON for the
// table column. Falls back to CBOR diagnostic notation when the
// payload resists conversion.
func detailSummary(raw codec.RawMessage) string {
	value := decodeDetail(raw)
	if value == nil {
		return ""
	}
	compact, err := json.Marshal(value)
	if err != nil {
		diagnostic, diagErr := codec.Diagnose(raw)
		if diagErr != nil {
			return "(undecodable)"
		}
		return diagnostic
	}
	return string(compact)
}
