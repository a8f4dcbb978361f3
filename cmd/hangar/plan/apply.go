// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"context"
	"fmt"
	"os"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/dropplan"
	"github.com/spf13/pflag"
)

type applyParams struct {
	cli.MintConnection
	cli.JSONOutput
}

// planApplyResponse mirrors the service's plan-apply response.
type planApplyResponse struct {
	Label      string `cbor:"label,omitempty" json:"label,omitempty"`
	Series     int    `cbor:"series" json:"series"`
	Fragments  int    `cbor:"fragments" json:"fragments"`
	Bundles    int    `cbor:"bundles" json:"bundles"`
	Categories int    `cbor:"categories" json:"categories"`

	WindowsIgnored int `cbor:"windows_ignored,omitempty" json:"windows_ignored,omitempty"`
}

func applyCommand() *cli.Command {
	var params applyParams

	return &cli.Command{
		Name:    "apply",
		Summary: "Apply a drop plan to the service",
		Description: `Validate a plan locally, then submit it for execution. The service
re-validates and runs the entries in declaration order; the first
store rejection stops the run with earlier entries committed, so
take a snapshot first ("hangar export") when applying over live
state.

Sale windows in the plan are not installed over the socket. After a
successful apply they are printed in the form the service
configuration expects.`,
		Usage: "hangar plan apply <file>",
		Examples: []cli.Example{
			{
				Description: "Snapshot, then apply",
				Command:     "hangar export --out pre-wave2.snap && hangar plan apply wave2.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("apply", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar plan apply <file>")
			}
			return runApply(params, args[0])
		},
	}
}

func runApply(params applyParams, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading plan: %w", err)
	}

	// The local parse catches malformed files and structural issues
	// before anything reaches the service; it also yields the window
	// list for the post-apply printout.
	plan, err := dropplan.Parse(data)
	if err != nil {
		return err
	}
	if issues := dropplan.Validate(plan); len(issues) > 0 {
		fmt.Fprintf(os.Stderr, "plan %q has %d issue(s):\n", plan.Label, len(issues))
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		return &cli.ExitError{Code: 1}
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	logger := cli.NewCommandLogger().With("command", "plan/apply", "plan", plan.Label)
	logger.Info("submitting plan",
		"series", len(plan.Series),
		"fragments", len(plan.Fragments),
		"bundles", len(plan.Bundles),
		"categories", len(plan.Categories))

	var applied planApplyResponse
	if err := client.Call(ctx, "plan-apply", map[string]any{
		"plan": data,
	}, &applied); err != nil {
		return err
	}

	if done, err := params.EmitJSON(applied); done {
		return err
	}

	fmt.Printf("applied plan %q: %d series, %d fragments, %d bundles, %d categories\n",
		applied.Label, applied.Series, applied.Fragments, applied.Bundles, applied.Categories)

	if len(plan.Windows) > 0 {
		fmt.Printf("\n%d window(s) not applied; add to the service configuration:\n", len(plan.Windows))
		fmt.Printf("windows:\n")
		for _, window := range plan.Windows {
			fmt.Printf("  - flow: %s\n", window.Flow)
			if window.Open != "" {
				fmt.Printf("    open: %q\n", window.Open)
			}
			if window.Close != "" {
				fmt.Printf("    close: %q\n", window.Close)
			}
		}
	}
	return nil
}
