// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"os"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/dropplan"
	"github.com/spf13/pflag"
)

type validateParams struct {
	cli.JSONOutput
}

type validateResult struct {
	Path   string   `json:"path"`
	Label  string   `json:"label,omitempty"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

func validateCommand() *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check a drop plan offline",
		Description: `Parse and structurally validate a plan file without touching the
service. Exits nonzero when the plan has issues, so it slots into
CI for plan repositories. Validation cannot see the service's
state; collisions with existing series or fragments only surface
at apply time.`,
		Usage: "hangar plan validate <file>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("validate", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar plan validate <file>")
			}
			return runValidate(params, args[0])
		},
	}
}

func runValidate(params validateParams, path string) error {
	plan, err := dropplan.ReadFile(path)
	if err != nil {
		return err
	}

	issues := dropplan.Validate(plan)

	if params.OutputJSON {
		if err := cli.WriteJSON(validateResult{
			Path:   path,
			Label:  plan.Label,
			Valid:  len(issues) == 0,
			Issues: issues,
		}); err != nil {
			return err
		}
		if len(issues) > 0 {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	if len(issues) > 0 {
		fmt.Fprintf(os.Stderr, "plan %q has %d issue(s):\n", plan.Label, len(issues))
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		return &cli.ExitError{Code: 1}
	}

	fmt.Printf("plan %q is valid: %d series, %d fragments, %d bundles, %d categories, %d windows\n",
		plan.Label, len(plan.Series), len(plan.Fragments), len(plan.Bundles),
		len(plan.Categories), len(plan.Windows))
	return nil
}
