// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package dropplan

import (
	"os"
	"path/filepath"
	"testing"
)

const wavePlan = `{
	// Wave one launch checklist.
	"label": "wave-one",
	"series": [
		{"id": 1, "label": "pilot pass", "max_supply": 1000},
		{"id": 2, "label": "racecraft pass", "max_supply": 1000, "reserved": 50},
	],
	"fragments": [
		/* Shared geometry across both spaces. */
		{"id": 0, "supply": 100, "first_id": 0, "reserved_pilots": 10, "reserved_racecraft": 10, "label": "wave one"},
	],
	"bundles": [
		{"series": 3, "items": [{"item": 1001, "amount": 3}, {"item": 1002, "amount": 1}]},
	],
	"categories": [
		{
			"id": 5,
			"label": "wave-one rewards",
			"items": [201, 202, 203, 204, 205, 206, 207, 208, 209],
			"weights": {"common": 700, "mid": 250, "rare": 50},
		},
	],
	"windows": [
		{"flow": "claim", "open": "0 18 * * 5", "close": "0 22 * * 5"},
	],
}`

func TestParse(t *testing.T) {
	plan, err := Parse([]byte(wavePlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if plan.Label != "wave-one" {
		t.Errorf("Label = %q, want wave-one", plan.Label)
	}
	if len(plan.Series) != 2 {
		t.Fatalf("Series = %d entries, want 2", len(plan.Series))
	}
	if plan.Series[1].Reserved != 50 {
		t.Errorf("Series[1].Reserved = %d, want 50", plan.Series[1].Reserved)
	}
	if len(plan.Fragments) != 1 || plan.Fragments[0].Supply != 100 {
		t.Errorf("Fragments = %+v, want one with supply 100", plan.Fragments)
	}
	if len(plan.Bundles) != 1 || len(plan.Bundles[0].Items) != 2 {
		t.Errorf("Bundles = %+v, want one with two items", plan.Bundles)
	}
	if len(plan.Categories) != 1 || plan.Categories[0].Weights == nil {
		t.Fatalf("Categories = %+v, want one with explicit weights", plan.Categories)
	}
	if plan.Categories[0].Weights.Common != 700 {
		t.Errorf("Weights.Common = %d, want 700", plan.Categories[0].Weights.Common)
	}
	if len(plan.Windows) != 1 || plan.Windows[0].Flow != "claim" {
		t.Errorf("Windows = %+v, want one claim window", plan.Windows)
	}

	if issues := Validate(plan); len(issues) != 0 {
		t.Errorf("Validate: unexpected issues: %v", issues)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte(`{"label": `)); err == nil {
		t.Error("Parse should fail on truncated JSON")
	}
	if _, err := Parse([]byte(`[1, 2, 3]`)); err == nil {
		t.Error("Parse should fail on non-object JSON")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave-one.jsonc")
	if err := os.WriteFile(path, []byte(wavePlan), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if plan.Label != "wave-one" {
		t.Errorf("Label = %q, want wave-one", plan.Label)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc"))
	if err == nil {
		t.Error("ReadFile should fail on a missing file")
	}
}

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"deploy/plans/wave-one.jsonc", "wave-one"},
		{"wave-two.json", "wave-two"},
		{"/abs/path/launch.jsonc", "launch"},
		{"bare", "bare"},
	}
	for _, test := range tests {
		if got := NameFromPath(test.path); got != test.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}
