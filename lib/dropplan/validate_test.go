// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package dropplan

import (
	"strings"
	"testing"
)

// validPlan builds a plan that passes every structural check. Cases
// mutate one aspect at a time.
func validPlan() *Plan {
	return &Plan{
		Label: "wave-one",
		Series: []SeriesPlan{
			{ID: 1, Label: "pilot pass", MaxSupply: 1000},
			{ID: 2, Label: "racecraft pass", MaxSupply: 1000, Reserved: 50},
		},
		Fragments: []FragmentPlan{
			{ID: 0, Supply: 100, FirstID: 0, ReservedPilots: 10, ReservedRacecraft: 10, Label: "wave one"},
		},
		Bundles: []BundlePlan{
			{Series: 3, Items: []ItemGrantPlan{{Item: 1001, Amount: 3}}},
		},
		Categories: []CategoryPlan{
			{ID: 5, Label: "rewards", Items: []uint64{201, 202, 203, 204, 205, 206, 207, 208, 209}},
		},
		Windows: []WindowPlan{
			{Flow: "claim", Open: "0 18 * * 5", Close: "0 22 * * 5"},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		mutate         func(*Plan)
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name:   "valid full plan",
			mutate: func(p *Plan) {},
		},
		{
			name: "valid empty plan",
			mutate: func(p *Plan) {
				p.Series = nil
				p.Fragments = nil
				p.Bundles = nil
				p.Categories = nil
				p.Windows = nil
			},
		},
		{
			name:           "missing label",
			mutate:         func(p *Plan) { p.Label = "" },
			expectedIssues: 1,
			wantSubstrings: []string{"no label"},
		},
		{
			name:           "series id zero",
			mutate:         func(p *Plan) { p.Series[0].ID = 0 },
			expectedIssues: 1,
			wantSubstrings: []string{"series[0]: id is required"},
		},
		{
			name:           "duplicate series id",
			mutate:         func(p *Plan) { p.Series[1].ID = 1 },
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate series id 1"},
		},
		{
			name:           "series missing label",
			mutate:         func(p *Plan) { p.Series[0].Label = "" },
			expectedIssues: 1,
			wantSubstrings: []string{"series[0]: label is required"},
		},
		{
			name:           "series zero supply",
			mutate:         func(p *Plan) { p.Series[0].MaxSupply = 0 },
			expectedIssues: 1,
			wantSubstrings: []string{"max_supply must be positive"},
		},
		{
			name:           "series reserved exceeds supply",
			mutate:         func(p *Plan) { p.Series[1].Reserved = 2000 },
			expectedIssues: 1,
			wantSubstrings: []string{"reserved 2000 exceeds max_supply 1000"},
		},
		{
			name: "fragment supply too small",
			mutate: func(p *Plan) {
				p.Fragments[0].Supply = 1
				p.Fragments[0].ReservedPilots = 0
				p.Fragments[0].ReservedRacecraft = 0
			},
			expectedIssues: 1,
			wantSubstrings: []string{"supply must be greater than 1"},
		},
		{
			name:           "fragment pilot reserved fills supply",
			mutate:         func(p *Plan) { p.Fragments[0].ReservedPilots = 100 },
			expectedIssues: 1,
			wantSubstrings: []string{"reserved_pilots 100 leaves no public room"},
		},
		{
			name:           "fragment racecraft reserved fills supply",
			mutate:         func(p *Plan) { p.Fragments[0].ReservedRacecraft = 100 },
			expectedIssues: 1,
			wantSubstrings: []string{"reserved_racecraft 100 leaves no public room"},
		},
		{
			name: "duplicate fragment id",
			mutate: func(p *Plan) {
				p.Fragments = append(p.Fragments, FragmentPlan{ID: 0, Supply: 50, FirstID: 100})
			},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate fragment id 0"},
		},
		{
			name:           "bundle series zero",
			mutate:         func(p *Plan) { p.Bundles[0].Series = 0 },
			expectedIssues: 1,
			wantSubstrings: []string{"bundles[0]: series is required"},
		},
		{
			name:           "bundle without items",
			mutate:         func(p *Plan) { p.Bundles[0].Items = nil },
			expectedIssues: 1,
			wantSubstrings: []string{"at least one item is required"},
		},
		{
			name:           "bundle zero amount",
			mutate:         func(p *Plan) { p.Bundles[0].Items[0].Amount = 0 },
			expectedIssues: 1,
			wantSubstrings: []string{"amount must be positive"},
		},
		{
			name:           "bundle zero item",
			mutate:         func(p *Plan) { p.Bundles[0].Items[0].Item = 0 },
			expectedIssues: 1,
			wantSubstrings: []string{"items[0]: item is required"},
		},
		{
			name: "bundle duplicate item",
			mutate: func(p *Plan) {
				p.Bundles[0].Items = append(p.Bundles[0].Items, ItemGrantPlan{Item: 1001, Amount: 1})
			},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate item 1001"},
		},
		{
			name: "duplicate bundle series",
			mutate: func(p *Plan) {
				p.Bundles = append(p.Bundles, BundlePlan{
					Series: 3,
					Items:  []ItemGrantPlan{{Item: 2002, Amount: 1}},
				})
			},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate bundle for series 3"},
		},
		{
			name:           "category wrong item count",
			mutate:         func(p *Plan) { p.Categories[0].Items = []uint64{1, 2, 3} },
			expectedIssues: 1,
			wantSubstrings: []string{"need exactly 9 items, got 3"},
		},
		{
			name:           "category zero item",
			mutate:         func(p *Plan) { p.Categories[0].Items[4] = 0 },
			expectedIssues: 1,
			wantSubstrings: []string{"items[4]: item is required"},
		},
		{
			name: "category weights do not sum",
			mutate: func(p *Plan) {
				p.Categories[0].Weights = &WeightsPlan{Common: 500, Mid: 300, Rare: 100}
			},
			expectedIssues: 1,
			wantSubstrings: []string{"sum to 1000 per mille, got 900"},
		},
		{
			name: "duplicate category id",
			mutate: func(p *Plan) {
				p.Categories = append(p.Categories, CategoryPlan{
					ID:    5,
					Label: "again",
					Items: []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9},
				})
			},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate category id 5"},
		},
		{
			name:           "window unknown flow",
			mutate:         func(p *Plan) { p.Windows[0].Flow = "warp" },
			expectedIssues: 1,
			wantSubstrings: []string{`unknown flow "warp"`},
		},
		{
			name: "window without boundaries",
			mutate: func(p *Plan) {
				p.Windows[0].Open = ""
				p.Windows[0].Close = ""
			},
			expectedIssues: 1,
			wantSubstrings: []string{"at least one of open and close"},
		},
		{
			name:           "window malformed open",
			mutate:         func(p *Plan) { p.Windows[0].Open = "not a cron" },
			expectedIssues: 1,
			wantSubstrings: []string{"windows[0]: open:", "expected 5 fields"},
		},
		{
			name:           "window out-of-range close",
			mutate:         func(p *Plan) { p.Windows[0].Close = "99 * * * *" },
			expectedIssues: 1,
			wantSubstrings: []string{"windows[0]: close:", "out of range"},
		},
		{
			name: "multiple issues",
			mutate: func(p *Plan) {
				p.Label = ""
				p.Series[0].ID = 0
				p.Windows[0].Flow = "warp"
				p.Windows[0].Open = ""
				p.Windows[0].Close = ""
			},
			// no label, series id, unknown flow, missing boundaries
			expectedIssues: 4,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			plan := validPlan()
			testCase.mutate(plan)

			issues := Validate(plan)
			if len(issues) != testCase.expectedIssues {
				t.Fatalf("got %d issues, want %d:\n%s", len(issues), testCase.expectedIssues, strings.Join(issues, "\n"))
			}

			for _, substring := range testCase.wantSubstrings {
				found := false
				for _, issue := range issues {
					if strings.Contains(issue, substring) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected issue containing %q, got:\n%s", substring, strings.Join(issues, "\n"))
				}
			}
		})
	}
}
