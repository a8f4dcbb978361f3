// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package dropplan provides parsing, validation, and application of
// drop plans. A plan is the declarative description of one drop wave:
// the pass series to register, the paired fragments to open, the item
// bundles and reward categories to configure, and the sale windows
// the service should observe.
//
// Plans are authored on disk as JSONC files (JSON extended with
// comments and trailing commas) so launch checklists can carry
// inline annotations.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Plan
//  2. Validate: structural checks (duplicate IDs, weight sums,
//     window expressions)
//  3. Apply: execute the plan against a store in declaration order
//
// Apply performs no diffing. Each entry is submitted as-is and the
// store's own checks reject collisions with existing state, so
// re-applying a plan fails loudly on the first duplicate instead of
// silently merging. Windows are validated but not applied; they
// belong to the service configuration, and the CLI prints them for
// the operator to install.
package dropplan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Plan is one drop wave: everything an operator provisions before a
// sale window opens.
type Plan struct {
	// Label names the wave in audit trails and CLI output.
	Label string `json:"label"`

	// Series are the pass series to register.
	Series []SeriesPlan `json:"series,omitempty"`

	// Fragments are the paired fragments to open in the pilot and
	// racecraft spaces.
	Fragments []FragmentPlan `json:"fragments,omitempty"`

	// Bundles configure the items granted by inventory redemption,
	// keyed by pass series.
	Bundles []BundlePlan `json:"bundles,omitempty"`

	// Categories are the reward tables to install.
	Categories []CategoryPlan `json:"categories,omitempty"`

	// Windows are the sale windows for this wave. Validated here,
	// installed via service configuration.
	Windows []WindowPlan `json:"windows,omitempty"`
}

// SeriesPlan registers one pass series.
type SeriesPlan struct {
	ID        uint64 `json:"id"`
	Label     string `json:"label"`
	MaxSupply uint64 `json:"max_supply"`
	Reserved  uint64 `json:"reserved,omitempty"`
}

// FragmentPlan opens one paired fragment. Supply and first_id are
// shared across the two spaces; the reserved counts may differ.
type FragmentPlan struct {
	ID                uint64 `json:"id"`
	Supply            uint64 `json:"supply"`
	FirstID           uint64 `json:"first_id"`
	ReservedPilots    uint64 `json:"reserved_pilots,omitempty"`
	ReservedRacecraft uint64 `json:"reserved_racecraft,omitempty"`
	Label             string `json:"label,omitempty"`
}

// BundlePlan configures the item bundle for one pass series.
type BundlePlan struct {
	Series uint64          `json:"series"`
	Items  []ItemGrantPlan `json:"items"`
}

// ItemGrantPlan is one line of a bundle: an item and how many of it
// each redemption grants.
type ItemGrantPlan struct {
	Item   uint64 `json:"item"`
	Amount uint64 `json:"amount"`
}

// CategoryPlan installs one reward table. Items must list exactly
// nine item IDs, ordered common tier first, then mid, then rare.
// Absent weights default to the stock tier split.
type CategoryPlan struct {
	ID      uint64       `json:"id"`
	Label   string       `json:"label"`
	Items   []uint64     `json:"items"`
	Weights *WeightsPlan `json:"weights,omitempty"`
}

// WeightsPlan is a per-mille tier split. The three values must sum
// to 1000.
type WeightsPlan struct {
	Common uint64 `json:"common"`
	Mid    uint64 `json:"mid"`
	Rare   uint64 `json:"rare"`
}

// WindowPlan binds cron boundaries to a flow. At least one of open
// and close must be present.
type WindowPlan struct {
	Flow  string `json:"flow"`
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Plan.
func Parse(data []byte) (*Plan, error) {
	stripped := jsonc.ToJSON(data)

	var plan Plan
	if err := json.Unmarshal(stripped, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}

	return &plan, nil
}

// ReadFile reads a JSONC plan file from disk and parses it. Returns
// a descriptive error if the file cannot be read or the JSON is
// malformed.
func ReadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return plan, nil
}

// NameFromPath extracts a plan name from a file path by stripping the
// directory prefix and the file extension. For example,
// "deploy/plans/wave-one.jsonc" returns "wave-one".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}
