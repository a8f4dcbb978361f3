// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import "fmt"

// Purpose discriminates what a coupon authorizes. It is embedded in
// every digest preimage; the enumeration is closed and the zero value
// is invalid, so an unset purpose can never produce a verifiable
// digest.
type Purpose uint8

const (
	// PurposeMintPass authorizes claiming passes from a series at a
	// signed price and allotment.
	PurposeMintPass Purpose = 1

	// PurposePilot authorizes redeeming a pilot pass for a pilot
	// asset.
	PurposePilot Purpose = 2

	// PurposeRacecraft authorizes redeeming a racecraft pass for a
	// racecraft asset.
	PurposeRacecraft Purpose = 3

	// PurposeInventory authorizes redeeming an inventory pass for its
	// item bundle.
	PurposeInventory Purpose = 4

	// PurposeReward authorizes a weighted reward draw from a
	// category.
	PurposeReward Purpose = 5
)

// String returns the lowercase name used on the wire and in audit
// records.
func (p Purpose) String() string {
	switch p {
	case PurposeMintPass:
		return "mint-pass"
	case PurposePilot:
		return "pilot"
	case PurposeRacecraft:
		return "racecraft"
	case PurposeInventory:
		return "inventory"
	case PurposeReward:
		return "reward"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// ParsePurpose parses the wire name of a purpose.
func ParsePurpose(name string) (Purpose, error) {
	switch name {
	case "mint-pass":
		return PurposeMintPass, nil
	case "pilot":
		return PurposePilot, nil
	case "racecraft":
		return PurposeRacecraft, nil
	case "inventory":
		return PurposeInventory, nil
	case "reward":
		return PurposeReward, nil
	default:
		return 0, fmt.Errorf("unknown coupon purpose: %q", name)
	}
}

// Valid reports whether p is one of the defined purposes.
func (p Purpose) Valid() bool {
	return p >= PurposeMintPass && p <= PurposeReward
}
