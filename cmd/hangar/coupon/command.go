// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package coupon implements the "hangar coupon" subcommands for
// offline coupon signing and verification.
package coupon

import (
	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
)

// Command returns the "coupon" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "coupon",
		Summary: "Sign and verify coupons offline",
		Description: `Sign and verify coupons without touching the service. A coupon is a
secp256k1 signature over a purpose-specific digest; the service
accepts it when the recovered signer matches its configured signer
address.

"sign" unseals the issuer key (sealed by hangar-keygen) and signs a
digest built from the same fields the service will hash. "verify"
recovers the signer from an existing signature, which is how a
coupon rejected in production gets debugged: rebuild the digest
from the request's fields and see who actually signed it.`,
		Subcommands: []*cli.Command{
			signCommand(),
			verifyCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Sign a 3-pass allotment at 100 each",
				Command:     "hangar coupon sign --issuer-key issuer.sealed --identity ops.age --purpose mint-pass --realm 0x09af... --network 1 --party 0x5290... --price 100 --allotted 3",
			},
			{
				Description: "Check who signed a rejected coupon",
				Command:     "hangar coupon verify --signature 0x1b... --purpose pilot --realm 0x09af... --network 1 --party 0x5290... --seed 0x7d...",
			},
		},
	}
}
