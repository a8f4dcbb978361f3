// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/ref"
)

type verifyParams struct {
	cli.JSONOutput
	digestParams

	Signature string `flag:"signature,s" desc:"coupon signature to check (0x hex, 65 bytes)"`
	Signer    string `flag:"signer" desc:"expected signer address; exit nonzero on mismatch"`
}

func verifyCommand() *cli.Command {
	var params verifyParams
	return &cli.Command{
		Name:    "verify",
		Summary: "Recover the signer of a coupon signature",
		Description: `Rebuild the digest from the coupon's fields and recover the address
that produced the signature. With --signer the command compares the
recovered address against the expected one and exits nonzero on a
mismatch, which makes it usable from scripts.

A coupon the service rejected usually fails here too, and the
recovered address says why: a stale issuer key after a signer
rotation, or digest fields that do not match what was signed.`,
		Usage: "hangar coupon verify --signature <0x..> --purpose <purpose> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runVerify(&params)
		},
	}
}

type verifyResult struct {
	Digest    string `json:"digest"`
	Recovered string `json:"recovered"`
	Expected  string `json:"expected,omitempty"`
	Match     *bool  `json:"match,omitempty"`
}

func runVerify(params *verifyParams) error {
	if params.Signature == "" {
		return fmt.Errorf("missing --signature")
	}
	signature, err := coupon.ParseSignature(params.Signature)
	if err != nil {
		return err
	}

	digest, err := params.digest()
	if err != nil {
		return err
	}

	recovered, err := coupon.RecoverSigner(digest, signature)
	if err != nil {
		return err
	}

	result := verifyResult{
		Digest:    digest.String(),
		Recovered: recovered.String(),
	}

	var mismatch bool
	if params.Signer != "" {
		expected, err := ref.ParseParty(params.Signer)
		if err != nil {
			return fmt.Errorf("--signer: %w", err)
		}
		match := recovered == expected
		result.Expected = expected.String()
		result.Match = &match
		mismatch = !match
	}

	if done, err := params.EmitJSON(result); done {
		if err != nil {
			return err
		}
		if mismatch {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	fmt.Printf("digest:    %s\n", result.Digest)
	fmt.Printf("recovered: %s\n", result.Recovered)
	if params.Signer != "" {
		if mismatch {
			fmt.Printf("expected:  %s (MISMATCH)\n", result.Expected)
			return &cli.ExitError{Code: 1}
		}
		fmt.Printf("expected:  %s (match)\n", result.Expected)
	}
	return nil
}
