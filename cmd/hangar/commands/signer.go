// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/ref"
	"github.com/spf13/pflag"
)

type signerRotateParams struct {
	cli.MintConnection
}

func signerCommand() *cli.Command {
	return &cli.Command{
		Name:        "signer",
		Summary:     "Manage the coupon signer",
		Description: `Manage the address whose coupon signatures the service accepts.`,
		Subcommands: []*cli.Command{
			signerRotateCommand(),
		},
	}
}

func signerRotateCommand() *cli.Command {
	var params signerRotateParams

	return &cli.Command{
		Name:    "rotate",
		Summary: "Rotate the accepted coupon signer",
		Description: `Replace the coupon signer address. Coupons signed by the previous
key stop verifying immediately; coupons already redeemed are
unaffected. Pair this with re-running "hangar coupon sign" under
the new issuer key.`,
		Usage: "hangar signer rotate <address>",
		Examples: []cli.Example{
			{
				Description: "Cut over to a freshly generated issuer",
				Command:     "hangar signer rotate 0x8617e340b3d01fa5f11f306f4090fd50e238070d",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("rotate", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: hangar signer rotate <address>")
			}
			return runSignerRotate(params, args[0])
		},
	}
}

func runSignerRotate(params signerRotateParams, address string) error {
	signer, err := ref.ParseParty(address)
	if err != nil {
		return fmt.Errorf("invalid signer address: %w", err)
	}

	ctx, cancel := cli.CallContext(context.Background())
	defer cancel()

	client, err := params.Client()
	if err != nil {
		return err
	}

	if err := client.Call(ctx, "signer-rotate", map[string]any{
		"signer": signer.String(),
	}, nil); err != nil {
		return err
	}

	fmt.Printf("signer rotated to %s\n", signer)
	return nil
}
