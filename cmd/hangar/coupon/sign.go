// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/sealed"
	"github.com/hangar-foundation/hangar/lib/secret"
)

type signParams struct {
	cli.JSONOutput
	digestParams

	IssuerKey string `flag:"issuer-key,k" desc:"sealed issuer key file written by hangar-keygen"`
	Identity  string `flag:"identity,i" desc:"age identity that can unseal the issuer key (path, or - for stdin)"`
}

func signCommand() *cli.Command {
	var params signParams
	return &cli.Command{
		Name:    "sign",
		Summary: "Sign a coupon with a sealed issuer key",
		Description: `Unseal the issuer key, build the digest for the given purpose, and
print the signature. Runs entirely offline; nothing here talks to
the service.

The issuer key file is the sealed output of "hangar-keygen issuer".
The identity flag names the age identity file holding a private key
the seal was addressed to. Pass "-" to read the identity from stdin
so it never lands on disk on the signing host.`,
		Usage: "hangar coupon sign --issuer-key <file> --identity <file> --purpose <purpose> [flags]",
		Examples: []cli.Example{
			{
				Description: "Mint-pass coupon: 5 passes at 250 each",
				Command:     "hangar coupon sign -k issuer.sealed -i ops.age --purpose mint-pass --realm 0x09af... --network 1 --party 0x5290... --price 250 --allotted 5",
			},
			{
				Description: "Reward draw coupon for category 2",
				Command:     "hangar coupon sign -k issuer.sealed -i - --purpose reward --realm 0x09af... --network 1 --party 0x5290... --seed 0x7d... --category 2 < ops.age",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("sign", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runSign(&params)
		},
	}
}

type signResult struct {
	Signature string `json:"signature"`
	Digest    string `json:"digest"`
	Signer    string `json:"signer"`
}

func runSign(params *signParams) error {
	if params.IssuerKey == "" {
		return fmt.Errorf("missing --issuer-key")
	}
	if params.Identity == "" {
		return fmt.Errorf("missing --identity")
	}

	digest, err := params.digest()
	if err != nil {
		return err
	}

	issuer, err := unsealIssuer(params.IssuerKey, params.Identity)
	if err != nil {
		return err
	}

	signature := issuer.Sign(digest)

	result := signResult{
		Signature: signature.String(),
		Digest:    digest.String(),
		Signer:    issuer.Address().String(),
	}
	if done, err := params.EmitJSON(result); done {
		return err
	}

	fmt.Printf("signature: %s\n", result.Signature)
	fmt.Printf("digest:    %s\n", result.Digest)
	fmt.Printf("signer:    %s\n", result.Signer)
	return nil
}

// unsealIssuer decrypts the sealed issuer key and wraps it. The
// plaintext is the key as hex text; the decoded copy is zeroed before
// returning.
func unsealIssuer(keyPath, identityPath string) (*coupon.Issuer, error) {
	identity, err := secret.ReadFromPath(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	defer identity.Close()

	keyHex, err := sealed.UnsealFile(keyPath, identity)
	if err != nil {
		return nil, err
	}
	defer keyHex.Close()

	trimmed := bytes.TrimSpace(keyHex.Bytes())
	raw := make([]byte, hex.DecodedLen(len(trimmed)))
	if _, err := hex.Decode(raw, trimmed); err != nil {
		return nil, fmt.Errorf("issuer key is not hex text: %w", err)
	}
	defer secret.Zero(raw)

	return coupon.NewIssuer(raw)
}
