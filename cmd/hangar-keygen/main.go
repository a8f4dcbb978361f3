// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hangar-foundation/hangar/lib/coupon"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/sealed"
	"github.com/hangar-foundation/hangar/lib/secret"
	"github.com/hangar-foundation/hangar/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "issuer":
		return runIssuer(os.Args[2:])
	case "operator":
		return runOperator(os.Args[2:])
	case "identity":
		return runIdentity(os.Args[2:])
	case "version":
		fmt.Printf("hangar-keygen %s\n", version.Info())
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: hangar-keygen <subcommand> [flags]

Subcommands:
  issuer      Generate a coupon issuer key, sealed to age recipients
  operator    Generate the service's operator token signing keypair
  identity    Generate an age identity (for unsealing issuer keys)
  version     Print version information

Run 'hangar-keygen <subcommand> --help' for subcommand flags.
`)
}

// runIssuer generates a secp256k1 issuer key and seals it to the given
// age recipients. The key never touches disk in the clear: the sealed
// file is the only persistent copy, and the address printed to stdout
// is what a deployment configures as its trusted signer.
func runIssuer(args []string) error {
	flags := flag.NewFlagSet("issuer", flag.ExitOnError)
	var (
		out        string
		recipients multiFlag
	)
	flags.StringVar(&out, "out", "", "sealed output file (required)")
	flags.Var(&recipients, "recipient", "age public key to seal to (repeatable, at least one required)")
	flags.Parse(args)

	if out == "" || len(recipients) == 0 {
		flags.Usage()
		return fmt.Errorf("--out and at least one --recipient are required")
	}
	for _, recipient := range recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", recipient, err)
		}
	}

	issuer, err := coupon.GenerateIssuer(rand.Reader)
	if err != nil {
		return err
	}

	// Key at rest is hex text, matching the service's signing-key file
	// convention.
	keyBytes := issuer.KeyBytes()
	keyHex := []byte(hex.EncodeToString(keyBytes))
	secret.Zero(keyBytes)
	defer secret.Zero(keyHex)

	if err := sealed.SealToFile(out, keyHex, recipients); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "sealed issuer key to %s (%d recipients)\n", out, len(recipients))
	fmt.Fprintf(os.Stdout, "%s\n", issuer.Address())
	return nil
}

// runOperator generates the Ed25519 keypair the service signs operator
// tokens with, in the directory the service loads keys from.
func runOperator(args []string) error {
	flags := flag.NewFlagSet("operator", flag.ExitOnError)
	var keysDir string
	flags.StringVar(&keysDir, "keys", "", "keys directory (required)")
	flags.Parse(args)

	if keysDir == "" {
		flags.Usage()
		return fmt.Errorf("--keys is required")
	}
	if err := os.MkdirAll(keysDir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", keysDir, err)
	}

	public, private, generated, err := operator.LoadOrGenerateKeypair(keysDir)
	if err != nil {
		return err
	}
	secret.Zero(private)

	if generated {
		fmt.Fprintf(os.Stderr, "generated operator signing keypair in %s\n", keysDir)
	} else {
		fmt.Fprintf(os.Stderr, "keypair already present in %s, left unchanged\n", keysDir)
	}
	fmt.Fprintf(os.Stdout, "%s\n", hex.EncodeToString(public))
	return nil
}

// runIdentity generates a fresh age identity. The public key goes to
// stdout (pass it to 'hangar-keygen issuer --recipient'); the private
// key goes to stderr or, with --out, to a 0600 file usable as
// 'hangar coupon sign --identity'.
func runIdentity(args []string) error {
	flags := flag.NewFlagSet("identity", flag.ExitOnError)
	var out string
	flags.StringVar(&out, "out", "", "write the private key to this file instead of stderr")
	flags.Parse(args)

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("generating identity: %w", err)
	}
	defer keypair.Close()

	if out != "" {
		content := append([]byte{}, keypair.PrivateKey.Bytes()...)
		content = append(content, '\n')
		defer secret.Zero(content)
		if err := os.WriteFile(out, content, 0600); err != nil {
			return fmt.Errorf("writing identity: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote identity to %s\n", out)
	} else {
		fmt.Fprintf(os.Stderr, "# Private key (keep this secret):\n")
		fmt.Fprintf(os.Stderr, "%s\n", keypair.PrivateKey.String())
	}
	fmt.Fprintf(os.Stdout, "%s\n", keypair.PublicKey)
	return nil
}

// multiFlag collects repeated string flag values.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
