// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/hangar-foundation/hangar/cmd/hangar/cli"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/ref"
)

type mintParams struct {
	cli.JSONOutput

	Keys    string        `flag:"keys" desc:"service keys directory holding the operator signing keypair"`
	Subject string        `flag:"subject" desc:"caller name recorded in the audit trail (e.g. ops/amelia)"`
	Party   string        `flag:"party" desc:"acting party for admin role checks (0x hex)"`
	Scopes  []string      `flag:"scope" desc:"token scope, repeatable: admin or gateway"`
	TTL     time.Duration `flag:"ttl" desc:"token lifetime" default:"720h"`
	Out     string        `flag:"out,o" desc:"output path (default ~/.config/hangar/operator.token)"`
}

func mintCommand() *cli.Command {
	var params mintParams
	return &cli.Command{
		Name:    "mint",
		Summary: "Mint a signed operator token",
		Description: `Sign a fresh operator token with the service's Ed25519 signing key
and write it where the other hangar commands will pick it up.

Gateway tokens may omit --party; admin tokens must name the party
whose role grants authorize each admin action. The token ID lands in
the audit trail of every request made with the token, so mint one
token per operator rather than sharing.`,
		Usage: "hangar token mint --keys <dir> --subject <name> --scope <scope> [flags]",
		Examples: []cli.Example{
			{
				Description: "Admin token, default 30-day lifetime",
				Command:     "hangar token mint --keys /var/lib/hangar/keys --subject ops/amelia --party 0x5290... --scope admin",
			},
			{
				Description: "Short-lived gateway token for a claim frontend",
				Command:     "hangar token mint --keys /var/lib/hangar/keys --subject gateway/eu-west --scope gateway --ttl 168h --out gateway.token",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("mint", &params)
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runMint(&params)
		},
	}
}

type mintResult struct {
	Path      string   `json:"path"`
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	Party     string   `json:"party,omitempty"`
	Scopes    []string `json:"scopes"`
	ExpiresAt string   `json:"expires_at"`
}

func runMint(params *mintParams) error {
	if params.Keys == "" {
		return fmt.Errorf("missing --keys")
	}
	if params.Subject == "" {
		return fmt.Errorf("missing --subject")
	}
	if len(params.Scopes) == 0 {
		return fmt.Errorf("missing --scope: admin or gateway")
	}
	for _, scope := range params.Scopes {
		if scope != operator.ScopeAdmin && scope != operator.ScopeGateway {
			return fmt.Errorf("unknown scope %q: valid scopes are %s and %s",
				scope, operator.ScopeAdmin, operator.ScopeGateway)
		}
	}
	if params.TTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}

	var party ref.Party
	if params.Party != "" {
		parsed, err := ref.ParseParty(params.Party)
		if err != nil {
			return fmt.Errorf("--party: %w", err)
		}
		party = parsed
	}
	for _, scope := range params.Scopes {
		if scope == operator.ScopeAdmin && party.IsZero() {
			return fmt.Errorf("admin tokens need --party: role checks run against it")
		}
	}

	outPath := params.Out
	if outPath == "" {
		outPath = cli.DefaultTokenPath()
		if outPath == "" {
			return fmt.Errorf("cannot determine default token path: pass --out")
		}
	}

	_, private, err := operator.LoadKeypair(params.Keys)
	if err != nil {
		return err
	}

	id, err := operator.NewID()
	if err != nil {
		return err
	}

	now := time.Now()
	token := operator.Token{
		Subject:   params.Subject,
		Party:     party,
		Scopes:    params.Scopes,
		ID:        id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(params.TTL).Unix(),
	}

	tokenBytes, err := operator.Mint(private, &token)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outPath, tokenBytes, 0600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}

	result := mintResult{
		Path:      outPath,
		ID:        id,
		Subject:   token.Subject,
		Scopes:    token.Scopes,
		ExpiresAt: time.Unix(token.ExpiresAt, 0).UTC().Format(time.RFC3339),
	}
	if !party.IsZero() {
		result.Party = party.String()
	}
	if done, err := params.EmitJSON(result); done {
		return err
	}

	fmt.Printf("minted token %s for %s\n", id, token.Subject)
	fmt.Printf("  path:    %s\n", outPath)
	fmt.Printf("  scopes:  %s\n", strings.Join(token.Scopes, ", "))
	fmt.Printf("  expires: %s\n", result.ExpiresAt)
	return nil
}
