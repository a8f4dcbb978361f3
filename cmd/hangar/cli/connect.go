// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/hangar-foundation/hangar/lib/service"
)

// Environment variables that override the default connection paths.
// Flags take precedence over both.
const (
	// EnvSocket overrides the mint service socket path.
	EnvSocket = "HANGAR_MINT_SOCKET"

	// EnvToken overrides the operator token file path.
	EnvToken = "HANGAR_OPERATOR_TOKEN"
)

// DefaultSocketPath is the mint service's default listening socket,
// matching the daemon's configuration default.
const DefaultSocketPath = "/run/hangar/mint.sock"

// DefaultTokenPath returns the default operator token location,
// ~/.config/hangar/operator.token. This is where "hangar token mint"
// writes tokens unless told otherwise. Returns "" when the user config
// directory cannot be determined; connection setup reports a usable
// error in that case.
func DefaultTokenPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "hangar", "operator.token")
}

// MintConnection manages socket and token flags for CLI commands that
// talk to the mint service. Implements [FlagBinder] so it integrates
// with the params struct system when embedded in command parameter
// structs.
//
// Flag defaults come from HANGAR_MINT_SOCKET and HANGAR_OPERATOR_TOKEN
// when set, otherwise from the standard paths.
type MintConnection struct {
	SocketPath string
	TokenPath  string
}

// AddFlags registers the --socket and --token-file flags.
func (c *MintConnection) AddFlags(flagSet *pflag.FlagSet) {
	socketDefault := DefaultSocketPath
	if envSocket := os.Getenv(EnvSocket); envSocket != "" {
		socketDefault = envSocket
	}
	tokenDefault := DefaultTokenPath()
	if envToken := os.Getenv(EnvToken); envToken != "" {
		tokenDefault = envToken
	}

	flagSet.StringVar(&c.SocketPath, "socket", socketDefault, "mint service socket path")
	flagSet.StringVar(&c.TokenPath, "token-file", tokenDefault, "operator token file (from 'hangar token mint')")
}

// Client creates an authenticated service client from the connection
// parameters. The token file's raw bytes travel with every request.
func (c *MintConnection) Client() (*service.ServiceClient, error) {
	if c.TokenPath == "" {
		return nil, fmt.Errorf("no operator token path: pass --token-file or set %s", EnvToken)
	}
	return service.NewServiceClient(c.SocketPath, c.TokenPath)
}

// AnonymousClient creates an unauthenticated client. Only the "ping"
// action accepts unauthenticated requests.
func (c *MintConnection) AnonymousClient() *service.ServiceClient {
	return service.NewServiceClientFromToken(c.SocketPath, nil)
}

// CallContext returns a context with the standard service-call timeout
// derived from the provided parent. Most mint service operations are
// single SQLite transactions; 30 seconds covers even a cold database
// open on slow storage.
func CallContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 30*time.Second)
}
