// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Hangar-mint-service is the daemon that runs a drop. It owns the
// drop database, serves the claim and redemption flows over a Unix
// socket, and drives the sale-window schedule from its configuration.
//
// # Startup
//
// The service loads its YAML configuration from --config (or the
// HANGAR_CONFIG environment variable), prepares the state
// directories, and opens the SQLite drop database, applying every
// engine schema. On a fresh database it grants the configured
// bootstrap admin the admin role and installs the configured trusted
// coupon signer; an established database keeps its grants and signer.
// An Ed25519 operator signing keypair is generated under the keys
// directory on first boot and reused afterwards.
//
// # Socket API
//
// Clients connect to the service's Unix socket and send one CBOR
// request per connection. The "action" field routes the request; the
// "token" field carries an operator token minted against the
// service's signing key. Three tiers:
//
//   - ping is unauthenticated liveness.
//   - Read-only queries (status, fragment-list, series-list,
//     reward-list, bundle-show) accept any valid token.
//   - claim-pass and the redeem-* actions require the gateway scope.
//   - Everything that changes configuration or moves funds requires
//     the admin scope.
//
// The token's scope gates the action class only. Mutations name the
// token's party as the acting party, and the store checks that party
// against its role grants, so a stolen admin-scope token whose party
// holds no roles can change nothing.
//
// # Sale windows
//
// Each configured window pairs a flow with cron expressions for
// opening and closing. The scheduler fires the flow switch at each
// boundary and, at startup, reconciles two-legged windows to the
// state their schedule implies. Manual switches (including
// emergency-stop) persist until the flow's next scheduled boundary;
// to hold a flow closed past its next opening, remove the window from
// the configuration.
package main
