// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Hangar is the operator CLI for a running mint service. It provides
// subcommands for drop administration (series, fragment, flow, airdrop,
// reward, bundle, plan), account and access control (vault, role,
// token), treasury movement (withdraw), offline coupon work (coupon),
// and service inspection (status, ping, audit, export).
package main
