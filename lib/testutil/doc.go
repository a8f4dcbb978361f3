// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by test suites: channel
// operations with timeout safety valves, and an in-memory database
// opener for store-layer tests. Production code never imports it.
package testutil
