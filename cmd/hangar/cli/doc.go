// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree framework for the hangar CLI:
// command dispatch with typo suggestions, struct-tag flag binding over
// pflag, --json output support, and shared connection flags for
// commands that talk to the mint service socket.
package cli
