// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens pooled SQLite connections with Hangar's
// standard pragma set (WAL journaling, normal synchronous, busy
// timeout). The mint store builds on it: every flow borrows one
// connection, runs one immediate transaction, and returns it.
package sqlitepool
