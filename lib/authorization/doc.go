// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package authorization decides which parties may perform privileged
// drop operations. Parties hold roles; each role covers a set of
// action patterns. Role grants live in the drop database and may
// carry an expiry, so evaluation happens inside the same transaction
// as the operation it gates.
package authorization
