// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The store stamps audit records and fragment creation times through
// a Clock; the scheduler drives sale windows from one. Tests inject a
// FakeClock and advance it explicitly, so schedule behavior is
// verified without wall-clock sleeps.
package clock
