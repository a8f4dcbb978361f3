// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package cron parses standard 5-field cron expressions and computes
// schedule occurrences around a given time.
//
// Supported syntax:
//
//	┌───────────── minute (0-59)
//	│ ┌───────────── hour (0-23)
//	│ │ ┌───────────── day of month (1-31)
//	│ │ │ ┌───────────── month (1-12)
//	│ │ │ │ ┌───────────── day of week (0-6, 0=Sunday)
//	│ │ │ │ │
//	* * * * *
//
// Each field supports:
//   - Single values: 5
//   - Ranges: 1-5
//   - Lists: 1,3,5
//   - Steps: */15, 1-30/5
//   - Wildcard: *
//
// [Schedule.Next] finds the first occurrence strictly after a time and
// drives the mint service's window timers. [Schedule.Prev] finds the
// latest occurrence at or before a time; the service uses it on
// startup to decide whether a flow window is currently open without
// replaying missed boundary events.
//
// All times are UTC. No @daily/@hourly shortcuts, no seconds field,
// no named days or months. Drop windows are announced in UTC
// wall-clock time and that is the only clock this package knows.
package cron
