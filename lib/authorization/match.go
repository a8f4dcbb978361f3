// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"path"
	"strings"
)

// MatchAction checks whether a concrete action matches a glob pattern.
// Actions use a "/" hierarchy:
//
//	"flow/set"    matches "flow/set" exactly
//	"flow/*"      matches "flow/set" but not "flow/set/claim"
//	"flow/**"     matches "flow/set", "flow/set/claim", etc.
//	"**"          matches any action
func MatchAction(pattern, action string) bool {
	if pattern == "**" {
		return true
	}

	if strings.HasSuffix(pattern, "/**") {
		prefix := pattern[:len(pattern)-3]
		if matched, err := path.Match(prefix, action); err == nil && matched {
			return true
		}
		// One or more additional segments after the prefix.
		for i := range len(action) {
			if action[i] != '/' {
				continue
			}
			if matched, err := path.Match(prefix, action[:i]); err == nil && matched {
				return true
			}
		}
		return false
	}

	// path.Match handles single-segment * and ? without crossing "/".
	// Malformed patterns deny.
	matched, err := path.Match(pattern, action)
	return err == nil && matched
}

// matchAnyAction checks whether an action matches any pattern in the
// list. Returns true on the first match.
func matchAnyAction(patterns []string, action string) bool {
	for _, pattern := range patterns {
		if MatchAction(pattern, action) {
			return true
		}
	}
	return false
}
