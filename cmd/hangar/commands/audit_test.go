// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"

	"github.com/hangar-foundation/hangar/lib/codec"
)

func TestDecodeDetail(t *testing.T) {
	raw, err := codec.Marshal(map[string]any{
		"series_id": uint64(2),
		"pool":      "reserved",
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	value := decodeDetail(codec.RawMessage(raw))
	detail, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("decodeDetail = %T, want map[string]any", value)
	}
	if detail["pool"] != "reserved" {
		t.Errorf("pool = %v, want %q", detail["pool"], "reserved")
	}
}

func TestDecodeDetail_Empty(t *testing.T) {
	if value := decodeDetail(nil); value != nil {
		t.Errorf("decodeDetail(nil) = %v, want nil", value)
	}
}

func TestDetailSummary(t *testing.T) {
	raw, err := codec.Marshal(map[string]any{"flow": "claim", "active": true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	summary := detailSummary(codec.RawMessage(raw))
	if !strings.Contains(summary, `"flow":"claim"`) {
		t.Errorf("summary %q missing flow field", summary)
	}
	if !strings.Contains(summary, `"active":true`) {
		t.Errorf("summary %q missing active field", summary)
	}
}

func TestDetailSummary_Empty(t *testing.T) {
	if summary := detailSummary(nil); summary != "" {
		t.Errorf("detailSummary(nil) = %q, want empty", summary)
	}
}
