// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package redemption

import (
	"context"
	"fmt"
	"io"

	"zombiezen.com/go/sqlite"

	"github.com/hangar-foundation/hangar/lib/snapshot"
)

// ExportSnapshot captures the full issuance state and writes it to w
// as one snapshot frame. The capture runs inside a single read
// transaction, so the document is a consistent point-in-time view
// even while flows are committing on other connections.
//
// Read-only; no role is required.
func (s *Store) ExportSnapshot(ctx context.Context, w io.Writer) (snapshot.Header, error) {
	var header snapshot.Header
	err := s.readTx(ctx, func(conn *sqlite.Conn) error {
		document, err := snapshot.Capture(conn, s.realm, s.clock.Now())
		if err != nil {
			return err
		}
		header, err = snapshot.Export(w, document)
		return err
	})
	if err != nil {
		return snapshot.Header{}, fmt.Errorf("exporting snapshot: %w", err)
	}

	s.logger.Info("snapshot exported",
		"compression", header.Compression.String(),
		"document_bytes", header.UncompressedSize,
		"payload_bytes", header.CompressedSize,
	)
	return header, nil
}
