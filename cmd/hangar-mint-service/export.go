// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"net"
	"time"

	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/operator"
	"github.com/hangar-foundation/hangar/lib/service"
)

// headerWriteTimeout bounds the stream header write. The body that
// follows has no deadline; snapshots can be large and clients slow.
const headerWriteTimeout = 10 * time.Second

// exportInfo is the stream header payload for the "export" action.
// The frame itself follows as the stream body.
type exportInfo struct {
	Compression      string `cbor:"compression"`
	UncompressedSize uint64 `cbor:"uncompressed_size"`
	CompressedSize   uint64 `cbor:"compressed_size"`
	Checksum         string `cbor:"checksum"`
}

// handleExport streams one snapshot frame. The frame is buffered
// before the header goes out: once the client has seen a success
// header there is no in-band way to report a capture failure.
func (m *mintService) handleExport(ctx context.Context, token *operator.Token, raw []byte, conn net.Conn) {
	var frame bytes.Buffer
	header, err := m.store.ExportSnapshot(ctx, &frame)
	if err != nil {
		m.logger.Error("snapshot export failed", "error", err)
		conn.SetWriteDeadline(time.Now().Add(headerWriteTimeout))
		service.WriteStreamHeader(conn, service.Response{OK: false, Error: "snapshot export failed"})
		return
	}

	info, err := codec.Marshal(exportInfo{
		Compression:      header.Compression.String(),
		UncompressedSize: header.UncompressedSize,
		CompressedSize:   header.CompressedSize,
		Checksum:         hex.EncodeToString(header.Checksum[:]),
	})
	if err != nil {
		m.logger.Error("encoding export header", "error", err)
		conn.SetWriteDeadline(time.Now().Add(headerWriteTimeout))
		service.WriteStreamHeader(conn, service.Response{OK: false, Error: "snapshot export failed"})
		return
	}

	frameBytes := frame.Len()
	conn.SetWriteDeadline(time.Now().Add(headerWriteTimeout))
	if err := service.WriteStreamHeader(conn, service.Response{OK: true, Data: info}); err != nil {
		m.logger.Warn("writing export header", "error", err)
		return
	}
	conn.SetWriteDeadline(time.Time{})

	if _, err := io.Copy(conn, &frame); err != nil {
		m.logger.Warn("streaming snapshot frame", "error", err)
		return
	}

	m.logger.Info("snapshot exported",
		"subject", token.Subject,
		"compression", header.Compression.String(),
		"bytes", frameBytes,
	)
}
