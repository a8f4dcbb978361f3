// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/hangar-foundation/hangar/lib/codec"
)

func TestStreamHeaderRoundtrip(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteStreamHeader(&buffer, Response{OK: true}); err != nil {
		t.Fatalf("WriteStreamHeader: %v", err)
	}
	body := []byte("body bytes after the header")
	buffer.Write(body)

	response, err := ReadStreamHeader(&buffer)
	if err != nil {
		t.Fatalf("ReadStreamHeader: %v", err)
	}
	if !response.OK {
		t.Errorf("expected ok=true, got false")
	}

	// The reader must be positioned exactly at the body.
	rest, err := io.ReadAll(&buffer)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(rest) != string(body) {
		t.Errorf("body = %q, want %q", rest, body)
	}
}

func TestStreamHeaderCarriesData(t *testing.T) {
	data, err := codec.Marshal(map[string]any{"bytes": 12345})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var buffer bytes.Buffer
	if err := WriteStreamHeader(&buffer, Response{OK: true, Data: data}); err != nil {
		t.Fatalf("WriteStreamHeader: %v", err)
	}

	response, err := ReadStreamHeader(&buffer)
	if err != nil {
		t.Fatalf("ReadStreamHeader: %v", err)
	}
	var decoded map[string]any
	if err := codec.Unmarshal(response.Data, &decoded); err != nil {
		t.Fatalf("Unmarshal data: %v", err)
	}
	if decoded["bytes"] != uint64(12345) {
		t.Errorf("data bytes = %v, want 12345", decoded["bytes"])
	}
}

func TestStreamHeaderPlainEnvelopeFallback(t *testing.T) {
	// A plain un-prefixed envelope, as written by the server's generic
	// error paths. Its first byte is a CBOR map initial byte, never
	// zero, which routes ReadStreamHeader to the fallback decode.
	var buffer bytes.Buffer
	if err := codec.NewEncoder(&buffer).Encode(Response{OK: false, Error: "unknown action"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	response, err := ReadStreamHeader(&buffer)
	if err != nil {
		t.Fatalf("ReadStreamHeader: %v", err)
	}
	if response.OK {
		t.Errorf("expected ok=false, got true")
	}
	if response.Error != "unknown action" {
		t.Errorf("error = %q, want 'unknown action'", response.Error)
	}
}

func TestStreamHeaderTooLarge(t *testing.T) {
	// Length prefix claiming a header over the cap but still under
	// 16 MB, so the first byte stays zero and the length path is
	// taken.
	var buffer bytes.Buffer
	var lengthPrefix [4]byte
	binary.BigEndian.PutUint32(lengthPrefix[:], maxStreamHeaderSize+1)
	buffer.Write(lengthPrefix[:])

	_, err := ReadStreamHeader(&buffer)
	if err == nil {
		t.Fatal("expected error for oversized header")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("error = %v, want size cap mentioned", err)
	}
}

func TestStreamHeaderTruncated(t *testing.T) {
	// Length prefix promising more bytes than follow.
	var buffer bytes.Buffer
	var lengthPrefix [4]byte
	binary.BigEndian.PutUint32(lengthPrefix[:], 100)
	buffer.Write(lengthPrefix[:])
	buffer.Write([]byte("short"))

	_, err := ReadStreamHeader(&buffer)
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestStreamHeaderEmptyInput(t *testing.T) {
	_, err := ReadStreamHeader(bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
}
