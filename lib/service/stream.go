// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hangar-foundation/hangar/lib/codec"
)

// Stream actions answer with a length-prefixed Response header
// followed by raw body bytes:
//
//	[4-byte big-endian length][CBOR Response][body bytes]
//
// The length prefix exists because a streaming CBOR decoder reads
// ahead: decoding the header straight off the connection would
// swallow the start of the body. With the prefix the reader takes
// exactly the header bytes and leaves the stream positioned at the
// body.
//
// Failures that occur before the action's stream handler runs
// (unknown action, malformed request, authentication) are written as
// a plain un-prefixed Response envelope by the generic server paths.
// ReadStreamHeader accepts both forms: a prefixed header always
// begins with a zero byte (the header is far smaller than 16 MB),
// while a CBOR map never does, so the first byte routes the decode.
// A plain envelope is terminal — no body follows it — which is why
// decoder read-ahead is harmless on that path.

// maxStreamHeaderSize bounds the length-prefixed Response header of a
// stream action. 64 KB is generous for an envelope that carries at
// most an error string and a small data map.
const maxStreamHeaderSize = 64 * 1024

// WriteStreamHeader writes a length-prefixed Response envelope.
// Stream handlers call this exactly once, before any body bytes.
func WriteStreamHeader(w io.Writer, response Response) error {
	data, err := codec.Marshal(response)
	if err != nil {
		return fmt.Errorf("encoding stream header: %w", err)
	}
	var lengthPrefix [4]byte
	binary.BigEndian.PutUint32(lengthPrefix[:], uint32(len(data)))
	if _, err := w.Write(lengthPrefix[:]); err != nil {
		return fmt.Errorf("writing stream header length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing stream header: %w", err)
	}
	return nil
}

// ReadStreamHeader reads the Response envelope of a stream action,
// leaving r positioned at the first body byte. Also accepts a plain
// un-prefixed envelope, as written by the server's generic error
// paths.
func ReadStreamHeader(r io.Reader) (Response, error) {
	var first [4]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return Response{}, fmt.Errorf("reading stream header length: %w", err)
	}

	if first[0] != 0 {
		// Plain envelope: the four bytes already read are the start of
		// the CBOR value.
		var response Response
		if err := codec.NewDecoder(io.MultiReader(bytes.NewReader(first[:]), r)).Decode(&response); err != nil {
			return Response{}, fmt.Errorf("decoding response envelope: %w", err)
		}
		return response, nil
	}

	length := binary.BigEndian.Uint32(first[:])
	if length > maxStreamHeaderSize {
		return Response{}, fmt.Errorf("stream header size %d exceeds maximum %d", length, maxStreamHeaderSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return Response{}, fmt.Errorf("reading stream header: %w", err)
	}

	var response Response
	if err := codec.Unmarshal(data, &response); err != nil {
		return Response{}, fmt.Errorf("decoding stream header: %w", err)
	}
	return response, nil
}
