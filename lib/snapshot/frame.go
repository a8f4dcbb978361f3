// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/hangar-foundation/hangar/lib/codec"
)

// Format constants.
const (
	// FormatVersion is the frame format version, distinct from
	// DocumentVersion: the frame describes the envelope, the document
	// version describes the sections inside it.
	FormatVersion = 1

	// headerSize is the fixed frame header: 8-byte magic + 1-byte
	// compression tag + 3 reserved bytes + two 8-byte sizes + 32-byte
	// checksum.
	headerSize = 60

	// maxDocumentSize caps both sizes read from a header, so a
	// corrupt or hostile file cannot make the reader allocate
	// unbounded memory.
	maxDocumentSize = 1 << 30
)

// magic is the 8-byte file signature: "HANGAR" + format version +
// reserved zero.
var magic = [8]byte{'H', 'A', 'N', 'G', 'A', 'R', FormatVersion, 0}

// checksumKey is the BLAKE3 keyed-hash domain key for snapshot
// checksums: the ASCII domain name, zero-padded to 32 bytes. Readable
// ASCII keeps the key inspectable in hex dumps; BLAKE3 treats it as
// an opaque 32-byte value either way. Changing it invalidates every
// existing snapshot checksum.
var checksumKey = [32]byte{
	'h', 'a', 'n', 'g', 'a', 'r', '.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', '.',
	'd', 'o', 'c', 'u', 'm', 'e', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0,
}

var (
	// ErrBadMagic is returned when the input does not start with the
	// snapshot signature.
	ErrBadMagic = errors.New("snapshot: not a snapshot file")

	// ErrUnsupportedVersion is returned for frames or documents
	// written by a newer format than this code understands.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

	// ErrChecksumMismatch is returned when the decompressed document
	// does not hash to the checksum in the header.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")

	// ErrTooLarge is returned when a header quotes a size beyond the
	// reader's allocation cap.
	ErrTooLarge = errors.New("snapshot: document exceeds size limit")
)

// Header is the parsed frame header.
type Header struct {
	Version          uint8
	Compression      CompressionTag
	UncompressedSize uint64
	CompressedSize   uint64

	// Checksum is the keyed BLAKE3 digest of the uncompressed
	// document. Because it is computed before compression, it
	// identifies the state regardless of which algorithm the frame
	// carries.
	Checksum [32]byte
}

// Checksum computes the snapshot-domain keyed BLAKE3 digest of an
// encoded document. Two captures of identical state produce identical
// digests, so this doubles as a cheap state fingerprint.
func Checksum(document []byte) [32]byte {
	hasher, err := blake3.NewKeyed(checksumKey[:])
	if err != nil {
		// NewKeyed fails only for a wrong key length, which the
		// fixed-size array rules out.
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(document)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Export encodes the document, probes it for the best compression,
// and writes one complete frame to w. The returned header reports the
// sizes and checksum actually written.
func Export(w io.Writer, document *Document) (Header, error) {
	encoded, err := codec.Marshal(document)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: encoding document: %w", err)
	}

	payload, tag, err := CompressAuto(encoded)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: compressing document: %w", err)
	}

	return writeFrame(w, encoded, payload, tag)
}

// Write is Export with the compression algorithm chosen by the
// caller instead of probed. An incompressible document degrades to
// CompressionNone rather than failing.
func Write(w io.Writer, document *Document, tag CompressionTag) (Header, error) {
	encoded, err := codec.Marshal(document)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: encoding document: %w", err)
	}

	payload, err := Compress(encoded, tag)
	if IsIncompressible(err) {
		payload, tag = encoded, CompressionNone
	} else if err != nil {
		return Header{}, fmt.Errorf("snapshot: compressing document: %w", err)
	}

	return writeFrame(w, encoded, payload, tag)
}

func writeFrame(w io.Writer, encoded, payload []byte, tag CompressionTag) (Header, error) {
	if len(encoded) > maxDocumentSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(encoded))
	}

	header := Header{
		Version:          FormatVersion,
		Compression:      tag,
		UncompressedSize: uint64(len(encoded)),
		CompressedSize:   uint64(len(payload)),
		Checksum:         Checksum(encoded),
	}

	var buffer [headerSize]byte
	copy(buffer[0:8], magic[:])
	buffer[8] = byte(tag)
	binary.LittleEndian.PutUint64(buffer[12:20], header.UncompressedSize)
	binary.LittleEndian.PutUint64(buffer[20:28], header.CompressedSize)
	copy(buffer[28:60], header.Checksum[:])

	if _, err := w.Write(buffer[:]); err != nil {
		return Header{}, fmt.Errorf("snapshot: writing header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return Header{}, fmt.Errorf("snapshot: writing payload: %w", err)
	}
	return header, nil
}

// ReadHeader reads and validates the fixed frame header, leaving r
// positioned at the start of the payload. Use it to inspect a
// snapshot without decompressing it.
func ReadHeader(r io.Reader) (Header, error) {
	var buffer [headerSize]byte
	if _, err := io.ReadFull(r, buffer[:]); err != nil {
		return Header{}, fmt.Errorf("snapshot: reading header: %w", err)
	}

	if [6]byte(buffer[0:6]) != [6]byte{'H', 'A', 'N', 'G', 'A', 'R'} {
		return Header{}, ErrBadMagic
	}
	if buffer[6] != FormatVersion {
		return Header{}, fmt.Errorf("%w: frame version %d (this code reads version %d)",
			ErrUnsupportedVersion, buffer[6], FormatVersion)
	}
	if buffer[7] != 0 {
		return Header{}, fmt.Errorf("%w: non-zero magic trailer byte %#x", ErrBadMagic, buffer[7])
	}

	tag := CompressionTag(buffer[8])
	if tag > CompressionZstd {
		return Header{}, fmt.Errorf("snapshot: unsupported compression tag %d", tag)
	}
	if buffer[9] != 0 || buffer[10] != 0 || buffer[11] != 0 {
		return Header{}, fmt.Errorf("snapshot: non-zero reserved bytes %x", buffer[9:12])
	}

	header := Header{
		Version:          buffer[6],
		Compression:      tag,
		UncompressedSize: binary.LittleEndian.Uint64(buffer[12:20]),
		CompressedSize:   binary.LittleEndian.Uint64(buffer[20:28]),
	}
	copy(header.Checksum[:], buffer[28:60])

	if header.UncompressedSize > maxDocumentSize {
		return Header{}, fmt.Errorf("%w: header quotes %d uncompressed bytes", ErrTooLarge, header.UncompressedSize)
	}
	if header.CompressedSize > maxDocumentSize {
		return Header{}, fmt.Errorf("%w: header quotes %d compressed bytes", ErrTooLarge, header.CompressedSize)
	}
	return header, nil
}

// Read reads one complete frame: header, payload, decompression,
// checksum verification, and decoding. A payload that does not hash
// to the header's checksum fails with ErrChecksumMismatch before any
// decoding happens.
func Read(r io.Reader) (*Document, Header, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, Header{}, err
	}

	payload := make([]byte, header.CompressedSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, Header{}, fmt.Errorf("snapshot: reading payload (%d bytes): %w", header.CompressedSize, err)
	}

	encoded, err := Decompress(payload, header.Compression, int(header.UncompressedSize))
	if err != nil {
		return nil, Header{}, fmt.Errorf("snapshot: %w", err)
	}

	if Checksum(encoded) != header.Checksum {
		return nil, Header{}, ErrChecksumMismatch
	}

	var document Document
	if err := codec.Unmarshal(encoded, &document); err != nil {
		return nil, Header{}, fmt.Errorf("snapshot: decoding document: %w", err)
	}
	if document.Version > DocumentVersion {
		return nil, Header{}, fmt.Errorf("%w: document version %d (this code reads up to %d)",
			ErrUnsupportedVersion, document.Version, DocumentVersion)
	}
	return &document, header, nil
}
