// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/hangar-foundation/hangar/lib/ref"
)

func mustParty(t *testing.T, address string) ref.Party {
	t.Helper()
	party, err := ref.ParseParty(address)
	if err != nil {
		t.Fatalf("ParseParty(%q) failed: %v", address, err)
	}
	return party
}

func mustSeed(t *testing.T, hexSeed string) ref.Seed {
	t.Helper()
	seed, err := ref.ParseSeed(hexSeed)
	if err != nil {
		t.Fatalf("ParseSeed(%q) failed: %v", hexSeed, err)
	}
	return seed
}

// sampleDocument builds a document with every section populated and
// enough repetition that both compressors reliably find matches.
func sampleDocument(t *testing.T) *Document {
	t.Helper()

	admin := mustParty(t, "0x00000000000000000000000000000000000a11ce")
	document := &Document{
		Version:    DocumentVersion,
		CapturedAt: 1767225600,
		Realm: RealmState{
			Address: mustParty(t, "0x000000000000000000000000000000000000d120"),
			Network: 1284,
		},
		Flows: map[string]bool{
			"claim":     true,
			"pilot":     true,
			"racecraft": false,
		},
		Signer:   mustParty(t, "0x0000000000000000000000000000000000005167"),
		Treasury: 125_000,
		Series: []SeriesState{
			{ID: 1, Label: "wave one", MaxSupply: 5000, ReservedSize: 250, MintedPublic: 1200, MintedReserved: 40, CreatedAt: 1767100000},
			{ID: 2, Label: "wave two", MaxSupply: 3000, CreatedAt: 1767110000},
		},
		Fragments: []FragmentState{
			{Space: "pilot", ID: 0, Label: "wave one", FirstID: 1, Supply: 5000, ReservedSize: 250, ReservedIssued: 40, PublicIssued: 1200, CreatedAt: 1767100000},
			{Space: "racecraft", ID: 0, Label: "wave one", FirstID: 1, Supply: 5000, ReservedSize: 100, PublicIssued: 1200, Locked: true, CreatedAt: 1767100000},
		},
		DrawSlots: []DrawSlot{
			{Space: "pilot", Fragment: 0, Slot: 3, Value: 4711},
			{Space: "pilot", Fragment: 0, Slot: 17, Value: 3},
		},
		Bundles: []BundleEntry{
			{Series: 1, ItemID: 1001, Amount: 3},
			{Series: 1, ItemID: 1002, Amount: 1},
		},
		Categories: []CategoryState{
			{ID: 7, Label: "launch crate", Common: 700, Mid: 250, Rare: 50,
				Items: []uint64{201, 202, 203, 204, 205, 206, 207, 208, 209}},
		},
		Grants: []GrantState{
			{Party: admin, Role: "admin", GrantedBy: admin, GrantedAt: 1767000000},
		},
	}

	for i := 0; i < 50; i++ {
		party := mustParty(t, fmt.Sprintf("0x%040x", 0x1000+i))
		document.Accounts = append(document.Accounts, AccountState{
			Party:   party,
			Balance: uint64(1000 + i),
		})
		document.PassHoldings = append(document.PassHoldings, PassHolding{
			Party:   party,
			Series:  1,
			Balance: 2,
		})
		document.ClaimCounts = append(document.ClaimCounts, ClaimCount{
			Series:  1,
			Party:   party,
			Claimed: 2,
		})
		document.Assets = append(document.Assets, AssetState{
			Space:      "pilot",
			TokenID:    uint64(1 + i),
			FragmentID: 0,
			Owner:      party,
			Seed:       mustSeed(t, fmt.Sprintf("0x%064x", 0xbeef0000+i)),
			MintedAt:   1767200000 + int64(i),
		})
		document.Items = append(document.Items, ItemHolding{
			Party:   party,
			ItemID:  1001,
			Balance: 3,
		})
		document.Seeds = append(document.Seeds, SeedState{
			Seed:       mustSeed(t, fmt.Sprintf("0x%064x", 0xbeef0000+i)),
			Flow:       "pilot",
			ConsumedAt: 1767200000 + int64(i),
		})
		document.Audit = append(document.Audit, AuditEntry{
			Seq:    uint64(1 + i),
			At:     1767200000 + int64(i),
			Actor:  party,
			Event:  "redeem-pilot",
			Detail: []byte{0xa0},
		})
	}
	return document
}

func TestExportReadRoundtrip(t *testing.T) {
	document := sampleDocument(t)

	var buffer bytes.Buffer
	header, err := Export(&buffer, document)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if header.Version != FormatVersion {
		t.Errorf("header version = %d, want %d", header.Version, FormatVersion)
	}
	if got := uint64(buffer.Len() - headerSize); got != header.CompressedSize {
		t.Errorf("payload length %d does not match header compressed size %d", got, header.CompressedSize)
	}

	decoded, readHeader, err := Read(&buffer)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if readHeader != header {
		t.Errorf("read header %+v does not match export header %+v", readHeader, header)
	}
	if !reflect.DeepEqual(decoded, document) {
		t.Error("decoded document does not match the original")
	}
}

func TestExportDeterministic(t *testing.T) {
	document := sampleDocument(t)

	var first, second bytes.Buffer
	if _, err := Export(&first, document); err != nil {
		t.Fatalf("first Export failed: %v", err)
	}
	if _, err := Export(&second, document); err != nil {
		t.Fatalf("second Export failed: %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two exports of the same document differ")
	}
}

func TestExportPicksCompression(t *testing.T) {
	// The sample document is dominated by repeated addresses, so the
	// probe should keep a real compressor.
	var buffer bytes.Buffer
	header, err := Export(&buffer, sampleDocument(t))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if header.Compression == CompressionNone {
		t.Error("probe selected no compression for a highly repetitive document")
	}
	if header.CompressedSize >= header.UncompressedSize {
		t.Errorf("compressed size %d not below uncompressed %d",
			header.CompressedSize, header.UncompressedSize)
	}
}

func TestWriteExplicitTags(t *testing.T) {
	document := sampleDocument(t)

	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			var buffer bytes.Buffer
			header, err := Write(&buffer, document, tag)
			if err != nil {
				t.Fatalf("Write(%s) failed: %v", tag, err)
			}
			if header.Compression != tag {
				t.Errorf("header compression = %s, want %s", header.Compression, tag)
			}

			decoded, _, err := Read(&buffer)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if !reflect.DeepEqual(decoded, document) {
				t.Error("decoded document does not match the original")
			}
		})
	}
}

func TestWriteChecksumIndependentOfCompression(t *testing.T) {
	// The checksum covers the uncompressed document, so the same
	// state fingerprints identically under every algorithm.
	document := sampleDocument(t)

	checksums := make(map[[32]byte]bool)
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		var buffer bytes.Buffer
		header, err := Write(&buffer, document, tag)
		if err != nil {
			t.Fatalf("Write(%s) failed: %v", tag, err)
		}
		checksums[header.Checksum] = true
	}

	if len(checksums) != 1 {
		t.Errorf("got %d distinct checksums across compression algorithms, want 1", len(checksums))
	}
}

func TestReadChecksumMismatch(t *testing.T) {
	// CompressionNone keeps the payload byte-addressable, so a flip
	// reaches the checksum verification rather than failing inside a
	// decompressor.
	var buffer bytes.Buffer
	if _, err := Write(&buffer, sampleDocument(t), CompressionNone); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	corrupted := buffer.Bytes()
	corrupted[headerSize+10] ^= 0xFF

	_, _, err := Read(bytes.NewReader(corrupted))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("corrupted payload: got %v, want ErrChecksumMismatch", err)
	}
}

func TestReadBadMagic(t *testing.T) {
	var buffer bytes.Buffer
	if _, err := Export(&buffer, sampleDocument(t)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	corrupted := buffer.Bytes()
	corrupted[0] = 'X'

	_, _, err := Read(bytes.NewReader(corrupted))
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("bad magic: got %v, want ErrBadMagic", err)
	}
}

func TestReadUnsupportedFrameVersion(t *testing.T) {
	var buffer bytes.Buffer
	if _, err := Export(&buffer, sampleDocument(t)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	corrupted := buffer.Bytes()
	corrupted[6] = FormatVersion + 1

	_, _, err := Read(bytes.NewReader(corrupted))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("future frame version: got %v, want ErrUnsupportedVersion", err)
	}
}

func TestReadUnsupportedDocumentVersion(t *testing.T) {
	document := sampleDocument(t)
	document.Version = DocumentVersion + 1

	var buffer bytes.Buffer
	if _, err := Export(&buffer, document); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	_, _, err := Read(&buffer)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("future document version: got %v, want ErrUnsupportedVersion", err)
	}
}

func TestReadNonZeroReservedBytes(t *testing.T) {
	var buffer bytes.Buffer
	if _, err := Export(&buffer, sampleDocument(t)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	corrupted := buffer.Bytes()
	corrupted[9] = 1

	if _, _, err := Read(bytes.NewReader(corrupted)); err == nil {
		t.Error("non-zero reserved bytes should fail")
	}
}

func TestReadTruncatedPayload(t *testing.T) {
	var buffer bytes.Buffer
	if _, err := Export(&buffer, sampleDocument(t)); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	truncated := buffer.Bytes()[:buffer.Len()-5]
	_, _, err := Read(bytes.NewReader(truncated))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated payload: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadHeaderLeavesPayload(t *testing.T) {
	var buffer bytes.Buffer
	exportHeader, err := Export(&buffer, sampleDocument(t))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	reader := bytes.NewReader(buffer.Bytes())
	header, err := ReadHeader(reader)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if header != exportHeader {
		t.Errorf("ReadHeader %+v does not match export header %+v", header, exportHeader)
	}

	remaining, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading payload after header: %v", err)
	}
	if uint64(len(remaining)) != header.CompressedSize {
		t.Errorf("payload after header is %d bytes, header quotes %d", len(remaining), header.CompressedSize)
	}
}

func TestReadHeaderSizeCap(t *testing.T) {
	var header [headerSize]byte
	copy(header[0:8], magic[:])
	header[8] = byte(CompressionNone)
	binary.LittleEndian.PutUint64(header[12:20], maxDocumentSize+1)
	binary.LittleEndian.PutUint64(header[20:28], 16)

	_, err := ReadHeader(bytes.NewReader(header[:]))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized header: got %v, want ErrTooLarge", err)
	}
}

func TestReadHeaderUnknownCompressionTag(t *testing.T) {
	var header [headerSize]byte
	copy(header[0:8], magic[:])
	header[8] = 99

	if _, err := ReadHeader(bytes.NewReader(header[:])); err == nil {
		t.Error("unknown compression tag should fail")
	}
}

func TestChecksumFingerprint(t *testing.T) {
	a := []byte("state one")
	b := []byte("state two")

	if Checksum(a) != Checksum(a) {
		t.Error("checksum of identical bytes differs")
	}
	if Checksum(a) == Checksum(b) {
		t.Error("checksum of different bytes collides")
	}
}
