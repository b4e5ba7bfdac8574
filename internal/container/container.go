// Package container implements the two archive container layouts: LZHA
// for the LZ77+Huffman pipeline and LZMA for the range-coded pipeline.
//
// Both formats are fully sequential: a fixed header, an entry count, then
// the entries back to back with no directory, padding, or alignment.
// Reading is a single forward pass. All multi-byte integers are
// little-endian.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/scigolib/lzha/internal/utils"
)

// Format selects one of the two container layouts.
type Format int

// Container formats.
const (
	// FormatLZHA: 16-byte header (magic "LZHA", u8 version, u8 + ten
	// reserved zero bytes), then a u32 entry count.
	FormatLZHA Format = iota

	// FormatLZMA: 12-byte header (magic "LZMA", u32 version, u32 entry
	// count).
	FormatLZMA
)

// Version is the only container version either reader accepts.
const Version = 1

var (
	magicLZHA = []byte("LZHA")
	magicLZMA = []byte("LZMA")
)

// Container-level error kinds. Any of these aborts the whole read.
var (
	ErrBadMagic           = errors.New("bad archive magic")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	ErrTruncatedArchive   = errors.New("truncated archive")
)

// Entry is one file's worth of metadata and compressed payload.
type Entry struct {
	Filename       string
	OriginalSize   uint64
	CompressedSize uint64
	CRC32          uint32
	CompressedData []byte
}

// Write serializes entries in the given format. The whole archive is
// built in memory and returned as one buffer.
func Write(format Format, entries []Entry) []byte {
	size := 0
	for i := range entries {
		size += 2 + len(entries[i].Filename) + 8 + 8 + 4 + len(entries[i].CompressedData)
	}
	out := make([]byte, 0, 16+4+size)

	switch format {
	case FormatLZHA:
		out = append(out, magicLZHA...)
		out = append(out, Version, 0)
		out = append(out, make([]byte, 10)...) // reserved, always zero
		out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))
	case FormatLZMA:
		out = append(out, magicLZMA...)
		out = binary.LittleEndian.AppendUint32(out, Version)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))
	}

	for i := range entries {
		out = appendEntry(out, &entries[i])
	}
	return out
}

func appendEntry(out []byte, e *Entry) []byte {
	out = binary.LittleEndian.AppendUint16(out, uint16(len(e.Filename)))
	out = append(out, e.Filename...)
	out = binary.LittleEndian.AppendUint64(out, e.OriginalSize)
	out = binary.LittleEndian.AppendUint64(out, e.CompressedSize)
	out = binary.LittleEndian.AppendUint32(out, e.CRC32)
	return append(out, e.CompressedData...)
}

// Read parses an archive of the given format. Header problems abort with
// ErrBadMagic or ErrUnsupportedVersion; any declared length running off
// the end of the buffer aborts with ErrTruncatedArchive.
func Read(format Format, data []byte) ([]Entry, error) {
	c := utils.NewCursor(data)

	count, err := readHeader(format, c)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, minEntryCap(count))
	for i := uint32(0); i < count; i++ {
		entry, err := readEntry(c)
		if err != nil {
			return nil, utils.WrapError(fmt.Sprintf("entry %d", i), err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func readHeader(format Format, c *utils.Cursor) (count uint32, err error) {
	magic, err := c.Bytes(4)
	if err != nil {
		return 0, utils.WrapError("archive header", ErrTruncatedArchive)
	}

	switch format {
	case FormatLZHA:
		if string(magic) != string(magicLZHA) {
			return 0, utils.WrapError(fmt.Sprintf("got %q", magic), ErrBadMagic)
		}
		version, err := c.Uint8()
		if err != nil {
			return 0, utils.WrapError("archive header", ErrTruncatedArchive)
		}
		if version != Version {
			return 0, utils.WrapError(fmt.Sprintf("version %d", version), ErrUnsupportedVersion)
		}
		// One pad byte plus ten reserved bytes, skimmed without
		// validation.
		if err := c.Skip(11); err != nil {
			return 0, utils.WrapError("archive header", ErrTruncatedArchive)
		}

	case FormatLZMA:
		if string(magic) != string(magicLZMA) {
			return 0, utils.WrapError(fmt.Sprintf("got %q", magic), ErrBadMagic)
		}
		version, err := c.Uint32()
		if err != nil {
			return 0, utils.WrapError("archive header", ErrTruncatedArchive)
		}
		if version != Version {
			return 0, utils.WrapError(fmt.Sprintf("version %d", version), ErrUnsupportedVersion)
		}
	}

	count, err = c.Uint32()
	if err != nil {
		return 0, utils.WrapError("entry count", ErrTruncatedArchive)
	}
	return count, nil
}

func readEntry(c *utils.Cursor) (Entry, error) {
	var e Entry

	filenameLen, err := c.Uint16()
	if err != nil {
		return e, utils.WrapError("filename length", ErrTruncatedArchive)
	}
	filename, err := c.Bytes(int(filenameLen))
	if err != nil {
		return e, utils.WrapError("filename", ErrTruncatedArchive)
	}
	if len(filename) == 0 || !utf8.Valid(filename) {
		return e, utils.WrapError("filename not valid UTF-8", ErrTruncatedArchive)
	}
	e.Filename = string(filename)

	if e.OriginalSize, err = c.Uint64(); err != nil {
		return e, utils.WrapError("original size", ErrTruncatedArchive)
	}
	if e.CompressedSize, err = c.Uint64(); err != nil {
		return e, utils.WrapError("compressed size", ErrTruncatedArchive)
	}
	if e.CRC32, err = c.Uint32(); err != nil {
		return e, utils.WrapError("crc32", ErrTruncatedArchive)
	}

	if e.CompressedSize > uint64(c.Remaining()) {
		return e, utils.WrapError(
			fmt.Sprintf("payload of %d bytes, %d remaining", e.CompressedSize, c.Remaining()),
			ErrTruncatedArchive)
	}
	payload, err := c.Bytes(int(e.CompressedSize))
	if err != nil {
		return e, utils.WrapError("payload", ErrTruncatedArchive)
	}
	e.CompressedData = payload

	return e, nil
}

// minEntryCap bounds the initial allocation against absurd counts in
// corrupt headers.
func minEntryCap(count uint32) int {
	const limit = 1 << 16
	if count < limit {
		return int(count)
	}
	return limit
}
