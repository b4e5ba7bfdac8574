package lzma

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/scigolib/lzha/internal/utils"
)

// Library-backed drop-in for the bespoke coder: same "LZMA" + u64 size
// framing, but the payload is a classic LZMA stream produced by
// github.com/ulikunitz/xz. The two payload flavors are not interchangeable;
// the archiver picks one codec at construction time.

// CompressLib encodes data with the library coder at the given level
// (0..9, out-of-range values are clamped). The level scales the
// dictionary capacity.
func CompressLib(data []byte, level int) ([]byte, error) {
	if level < 0 {
		level = 0
	}
	if level > 9 {
		level = 9
	}

	var buf bytes.Buffer
	buf.Write(streamMagic)
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(data)))
	buf.Write(size[:])

	cfg := lzma.WriterConfig{DictCap: 1 << uint(12+level)}
	w, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, utils.WrapError("lzma writer setup failed", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, utils.WrapError("lzma compression failed", err)
	}
	if err := w.Close(); err != nil {
		return nil, utils.WrapError("lzma stream close failed", err)
	}

	return buf.Bytes(), nil
}

// DecompressLib decodes a framed library stream.
func DecompressLib(stream []byte) ([]byte, error) {
	c := utils.NewCursor(stream)

	magic, err := c.Bytes(4)
	if err != nil {
		return nil, utils.WrapError("lzma stream header", utils.ErrTruncatedPayload)
	}
	if !bytes.Equal(magic, streamMagic) {
		return nil, utils.WrapError(
			fmt.Sprintf("lzma stream magic %q", magic), utils.ErrTruncatedPayload)
	}
	originalSize, err := c.Uint64()
	if err != nil {
		return nil, utils.WrapError("lzma stream size", utils.ErrTruncatedPayload)
	}

	payload, _ := c.Bytes(c.Remaining())
	r, err := lzma.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, utils.WrapError("lzma reader setup failed", err)
	}

	output := make([]byte, 0, minCap(originalSize))
	out := bytes.NewBuffer(output)
	if _, err := io.Copy(out, r); err != nil {
		return nil, utils.WrapError("lzma decompression failed", err)
	}
	if uint64(out.Len()) != originalSize {
		return nil, utils.WrapError(
			fmt.Sprintf("decoded %d bytes, header says %d", out.Len(), originalSize),
			utils.ErrCrcMismatch)
	}
	return out.Bytes(), nil
}
