package lzha

import (
	"github.com/scigolib/lzha/internal/container"
	"github.com/scigolib/lzha/internal/huffman"
	"github.com/scigolib/lzha/internal/lz77"
	"github.com/scigolib/lzha/internal/lzma"
)

// Codec is the compression capability an Archiver is constructed with.
// The set is closed: entry payloads and the container layout are coupled,
// so the two backends (plus the library-backed LZMA flavor) are the only
// implementations.
type Codec interface {
	// Name returns a human-readable codec name.
	Name() string

	// Compress encodes a whole entry buffer.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)

	format() container.Format
}

// lzhuffCodec is the LZ77 + Huffman pipeline stored in LZHA containers.
// The Huffman stage can be switched off, leaving raw token bytes as the
// payload.
type lzhuffCodec struct {
	useHuffman bool
}

// NewLZ77Codec creates the LZ77+Huffman codec. With useHuffman false the
// entropy stage is skipped and entries hold the bare token stream.
func NewLZ77Codec(useHuffman bool) Codec {
	return &lzhuffCodec{useHuffman: useHuffman}
}

func (c *lzhuffCodec) Name() string {
	if c.useHuffman {
		return "lz77+huffman"
	}
	return "lz77"
}

func (c *lzhuffCodec) Compress(data []byte) ([]byte, error) {
	tokens := lz77.Compress(data)
	if !c.useHuffman {
		return tokens, nil
	}
	return huffman.Compress(tokens), nil
}

func (c *lzhuffCodec) Decompress(data []byte) ([]byte, error) {
	tokens := data
	if c.useHuffman {
		var err error
		tokens, err = huffman.Decompress(data)
		if err != nil {
			return nil, err
		}
	}
	return lz77.Decompress(tokens)
}

func (c *lzhuffCodec) format() container.Format { return container.FormatLZHA }

// lzmaCodec is the bespoke range-coded backend stored in LZMA containers.
type lzmaCodec struct{}

// NewLZMACodec creates the bespoke range-coded LZMA codec.
func NewLZMACodec() Codec { return lzmaCodec{} }

func (lzmaCodec) Name() string { return "lzma" }

func (lzmaCodec) Compress(data []byte) ([]byte, error) {
	return lzma.Compress(data), nil
}

func (lzmaCodec) Decompress(data []byte) ([]byte, error) {
	return lzma.Decompress(data)
}

func (lzmaCodec) format() container.Format { return container.FormatLZMA }

// xzCodec delegates to the library LZMA implementation behind the same
// stream contract.
type xzCodec struct {
	level int
}

// NewXZCodec creates the library-backed LZMA codec at the given level
// (0..9).
func NewXZCodec(level int) Codec { return &xzCodec{level: level} }

func (c *xzCodec) Name() string { return "lzma(xz)" }

func (c *xzCodec) Compress(data []byte) ([]byte, error) {
	return lzma.CompressLib(data, c.level)
}

func (c *xzCodec) Decompress(data []byte) ([]byte, error) {
	return lzma.DecompressLib(data)
}

func (c *xzCodec) format() container.Format { return container.FormatLZMA }
