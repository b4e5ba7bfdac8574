package utils

import "errors"

// Error kinds shared by the compression backends. Container-level kinds live
// in internal/container; these cover per-entry payload failures.
var (
	// ErrTruncatedPayload reports a token stream, Huffman payload, or
	// range-coded payload that ends mid-record.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrInvalidBackReference reports a match whose distance is zero or
	// larger than the output produced so far.
	ErrInvalidBackReference = errors.New("invalid back-reference")

	// ErrCrcMismatch reports decompressed data that disagrees with the
	// stored CRC32 or original size.
	ErrCrcMismatch = errors.New("crc32 mismatch")
)
