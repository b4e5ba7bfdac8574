// Package lzma implements the range-coded compression backend: a greedy
// LZ77 search feeding a 12-state packet machine whose every bit goes
// through the adaptive range coder.
//
// A compressed stream is a small fixed header ("LZMA" magic plus the
// little-endian 64-bit original size) followed by the raw range-coded
// payload. The format is private to this archiver.
package lzma

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/scigolib/lzha/internal/rangecoder"
	"github.com/scigolib/lzha/internal/utils"
)

const (
	// WindowSize is the sliding-window size for back-references.
	WindowSize = 64 * 1024

	// MinMatch and MaxMatch bound match lengths the finder will report.
	MinMatch = 3
	MaxMatch = 273

	// maxEncMatch is the longest length the tiered length coder can
	// express (l = length-MinMatch caps at 10+255). Longer runs are
	// emitted as two packets.
	maxEncMatch = MinMatch + 10 + 255
)

var streamMagic = []byte("LZMA")

// headerSize is the magic plus the 64-bit original size.
const headerSize = 12

// Compress encodes data and returns the framed stream.
func Compress(data []byte) []byte {
	out := make([]byte, 0, headerSize+len(data)/2+16)
	out = append(out, streamMagic...)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(data)))

	p := newProbs()
	e := rangecoder.NewEncoder()

	state := 0
	var reps [numReps]int
	prevByte := byte(0)

	pos := 0
	for pos < len(data) {
		posState := pos & posMask
		cs := choiceState(posState, state)

		repLen, repSlot := findRepMatch(data, pos, reps)

		// A fully saturated rep cannot be beaten, so skip the scan.
		var matchLen, matchDist int
		if repLen < maxEncMatch {
			matchLen, matchDist = findMatch(data, pos, repLen)
		}

		bestLen := repLen
		if matchLen > bestLen {
			bestLen = matchLen
		}

		if bestLen < MinMatch {
			e.EncodeBit(&p.isMatch[cs], 0)
			encodeLiteral(e, p, state, prevByte, data[pos])
			state = stateAfterLiteral(state)
			pos++
			prevByte = data[pos-1]
			continue
		}

		e.EncodeBit(&p.isMatch[cs], 1)
		length := bestLen
		if length > maxEncMatch {
			length = maxEncMatch
		}

		if matchLen > repLen {
			// Fresh match: length, then distance, then rotate the
			// rep window.
			e.EncodeBit(&p.isRep[cs], 0)
			encodeLength(e, p, posState, length)
			encodeDistance(e, p, matchDist)
			reps = [numReps]int{matchDist, reps[0], reps[1], reps[2]}
			state = stateAfterMatch(state)
		} else {
			// Rep match: slot index, then length; the slot is
			// promoted to the front of the window.
			e.EncodeBit(&p.isRep[cs], 1)
			encodeRepSlot(e, p, cs, repSlot)
			promote(&reps, repSlot)
			encodeLength(e, p, posState, length)
			state = stateAfterRep(state)
		}

		pos += length
		prevByte = data[pos-1]
	}

	return append(out, e.Finish()...)
}

// Decompress decodes a framed stream back into the original bytes.
func Decompress(stream []byte) ([]byte, error) {
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

	p := newProbs()
	d := rangecoder.NewDecoder(payload)

	state := 0
	var reps [numReps]int
	prevByte := byte(0)

	output := make([]byte, 0, minCap(originalSize))
	for uint64(len(output)) < originalSize {
		posState := len(output) & posMask
		cs := choiceState(posState, state)

		if d.DecodeBit(&p.isMatch[cs]) == 0 {
			b := decodeLiteral(d, p, state, prevByte)
			output = append(output, b)
			state = stateAfterLiteral(state)
			prevByte = b
			continue
		}

		var length, distance int
		if d.DecodeBit(&p.isRep[cs]) == 0 {
			length = decodeLength(d, p, posState)
			distance = decodeDistance(d, p)
			reps = [numReps]int{distance, reps[0], reps[1], reps[2]}
			state = stateAfterMatch(state)
		} else {
			slot := decodeRepSlot(d, p, cs)
			distance = reps[slot]
			promote(&reps, slot)
			length = decodeLength(d, p, posState)
			state = stateAfterRep(state)
		}

		if distance == 0 || distance > len(output) {
			return nil, utils.WrapError(
				fmt.Sprintf("match distance %d at output length %d", distance, len(output)),
				utils.ErrInvalidBackReference)
		}

		src := len(output) - distance
		for i := 0; i < length; i++ {
			output = append(output, output[src+i])
		}
		prevByte = output[len(output)-1]
	}

	if uint64(len(output)) != originalSize {
		return nil, utils.WrapError(
			fmt.Sprintf("decoded %d bytes, header says %d", len(output), originalSize),
			utils.ErrCrcMismatch)
	}
	return output, nil
}

// promote moves the rep slot to the front of the window, keeping it MRU
// ordered.
func promote(reps *[numReps]int, slot int) {
	if slot == 0 {
		return
	}
	r := reps[slot]
	copy(reps[1:slot+1], reps[:slot])
	reps[0] = r
}

// minCap bounds the initial output allocation so a corrupt size field
// cannot demand gigabytes up front.
func minCap(size uint64) int {
	const limit = 1 << 20
	if size < limit {
		return int(size)
	}
	return limit
}
