package lzma

import (
	"bytes"
	"errors"
	"testing"

	"github.com/scigolib/lzha/internal/utils"
)

func TestCompressDecompress(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "single byte", input: []byte{0x42}},
		{name: "two bytes", input: []byte("hi")},
		{name: "no repetition", input: []byte("abcdefghijklmnopqrstuvwxyz")},
		{name: "short period", input: []byte("abcabcabcabc")},
		{name: "text with repeats", input: []byte("Hello Hello Hello")},
		{name: "overlap expansion", input: []byte("AAAAAAAAAA")},
		{name: "repeated block", input: bytes.Repeat([]byte("Content of file 2\n"), 50)},
		{name: "rep distances", input: bytes.Repeat([]byte("abcdefgh12345678"), 64)},
		{name: "all zeros", input: make([]byte, 8192)},
		{name: "repeated beyond window", input: bytes.Repeat([]byte{'x'}, 2*WindowSize+5)},
		{name: "incompressible", input: noise(2048)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := Compress(tt.input)
			decompressed, err := Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress() failed: %v", err)
			}
			if !bytes.Equal(decompressed, tt.input) {
				t.Errorf("round-trip mismatch: got %d bytes, want %d", len(decompressed), len(tt.input))
			}
		})
	}
}

// noise produces deterministic hard-to-compress bytes.
func noise(n int) []byte {
	data := make([]byte, n)
	state := uint32(0x9E3779B9)
	for i := range data {
		state = state*1664525 + 1013904223
		data[i] = byte(state >> 24)
	}
	return data
}

// TestCompressesRuns checks the headline ratio case: a 4000-byte run must
// shrink well below its original size.
func TestCompressesRuns(t *testing.T) {
	input := bytes.Repeat([]byte("AAAA"), 1000)
	compressed := Compress(input)
	if len(compressed) >= 4000 {
		t.Errorf("compressed size = %d, want < 4000", len(compressed))
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() failed: %v", err)
	}
	if !bytes.Equal(decompressed, input) {
		t.Error("round-trip mismatch")
	}
}

func TestStreamHeader(t *testing.T) {
	compressed := Compress([]byte("payload"))
	if string(compressed[:4]) != "LZMA" {
		t.Errorf("magic = %q, want LZMA", compressed[:4])
	}
	size := uint64(compressed[4]) | uint64(compressed[5])<<8 | uint64(compressed[6])<<16
	if size != 7 {
		t.Errorf("header size = %d, want 7", size)
	}
}

func TestDecompressBadHeader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "short magic", input: []byte("LZ")},
		{name: "wrong magic", input: []byte("LZHAxxxxxxxxyyyy")},
		{name: "missing size", input: []byte("LZMA\x01\x02")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decompress(tt.input); !errors.Is(err, utils.ErrTruncatedPayload) {
				t.Errorf("Decompress() error = %v, want ErrTruncatedPayload", err)
			}
		})
	}
}

// TestDecompressTruncatedPayload checks a cut range stream never passes
// itself off as the original data.
func TestDecompressTruncatedPayload(t *testing.T) {
	input := bytes.Repeat([]byte("the same line again and again\n"), 40)
	compressed := Compress(input)

	for _, cut := range []int{headerSize, headerSize + 2, len(compressed) / 2} {
		decompressed, err := Decompress(compressed[:cut])
		if err == nil && bytes.Equal(decompressed, input) {
			t.Errorf("cut at %d still yielded the original data", cut)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	literal := []struct{ from, to int }{
		{0, 0}, {3, 0}, {4, 1}, {9, 6}, {10, 3}, {11, 4},
	}
	for _, tt := range literal {
		if got := stateAfterLiteral(tt.from); got != tt.to {
			t.Errorf("stateAfterLiteral(%d) = %d, want %d", tt.from, got, tt.to)
		}
	}

	for s := 0; s < numStates; s++ {
		if got := stateAfterMatch(s); got != 7 {
			t.Errorf("stateAfterMatch(%d) = %d, want 7", s, got)
		}
		want := 10
		if s >= 7 {
			want = 11
		}
		if got := stateAfterRep(s); got != want {
			t.Errorf("stateAfterRep(%d) = %d, want %d", s, got, want)
		}
	}
}

func TestRepPromote(t *testing.T) {
	reps := [numReps]int{10, 20, 30, 40}

	promote(&reps, 0)
	if reps != [numReps]int{10, 20, 30, 40} {
		t.Errorf("promote slot 0 changed the window: %v", reps)
	}

	promote(&reps, 2)
	if reps != [numReps]int{30, 10, 20, 40} {
		t.Errorf("promote slot 2 = %v", reps)
	}

	promote(&reps, 3)
	if reps != [numReps]int{40, 30, 10, 20} {
		t.Errorf("promote slot 3 = %v", reps)
	}
}

func TestFindRepMatch(t *testing.T) {
	data := []byte("abcdabcdabcd")

	// At pos 8 a rep distance of 4 matches the remaining 4 bytes.
	length, slot := findRepMatch(data, 8, [numReps]int{4, 0, 0, 0})
	if slot != 0 || length != 4 {
		t.Errorf("findRepMatch = (%d, %d), want (4, 0)", length, slot)
	}

	// Unset and too-large distances are skipped.
	length, slot = findRepMatch(data, 2, [numReps]int{0, 100, 0, 0})
	if length != 0 || slot != -1 {
		t.Errorf("findRepMatch = (%d, %d), want (0, -1)", length, slot)
	}
}

func TestFindMatch(t *testing.T) {
	data := []byte("xyzw....xyzw")

	length, distance := findMatch(data, 8, 0)
	if length != 4 || distance != 8 {
		t.Errorf("findMatch = (%d, %d), want (4, 8)", length, distance)
	}

	// Nothing beats an already-found length strictly.
	length, distance = findMatch(data, 8, 4)
	if length != 0 || distance != 0 {
		t.Errorf("findMatch with minLen 4 = (%d, %d), want (0, 0)", length, distance)
	}
}
