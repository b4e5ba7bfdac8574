package lz77

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
		{name: "two bytes", input: []byte("ab")},
		{name: "no repetition", input: []byte("abcdefghijklmnop")},
		{name: "short period", input: []byte("abcabcabcabc")},
		{name: "overlap expansion", input: []byte("AAAAAAAAAA")},
		{name: "text with repeats", input: []byte("Hello Hello Hello")},
		{name: "repeated block", input: bytes.Repeat([]byte("Content of file 1\n"), 50)},
		{name: "all zeros", input: make([]byte, 4096)},
		{name: "repeated beyond window", input: bytes.Repeat([]byte{'x'}, 2*WindowSize+17)},
		{name: "binary ramp", input: ramp(1024)},
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

func ramp(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

// TestTokenizeFindsMatches checks that repeated input actually produces
// back-references, not just literals.
func TestTokenizeFindsMatches(t *testing.T) {
	tokens := Tokenize([]byte("Hello Hello Hello"))

	matches := 0
	for _, token := range tokens {
		if token.Kind == Match {
			matches++
			if token.Length < MinMatch || token.Length > MaxMatch {
				t.Errorf("match length %d out of range", token.Length)
			}
			if token.Distance == 0 || token.Distance > WindowSize {
				t.Errorf("match distance %d out of range", token.Distance)
			}
		}
	}
	if matches == 0 {
		t.Error("expected at least one match token")
	}

	out, err := Reconstruct(tokens)
	if err != nil {
		t.Fatalf("Reconstruct() failed: %v", err)
	}
	if string(out) != "Hello Hello Hello" {
		t.Errorf("Reconstruct() = %q", out)
	}
}

// TestShortPeriodSize checks the token stream beats the input for a
// 12-byte periodic string: three literals and one match is 10 bytes.
func TestShortPeriodSize(t *testing.T) {
	compressed := Compress([]byte("abcabcabcabc"))
	if len(compressed) >= 12 {
		t.Errorf("compressed size = %d, want < 12", len(compressed))
	}
}

// TestRunCompressionBound checks a 1000-byte run stays within 50 token
// bytes.
func TestRunCompressionBound(t *testing.T) {
	input := bytes.Repeat([]byte{'A'}, 1000)
	compressed := Compress(input)
	if len(compressed) > 50 {
		t.Errorf("compressed size = %d, want <= 50", len(compressed))
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() failed: %v", err)
	}
	if !bytes.Equal(decompressed, input) {
		t.Error("round-trip mismatch")
	}
}

// TestTailPositions checks that the last two positions, which cannot
// start a match, still come through as literals.
func TestTailPositions(t *testing.T) {
	tokens := Tokenize([]byte("xyzxy"))
	for _, token := range tokens {
		if token.Kind != Literal {
			t.Fatalf("expected literals only, got %v", token)
		}
	}
	if len(tokens) != 5 {
		t.Errorf("token count = %d, want 5", len(tokens))
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := []Token{
		{Kind: Literal, Literal: 0x00},
		{Kind: Literal, Literal: 0xFF},
		{Kind: Match, Length: MinMatch, Distance: 1},
		{Kind: Match, Length: MaxMatch, Distance: WindowSize},
		{Kind: Literal, Literal: 'q'},
		{Kind: Match, Length: 17, Distance: 4242},
	}

	decoded, err := DecodeTokens(EncodeTokens(tokens))
	if err != nil {
		t.Fatalf("DecodeTokens() failed: %v", err)
	}
	if len(decoded) != len(tokens) {
		t.Fatalf("decoded %d tokens, want %d", len(decoded), len(tokens))
	}
	for i := range tokens {
		if decoded[i] != tokens[i] {
			t.Errorf("token %d: got %v, want %v", i, decoded[i], tokens[i])
		}
	}
}

func TestDecodeTokensTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "literal tag only", input: []byte{0x00}},
		{name: "match tag only", input: []byte{0x01}},
		{name: "match missing distance", input: []byte{0x01, 0x05}},
		{name: "match half distance", input: []byte{0x01, 0x05, 0x01}},
		{name: "unknown tag", input: []byte{0x07}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTokens(tt.input); !errors.Is(err, utils.ErrTruncatedPayload) {
				t.Errorf("DecodeTokens() error = %v, want ErrTruncatedPayload", err)
			}
		})
	}
}

func TestReconstructInvalidBackReference(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
	}{
		{name: "zero distance", tokens: []Token{
			{Kind: Literal, Literal: 'a'},
			{Kind: Match, Length: 3, Distance: 0},
		}},
		{name: "distance beyond output", tokens: []Token{
			{Kind: Literal, Literal: 'a'},
			{Kind: Match, Length: 3, Distance: 2},
		}},
		{name: "match before any output", tokens: []Token{
			{Kind: Match, Length: 3, Distance: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Reconstruct(tt.tokens); !errors.Is(err, utils.ErrInvalidBackReference) {
				t.Errorf("Reconstruct() error = %v, want ErrInvalidBackReference", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	input := []byte("Hello Hello Hello")
	tokens := Tokenize(input)
	stats := Summarize(tokens, len(input))

	if stats.LiteralCount+stats.MatchCount != len(tokens) {
		t.Error("token counts do not add up")
	}
	if stats.MatchCount == 0 {
		t.Error("expected matches in stats")
	}
	want := stats.LiteralCount*2 + stats.MatchCount*4
	if stats.EstimatedCompressed != want {
		t.Errorf("EstimatedCompressed = %d, want %d", stats.EstimatedCompressed, want)
	}
}
