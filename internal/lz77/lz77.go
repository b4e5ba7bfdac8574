// Package lz77 implements the sliding-window match coder used as the first
// stage of the LZ77+Huffman pipeline.
//
// The coder turns a byte buffer into a stream of literal/match tokens and
// back. Matches are found greedily with a hash-chain index over 3-byte
// prefixes; no lazy matching is attempted.
package lz77

import (
	"fmt"
	"sort"

	"github.com/scigolib/lzha/internal/utils"
)

const (
	// WindowSize is the sliding-window size available for back-references.
	WindowSize = 32 * 1024

	// MinMatch is the shortest match worth emitting instead of literals.
	MinMatch = 3

	// MaxMatch is the longest match a single token can carry. The encoded
	// length byte holds length-MinMatch, so the span MaxMatch-MinMatch
	// must fit in 8 bits (it is exactly 255).
	MaxMatch = 258

	hashBits = 16
	hashSize = 1 << hashBits

	// maxChain caps how many candidates a single match search walks.
	// Buckets keep every indexed position; the walk covers only the most
	// recent candidates and older ones are not visited.
	maxChain = 128
)

// Token wire tags.
const (
	tagLiteral = 0x00
	tagMatch   = 0x01
)

// Kind discriminates the two token variants.
type Kind uint8

// Token kinds.
const (
	Literal Kind = iota
	Match
)

// Token is one atomic emission of the LZ77 coder: either a single verbatim
// byte or a back-reference into already-decoded output.
type Token struct {
	Kind     Kind
	Literal  byte
	Length   uint16 // MinMatch..MaxMatch
	Distance uint16 // 1..WindowSize
}

func (t Token) String() string {
	if t.Kind == Literal {
		return fmt.Sprintf("LITERAL(%02x)", t.Literal)
	}
	return fmt.Sprintf("MATCH(len=%d, dist=%d)", t.Length, t.Distance)
}

// matchFinder indexes 3-byte prefixes of a fixed data buffer in hash
// chains. Positions are appended in a single pass; the last two positions
// of the buffer cannot start a match and are not indexed.
type matchFinder struct {
	data   []byte
	chains [hashSize][]int32
}

func hash3(b0, b1, b2 byte) uint32 {
	return ((uint32(b0)*65599+uint32(b1))*65599 + uint32(b2)) & (hashSize - 1)
}

func newMatchFinder(data []byte) *matchFinder {
	m := &matchFinder{data: data}
	for pos := 0; pos+2 < len(data); pos++ {
		h := hash3(data[pos], data[pos+1], data[pos+2])
		m.chains[h] = append(m.chains[h], int32(pos))
	}
	return m
}

// findBestMatch returns the longest match for pos within
// [windowStart, pos). Candidates are walked most-recent-first, so ties go
// to the smallest distance. The walk visits at most maxChain candidates.
func (m *matchFinder) findBestMatch(pos, windowStart int) (length, distance int, ok bool) {
	if pos+MinMatch > len(m.data) {
		return 0, 0, false
	}

	h := hash3(m.data[pos], m.data[pos+1], m.data[pos+2])
	chain := m.chains[h]

	// Chains hold every indexed position, including ones at or after pos;
	// start the reverse walk just below pos.
	start := sort.Search(len(chain), func(i int) bool { return int(chain[i]) >= pos })

	bestLength := MinMatch - 1
	bestDistance := 0

	maxPossible := len(m.data) - pos
	if maxPossible > MaxMatch {
		maxPossible = MaxMatch
	}

	visited := 0
	for i := start - 1; i >= 0 && visited < maxChain; i-- {
		candidate := int(chain[i])
		if candidate < windowStart {
			break
		}
		visited++

		matchLength := 0
		for matchLength < maxPossible &&
			m.data[candidate+matchLength] == m.data[pos+matchLength] {
			matchLength++
		}

		if matchLength > bestLength {
			bestLength = matchLength
			bestDistance = pos - candidate
			if bestLength >= MaxMatch {
				break
			}
		}
	}

	if bestLength >= MinMatch {
		return bestLength, bestDistance, true
	}
	return 0, 0, false
}

// Tokenize runs the greedy parser over data and returns the token stream.
func Tokenize(data []byte) []Token {
	if len(data) == 0 {
		return nil
	}

	finder := newMatchFinder(data)
	var tokens []Token

	pos := 0
	for pos < len(data) {
		windowStart := pos - WindowSize
		if windowStart < 0 {
			windowStart = 0
		}

		if length, distance, ok := finder.findBestMatch(pos, windowStart); ok {
			tokens = append(tokens, Token{
				Kind:     Match,
				Length:   uint16(length),
				Distance: uint16(distance),
			})
			pos += length
		} else {
			tokens = append(tokens, Token{Kind: Literal, Literal: data[pos]})
			pos++
		}
	}

	return tokens
}

// Reconstruct expands a token stream back into the original bytes.
// Match sources and destinations may overlap, which expands runs whose
// distance is shorter than their length.
func Reconstruct(tokens []Token) ([]byte, error) {
	var output []byte

	for _, token := range tokens {
		switch token.Kind {
		case Literal:
			output = append(output, token.Literal)

		case Match:
			distance := int(token.Distance)
			if distance == 0 || distance > len(output) {
				return nil, utils.WrapError(
					fmt.Sprintf("match distance %d at output length %d", distance, len(output)),
					utils.ErrInvalidBackReference)
			}
			src := len(output) - distance
			for i := 0; i < int(token.Length); i++ {
				output = append(output, output[src+i])
			}
		}
	}

	return output, nil
}

// EncodeTokens serializes a token stream. Each token is one tag byte
// (0x00 literal, 0x01 match) followed by either the literal byte, or the
// length-MinMatch byte and the little-endian 16-bit distance.
func EncodeTokens(tokens []Token) []byte {
	output := make([]byte, 0, len(tokens)*2)

	for _, token := range tokens {
		if token.Kind == Literal {
			output = append(output, tagLiteral, token.Literal)
		} else {
			encodedLength := byte(token.Length - MinMatch)
			output = append(output, tagMatch, encodedLength,
				byte(token.Distance), byte(token.Distance>>8))
		}
	}

	return output
}

// DecodeTokens parses a serialized token stream. A tag byte with missing
// operands aborts the decode; no partial token list is returned.
func DecodeTokens(data []byte) ([]Token, error) {
	var tokens []Token
	pos := 0

	for pos < len(data) {
		tag := data[pos]
		pos++

		switch tag {
		case tagLiteral:
			if pos >= len(data) {
				return nil, utils.WrapError("literal token missing operand", utils.ErrTruncatedPayload)
			}
			tokens = append(tokens, Token{Kind: Literal, Literal: data[pos]})
			pos++

		case tagMatch:
			if pos+3 > len(data) {
				return nil, utils.WrapError("match token missing operands", utils.ErrTruncatedPayload)
			}
			length := uint16(data[pos]) + MinMatch
			distance := uint16(data[pos+1]) | uint16(data[pos+2])<<8
			pos += 3
			tokens = append(tokens, Token{Kind: Match, Length: length, Distance: distance})

		default:
			return nil, utils.WrapError(
				fmt.Sprintf("unknown token tag %#02x", tag), utils.ErrTruncatedPayload)
		}
	}

	return tokens, nil
}

// Compress tokenizes data and serializes the resulting stream.
func Compress(data []byte) []byte {
	return EncodeTokens(Tokenize(data))
}

// Decompress parses a serialized token stream and expands it.
func Decompress(data []byte) ([]byte, error) {
	tokens, err := DecodeTokens(data)
	if err != nil {
		return nil, err
	}
	return Reconstruct(tokens)
}
