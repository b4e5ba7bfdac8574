// Package huffman implements the dynamic Huffman entropy stage that
// post-processes the LZ77 token bytes.
//
// Codes are built per input buffer from byte frequencies and shipped with
// the payload as an explicit table, so the decoder needs no canonical-code
// convention: it reads the table back and walks the payload bits.
package huffman

import (
	"container/heap"
	"encoding/binary"
	"fmt"

	"github.com/scigolib/lzha/internal/utils"
)

// node is a transient tree node used only during code construction.
// Leaves carry a symbol; internal nodes only aggregate frequency.
type node struct {
	symbol byte
	leaf   bool
	freq   uint64
	seq    int // insertion order, breaks frequency ties
	left   *node
	right  *node
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CodeTable maps byte values to variable-length prefix-free codes,
// stored as ASCII '0'/'1' strings for trivial (de)serialization.
type CodeTable map[byte]string

// buildTree constructs the Huffman tree for the given frequencies.
// With exactly one distinct byte the leaf is wrapped in a one-child root
// so the symbol still gets the single-bit code "0".
func buildTree(frequencies [256]uint64) *node {
	h := &nodeHeap{}
	seq := 0
	for sym := 0; sym < 256; sym++ {
		if frequencies[sym] == 0 {
			continue
		}
		*h = append(*h, &node{symbol: byte(sym), leaf: true, freq: frequencies[sym], seq: seq})
		seq++
	}
	if h.Len() == 0 {
		return nil
	}
	heap.Init(h)

	if h.Len() == 1 {
		leaf := heap.Pop(h).(*node)
		return &node{freq: leaf.freq, left: leaf}
	}

	for h.Len() > 1 {
		left := heap.Pop(h).(*node)
		right := heap.Pop(h).(*node)
		heap.Push(h, &node{freq: left.freq + right.freq, seq: seq, left: left, right: right})
		seq++
	}
	return heap.Pop(h).(*node)
}

// buildCodes walks the tree with an explicit stack (the depth can reach
// 255 for pathological frequency distributions) and assigns codes: left
// edges append '0', right edges '1'.
func buildCodes(root *node) CodeTable {
	codes := make(CodeTable)
	if root == nil {
		return codes
	}

	type frame struct {
		n    *node
		code string
	}
	stack := []frame{{root, ""}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.n.leaf {
			if f.code == "" {
				f.code = "0"
			}
			codes[f.n.symbol] = f.code
			continue
		}
		if f.n.right != nil {
			stack = append(stack, frame{f.n.right, f.code + "1"})
		}
		if f.n.left != nil {
			stack = append(stack, frame{f.n.left, f.code + "0"})
		}
	}
	return codes
}

// BuildCodes computes the code table for data. Empty input yields an
// empty table.
func BuildCodes(data []byte) CodeTable {
	var frequencies [256]uint64
	for _, b := range data {
		frequencies[b]++
	}
	if len(data) == 0 {
		return make(CodeTable)
	}
	return buildCodes(buildTree(frequencies))
}

// SerializeTable emits the code-table wire format: u16 code count, then
// per entry a u8 byte value, u8 code length, and the ASCII code bits.
// Entries are written in ascending byte-value order.
func SerializeTable(codes CodeTable) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, uint16(len(codes)))

	for sym := 0; sym < 256; sym++ {
		code, ok := codes[byte(sym)]
		if !ok {
			continue
		}
		out = append(out, byte(sym), byte(len(code)))
		out = append(out, code...)
	}
	return out
}

// DeserializeTable reads a code-table blob back into a decode map from
// code string to byte value.
func DeserializeTable(data []byte) (map[string]byte, error) {
	decode := make(map[string]byte)

	c := utils.NewCursor(data)
	count, err := c.Uint16()
	if err != nil {
		return nil, utils.WrapError("code table count", utils.ErrTruncatedPayload)
	}

	for i := 0; i < int(count); i++ {
		sym, err := c.Uint8()
		if err != nil {
			return nil, utils.WrapError("code table symbol", utils.ErrTruncatedPayload)
		}
		codeLen, err := c.Uint8()
		if err != nil {
			return nil, utils.WrapError("code table code length", utils.ErrTruncatedPayload)
		}
		if codeLen == 0 {
			return nil, utils.WrapError("zero-length code", utils.ErrTruncatedPayload)
		}
		codeBits, err := c.Bytes(int(codeLen))
		if err != nil {
			return nil, utils.WrapError("code table code bits", utils.ErrTruncatedPayload)
		}
		decode[string(codeBits)] = sym
	}
	return decode, nil
}

// Encode compresses data into a (table, payload) pair.
func Encode(data []byte) (table, payload []byte) {
	codes := BuildCodes(data)
	table = SerializeTable(codes)
	if len(data) == 0 {
		return table, nil
	}

	w := &bitWriter{}
	for _, b := range data {
		w.writeCode(codes[b])
	}
	return table, w.finish()
}

// Decode rebuilds the original bytes from a (table, payload) pair.
// Trailing payload bits that fail to complete a code are padding and are
// discarded.
func Decode(table, payload []byte) ([]byte, error) {
	decode, err := DeserializeTable(table)
	if err != nil {
		return nil, err
	}
	if len(decode) == 0 {
		return nil, nil
	}

	r, err := newBitReader(payload)
	if err != nil {
		return nil, err
	}

	var output []byte
	prefix := make([]byte, 0, 32)
	for {
		bit, ok := r.readBit()
		if !ok {
			break
		}
		if bit == 1 {
			prefix = append(prefix, '1')
		} else {
			prefix = append(prefix, '0')
		}
		if sym, ok := decode[string(prefix)]; ok {
			output = append(output, sym)
			prefix = prefix[:0]
		}
	}
	return output, nil
}

// Compress encodes data as a single self-contained blob:
// u32 table size, table, u32 payload size, payload (little-endian).
func Compress(data []byte) []byte {
	table, payload := Encode(data)

	out := make([]byte, 0, 8+len(table)+len(payload))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(table)))
	out = append(out, table...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...)
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	c := utils.NewCursor(data)

	tableSize, err := c.Uint32()
	if err != nil {
		return nil, utils.WrapError("huffman table size", utils.ErrTruncatedPayload)
	}
	table, err := c.Bytes(int(tableSize))
	if err != nil {
		return nil, utils.WrapError(
			fmt.Sprintf("huffman table (%d bytes)", tableSize), utils.ErrTruncatedPayload)
	}
	payloadSize, err := c.Uint32()
	if err != nil {
		return nil, utils.WrapError("huffman payload size", utils.ErrTruncatedPayload)
	}
	payload, err := c.Bytes(int(payloadSize))
	if err != nil {
		return nil, utils.WrapError(
			fmt.Sprintf("huffman payload (%d bytes)", payloadSize), utils.ErrTruncatedPayload)
	}

	return Decode(table, payload)
}
