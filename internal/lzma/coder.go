package lzma

import "github.com/scigolib/lzha/internal/rangecoder"

// Bit-tree coding over a model slice: nbits are coded MSB-first while a
// prefix context walks indices 1..(1<<nbits)-1. Index 0 is never touched
// by the tree, which frees it for the tier-selector bits below.

func encodeTree(e *rangecoder.Encoder, models []rangecoder.Prob, nbits, value int) {
	ctx := 1
	for i := nbits - 1; i >= 0; i-- {
		bit := (value >> uint(i)) & 1
		e.EncodeBit(&models[ctx], bit)
		ctx = ctx<<1 | bit
	}
}

func decodeTree(d *rangecoder.Decoder, models []rangecoder.Prob, nbits int) int {
	ctx := 1
	for i := 0; i < nbits; i++ {
		ctx = ctx<<1 | d.DecodeBit(&models[ctx])
	}
	return ctx - 1<<uint(nbits)
}

// Direct coding: each of nbits gets its own fixed model, MSB first.

func encodeDirect(e *rangecoder.Encoder, models []rangecoder.Prob, nbits, value int) {
	for i := 0; i < nbits; i++ {
		bit := (value >> uint(nbits-1-i)) & 1
		e.EncodeBit(&models[i], bit)
	}
}

func decodeDirect(d *rangecoder.Decoder, models []rangecoder.Prob, nbits int) int {
	value := 0
	for i := 0; i < nbits; i++ {
		value = value<<1 | d.DecodeBit(&models[i])
	}
	return value
}

// Tiered length coder. With l = length - MinMatch:
//
//	l in [0,7]    selector 0            3-bit tree in lenLow[posState]
//	l in [8,9]    selectors 1,0         2-bit tree (l-8) in lenMid[posState]
//	l in [10,265] selectors 1,1         8-bit tree (l-10) in lenHigh
//
// The selector bits live in the unused index 0 of the lenLow/lenMid trees.
// The encodable ceiling is maxEncMatch; the finder may see longer runs but
// emitted lengths are clamped before reaching here.

func encodeLength(e *rangecoder.Encoder, p *probs, posState, length int) {
	l := length - MinMatch
	low := p.lenLow[posState*8 : posState*8+8]
	mid := p.lenMid[posState*8 : posState*8+8]

	switch {
	case l < 8:
		e.EncodeBit(&low[0], 0)
		encodeTree(e, low, 3, l)
	case l < 10:
		e.EncodeBit(&low[0], 1)
		e.EncodeBit(&mid[0], 0)
		encodeTree(e, mid, 2, l-8)
	default:
		e.EncodeBit(&low[0], 1)
		e.EncodeBit(&mid[0], 1)
		encodeTree(e, p.lenHigh[:], 8, l-10)
	}
}

func decodeLength(d *rangecoder.Decoder, p *probs, posState int) int {
	low := p.lenLow[posState*8 : posState*8+8]
	mid := p.lenMid[posState*8 : posState*8+8]

	var l int
	if d.DecodeBit(&low[0]) == 0 {
		l = decodeTree(d, low, 3)
	} else if d.DecodeBit(&mid[0]) == 0 {
		l = 8 + decodeTree(d, mid, 2)
	} else {
		l = 10 + decodeTree(d, p.lenHigh[:], 8)
	}
	return l + MinMatch
}

// Three-tier distance coder with per-bit direct models:
//
//	d in [1,4]    selector 0 (dist[26])            d-1 in 2 bits, dist[0:2]
//	d in [5,128]  selectors 1 (dist[26]), 0 ([27]) d-1 in 7 bits, dist[2:9]
//	d >= 129      selectors 1,1                    d-129 in 16 bits, dist[9:25]
//
// The long tier is reconstructed as value+128+1, so every distance up to
// the window size has exactly one encoding and a decoded distance can
// never be zero.

func encodeDistance(e *rangecoder.Encoder, p *probs, distance int) {
	switch {
	case distance <= 4:
		e.EncodeBit(&p.dist[26], 0)
		encodeDirect(e, p.dist[0:2], 2, distance-1)
	case distance <= 128:
		e.EncodeBit(&p.dist[26], 1)
		e.EncodeBit(&p.dist[27], 0)
		encodeDirect(e, p.dist[2:9], 7, distance-1)
	default:
		e.EncodeBit(&p.dist[26], 1)
		e.EncodeBit(&p.dist[27], 1)
		encodeDirect(e, p.dist[9:25], 16, distance-129)
	}
}

func decodeDistance(d *rangecoder.Decoder, p *probs) int {
	if d.DecodeBit(&p.dist[26]) == 0 {
		return decodeDirect(d, p.dist[0:2], 2) + 1
	}
	if d.DecodeBit(&p.dist[27]) == 0 {
		return decodeDirect(d, p.dist[2:9], 7) + 1
	}
	return decodeDirect(d, p.dist[9:25], 16) + 128 + 1
}

// Literal coder: the byte is coded bit by bit MSB-first through the
// binary-tree prefix of the literal table selected by (context, state).

func encodeLiteral(e *rangecoder.Encoder, p *probs, state int, prevByte, b byte) {
	base := litBase(prevByte, state)
	ctx := 1
	for i := 7; i >= 0; i-- {
		bit := int(b>>uint(i)) & 1
		e.EncodeBit(&p.lit[base+ctx], bit)
		ctx = ctx<<1 | bit
	}
}

func decodeLiteral(d *rangecoder.Decoder, p *probs, state int, prevByte byte) byte {
	base := litBase(prevByte, state)
	ctx := 1
	for i := 0; i < 8; i++ {
		ctx = ctx<<1 | d.DecodeBit(&p.lit[base+ctx])
	}
	return byte(ctx)
}

// Rep-slot selector over the three slot tables: isRep0 separates slot 0
// from the rest, isRep1 slot 1 from {2,3}, isRep0Long slot 2 from 3.

func encodeRepSlot(e *rangecoder.Encoder, p *probs, cs, slot int) {
	if slot == 0 {
		e.EncodeBit(&p.isRep0[cs], 0)
		return
	}
	e.EncodeBit(&p.isRep0[cs], 1)
	if slot == 1 {
		e.EncodeBit(&p.isRep1[cs], 0)
		return
	}
	e.EncodeBit(&p.isRep1[cs], 1)
	e.EncodeBit(&p.isRep0Long[cs], slot-2)
}

func decodeRepSlot(d *rangecoder.Decoder, p *probs, cs int) int {
	if d.DecodeBit(&p.isRep0[cs]) == 0 {
		return 0
	}
	if d.DecodeBit(&p.isRep1[cs]) == 0 {
		return 1
	}
	return 2 + d.DecodeBit(&p.isRep0Long[cs])
}
