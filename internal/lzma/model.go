package lzma

import "github.com/scigolib/lzha/internal/rangecoder"

// Coder parameters. Literal context uses the top lc bits of the previous
// byte; the position state is the low pb bits of the stream position.
const (
	lcShift      = 8 - 3 // lc = 3
	posMask      = 3     // pb = 2
	numStates    = 12
	numPosStates = 4
	numReps      = 4

	litTreeSize = 513
)

// Probability tables, allocated flat with computed indices. Every entry
// starts at the model midpoint.
type probs struct {
	isMatch    [numPosStates * numStates]rangecoder.Prob
	isRep      [numPosStates * numStates]rangecoder.Prob
	isRep0     [numPosStates * numStates]rangecoder.Prob
	isRep1     [numPosStates * numStates]rangecoder.Prob
	isRep0Long [numPosStates * numStates]rangecoder.Prob

	lit [8 * numStates * litTreeSize]rangecoder.Prob

	lenLow  [numPosStates * 8]rangecoder.Prob
	lenMid  [numPosStates * 8]rangecoder.Prob
	lenHigh [256]rangecoder.Prob

	dist [64]rangecoder.Prob
}

func newProbs() *probs {
	p := &probs{}
	fill(p.isMatch[:])
	fill(p.isRep[:])
	fill(p.isRep0[:])
	fill(p.isRep1[:])
	fill(p.isRep0Long[:])
	fill(p.lit[:])
	fill(p.lenLow[:])
	fill(p.lenMid[:])
	fill(p.lenHigh[:])
	fill(p.dist[:])
	return p
}

func fill(models []rangecoder.Prob) {
	for i := range models {
		models[i] = rangecoder.ProbInit
	}
}

// choiceState flattens (posState, state) into the index used by the
// boolean packet tables.
func choiceState(posState, state int) int {
	return posState*numStates + state
}

// litBase returns the offset of the 513-entry literal tree selected by the
// previous byte's context bits and the coder state.
func litBase(prevByte byte, state int) int {
	litCtx := int(prevByte >> lcShift)
	return (litCtx*numStates + state) * litTreeSize
}

// State transitions. The state tracks recent packet history and selects
// probability sub-tables.
func stateAfterLiteral(s int) int {
	switch {
	case s < 4:
		return 0
	case s < 10:
		return s - 3
	default:
		return s - 7
	}
}

func stateAfterMatch(int) int { return 7 }

func stateAfterRep(s int) int {
	if s < 7 {
		return 10
	}
	return 11
}
