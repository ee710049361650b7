package circuit

import (
	"encoding/binary"

	"QuadZK/modules/rng"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func randIdx(src rng.Source, n int) uint32 {
	var b [4]byte
	src.Bytes(b[:])
	return binary.LittleEndian.Uint32(b[:]) % uint32(n)
}

// NewRandomVerifiableCircuit builds a random layered circuit together
// with a satisfying witness. Inner layers carry arbitrary random terms;
// the output layer emits every random term twice with opposite
// coefficients, so all output wires cancel to zero for any witness
// while the reduction still walks nontrivial values.
func NewRandomVerifiableCircuit(nbLayers int, logCopies, logWires uint, termsPerLayer int, src rng.Source) (*Circuit, *Dense) {
	c := &Circuit{
		LogOutputs:     logWires,
		LogCopies:      logCopies,
		NbInputs:       1 << logWires,
		LogInputs:      logWires,
		NbPublicInputs: 1,
		Layers:         make([]Layer, nbLayers),
	}

	nbWires := 1 << logWires
	for i := 0; i < nbLayers; i++ {
		layer := &c.Layers[i]
		layer.LogWires = logWires
		if i == 0 {
			layer.Terms = make(Quad, 0, 2*termsPerLayer)
			for t := 0; t < termsPerLayer; t++ {
				term := Term{
					Gate: randIdx(src, nbWires),
					L:    randIdx(src, nbWires),
					R:    randIdx(src, nbWires),
					Coef: src.Element(),
				}
				neg := term
				neg.Coef.Neg(&term.Coef)
				layer.Terms = append(layer.Terms, term, neg)
			}
			continue
		}
		layer.Terms = make(Quad, termsPerLayer)
		for t := range layer.Terms {
			layer.Terms[t] = Term{
				Gate: randIdx(src, nbWires),
				L:    randIdx(src, nbWires),
				R:    randIdx(src, nbWires),
				Coef: src.Element(),
			}
		}
	}

	var oneElem fr.Element
	oneElem.SetOne()
	inputs := NewAssignment(c, func(copy, wire int) fr.Element {
		if wire == 0 {
			return oneElem
		}
		return src.Element()
	})
	return c, inputs
}
