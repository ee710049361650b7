// Package circuit defines the layered quad-gate circuit consumed by the
// proving backend, the dense per-layer value arrays, the evaluator that
// fills them, and the serialized forms of circuits, witnesses and
// proofs.
//
// A circuit is produced by an external compiler and treated here as an
// immutable value. Layer 0 is the output layer; every output wire
// encodes an assertion that must evaluate to zero under a valid
// witness. Layer i is computed from layer i+1, and the last entry of
// Layers draws from the input layer described by NbInputs/LogInputs.
package circuit

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var ErrMalformedCircuit = errors.New("malformed circuit")

// Term is one quad-gate summand: Coef * wire[L] * wire[R] accumulated
// into gate Gate of the layer. Linear relations use the conventional
// constant-one input wire as one of the two hands.
type Term struct {
	Gate, L, R uint32
	Coef       fr.Element
}

// Quad is the sparse sum of terms describing one layer.
type Quad []Term

type Layer struct {
	LogWires uint
	Terms    Quad
}

func (l *Layer) NbWires() int { return 1 << l.LogWires }

type Circuit struct {
	LogOutputs uint // log2 of the output-wire row, equals Layers[0].LogWires
	LogCopies  uint // log2 of the number of parallel copies

	NbInputs       uint // live input wires, the rest of the padded row is zero
	LogInputs      uint // log2 of the padded input row
	NbPublicInputs uint // input wires [0, NbPublicInputs) are public

	Layers []Layer

	id    [32]byte
	idSet bool
	idErr error
}

func (c *Circuit) NbLayers() int { return len(c.Layers) }
func (c *Circuit) NbCopies() int { return 1 << c.LogCopies }
func (c *Circuit) NbOutputs() int {
	return 1 << c.LogOutputs
}

// OperandLog returns the log-size of the wire row that layer i's terms
// draw from: the next layer's row, or the input row for the last layer.
func (c *Circuit) OperandLog(i int) uint {
	if i == len(c.Layers)-1 {
		return c.LogInputs
	}
	return c.Layers[i+1].LogWires
}

// Validate checks the structural invariants an externally supplied
// circuit must satisfy. Any violation is ErrMalformedCircuit; nothing
// downstream re-checks these.
func (c *Circuit) Validate() error {
	if len(c.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrMalformedCircuit)
	}
	if c.Layers[0].LogWires != c.LogOutputs {
		return fmt.Errorf("%w: output layer has 2^%d wires, circuit declares 2^%d outputs",
			ErrMalformedCircuit, c.Layers[0].LogWires, c.LogOutputs)
	}
	if c.NbInputs == 0 || c.NbInputs > 1<<c.LogInputs {
		return fmt.Errorf("%w: %d inputs do not fit a 2^%d row",
			ErrMalformedCircuit, c.NbInputs, c.LogInputs)
	}
	if c.NbPublicInputs > c.NbInputs {
		return fmt.Errorf("%w: %d public inputs exceed %d inputs",
			ErrMalformedCircuit, c.NbPublicInputs, c.NbInputs)
	}
	if c.LogCopies > 30 || c.LogInputs > 30 {
		return fmt.Errorf("%w: size out of range", ErrMalformedCircuit)
	}

	for i := range c.Layers {
		layer := &c.Layers[i]
		operandSize := uint32(1) << c.OperandLog(i)
		gateSize := uint32(1) << layer.LogWires
		for _, t := range layer.Terms {
			if t.Gate >= gateSize {
				return fmt.Errorf("%w: layer %d gate %d out of range", ErrMalformedCircuit, i, t.Gate)
			}
			if t.L >= operandSize || t.R >= operandSize {
				return fmt.Errorf("%w: layer %d dangling wire reference (%d, %d)",
					ErrMalformedCircuit, i, t.L, t.R)
			}
		}
	}
	return nil
}

// ID returns the content-derived 32-byte circuit identifier binding
// proofs to this exact circuit. Computed once from the canonical
// serialization.
func (c *Circuit) ID() ([32]byte, error) {
	if !c.idSet {
		c.id, c.idErr = c.computeID()
		c.idSet = true
	}
	return c.id, c.idErr
}

// NbTerms counts quad terms over all layers.
func (c *Circuit) NbTerms() int {
	n := 0
	for i := range c.Layers {
		n += len(c.Layers[i].Terms)
	}
	return n
}

// Stats returns a one-line structural summary of the circuit.
func (c *Circuit) Stats() string {
	return fmt.Sprintf("layers=%d copies=%d inputs=%d (public=%d) outputs=%d terms=%d",
		c.NbLayers(), c.NbCopies(), c.NbInputs, c.NbPublicInputs, c.NbOutputs(), c.NbTerms())
}

// CeilLog2 is the log2 of the next power of two.
func CeilLog2(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}
