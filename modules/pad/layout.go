// Package pad defines the layout of the extended witness: the circuit
// inputs followed by every zero-knowledge pad the sumcheck consumes,
// arranged so the per-layer claim pads land in row-aligned blocks that
// the commitment's quadratic test can bind together.
package pad

import (
	"QuadZK/modules/circuit"
	"QuadZK/modules/ligero"
	"QuadZK/modules/rng"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Layout maps protocol pads to flat positions in the committed vector:
//
//	[ inputs, copy-major, NbCopies x 2^LogInputs ]
//	[ per-layer round pads: 3 per copy round, 2 per wire round ]
//	[ slack up to the next row boundary ]
//	[ qx block: per-layer left-claim pads, whole rows ]
//	[ qy block: per-layer right-claim pads, whole rows ]
//	[ qz block: qx*qy products, whole rows ]
//
// The qx/qy/qz blocks are the quadratic-test rows: triple i occupies the
// same column of three aligned rows, and the block padding keeps the
// product relation alive on every slot.
type Layout struct {
	Width     int
	LogCopies uint
	LogInputs uint
	InputLen  int

	// layerOff[i] is the flat offset of layer i's round pads;
	// layerCopyRounds/layerWireRounds describe the round structure.
	layerOff        []int
	layerCopyRounds int
	layerWireRounds []int

	QxOff, QyOff, QzOff int
	NbClaims            int // one (pvl, pvr, pprod) triple per layer
	QRows               int

	Total int
}

// NewLayout computes the extended-witness layout for a circuit under a
// given row width.
func NewLayout(c *circuit.Circuit, p ligero.Params) *Layout {
	w := p.Width
	logc := c.LogCopies
	nl := c.NbLayers()

	lay := &Layout{
		Width:           w,
		LogCopies:       logc,
		LogInputs:       c.LogInputs,
		InputLen:        c.NbCopies() << c.LogInputs,
		layerOff:        make([]int, nl),
		layerCopyRounds: int(logc),
		layerWireRounds: make([]int, nl),
		NbClaims:        nl,
	}

	off := lay.InputLen
	for i := 0; i < nl; i++ {
		lay.layerOff[i] = off
		lay.layerWireRounds[i] = int(c.OperandLog(i))
		off += 3*int(logc) + 4*lay.layerWireRounds[i]
	}

	lay.QRows = (nl + w - 1) / w
	lay.QxOff = ((off + w - 1) / w) * w
	lay.QyOff = lay.QxOff + lay.QRows*w
	lay.QzOff = lay.QyOff + lay.QRows*w
	lay.Total = lay.QzOff + lay.QRows*w
	return lay
}

// InputIdx is the flat position of one input wire of one copy.
func (lay *Layout) InputIdx(copy, wire int) int {
	return copy<<lay.LogInputs + wire
}

// RoundPadIdx is the flat position of pad k of a sumcheck round. Copy
// rounds come first with three pads each, wire rounds follow with two.
func (lay *Layout) RoundPadIdx(layer, round, k int) int {
	base := lay.layerOff[layer]
	if round < lay.layerCopyRounds {
		return base + round*3 + k
	}
	return base + lay.layerCopyRounds*3 + (round-lay.layerCopyRounds)*2 + k
}

// NbRounds is the sumcheck round count of one layer.
func (lay *Layout) NbRounds(layer int) int {
	return lay.layerCopyRounds + 2*lay.layerWireRounds[layer]
}

// CopyRounds is the number of copy-dimension rounds, shared by every
// layer.
func (lay *Layout) CopyRounds() int { return lay.layerCopyRounds }

// WireRounds is the per-operand wire round count of one layer.
func (lay *Layout) WireRounds(layer int) int { return lay.layerWireRounds[layer] }

// PvlIdx, PvrIdx and PprodIdx are the flat positions of a layer's claim
// pads and their product.
func (lay *Layout) PvlIdx(layer int) int   { return lay.QxOff + layer }
func (lay *Layout) PvrIdx(layer int) int   { return lay.QyOff + layer }
func (lay *Layout) PprodIdx(layer int) int { return lay.QzOff + layer }

// Triples lists the row triples of the quadratic test. Offsets are row
// aligned by construction, so the division is exact.
func (lay *Layout) Triples() []ligero.RowTriple {
	w := lay.Width
	out := make([]ligero.RowTriple, lay.QRows)
	for j := range out {
		out[j] = ligero.RowTriple{
			X: lay.QxOff/w + j,
			Y: lay.QyOff/w + j,
			Z: lay.QzOff/w + j,
		}
	}
	return out
}

// Sample builds the extended witness: the input values followed by
// fresh random pads. Every cell of the qz block is the product of its
// aligned qx/qy cells, including the block padding.
func (lay *Layout) Sample(inputs *circuit.Dense, src rng.Source) []fr.Element {
	vec := make([]fr.Element, lay.Total)
	copy(vec[:lay.InputLen], inputs.V)

	for i := lay.InputLen; i < lay.QxOff; i++ {
		vec[i] = src.Element()
	}
	n := lay.QRows * lay.Width
	for j := 0; j < n; j++ {
		vec[lay.QxOff+j] = src.Element()
		vec[lay.QyOff+j] = src.Element()
		vec[lay.QzOff+j].Mul(&vec[lay.QxOff+j], &vec[lay.QyOff+j])
	}
	return vec
}
