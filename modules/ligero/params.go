// Package ligero implements the polynomial-commitment argument that
// turns the sumcheck's final linear and quadratic claims into a
// succinct proof. The extended witness is reshaped into a tableau of
// rows, each row Reed-Solomon encoded and the codeword columns hashed
// into a Merkle tree. Three tests tie the committed data to the claims:
// a low-degree test, a batched linear (dot-product) test and a batched
// quadratic test, all bound to the commitment by opening
// transcript-chosen columns.
package ligero

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	ErrLigeroTestFailure = errors.New("ligero test failure")
	ErrMerklePathInvalid = errors.New("merkle path invalid")
)

// Params are the security and shape knobs of the commitment. RateInv
// and NbQueries trade proof size against soundness error; the soundness
// error decreases roughly geometrically in NbQueries. The constants are
// configuration to be validated against the published analysis, not
// derived here.
type Params struct {
	// Width is the number of data cells per tableau row.
	Width int

	// SlotLog is the log2 of the row slot count W >= Width + NbQueries;
	// the W - Width trailing slots of every row carry blinding
	// randomness so that opened columns leak nothing about the data.
	SlotLog uint

	// RateInv is the inverse Reed-Solomon rate (codeword length over
	// row slots). Must be a power of two.
	RateInv int

	// NbQueries is the number of codeword columns opened per proof.
	NbQueries int
}

// Slots is the row slot count W.
func (p Params) Slots() int { return 1 << p.SlotLog }

// CodewordLen is the encoded row length n = W * RateInv.
func (p Params) CodewordLen() int { return p.Slots() * p.RateInv }

func (p Params) Validate() error {
	if p.Width < 1 {
		return fmt.Errorf("%w: row width %d", ErrLigeroTestFailure, p.Width)
	}
	if p.RateInv < 2 || bits.OnesCount(uint(p.RateInv)) != 1 {
		return fmt.Errorf("%w: rate inverse %d must be a power of two >= 2", ErrLigeroTestFailure, p.RateInv)
	}
	if p.NbQueries < 1 {
		return fmt.Errorf("%w: query count %d", ErrLigeroTestFailure, p.NbQueries)
	}
	if p.Slots() < p.Width+p.NbQueries {
		return fmt.Errorf("%w: %d slots cannot hold %d data cells plus %d blinding cells",
			ErrLigeroTestFailure, p.Slots(), p.Width, p.NbQueries)
	}
	// Non-data columns available for opening.
	if p.NbQueries > p.CodewordLen()-p.Slots() {
		return fmt.Errorf("%w: cannot open %d of %d non-data columns",
			ErrLigeroTestFailure, p.NbQueries, p.CodewordLen()-p.Slots())
	}
	if p.SlotLog+uint(bits.TrailingZeros(uint(p.RateInv))) > 27 {
		return fmt.Errorf("%w: codeword too long for the field's 2-adicity", ErrLigeroTestFailure)
	}
	return nil
}

// NewParams picks a row geometry for a committed vector of totalLen
// elements: rows of roughly sqrt(totalLen) data cells, widened so every
// row keeps NbQueries blinding slots.
func NewParams(totalLen, rateInv, nbQueries int) (Params, error) {
	w := 1
	for w*w < totalLen {
		w++
	}
	slotLog := ceilLog2(w + nbQueries)
	p := Params{
		Width:     (1 << slotLog) - nbQueries,
		SlotLog:   slotLog,
		RateInv:   rateInv,
		NbQueries: nbQueries,
	}
	return p, p.Validate()
}

// NbDataRows is the tableau row count for a committed vector, excluding
// the three mask rows.
func (p Params) NbDataRows(totalLen int) int {
	return (totalLen + p.Width - 1) / p.Width
}

func ceilLog2(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}
