package circuit

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"
)

// ErrConstraintViolation reports a nonzero output wire: the witness
// does not satisfy the circuit's assertions. No proof is ever produced
// past this point.
var ErrConstraintViolation = errors.New("constraint violation")

// Evaluate propagates the input assignment through every layer and
// returns the per-layer value arrays, indexed like Layers with the
// inputs appended as the last entry. Copies are independent, so they
// are evaluated in parallel; the result is identical to a sequential
// pass.
func (c *Circuit) Evaluate(inputs *Dense) ([]*Dense, error) {
	if inputs.NbCopies != c.NbCopies() || inputs.RowLen != 1<<c.LogInputs {
		return nil, fmt.Errorf("%w: input array is %dx%d, want %dx%d",
			ErrMalformedCircuit, inputs.NbCopies, inputs.RowLen, c.NbCopies(), 1<<c.LogInputs)
	}

	nl := c.NbLayers()
	vals := make([]*Dense, nl+1)
	vals[nl] = inputs

	for i := nl - 1; i >= 0; i-- {
		vals[i] = NewDense(c.NbCopies(), c.Layers[i].NbWires())
		evalLayer(&c.Layers[i], vals[i+1], vals[i])
	}

	// Output wires encode assertions: all of layer 0 must be zero.
	for cp := 0; cp < c.NbCopies(); cp++ {
		for g, v := range vals[0].Row(cp) {
			if !v.IsZero() {
				return nil, fmt.Errorf("%w: copy %d output wire %d = %s",
					ErrConstraintViolation, cp, g, v.String())
			}
		}
	}
	return vals, nil
}

func evalLayer(layer *Layer, in, out *Dense) {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for cp := 0; cp < in.NbCopies; cp++ {
		inRow, outRow := in.Row(cp), out.Row(cp)
		g.Go(func() error {
			var t fr.Element
			for _, term := range layer.Terms {
				t.Mul(&inRow[term.L], &inRow[term.R])
				t.Mul(&t, &term.Coef)
				outRow[term.Gate].Add(&outRow[term.Gate], &t)
			}
			return nil
		})
	}
	g.Wait()
}
