package circuit

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Dense is a flat, copy-major array of wire values: one row per
// parallel copy, one column per wire slot. It is mutable while a single
// owner fills it and read-only once handed to the proving pipeline.
type Dense struct {
	NbCopies int
	RowLen   int
	V        []fr.Element
}

func NewDense(nbCopies, rowLen int) *Dense {
	return &Dense{
		NbCopies: nbCopies,
		RowLen:   rowLen,
		V:        make([]fr.Element, nbCopies*rowLen),
	}
}

func (d *Dense) At(copy, wire int) fr.Element {
	return d.V[copy*d.RowLen+wire]
}

func (d *Dense) Set(copy, wire int, v fr.Element) {
	d.V[copy*d.RowLen+wire] = v
}

// Row returns the value row of one copy, aliasing the backing array.
func (d *Dense) Row(copy int) []fr.Element {
	return d.V[copy*d.RowLen : (copy+1)*d.RowLen]
}

func (d *Dense) Clone() *Dense {
	out := NewDense(d.NbCopies, d.RowLen)
	copy(out.V, d.V)
	return out
}

// NewAssignment builds the input-layer value array from a
// witness-assignment function mapping (copy, wire) to a field element.
// Padded wire slots beyond NbInputs stay zero.
func NewAssignment(c *Circuit, assign func(copy, wire int) fr.Element) *Dense {
	d := NewDense(c.NbCopies(), 1<<c.LogInputs)
	for cp := 0; cp < d.NbCopies; cp++ {
		for w := 0; w < int(c.NbInputs); w++ {
			d.Set(cp, w, assign(cp, w))
		}
	}
	return d
}

// PublicValues extracts the public slice of an input assignment,
// copy-major, as the verifier expects it.
func PublicValues(c *Circuit, inputs *Dense) []fr.Element {
	out := make([]fr.Element, 0, c.NbCopies()*int(c.NbPublicInputs))
	for cp := 0; cp < c.NbCopies(); cp++ {
		for w := 0; w < int(c.NbPublicInputs); w++ {
			out = append(out, inputs.At(cp, w))
		}
	}
	return out
}
