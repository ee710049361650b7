package ligero

import (
	"fmt"
	"math/big"

	"QuadZK/modules/poly"
	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// Verify replays the three commitment tests. Each opened column is first
// checked against the Merkle root, then against the low-degree, the
// dot-product and the quadratic responses at that column's domain point.
// The global checks tie the responses to the claimed constraint values.
func Verify(tr *transcript.Transcript, comm Commitment, p Params, cons []LinearConstraint, quad []RowTriple, proof *Proof) error {
	if err := p.Validate(); err != nil {
		return err
	}
	w, W, n := p.Width, p.Slots(), p.CodewordLen()
	nd := p.NbDataRows(int(comm.Total))
	nbRows := nd + nbMaskRows
	ldt, dot, dotHi, rho := nd+ldtMaskOff, nd+dotMaskOff, nd+dotHiMaskOff, nd+rhoMaskOff

	if len(proof.U) != W {
		return fmt.Errorf("%w: low-degree response has %d coefficients, want %d", ErrLigeroTestFailure, len(proof.U), W)
	}
	if len(proof.DotQ) != 2*W {
		return fmt.Errorf("%w: dot response has %d coefficients, want %d", ErrLigeroTestFailure, len(proof.DotQ), 2*W)
	}
	if len(proof.QuadQ) != 2*W {
		return fmt.Errorf("%w: quadratic response has %d coefficients, want %d", ErrLigeroTestFailure, len(proof.QuadQ), 2*W)
	}
	if len(proof.Columns) != p.NbQueries || len(proof.Paths) != p.NbQueries {
		return fmt.Errorf("%w: %d opened columns, want %d", ErrLigeroTestFailure, len(proof.Columns), p.NbQueries)
	}
	for _, tri := range quad {
		if tri.X >= nd || tri.Y >= nd || tri.Z >= nd {
			return fmt.Errorf("%w: quadratic triple row out of range", ErrLigeroTestFailure)
		}
	}

	r := tr.ChallengeFs(uint(nbRows - 1))
	tr.AppendFs(proof.U...)

	// Fold the constraints with the verifier's own challenges and
	// interpolate the touched coefficient rows.
	rc := tr.ChallengeFs(uint(len(cons)))
	acc := make([][]fr.Element, nd)
	aHat := make([][]fr.Element, nd)
	var t fr.Element
	var rcb fr.Element
	for k := range cons {
		for _, term := range cons[k].Terms {
			row, slot := term.Idx/w, term.Idx%w
			if term.Idx < 0 || row >= nd {
				return fmt.Errorf("%w: constraint index %d out of range", ErrLigeroTestFailure, term.Idx)
			}
			if acc[row] == nil {
				acc[row] = make([]fr.Element, W)
			}
			t.Mul(&rc[k], &term.Coef)
			acc[row][slot].Add(&acc[row][slot], &t)
		}
		t.Mul(&rc[k], &cons[k].B)
		rcb.Add(&rcb, &t)
	}
	domainW := fft.NewDomain(uint64(W))
	for i := range acc {
		if acc[i] != nil {
			aHat[i] = interpolateRow(domainW, acc[i])
		}
	}
	tr.AppendFs(proof.DotQ...)
	tr.AppendF(proof.S0)

	// Global dot check: the subgroup sum of the response collapses to
	// W (q_0 + q_W), and must equal the claimed values plus the mask sum.
	var lhs, rhs, wElem fr.Element
	wElem.SetUint64(uint64(W))
	lhs.Add(&proof.DotQ[0], &proof.DotQ[W])
	lhs.Mul(&lhs, &wElem)
	rhs.Add(&rcb, &proof.S0)
	if !lhs.Equal(&rhs) {
		return fmt.Errorf("%w: dot-product global check", ErrLigeroTestFailure)
	}

	uq := tr.ChallengeFs(uint(len(quad)))
	tr.AppendFs(proof.QuadQ...)

	// Global quadratic check: the response must vanish on the subgroup.
	for k := 0; k < W; k++ {
		t.Add(&proof.QuadQ[k], &proof.QuadQ[k+W])
		if !t.IsZero() {
			return fmt.Errorf("%w: quadratic global check at coefficient %d", ErrLigeroTestFailure, k)
		}
	}

	idxs := deriveColumnIndexes(tr, p)
	domainN := fft.NewDomain(uint64(n))
	bigW := big.NewInt(int64(W))

	for q, col := range idxs {
		vals := proof.Columns[q]
		if len(vals) != nbRows {
			return fmt.Errorf("%w: opened column has %d rows, want %d", ErrLigeroTestFailure, len(vals), nbRows)
		}
		if !verifyPath(columnLeafBytes(col, vals), proof.Paths[q], comm.Root, col) {
			return fmt.Errorf("%w: column %d", ErrMerklePathInvalid, col)
		}
		x := domainElement(domainN, col)
		var xw fr.Element
		xw.Exp(x, bigW)

		// Low-degree test at this column.
		lhs = poly.Horner(proof.U, x)
		rhs = vals[ldt]
		for k, row := range otherRows(nd) {
			t.Mul(&r[k], &vals[row])
			rhs.Add(&rhs, &t)
		}
		if !lhs.Equal(&rhs) {
			return fmt.Errorf("%w: low-degree test at column %d", ErrLigeroTestFailure, col)
		}

		// Dot-product test at this column.
		lhs = poly.Horner(proof.DotQ, x)
		rhs = vals[dot]
		t.Mul(&xw, &vals[dotHi])
		rhs.Add(&rhs, &t)
		for i := 0; i < nd; i++ {
			if aHat[i] == nil {
				continue
			}
			a := poly.Horner(aHat[i], x)
			t.Mul(&a, &vals[i])
			rhs.Add(&rhs, &t)
		}
		if !lhs.Equal(&rhs) {
			return fmt.Errorf("%w: dot-product test at column %d", ErrLigeroTestFailure, col)
		}

		// Quadratic test at this column.
		lhs = poly.Horner(proof.QuadQ, x)
		var one fr.Element
		one.SetOne()
		xw.Sub(&xw, &one)
		rhs.Mul(&xw, &vals[rho])
		for k, tri := range quad {
			t.Mul(&vals[tri.X], &vals[tri.Y])
			t.Sub(&t, &vals[tri.Z])
			t.Mul(&t, &uq[k])
			rhs.Add(&rhs, &t)
		}
		if !lhs.Equal(&rhs) {
			return fmt.Errorf("%w: quadratic test at column %d", ErrLigeroTestFailure, col)
		}
	}
	return nil
}
