package ligero

import (
	"encoding/binary"
	"fmt"

	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Prove runs the three commitment tests against the transcript. The
// constraints address the committed vector by flat index; quad lists the
// row triples under the quadratic test and must match the triples the
// tableau was committed with.
//
// Transcript order, mirrored exactly by Verify: challenges r, response
// u; challenges rc, response q and mask sum s0; challenges uq, response
// Q; column index challenges.
func (pr *Prover) Prove(tr *transcript.Transcript, cons []LinearConstraint, quad []RowTriple) (*Proof, error) {
	p := pr.params
	W := p.Slots()
	nd := pr.nbDataRows
	nbRows := nd + nbMaskRows

	ldt, dot, dotHi, rho := nd+ldtMaskOff, nd+dotMaskOff, nd+dotHiMaskOff, nd+rhoMaskOff
	proof := &Proof{}

	// Low-degree test: u = p_ldt + sum_i r_i p_i over every other row.
	r := tr.ChallengeFs(uint(nbRows - 1))
	proof.U = make([]fr.Element, W)
	copy(proof.U, pr.coeffs[ldt])
	var t fr.Element
	for k, row := range otherRows(nd) {
		for j := 0; j < W; j++ {
			t.Mul(&r[k], &pr.coeffs[row][j])
			proof.U[j].Add(&proof.U[j], &t)
		}
	}
	tr.AppendFs(proof.U...)

	// Dot-product test: fold the constraints into one coefficient
	// tableau a, then q = p_dot + X^W p_dotHi + sum_i a_hat_i p_i. The
	// two mask rows blind all 2W response coefficients; only the sum of
	// their row sums is revealed, which is exactly the one relation the
	// global check consumes.
	rc := tr.ChallengeFs(uint(len(cons)))
	acc, touched, err := pr.foldConstraints(rc, cons)
	if err != nil {
		return nil, err
	}

	proof.DotQ = make([]fr.Element, 2*W)
	copy(proof.DotQ, pr.coeffs[dot])
	copy(proof.DotQ[W:], pr.coeffs[dotHi])
	for i := 0; i < nd; i++ {
		if !touched[i] {
			continue
		}
		aHat := interpolateRow(pr.domainW, acc[i])
		prod := polyMul(pr.domain2W, aHat, pr.coeffs[i])
		for j := range prod {
			proof.DotQ[j].Add(&proof.DotQ[j], &prod[j])
		}
	}
	for j := 0; j < W; j++ {
		proof.S0.Add(&proof.S0, &pr.rows[dot][j])
		proof.S0.Add(&proof.S0, &pr.rows[dotHi][j])
	}
	tr.AppendFs(proof.DotQ...)
	tr.AppendF(proof.S0)

	// Quadratic test: Q = (X^W - 1) rho + sum_k uq_k (p_x p_y - p_z).
	uq := tr.ChallengeFs(uint(len(quad)))
	proof.QuadQ = make([]fr.Element, 2*W)
	for j := 0; j < W; j++ {
		proof.QuadQ[j].Sub(&proof.QuadQ[j], &pr.coeffs[rho][j])
		proof.QuadQ[j+W].Add(&proof.QuadQ[j+W], &pr.coeffs[rho][j])
	}
	for k, tri := range quad {
		if tri.X >= nd || tri.Y >= nd || tri.Z >= nd {
			return nil, fmt.Errorf("%w: quadratic triple row out of range", ErrLigeroTestFailure)
		}
		prod := polyMul(pr.domain2W, pr.coeffs[tri.X], pr.coeffs[tri.Y])
		for j := 0; j < W; j++ {
			prod[j].Sub(&prod[j], &pr.coeffs[tri.Z][j])
		}
		for j := range prod {
			t.Mul(&uq[k], &prod[j])
			proof.QuadQ[j].Add(&proof.QuadQ[j], &t)
		}
	}
	tr.AppendFs(proof.QuadQ...)

	// Open the transcript-chosen columns.
	idxs := deriveColumnIndexes(tr, p)
	proof.Columns = make([][]fr.Element, len(idxs))
	proof.Paths = make([][][]byte, len(idxs))
	for q, col := range idxs {
		vals := make([]fr.Element, nbRows)
		for i := 0; i < nbRows; i++ {
			vals[i] = pr.codewords[i][col]
		}
		proof.Columns[q] = vals
		proof.Paths[q] = pr.tree.path(col)
	}
	return proof, nil
}

// otherRows lists every row entering the low-degree combination, in
// challenge order: the data rows, then the two dot masks, then rho.
func otherRows(nd int) []int {
	rows := make([]int, 0, nd+3)
	for i := 0; i < nd; i++ {
		rows = append(rows, i)
	}
	rows = append(rows, nd+dotMaskOff, nd+dotHiMaskOff, nd+rhoMaskOff)
	return rows
}

// foldConstraints combines the sparse constraints, scaled by rc, into
// per-row coefficient slots. Untouched rows are skipped downstream.
func (pr *Prover) foldConstraints(rc []fr.Element, cons []LinearConstraint) ([][]fr.Element, []bool, error) {
	w := pr.params.Width
	W := pr.params.Slots()
	acc := make([][]fr.Element, pr.nbDataRows)
	touched := make([]bool, pr.nbDataRows)

	var t fr.Element
	for k := range cons {
		for _, term := range cons[k].Terms {
			row, slot := term.Idx/w, term.Idx%w
			if term.Idx < 0 || row >= pr.nbDataRows {
				return nil, nil, fmt.Errorf("%w: constraint index %d out of range", ErrLigeroTestFailure, term.Idx)
			}
			if acc[row] == nil {
				acc[row] = make([]fr.Element, W)
				touched[row] = true
			}
			t.Mul(&rc[k], &term.Coef)
			acc[row][slot].Add(&acc[row][slot], &t)
		}
	}
	return acc, touched, nil
}

// deriveColumnIndexes draws NbQueries distinct column indices from the
// transcript, skipping the data embeddings at positions divisible by
// RateInv.
func deriveColumnIndexes(tr *transcript.Transcript, p Params) []int {
	n := uint64(p.CodewordLen())
	idxs := make([]int, 0, p.NbQueries)
	seen := make(map[int]bool, p.NbQueries)
	for len(idxs) < p.NbQueries {
		c := tr.ChallengeF()
		b := c.Bytes()
		j := int(binary.BigEndian.Uint64(b[24:]) % n)
		if j%p.RateInv == 0 || seen[j] {
			continue
		}
		seen[j] = true
		idxs = append(idxs, j)
	}
	return idxs
}
