package sumcheck

import (
	"errors"
	"fmt"

	"QuadZK/modules/circuit"
	"QuadZK/modules/ligero"
	"QuadZK/modules/pad"
	"QuadZK/modules/poly"
	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var ErrSumcheckMismatch = errors.New("sumcheck proof mismatch")

// affine is a running claim expressed over the committed vector:
// Const + sum Coef*vec[Idx]. Pads enter with negated Lagrange weights as
// the rounds are replayed.
type affine struct {
	Const fr.Element
	Terms []ligero.SparseTerm
}

func (a *affine) scale(s fr.Element) {
	a.Const.Mul(&a.Const, &s)
	for i := range a.Terms {
		a.Terms[i].Coef.Mul(&a.Terms[i].Coef, &s)
	}
}

func (a *affine) addConstScaled(v, s fr.Element) {
	var t fr.Element
	t.Mul(&v, &s)
	a.Const.Add(&a.Const, &t)
}

func (a *affine) addTerm(idx int, coef fr.Element) {
	a.Terms = append(a.Terms, ligero.SparseTerm{Idx: idx, Coef: coef})
}

// BindPreamble absorbs everything both sides agree on before any
// challenge is drawn: the circuit identity, the commitment parameters,
// the public inputs and the commitment root.
func BindPreamble(tr *transcript.Transcript, id [32]byte, p ligero.Params, public []fr.Element, root [32]byte) {
	tr.AppendBytes(id[:])
	var e fr.Element
	for _, v := range []uint64{uint64(p.Width), uint64(p.SlotLog), uint64(p.RateInv), uint64(p.NbQueries)} {
		e.SetUint64(v)
		tr.AppendF(e)
	}
	tr.AppendFs(public...)
	tr.AppendBytes(root[:])
}

// Run replays the sumcheck message stream against the transcript and
// emits the linear constraints that the commitment must satisfy for the
// argument to hold: one per layer tying the final round claim to the
// blinded layer claims, two dense ones tying the last claims to the
// committed input block, and one per public input pinning its cell.
//
// The walk never compares values; a cheating prover fails inside the
// commitment tests, not here. Structural deviations from the expected
// stream shape are the only local rejections.
func Run(c *circuit.Circuit, lay *pad.Layout, tr *transcript.Transcript, proof *circuit.Proof, public []fr.Element) ([]ligero.LinearConstraint, error) {
	logc := int(c.LogCopies)
	nl := c.NbLayers()

	qw := tr.ChallengeFs(uint(c.LogOutputs))
	gamma := tr.ChallengeFs(uint(logc))
	lp := qw
	var rp []fr.Element
	var alpha fr.Element
	var claim affine

	cons := make([]ligero.LinearConstraint, 0, nl+2+len(public))

	for i := 0; i < nl; i++ {
		logw := lay.WireRounds(i)
		need := 3*logc + 4*logw + 2
		if proof.Remaining() < need {
			return nil, fmt.Errorf("%w: layer %d stream truncated", ErrSumcheckMismatch, i)
		}

		gammaStar := make([]fr.Element, 0, logc)
		chiL := make([]fr.Element, 0, logw)
		chiR := make([]fr.Element, 0, logw)

		for r := 0; r < lay.NbRounds(i); r++ {
			copyRound := r < logc
			nbMsgs := 2
			if copyRound {
				nbMsgs = 3
			}
			msgs := make([]fr.Element, nbMsgs)
			for k := range msgs {
				msgs[k] = proof.Next()
			}
			tr.AppendFs(msgs...)
			x := tr.ChallengeF()

			// claim' = w1*claim + (w0-w1)*(m0-pad0) + sum_k w_k*(m_k-pad_k)
			var w []fr.Element
			if copyRound {
				ws := poly.Deg3LagrangeCoeffs(x)
				w = ws[:]
				gammaStar = append(gammaStar, x)
			} else {
				ws := poly.Deg2LagrangeCoeffs(x)
				w = ws[:]
				if len(chiL) < logw {
					chiL = append(chiL, x)
				} else {
					chiR = append(chiR, x)
				}
			}

			claim.scale(w[1])
			var w0 fr.Element
			w0.Sub(&w[0], &w[1])
			weights := append([]fr.Element{w0}, w[2:]...)
			for k, wk := range weights {
				claim.addConstScaled(msgs[k], wk)
				var neg fr.Element
				neg.Neg(&wk)
				claim.addTerm(lay.RoundPadIdx(i, r, k), neg)
			}
		}

		tvl := proof.Next()
		tvr := proof.Next()
		tr.AppendFs(tvl, tvr)

		// The layer constraint: the replayed claim must equal
		// eq(gamma,gamma') * Q* * (vl*vr), with the true values expanded
		// through their pads and the product linearized by pprod.
		eqScale := poly.EqVec(gamma, gammaStar)
		qstar := qStar(c.Layers[i].Terms, lp, rp, alpha, chiL, chiR)
		var factor fr.Element
		factor.Mul(&eqScale, &qstar)

		lc := ligero.LinearConstraint{Terms: claim.Terms}
		var t fr.Element
		t.Mul(&tvl, &factor)
		lc.Terms = append(lc.Terms, ligero.SparseTerm{Idx: lay.PvrIdx(i), Coef: t})
		t.Mul(&tvr, &factor)
		lc.Terms = append(lc.Terms, ligero.SparseTerm{Idx: lay.PvlIdx(i), Coef: t})
		t.Neg(&factor)
		lc.Terms = append(lc.Terms, ligero.SparseTerm{Idx: lay.PprodIdx(i), Coef: t})
		lc.B.Mul(&tvl, &tvr)
		lc.B.Mul(&lc.B, &factor)
		lc.B.Sub(&lc.B, &claim.Const)
		cons = append(cons, lc)

		if i < nl-1 {
			alpha = tr.ChallengeF()
			claim = affine{}
			claim.Const.Mul(&alpha, &tvr)
			claim.Const.Add(&claim.Const, &tvl)
			var negOne, negAlpha fr.Element
			negOne.Neg(&one)
			negAlpha.Neg(&alpha)
			claim.addTerm(lay.PvlIdx(i), negOne)
			claim.addTerm(lay.PvrIdx(i), negAlpha)

			gamma, lp, rp = gammaStar, chiL, chiR
			continue
		}

		// Last layer: the operand is the committed input block, so the
		// claims close over dense multilinear-evaluation constraints.
		eqC := poly.EqEvalsAt(gammaStar, one)
		cons = append(cons,
			inputEvalConstraint(c, lay, eqC, chiL, lay.PvlIdx(i), tvl),
			inputEvalConstraint(c, lay, eqC, chiR, lay.PvrIdx(i), tvr),
		)
	}

	// Public inputs are pinned cell by cell, copy-major.
	nbPub := int(c.NbPublicInputs)
	if len(public) != c.NbCopies()*nbPub {
		return nil, fmt.Errorf("%w: %d public values, want %d", ErrSumcheckMismatch, len(public), c.NbCopies()*nbPub)
	}
	for cp := 0; cp < c.NbCopies(); cp++ {
		for w := 0; w < nbPub; w++ {
			cons = append(cons, ligero.LinearConstraint{
				Terms: []ligero.SparseTerm{{Idx: lay.InputIdx(cp, w), Coef: one}},
				B:     public[cp*nbPub+w],
			})
		}
	}
	return cons, nil
}

// qStar evaluates the public layer kernel at the bound points:
// sum_t coef_t * (eqLp[gate]+alpha*eqRp[gate]) * eqL'[l_t] * eqR'[r_t].
func qStar(terms circuit.Quad, lp, rp []fr.Element, alpha fr.Element, chiL, chiR []fr.Element) fr.Element {
	eqLp := poly.EqEvalsAt(lp, one)
	var eqRp []fr.Element
	if rp != nil {
		eqRp = poly.EqEvalsAt(rp, alpha)
	}
	eqLw := poly.EqEvalsAt(chiL, one)
	eqRw := poly.EqEvalsAt(chiR, one)

	var sum, k fr.Element
	for t := range terms {
		k = eqLp[terms[t].Gate]
		if eqRp != nil {
			k.Add(&k, &eqRp[terms[t].Gate])
		}
		k.Mul(&k, &terms[t].Coef)
		k.Mul(&k, &eqLw[terms[t].L])
		k.Mul(&k, &eqRw[terms[t].R])
		sum.Add(&sum, &k)
	}
	return sum
}

// inputEvalConstraint ties one blinded final claim to the multilinear
// evaluation of the committed input block:
// sum_{c,x} eqC[c]*eqX[x]*vec[input(c,x)] + vec[pad] = blinded claim.
func inputEvalConstraint(c *circuit.Circuit, lay *pad.Layout, eqC []fr.Element, chi []fr.Element, padIdx int, blinded fr.Element) ligero.LinearConstraint {
	eqX := poly.EqEvalsAt(chi, one)
	lc := ligero.LinearConstraint{
		Terms: make([]ligero.SparseTerm, 0, len(eqC)*len(eqX)+1),
		B:     blinded,
	}
	var t fr.Element
	for cp := range eqC {
		for x := range eqX {
			t.Mul(&eqC[cp], &eqX[x])
			lc.Terms = append(lc.Terms, ligero.SparseTerm{Idx: lay.InputIdx(cp, x), Coef: t})
		}
	}
	lc.Terms = append(lc.Terms, ligero.SparseTerm{Idx: padIdx, Coef: one})
	return lc
}
