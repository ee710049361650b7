// Package sumcheck implements the layered sumcheck argument: the live
// prover that produces the blinded round messages, and the constraint
// builder both sides run to turn those messages into linear constraints
// over the committed extended witness.
package sumcheck

import (
	"math/bits"

	"QuadZK/modules/circuit"
	"QuadZK/modules/poly"
	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var one, two, three fr.Element

func init() {
	one.SetOne()
	two.SetUint64(2)
	three.SetUint64(3)
}

// Claim is the reduction state entering a layer: the bound copy point,
// the wire point(s) of the previous layer and the fold scalar combining
// them. RPoint is nil at the output layer, where a single transcript
// point starts the chain. Value is the true running claim, maintained by
// the live prover only.
type Claim struct {
	CopyPoint []fr.Element
	LPoint    []fr.Element
	RPoint    []fr.Element
	Alpha     fr.Element
	Value     fr.Element
}

// LayerPads are the committed blinding values one layer consumes: one
// pad per transmitted round evaluation, plus the two claim pads.
type LayerPads struct {
	Rounds   [][]fr.Element
	Pvl, Pvr fr.Element
}

// LayerResult carries the bound points and the true operand-layer
// claims out of one layer.
type LayerResult struct {
	CopyPoint []fr.Element
	LPoint    []fr.Element
	RPoint    []fr.Element
	Vl, Vr    fr.Element
}

// termKernels folds the claim's wire points and the fold scalar into
// one scalar per term: coef_t * (eqL[gate_t] + alpha*eqR[gate_t]).
func termKernels(terms circuit.Quad, claim Claim) []fr.Element {
	eqL := poly.EqEvalsAt(claim.LPoint, one)
	var eqR []fr.Element
	if claim.RPoint != nil {
		eqR = poly.EqEvalsAt(claim.RPoint, claim.Alpha)
	}
	kc := make([]fr.Element, len(terms))
	for t := range terms {
		k := eqL[terms[t].Gate]
		if eqR != nil {
			k.Add(&k, &eqR[terms[t].Gate])
		}
		kc[t].Mul(&k, &terms[t].Coef)
	}
	return kc
}

// ProveLayer runs the live sumcheck of one layer: copy rounds first
// with degree-3 messages at {0,2,3}, then left-hand and right-hand wire
// rounds with degree-2 messages at {0,2}. The evaluation at 1 is never
// sent; it is implied by P(0)+P(1) = claim. Every transmitted scalar is
// blinded by its pad before entering the proof and the transcript.
func ProveLayer(tr *transcript.Transcript, out *circuit.Proof, terms circuit.Quad, operand *circuit.Dense, claim Claim, pads LayerPads) LayerResult {
	logw := bits.TrailingZeros(uint(operand.RowLen))
	kc := termKernels(terms, claim)

	eqC := poly.EqEvalsAt(claim.CopyPoint, one)
	op := operand.Clone()
	claimVal := claim.Value
	round := 0

	res := LayerResult{
		CopyPoint: make([]fr.Element, 0, len(claim.CopyPoint)),
		LPoint:    make([]fr.Element, 0, logw),
		RPoint:    make([]fr.Element, 0, logw),
	}

	// Copy rounds. The summand eq(gamma,c) * G(c) is cubic in each copy
	// bit since G holds a product of two operand rows.
	scratch := make([]fr.Element, op.RowLen)
	for op.NbCopies > 1 {
		var evals [3]fr.Element
		for pi, x := range []fr.Element{{}, two, three} {
			var sum, e, g, t fr.Element
			for j := 0; j < op.NbCopies/2; j++ {
				r0, r1 := op.Row(2*j), op.Row(2*j+1)
				vrow := r0
				if pi > 0 {
					for k := range scratch {
						scratch[k] = poly.InterpPair(r0[k], r1[k], x)
					}
					vrow = scratch
				}
				g.SetZero()
				for ti := range terms {
					t.Mul(&vrow[terms[ti].L], &vrow[terms[ti].R])
					t.Mul(&t, &kc[ti])
					g.Add(&g, &t)
				}
				e = poly.InterpPair(eqC[2*j], eqC[2*j+1], x)
				g.Mul(&g, &e)
				sum.Add(&sum, &g)
			}
			evals[pi] = sum
		}

		sendRound(tr, out, evals[:], pads.Rounds[round])
		x := tr.ChallengeF()
		res.CopyPoint = append(res.CopyPoint, x)

		var p1 fr.Element
		p1.Sub(&claimVal, &evals[0])
		claimVal = poly.Degree3Eval([4]fr.Element{evals[0], p1, evals[1], evals[2]}, x)

		eqC = poly.FoldPairs(eqC, x)
		op = foldCopies(op, x)
		round++
	}

	eqScale := eqC[0]
	u0 := op.Row(0)

	// Left-hand wire rounds: product sumcheck of the operand row against
	// H, the term kernels aggregated per left index.
	h := make([]fr.Element, op.RowLen)
	var t fr.Element
	for ti := range terms {
		t.Mul(&kc[ti], &u0[terms[ti].R])
		h[terms[ti].L].Add(&h[terms[ti].L], &t)
	}
	for k := range h {
		h[k].Mul(&h[k], &eqScale)
	}
	ul := append([]fr.Element(nil), u0...)
	res.Vl, res.LPoint, claimVal = proveWireRounds(tr, out, ul, h, claimVal, pads.Rounds[round:round+logw])
	round += logw

	// Right-hand wire rounds: the left point is bound, so the kernels
	// collapse through its eq table, scaled by the bound left value.
	eqLw := poly.EqEvalsAt(res.LPoint, one)
	g := make([]fr.Element, len(u0))
	for ti := range terms {
		t.Mul(&kc[ti], &eqLw[terms[ti].L])
		g[terms[ti].R].Add(&g[terms[ti].R], &t)
	}
	var scale fr.Element
	scale.Mul(&eqScale, &res.Vl)
	for k := range g {
		g[k].Mul(&g[k], &scale)
	}
	ur := append([]fr.Element(nil), u0...)
	res.Vr, res.RPoint, claimVal = proveWireRounds(tr, out, ur, g, claimVal, pads.Rounds[round:round+logw])
	_ = claimVal

	// Blinded layer claims.
	var tvl, tvr fr.Element
	tvl.Add(&res.Vl, &pads.Pvl)
	tvr.Add(&res.Vr, &pads.Pvr)
	out.Append(tvl, tvr)
	tr.AppendFs(tvl, tvr)
	return res
}

// proveWireRounds runs the degree-2 rounds of one wire dimension,
// folding both product halves after each challenge. It returns the
// bound value of u, the bound point and the final running claim.
func proveWireRounds(tr *transcript.Transcript, out *circuit.Proof, u, h []fr.Element, claimVal fr.Element, pads [][]fr.Element) (fr.Element, []fr.Element, fr.Element) {
	point := make([]fr.Element, 0, len(pads))
	round := 0
	var t fr.Element
	for len(u) > 1 {
		var evals [2]fr.Element
		for j := 0; j < len(u)/2; j++ {
			t.Mul(&u[2*j], &h[2*j])
			evals[0].Add(&evals[0], &t)

			ue := poly.InterpPair(u[2*j], u[2*j+1], two)
			he := poly.InterpPair(h[2*j], h[2*j+1], two)
			ue.Mul(&ue, &he)
			evals[1].Add(&evals[1], &ue)
		}

		sendRound(tr, out, evals[:], pads[round])
		x := tr.ChallengeF()
		point = append(point, x)

		var p1 fr.Element
		p1.Sub(&claimVal, &evals[0])
		claimVal = poly.Degree2Eval([3]fr.Element{evals[0], p1, evals[1]}, x)

		u = poly.FoldPairs(u, x)
		h = poly.FoldPairs(h, x)
		round++
	}
	return u[0], point, claimVal
}

func sendRound(tr *transcript.Transcript, out *circuit.Proof, evals []fr.Element, pads []fr.Element) {
	var m fr.Element
	for k := range evals {
		m.Add(&evals[k], &pads[k])
		out.Append(m)
		tr.AppendF(m)
	}
}

// foldCopies binds the lowest copy bit of a value array to x, pairing
// adjacent copy rows.
func foldCopies(d *circuit.Dense, x fr.Element) *circuit.Dense {
	half := d.NbCopies / 2
	rl := d.RowLen
	var t fr.Element
	for j := 0; j < half; j++ {
		dst := d.V[j*rl : (j+1)*rl]
		a := d.V[2*j*rl : (2*j+1)*rl]
		b := d.V[(2*j+1)*rl : (2*j+2)*rl]
		for k := 0; k < rl; k++ {
			t.Sub(&b[k], &a[k])
			t.Mul(&t, &x)
			dst[k].Add(&a[k], &t)
		}
	}
	return &circuit.Dense{NbCopies: half, RowLen: rl, V: d.V[:half*rl]}
}
