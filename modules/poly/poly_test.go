package poly

import (
	"testing"

	"QuadZK/modules/rng"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestEqEvalsSumToScale(t *testing.T) {
	src := rng.NewSeeded(1)
	r := []fr.Element{src.Element(), src.Element(), src.Element()}

	var scale fr.Element
	scale.SetUint64(7)
	evals := EqEvalsAt(r, scale)
	require.Len(t, evals, 8)

	var sum fr.Element
	for i := range evals {
		sum.Add(&sum, &evals[i])
	}
	require.True(t, sum.Equal(&scale))
}

func TestEqEvalsMatchEqVec(t *testing.T) {
	src := rng.NewSeeded(2)
	r := []fr.Element{src.Element(), src.Element(), src.Element(), src.Element()}

	var oneElem fr.Element
	oneElem.SetOne()
	evals := EqEvalsAt(r, oneElem)

	for b := 0; b < 16; b++ {
		x := make([]fr.Element, 4)
		for i := range x {
			if b>>i&1 == 1 {
				x[i].SetOne()
			}
		}
		want := EqVec(r, x)
		require.True(t, evals[b].Equal(&want), "index %d", b)
	}
}

func TestFoldPairsMatchesEvalMultilinear(t *testing.T) {
	src := rng.NewSeeded(3)
	vs := make([]fr.Element, 8)
	for i := range vs {
		vs[i] = src.Element()
	}
	r := []fr.Element{src.Element(), src.Element(), src.Element()}

	got := EvalMultilinear(vs, r)

	// Direct sum against the eq table.
	var oneElem fr.Element
	oneElem.SetOne()
	eq := EqEvalsAt(r, oneElem)
	var want, tm fr.Element
	for i := range vs {
		tm.Mul(&eq[i], &vs[i])
		want.Add(&want, &tm)
	}
	require.True(t, got.Equal(&want))
}

// evalQuadratic computes a*x^2 + b*x + c.
func evalQuadratic(a, b, c, x fr.Element) fr.Element {
	var res fr.Element
	res.Mul(&a, &x)
	res.Add(&res, &b)
	res.Mul(&res, &x)
	res.Add(&res, &c)
	return res
}

func TestDegree2EvalInterpolates(t *testing.T) {
	src := rng.NewSeeded(4)
	a, b, c := src.Element(), src.Element(), src.Element()

	var ps [3]fr.Element
	for i := 0; i < 3; i++ {
		var x fr.Element
		x.SetUint64(uint64(i))
		ps[i] = evalQuadratic(a, b, c, x)
	}

	x := src.Element()
	got := Degree2Eval(ps, x)
	want := evalQuadratic(a, b, c, x)
	require.True(t, got.Equal(&want))
}

func TestDegree3EvalInterpolates(t *testing.T) {
	src := rng.NewSeeded(5)
	coeffs := []fr.Element{src.Element(), src.Element(), src.Element(), src.Element()}

	var ps [4]fr.Element
	for i := 0; i < 4; i++ {
		var x fr.Element
		x.SetUint64(uint64(i))
		ps[i] = Horner(coeffs, x)
	}

	x := src.Element()
	got := Degree3Eval(ps, x)
	want := Horner(coeffs, x)
	require.True(t, got.Equal(&want))
}

func TestInterpPair(t *testing.T) {
	var a, b, x fr.Element
	a.SetUint64(3)
	b.SetUint64(11)
	x.SetUint64(2)

	got := InterpPair(a, b, x)
	var want fr.Element
	want.SetUint64(19) // 3 + 2*(11-3)
	require.True(t, got.Equal(&want))
}

func TestHorner(t *testing.T) {
	var two fr.Element
	two.SetUint64(2)
	coeffs := make([]fr.Element, 4)
	coeffs[0].SetUint64(1)
	coeffs[1].SetUint64(2)
	coeffs[2].SetUint64(3)
	coeffs[3].SetUint64(4)

	got := Horner(coeffs, two)
	var want fr.Element
	want.SetUint64(1 + 2*2 + 3*4 + 4*8)
	require.True(t, got.Equal(&want))
}
