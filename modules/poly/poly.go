// Package poly holds the small polynomial toolkit the sumcheck and
// commitment layers are built on: eq-table construction over the boolean
// hypercube, pairwise multilinear folding, and low-degree Lagrange
// interpolation on the fixed point sets {0,1,2} and {0,1,2,3}.
package poly

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

var (
	// Lagrange denominator inverses for the point set {0,1,2,3}:
	// prod_{j!=i} (i-j) = -6, 2, -2, 6.
	deg3DenomInv [4]fr.Element

	// and for {0,1,2}: 2, -1, 2.
	deg2DenomInv [3]fr.Element

	two fr.Element
)

func init() {
	var d fr.Element

	d.SetInt64(-6)
	deg3DenomInv[0].Inverse(&d)
	d.SetInt64(2)
	deg3DenomInv[1].Inverse(&d)
	d.SetInt64(-2)
	deg3DenomInv[2].Inverse(&d)
	d.SetInt64(6)
	deg3DenomInv[3].Inverse(&d)

	d.SetInt64(2)
	deg2DenomInv[0].Inverse(&d)
	d.SetInt64(-1)
	deg2DenomInv[1].Inverse(&d)
	d.SetInt64(2)
	deg2DenomInv[2].Inverse(&d)

	two.SetUint64(2)
}

// EqEvalsAt computes eq(r, x) for every x in {0,1}^len(r), scaled by
// scale. Variable i of r corresponds to bit i of the table index.
func EqEvalsAt(r []fr.Element, scale fr.Element) []fr.Element {
	evals := make([]fr.Element, 1<<len(r))
	evals[0] = scale

	for i, ri := range r {
		half := 1 << i
		for j := 0; j < half; j++ {
			// (v) -> ((1 - r) v, r v)
			evals[j+half].Mul(&evals[j], &ri)
			evals[j].Sub(&evals[j], &evals[j+half])
		}
	}
	return evals
}

// EqVec computes prod_i eq(x_i, y_i) with
// eq(x, y) = x y + (1 - x)(1 - y) = 2 x y + 1 - x - y.
func EqVec(xs, ys []fr.Element) fr.Element {
	var res fr.Element
	res.SetOne()

	var t, u fr.Element
	for i := range xs {
		t.Mul(&xs[i], &ys[i])
		t.Mul(&t, &two)
		u.SetOne()
		t.Add(&t, &u)
		t.Sub(&t, &xs[i])
		t.Sub(&t, &ys[i])
		res.Mul(&res, &t)
	}
	return res
}

// InterpPair linearly interpolates (0, a), (1, b) at x.
func InterpPair(a, b, x fr.Element) fr.Element {
	var res fr.Element
	res.Sub(&b, &a)
	res.Mul(&res, &x)
	res.Add(&res, &a)
	return res
}

// FoldPairs binds the lowest free variable of a multilinear table to x:
// v'[j] = v[2j] + x (v[2j+1] - v[2j]). The fold is done in place and the
// halved prefix is returned.
func FoldPairs(v []fr.Element, x fr.Element) []fr.Element {
	half := len(v) >> 1
	var t fr.Element
	for j := 0; j < half; j++ {
		t.Sub(&v[2*j+1], &v[2*j])
		t.Mul(&t, &x)
		v[j].Add(&v[2*j], &t)
	}
	return v[:half]
}

// EvalMultilinear evaluates the multilinear extension of vs at r,
// variable 0 of r bound to the lowest index bit.
func EvalMultilinear(vs, r []fr.Element) fr.Element {
	if 1<<len(r) != len(vs) {
		panic("inconsistent length of values and point in multilinear eval")
	}
	scratch := make([]fr.Element, len(vs))
	copy(scratch, vs)
	for i := range r {
		scratch = FoldPairs(scratch, r[i])
	}
	return scratch[0]
}

// Deg2LagrangeCoeffs returns the Lagrange weights of the points {0,1,2}
// at x, so that P(x) = sum_i w_i P(i) for any P of degree <= 2.
func Deg2LagrangeCoeffs(x fr.Element) [3]fr.Element {
	var xm [3]fr.Element // x - i
	for i := int64(0); i < 3; i++ {
		var p fr.Element
		p.SetInt64(i)
		xm[i].Sub(&x, &p)
	}

	var w [3]fr.Element
	w[0].Mul(&xm[1], &xm[2])
	w[0].Mul(&w[0], &deg2DenomInv[0])
	w[1].Mul(&xm[0], &xm[2])
	w[1].Mul(&w[1], &deg2DenomInv[1])
	w[2].Mul(&xm[0], &xm[1])
	w[2].Mul(&w[2], &deg2DenomInv[2])
	return w
}

// Deg3LagrangeCoeffs returns the Lagrange weights of {0,1,2,3} at x.
func Deg3LagrangeCoeffs(x fr.Element) [4]fr.Element {
	var xm [4]fr.Element
	for i := int64(0); i < 4; i++ {
		var p fr.Element
		p.SetInt64(i)
		xm[i].Sub(&x, &p)
	}

	var w [4]fr.Element
	w[0].Mul(&xm[1], &xm[2])
	w[0].Mul(&w[0], &xm[3])
	w[0].Mul(&w[0], &deg3DenomInv[0])
	w[1].Mul(&xm[0], &xm[2])
	w[1].Mul(&w[1], &xm[3])
	w[1].Mul(&w[1], &deg3DenomInv[1])
	w[2].Mul(&xm[0], &xm[1])
	w[2].Mul(&w[2], &xm[3])
	w[2].Mul(&w[2], &deg3DenomInv[2])
	w[3].Mul(&xm[0], &xm[1])
	w[3].Mul(&w[3], &xm[2])
	w[3].Mul(&w[3], &deg3DenomInv[3])
	return w
}

// Degree2Eval evaluates the degree-2 polynomial with values ps on
// {0,1,2} at x.
func Degree2Eval(ps [3]fr.Element, x fr.Element) fr.Element {
	w := Deg2LagrangeCoeffs(x)
	var res, t fr.Element
	for i := 0; i < 3; i++ {
		t.Mul(&w[i], &ps[i])
		res.Add(&res, &t)
	}
	return res
}

// Degree3Eval evaluates the degree-3 polynomial with values ps on
// {0,1,2,3} at x.
func Degree3Eval(ps [4]fr.Element, x fr.Element) fr.Element {
	w := Deg3LagrangeCoeffs(x)
	var res, t fr.Element
	for i := 0; i < 4; i++ {
		t.Mul(&w[i], &ps[i])
		res.Add(&res, &t)
	}
	return res
}

// Horner evaluates the coefficient-form polynomial at x.
func Horner(coeffs []fr.Element, x fr.Element) fr.Element {
	var res fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		res.Mul(&res, &x)
		res.Add(&res, &coeffs[i])
	}
	return res
}
