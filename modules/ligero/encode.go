package ligero

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

// interpolateRow turns W row slots, read as evaluations over the
// size-W subgroup, into polynomial coefficients.
func interpolateRow(domainW *fft.Domain, slots []fr.Element) []fr.Element {
	coeffs := make([]fr.Element, len(slots))
	copy(coeffs, slots)
	domainW.FFTInverse(coeffs, fft.DIF)
	fft.BitReverse(coeffs)
	return coeffs
}

// encodeRow evaluates row coefficients over the size-n codeword
// domain. Both domain generators derive from the same 2-adic root, so
// codeword position j*RateInv carries row slot j; those embedded
// positions are never opened.
func encodeRow(domainN *fft.Domain, coeffs []fr.Element) []fr.Element {
	cw := make([]fr.Element, domainN.Cardinality)
	copy(cw, coeffs)
	domainN.FFT(cw, fft.DIF)
	fft.BitReverse(cw)
	return cw
}

// polyMul multiplies two coefficient-form polynomials of degree < W
// over the size-2W domain and returns the 2W-1 product coefficients.
func polyMul(domain2W *fft.Domain, a, b []fr.Element) []fr.Element {
	n := int(domain2W.Cardinality)
	ea := make([]fr.Element, n)
	eb := make([]fr.Element, n)
	copy(ea, a)
	copy(eb, b)

	domain2W.FFT(ea, fft.DIF)
	domain2W.FFT(eb, fft.DIF)
	for i := range ea {
		ea[i].Mul(&ea[i], &eb[i])
	}
	domain2W.FFTInverse(ea, fft.DIT)
	return ea[:n-1]
}

// domainElement computes g^idx for the codeword domain generator g.
func domainElement(domain *fft.Domain, idx int) fr.Element {
	var res fr.Element
	res.SetOne()
	g := domain.Generator
	for ; idx > 0; idx >>= 1 {
		if idx&1 == 1 {
			res.Mul(&res, &g)
		}
		g.Square(&g)
	}
	return res
}
