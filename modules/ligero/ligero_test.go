package ligero

import (
	"bytes"
	"testing"

	"QuadZK/modules/rng"
	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func testParams(t *testing.T) Params {
	p := Params{Width: 4, SlotLog: 3, RateInv: 4, NbQueries: 4}
	require.NoError(t, p.Validate())
	return p
}

// testVector builds a 6-row committed vector whose last three rows form
// a quadratic triple, plus two linear constraints that hold over it.
func testVector(t *testing.T) ([]fr.Element, []RowTriple, []LinearConstraint) {
	src := rng.NewSeeded(101)
	vec := make([]fr.Element, 24)
	for i := 0; i < 20; i++ {
		vec[i] = src.Element()
	}
	for i := 0; i < 4; i++ {
		vec[20+i].Mul(&vec[12+i], &vec[16+i])
	}
	triples := []RowTriple{{X: 3, Y: 4, Z: 5}}

	var c2, c3 fr.Element
	c2.SetUint64(2)
	c3.SetUint64(3)
	cons := make([]LinearConstraint, 2)

	cons[0].Terms = []SparseTerm{
		{Idx: 0, Coef: fr.One()},
		{Idx: 5, Coef: c2},
		{Idx: 10, Coef: c3},
	}
	var tm fr.Element
	cons[0].B = vec[0]
	tm.Mul(&c2, &vec[5])
	cons[0].B.Add(&cons[0].B, &tm)
	tm.Mul(&c3, &vec[10])
	cons[0].B.Add(&cons[0].B, &tm)

	for i := 0; i < 4; i++ {
		coef := src.Element()
		cons[1].Terms = append(cons[1].Terms, SparseTerm{Idx: 4 + i, Coef: coef})
		tm.Mul(&coef, &vec[4+i])
		cons[1].B.Add(&cons[1].B, &tm)
	}
	return vec, triples, cons
}

func proveTestVector(t *testing.T) (Params, Commitment, []LinearConstraint, []RowTriple, *Proof) {
	p := testParams(t)
	vec, triples, cons := testVector(t)

	pr, err := Commit(vec, triples, p, rng.NewSeeded(7))
	require.NoError(t, err)

	proof, err := pr.Prove(transcript.New(), cons, triples)
	require.NoError(t, err)
	return p, pr.Commitment(), cons, triples, proof
}

func TestCommitProveVerify(t *testing.T) {
	p, comm, cons, triples, proof := proveTestVector(t)
	require.NoError(t, Verify(transcript.New(), comm, p, cons, triples, proof))
}

func TestVerifyRejectsWrongClaim(t *testing.T) {
	p, comm, cons, triples, proof := proveTestVector(t)

	var one fr.Element
	one.SetOne()
	cons[0].B.Add(&cons[0].B, &one)
	err := Verify(transcript.New(), comm, p, cons, triples, proof)
	require.ErrorIs(t, err, ErrLigeroTestFailure)
}

func TestVerifyRejectsTamperedColumn(t *testing.T) {
	p, comm, cons, triples, proof := proveTestVector(t)

	var one fr.Element
	one.SetOne()
	proof.Columns[0][0].Add(&proof.Columns[0][0], &one)
	err := Verify(transcript.New(), comm, p, cons, triples, proof)
	require.ErrorIs(t, err, ErrMerklePathInvalid)
}

func TestVerifyRejectsTamperedRoot(t *testing.T) {
	p, comm, cons, triples, proof := proveTestVector(t)

	comm.Root[0] ^= 1
	err := Verify(transcript.New(), comm, p, cons, triples, proof)
	require.ErrorIs(t, err, ErrMerklePathInvalid)
}

func TestVerifyRejectsBrokenTriple(t *testing.T) {
	p := testParams(t)
	vec, triples, cons := testVector(t)

	var one fr.Element
	one.SetOne()
	vec[21].Add(&vec[21], &one) // z row no longer the x*y product

	pr, err := Commit(vec, triples, p, rng.NewSeeded(7))
	require.NoError(t, err)
	proof, err := pr.Prove(transcript.New(), cons, triples)
	require.NoError(t, err)

	err = Verify(transcript.New(), pr.Commitment(), p, cons, triples, proof)
	require.ErrorIs(t, err, ErrLigeroTestFailure)
}

// TestDotResponseMasksBothHalves proves with no linear constraints, so
// the dot response is exactly the two mask rows' coefficients: all 2W
// of its coefficients must carry blinding, and the proof still
// verifies.
func TestDotResponseMasksBothHalves(t *testing.T) {
	p := testParams(t)
	vec, triples, _ := testVector(t)
	W := p.Slots()

	pr, err := Commit(vec, triples, p, rng.NewSeeded(7))
	require.NoError(t, err)
	proof, err := pr.Prove(transcript.New(), nil, triples)
	require.NoError(t, err)
	require.Len(t, proof.DotQ, 2*W)

	lowZero, highZero := true, true
	for j := 0; j < W; j++ {
		lowZero = lowZero && proof.DotQ[j].IsZero()
		highZero = highZero && proof.DotQ[j+W].IsZero()
	}
	require.False(t, lowZero)
	require.False(t, highZero)

	require.NoError(t, Verify(transcript.New(), pr.Commitment(), p, nil, triples, proof))
}

// tamperColumn flips one codeword cell and rebuilds the Merkle tree, so
// the commitment stays self-consistent but disagrees with the responses
// at that column. Verification notices only if the column is opened.
func tamperColumn(pr *Prover, row, col int) Commitment {
	var one fr.Element
	one.SetOne()
	pr.codewords[row][col].Add(&pr.codewords[row][col], &one)
	leaves := make([][]byte, pr.params.CodewordLen())
	for j := range leaves {
		leaves[j] = pr.leafBytes(j)
	}
	pr.tree = buildMerkleTree(leaves)
	pr.comm.Root = pr.tree.root()
	return pr.comm
}

// TestSoundnessTracksQueryCount estimates the acceptance rate of a
// commitment with a single bad column over many fresh-challenge trials.
// A bad column survives only while unopened, so the rate must track
// 1 - NbQueries/openable and fall as NbQueries grows.
func TestSoundnessTracksQueryCount(t *testing.T) {
	p := Params{Width: 2, SlotLog: 3, RateInv: 4}
	src := rng.NewSeeded(55)
	vec := make([]fr.Element, 6)
	for i := 0; i < 4; i++ {
		vec[i] = src.Element()
	}
	vec[4].Mul(&vec[0], &vec[2])
	vec[5].Mul(&vec[1], &vec[3])
	triples := []RowTriple{{X: 0, Y: 1, Z: 2}}
	cons := []LinearConstraint{{Terms: []SparseTerm{{Idx: 0, Coef: fr.One()}}, B: vec[0]}}

	const trials = 300
	openable := p.CodewordLen() - p.Slots() // data embeddings are never opened
	rates := make([]float64, 0, 3)
	for _, nq := range []int{1, 3, 6} {
		p.NbQueries = nq
		require.NoError(t, p.Validate())

		accepts := 0
		for s := 0; s < trials; s++ {
			pr, err := Commit(vec, triples, p, rng.NewSeeded(uint64(10000*nq+s)))
			require.NoError(t, err)
			comm := tamperColumn(pr, 0, 1)
			proof, err := pr.Prove(transcript.New(), cons, triples)
			require.NoError(t, err)
			if Verify(transcript.New(), comm, p, cons, triples, proof) == nil {
				accepts++
			}
		}

		rate := float64(accepts) / float64(trials)
		expected := 1 - float64(nq)/float64(openable)
		require.InDelta(t, expected, rate, 0.12)
		rates = append(rates, rate)
	}
	require.Less(t, rates[2], rates[0])
}

func TestProofSerializationRoundtrip(t *testing.T) {
	p, comm, cons, triples, proof := proveTestVector(t)

	var buf bytes.Buffer
	_, err := proof.WriteTo(&buf)
	require.NoError(t, err)

	proof2, err := ReadProofFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, proof.U, proof2.U)
	require.Equal(t, proof.DotQ, proof2.DotQ)
	require.Equal(t, proof.QuadQ, proof2.QuadQ)
	require.True(t, proof.S0.Equal(&proof2.S0))

	require.NoError(t, Verify(transcript.New(), comm, p, cons, triples, proof2))
}

func TestNewParamsGeometry(t *testing.T) {
	p, err := NewParams(1000, 4, 16)
	require.NoError(t, err)
	require.GreaterOrEqual(t, p.Slots(), p.Width+p.NbQueries)
	require.Equal(t, p.Slots()*p.RateInv, p.CodewordLen())

	// Rows must cover the vector.
	require.GreaterOrEqual(t, p.NbDataRows(1000)*p.Width, 1000)
}

func TestParamsValidateRejects(t *testing.T) {
	p := Params{Width: 8, SlotLog: 3, RateInv: 4, NbQueries: 4}
	require.ErrorIs(t, p.Validate(), ErrLigeroTestFailure) // 8 slots < 8+4

	p = Params{Width: 4, SlotLog: 3, RateInv: 3, NbQueries: 2}
	require.ErrorIs(t, p.Validate(), ErrLigeroTestFailure) // rate not a power of two
}
