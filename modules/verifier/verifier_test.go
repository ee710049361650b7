package verifier_test

import (
	"bytes"
	"math/bits"
	"testing"

	"QuadZK/modules/circuit"
	"QuadZK/modules/prover"
	"QuadZK/modules/rng"
	"QuadZK/modules/verifier"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

// testSecurity matches the small parameters the test proofs are built
// with; production floors live in verifier.DefaultSecurity.
var testSecurity = verifier.Security{MinRateInv: 4, MinNbQueries: 16}

// pythagorean asserts x^2 + y^2 - z = 0 over the input row
// [one, z, x, y], with one and z public and x, y private.
func pythagorean(logCopies uint) *circuit.Circuit {
	one := fr.One()
	var minusOne fr.Element
	minusOne.Neg(&one)

	return &circuit.Circuit{
		LogOutputs:     0,
		LogCopies:      logCopies,
		NbInputs:       4,
		LogInputs:      2,
		NbPublicInputs: 2,
		Layers: []circuit.Layer{
			{LogWires: 0, Terms: circuit.Quad{
				{Gate: 0, L: 0, R: 3, Coef: one},
				{Gate: 0, L: 1, R: 3, Coef: one},
				{Gate: 0, L: 2, R: 3, Coef: minusOne},
			}},
			{LogWires: 2, Terms: circuit.Quad{
				{Gate: 0, L: 2, R: 2, Coef: one},
				{Gate: 1, L: 3, R: 3, Coef: one},
				{Gate: 2, L: 1, R: 0, Coef: one},
				{Gate: 3, L: 0, R: 0, Coef: one},
			}},
		},
	}
}

func pythagoreanWitness(c *circuit.Circuit, x, y, z uint64) *circuit.Dense {
	vals := []uint64{1, z, x, y}
	return circuit.NewAssignment(c, func(copy, wire int) fr.Element {
		var e fr.Element
		e.SetUint64(vals[wire])
		return e
	})
}

func prove(t *testing.T, c *circuit.Circuit, inputs *circuit.Dense, seed uint64) (*circuit.ZkProof, []fr.Element) {
	params, err := prover.DefaultParams(c, 4, 16)
	require.NoError(t, err)

	st, err := prover.Commit(c, inputs, params, rng.NewSeeded(seed))
	require.NoError(t, err)

	zk, err := prover.Prove(c, st)
	require.NoError(t, err)
	return zk, st.Public
}

func TestProveVerifySingleCopy(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)

	zk, public := prove(t, c, inputs, 1)
	require.NoError(t, verifier.Verify(c, zk, public, testSecurity))
}

func TestProveVerifyParallelCopies(t *testing.T) {
	c := pythagorean(2)
	triples := [][3]uint64{{3, 4, 25}, {0, 5, 25}, {6, 8, 100}, {1, 2, 5}}
	inputs := circuit.NewAssignment(c, func(copy, wire int) fr.Element {
		vals := []uint64{1, triples[copy][2], triples[copy][0], triples[copy][1]}
		var e fr.Element
		e.SetUint64(vals[wire])
		return e
	})

	zk, public := prove(t, c, inputs, 2)
	require.NoError(t, verifier.Verify(c, zk, public, testSecurity))
}

func TestProveVerifyRandomCircuit(t *testing.T) {
	src := rng.NewSeeded(3)
	c, inputs := circuit.NewRandomVerifiableCircuit(4, 2, 3, 10, src)

	zk, public := prove(t, c, inputs, 4)
	require.NoError(t, verifier.Verify(c, zk, public, testSecurity))
}

func TestCommitRejectsUnsatisfiedWitness(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 5, 25)

	params, err := prover.DefaultParams(c, 4, 16)
	require.NoError(t, err)
	_, err = prover.Commit(c, inputs, params, rng.NewSeeded(5))
	require.ErrorIs(t, err, circuit.ErrConstraintViolation)
}

func TestVerifyRejectsWrongPublicInput(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)

	zk, public := prove(t, c, inputs, 6)
	public[1].SetUint64(26)
	require.ErrorIs(t, verifier.Verify(c, zk, public, testSecurity), verifier.ErrProofInvalid)
}

func TestVerifyRejectsTamperedStream(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)

	zk, public := prove(t, c, inputs, 7)
	var one fr.Element
	one.SetOne()
	zk.Sumcheck.Elems[0].Add(&zk.Sumcheck.Elems[0], &one)
	require.ErrorIs(t, verifier.Verify(c, zk, public, testSecurity), verifier.ErrProofInvalid)
}

func TestVerifyRejectsTamperedRoot(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)

	zk, public := prove(t, c, inputs, 8)
	zk.Commitment.Root[0] ^= 1
	require.ErrorIs(t, verifier.Verify(c, zk, public, testSecurity), verifier.ErrProofInvalid)
}

func TestVerifyRejectsWrongCircuit(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)
	zk, public := prove(t, c, inputs, 9)

	other := pythagorean(0)
	other.Layers[1].Terms[0].Coef.SetUint64(2)
	require.ErrorIs(t, verifier.Verify(other, zk, public, testSecurity), verifier.ErrProofInvalid)
}

func TestProofsAreDeterministic(t *testing.T) {
	c := pythagorean(1)
	triples := [][3]uint64{{3, 4, 25}, {6, 8, 100}}
	inputs := circuit.NewAssignment(c, func(copy, wire int) fr.Element {
		vals := []uint64{1, triples[copy][2], triples[copy][0], triples[copy][1]}
		var e fr.Element
		e.SetUint64(vals[wire])
		return e
	})

	zk1, _ := prove(t, c, inputs, 42)
	zk2, _ := prove(t, c, inputs, 42)

	var b1, b2 bytes.Buffer
	_, err := zk1.WriteTo(&b1)
	require.NoError(t, err)
	_, err = zk2.WriteTo(&b2)
	require.NoError(t, err)
	require.Equal(t, b1.Bytes(), b2.Bytes())
}

func TestProofSerializationRoundtrip(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)
	zk, public := prove(t, c, inputs, 10)

	var buf bytes.Buffer
	_, err := zk.WriteTo(&buf)
	require.NoError(t, err)

	zk2, err := circuit.ReadZkProofFrom(&buf)
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(c, zk2, public, testSecurity))
}

func TestVerifyRejectsWeakParams(t *testing.T) {
	c := pythagorean(0)
	inputs := pythagoreanWitness(c, 3, 4, 25)

	params, err := prover.DefaultParams(c, 2, 1)
	require.NoError(t, err)
	st, err := prover.Commit(c, inputs, params, rng.NewSeeded(12))
	require.NoError(t, err)
	zk, err := prover.Prove(c, st)
	require.NoError(t, err)

	// Honest proof, but its declared knobs are below the floor.
	require.ErrorIs(t, verifier.Verify(c, zk, st.Public, testSecurity), verifier.ErrProofInvalid)

	// A caller opting into the weaker floor still accepts it.
	weak := verifier.Security{MinRateInv: 2, MinNbQueries: 1}
	require.NoError(t, verifier.Verify(c, zk, st.Public, weak))
}

// TestRevealedValuesHideWitness checks the blinding of the sumcheck
// stream: across many proofs, the revealed round messages and claims
// must look uniform, and identically so for two different private
// witnesses of the same public statement.
func TestRevealedValuesHideWitness(t *testing.T) {
	c := pythagorean(0)
	a := pythagoreanWitness(c, 3, 4, 25)
	b := pythagoreanWitness(c, 0, 5, 25)

	// Fraction of ones over the low 128 bits of every stream element;
	// the low half of a uniform field element carries no modulus bias.
	bitFrac := func(inputs *circuit.Dense, seedBase uint64) float64 {
		ones, total := 0, 0
		for s := uint64(0); s < 40; s++ {
			zk, _ := prove(t, c, inputs, seedBase+s)
			for i := range zk.Sumcheck.Elems {
				bs := zk.Sumcheck.Elems[i].Bytes()
				for _, by := range bs[16:] {
					ones += bits.OnesCount8(by)
					total += 8
				}
			}
		}
		return float64(ones) / float64(total)
	}

	fa := bitFrac(a, 1000)
	fb := bitFrac(b, 2000)
	require.InDelta(t, 0.5, fa, 0.02)
	require.InDelta(t, 0.5, fb, 0.02)
	require.InDelta(t, fa, fb, 0.02)
}
