package transcript

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestChallengeDeterminism(t *testing.T) {
	a, b := New(), New()

	var e fr.Element
	for i := uint64(0); i < 10; i++ {
		e.SetUint64(i * 1000003)
		a.AppendF(e)
		b.AppendF(e)
	}
	require.Equal(t, a.ChallengeF(), b.ChallengeF())

	a.AppendBytes([]byte("commitment root"))
	b.AppendBytes([]byte("commitment root"))
	require.Equal(t, a.ChallengeFs(4), b.ChallengeFs(4))
}

func TestChallengeDivergesOnDifferentData(t *testing.T) {
	a, b := New(), New()

	var e fr.Element
	e.SetUint64(1)
	a.AppendF(e)
	e.SetUint64(2)
	b.AppendF(e)
	require.NotEqual(t, a.ChallengeF(), b.ChallengeF())
}

func TestChallengeDivergesOnByteAppends(t *testing.T) {
	a, b := New(), New()
	a.AppendBytes([]byte{0x01, 0x02, 0x03})
	b.AppendBytes([]byte{0x01, 0x02, 0x04})
	require.NotEqual(t, a.ChallengeF(), b.ChallengeF())
}

func TestConsecutiveChallengesDistinct(t *testing.T) {
	tr := New()
	c1 := tr.ChallengeF()
	c2 := tr.ChallengeF()
	require.NotEqual(t, c1, c2)
}

func TestCountTracksAppends(t *testing.T) {
	tr := New()
	var e fr.Element
	tr.AppendFs(e, e, e)
	require.Equal(t, uint(3), tr.GetCount())
	tr.ResetCount()
	require.Equal(t, uint(0), tr.GetCount())
}
