// Package transcript implements the Fiat-Shamir transcript shared by the
// prover and the verifier. Challenges are derived from a MiMC hash chain
// over everything appended so far; two transcripts fed the same data
// produce the same challenge sequence, which is the soundness anchor of
// the whole non-interactive argument.
package transcript

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// ErrTranscriptDesync reports that the two sides of the argument could
// not have absorbed the same data: a proof whose shape does not match
// what the replaying verifier is about to feed its transcript.
var ErrTranscriptDesync = errors.New("transcript desync")

type Transcript struct {
	// The values to feed the hash function
	pool []fr.Element

	// The running hash state
	state fr.Element

	// helper field: counting absorbed elements, diagnostics only
	count uint
}

func New() *Transcript {
	return &Transcript{
		pool: make([]fr.Element, 0, 64),
	}
}

func (t *Transcript) AppendF(f fr.Element) {
	t.count++
	t.pool = append(t.pool, f)
}

func (t *Transcript) AppendFs(fs ...fr.Element) {
	for _, f := range fs {
		t.AppendF(f)
	}
}

// AppendBytes absorbs raw bytes (Merkle roots, circuit identifiers) by
// packing 16-byte limbs into field elements. Limbs of 16 bytes always
// fit below the modulus, so the packing is injective.
func (t *Transcript) AppendBytes(b []byte) {
	for len(b) > 0 {
		n := 16
		if len(b) < n {
			n = len(b)
		}
		var e fr.Element
		e.SetBytes(b[:n])
		t.AppendF(e)
		b = b[n:]
	}
}

// ChallengeF hashes the pending pool into the state and returns the new
// state as the challenge. With an empty pool the state is rehashed, so
// consecutive challenges are distinct.
func (t *Transcript) ChallengeF() fr.Element {
	h := mimc.NewMiMC()
	h.Write(t.state.Marshal())
	for i := range t.pool {
		h.Write(t.pool[i].Marshal())
	}
	if len(t.pool) == 0 {
		t.count++
	}
	t.pool = t.pool[:0]
	t.state.SetBytes(h.Sum(nil))
	return t.state
}

func (t *Transcript) ChallengeFs(n uint) []fr.Element {
	cs := make([]fr.Element, n)
	for i := uint(0); i < n; i++ {
		cs[i] = t.ChallengeF()
	}
	return cs
}

func (t *Transcript) GetState() fr.Element {
	return t.state
}

func (t *Transcript) GetCount() uint {
	return t.count
}

func (t *Transcript) ResetCount() {
	t.count = 0
}
