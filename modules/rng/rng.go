// Package rng provides the randomness capability consumed by the prover.
// All sampling in the proving pipeline goes through a Source so that
// determinism tests can substitute a seeded generator for the
// cryptographically secure default.
package rng

import (
	cryptorand "crypto/rand"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	exprand "golang.org/x/exp/rand"
)

// Source samples field elements and raw bytes. Implementations must be
// safe for single-goroutine use; the prover never samples concurrently.
type Source interface {
	// Element samples a field element statistically close to uniform.
	Element() fr.Element

	// Bytes fills p with random bytes.
	Bytes(p []byte)
}

type readerSource struct {
	r io.Reader
}

// Element samples 48 bytes and reduces them mod the field order. The
// 16-byte surplus keeps the reduction bias below 2^-128.
func (s *readerSource) Element() fr.Element {
	var buf [48]byte
	s.Bytes(buf[:])

	var e fr.Element
	e.SetBytes(buf[:])
	return e
}

func (s *readerSource) Bytes(p []byte) {
	if _, err := io.ReadFull(s.r, p); err != nil {
		panic("rng: randomness source exhausted: " + err.Error())
	}
}

// New wraps an arbitrary byte stream as a Source.
func New(r io.Reader) Source {
	return &readerSource{r: r}
}

// NewCrypto returns the production source backed by crypto/rand.
func NewCrypto() Source {
	return &readerSource{r: cryptorand.Reader}
}

// NewSeeded returns a deterministic source for tests and reproducible
// proving runs. Two sources built from the same seed yield identical
// sample sequences.
func NewSeeded(seed uint64) Source {
	return &readerSource{r: exprand.New(exprand.NewSource(seed))}
}
