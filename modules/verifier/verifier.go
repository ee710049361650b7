// Package verifier checks proofs. All rejection paths collapse into one
// exported error so a caller cannot distinguish why a proof failed; the
// underlying cause is recorded at debug level only.
package verifier

import (
	"errors"
	"fmt"

	"QuadZK/modules/circuit"
	"QuadZK/modules/ligero"
	"QuadZK/modules/pad"
	"QuadZK/modules/sumcheck"
	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog/log"
)

var ErrProofInvalid = errors.New("proof invalid")

// Security is the verifier-side floor on the commitment knobs. The
// prover declares its Params inside the proof, so without a floor a
// cheating prover could declare a near-trivial query count or rate and
// pick its own soundness level; callers state the minimum they accept
// and weaker proofs are rejected before anything else is processed.
type Security struct {
	MinRateInv   int
	MinNbQueries int
}

// DefaultSecurity matches the proving CLI defaults.
var DefaultSecurity = Security{MinRateInv: 4, MinNbQueries: 64}

func reject(stage string, err error) error {
	log.Debug().Str("stage", stage).Err(err).Msg("proof rejected")
	return ErrProofInvalid
}

// Verify checks a proof against a circuit and its public inputs. The
// proof's circuit identifier is compared first, then the declared
// commitment parameters are held to the caller's security floor, then
// the sumcheck stream is replayed through the shared constraint builder
// and the resulting constraints handed to the commitment verifier.
func Verify(c *circuit.Circuit, zp *circuit.ZkProof, public []fr.Element, sec Security) error {
	if err := c.Validate(); err != nil {
		return err
	}
	id, err := c.ID()
	if err != nil {
		return err
	}
	if zp.CircuitID != id {
		return reject("identity", fmt.Errorf("circuit identifier mismatch"))
	}
	if err := zp.Params.Validate(); err != nil {
		return reject("params", err)
	}
	if zp.Params.RateInv < sec.MinRateInv || zp.Params.NbQueries < sec.MinNbQueries {
		return reject("security", fmt.Errorf("declared rate^-1=%d queries=%d below floor rate^-1=%d queries=%d",
			zp.Params.RateInv, zp.Params.NbQueries, sec.MinRateInv, sec.MinNbQueries))
	}
	if len(public) != c.NbCopies()*int(c.NbPublicInputs) {
		return reject("public", fmt.Errorf("%d public values, want %d",
			len(public), c.NbCopies()*int(c.NbPublicInputs)))
	}

	lay := pad.NewLayout(c, zp.Params)
	if int(zp.Commitment.Total) != lay.Total {
		return reject("layout", fmt.Errorf("committed length %d, want %d", zp.Commitment.Total, lay.Total))
	}
	if len(zp.Sumcheck.Elems) != expectedStreamLen(c, lay) {
		return reject("stream", fmt.Errorf("%w: %d stream elements, want %d",
			transcript.ErrTranscriptDesync, len(zp.Sumcheck.Elems), expectedStreamLen(c, lay)))
	}
	if zp.Ligero == nil {
		return reject("ligero", fmt.Errorf("missing commitment proof"))
	}

	tr := transcript.New()
	sumcheck.BindPreamble(tr, id, zp.Params, public, zp.Commitment.Root)

	stream := zp.Sumcheck
	stream.Reset()
	cons, err := sumcheck.Run(c, lay, tr, &stream, public)
	if err != nil {
		return reject("sumcheck", err)
	}

	if err := ligero.Verify(tr, zp.Commitment, zp.Params, cons, lay.Triples(), zp.Ligero); err != nil {
		return reject("commitment", err)
	}
	return nil
}

func expectedStreamLen(c *circuit.Circuit, lay *pad.Layout) int {
	n := 0
	for i := 0; i < c.NbLayers(); i++ {
		n += 3*lay.CopyRounds() + 4*lay.WireRounds(i) + 2
	}
	return n
}
