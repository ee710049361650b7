// Package prover orchestrates proof generation: Commit evaluates the
// circuit and commits the extended witness, Prove runs the live
// sumcheck, replays it through the shared constraint builder and
// finishes with the commitment tests.
package prover

import (
	"fmt"

	"QuadZK/modules/circuit"
	"QuadZK/modules/ligero"
	"QuadZK/modules/pad"
	"QuadZK/modules/rng"
	"QuadZK/modules/sumcheck"
	"QuadZK/modules/transcript"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// State is the output of Commit and the input of Prove. It holds the
// full extended witness and must not outlive the proving session.
type State struct {
	Params ligero.Params
	Layout *pad.Layout
	Vec    []fr.Element
	Values []*circuit.Dense
	Public []fr.Element
	LP     *ligero.Prover

	// Progress, when set, is called after each proven layer.
	Progress func(done, total int)
}

// DefaultParams picks a commitment row geometry sized for the circuit's
// extended witness.
func DefaultParams(c *circuit.Circuit, rateInv, nbQueries int) (ligero.Params, error) {
	est := c.NbCopies() << c.LogInputs
	for i := 0; i < c.NbLayers(); i++ {
		est += 3*int(c.LogCopies) + 4*int(c.OperandLog(i))
	}
	est += 3 * c.NbLayers()
	return ligero.NewParams(est, rateInv, nbQueries)
}

// Commit evaluates the circuit on the witness, rejecting on any nonzero
// output wire, then samples all zero-knowledge padding and commits the
// extended witness.
func Commit(c *circuit.Circuit, inputs *circuit.Dense, p ligero.Params, src rng.Source) (*State, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if inputs.NbCopies != c.NbCopies() || inputs.RowLen != 1<<c.LogInputs {
		return nil, fmt.Errorf("%w: witness shape %dx%d does not match circuit",
			circuit.ErrMalformedCircuit, inputs.NbCopies, inputs.RowLen)
	}

	values, err := c.Evaluate(inputs)
	if err != nil {
		return nil, err
	}

	lay := pad.NewLayout(c, p)
	vec := lay.Sample(inputs, src)
	lp, err := ligero.Commit(vec, lay.Triples(), p, src)
	if err != nil {
		return nil, err
	}

	return &State{
		Params: p,
		Layout: lay,
		Vec:    vec,
		Values: values,
		Public: circuit.PublicValues(c, inputs),
		LP:     lp,
	}, nil
}

// Prove runs the sumcheck over every layer, then replays its own
// message stream through the constraint builder. The replay both
// collects the linear constraints for the commitment tests and lands
// the transcript in the exact state the verifier's will be in, which is
// what keeps the two sides bit-identical.
func Prove(c *circuit.Circuit, st *State) (*circuit.ZkProof, error) {
	id, err := c.ID()
	if err != nil {
		return nil, err
	}
	comm := st.LP.Commitment()
	nl := c.NbLayers()

	tr := transcript.New()
	sumcheck.BindPreamble(tr, id, st.Params, st.Public, comm.Root)

	qw := tr.ChallengeFs(c.LogOutputs)
	gamma := tr.ChallengeFs(c.LogCopies)
	claim := sumcheck.Claim{CopyPoint: gamma, LPoint: qw}

	var stream circuit.Proof
	for i := 0; i < nl; i++ {
		res := sumcheck.ProveLayer(tr, &stream, c.Layers[i].Terms, st.Values[i+1], claim, st.layerPads(i))
		if i < nl-1 {
			alpha := tr.ChallengeF()
			var v fr.Element
			v.Mul(&alpha, &res.Vr)
			v.Add(&v, &res.Vl)
			claim = sumcheck.Claim{
				CopyPoint: res.CopyPoint,
				LPoint:    res.LPoint,
				RPoint:    res.RPoint,
				Alpha:     alpha,
				Value:     v,
			}
		}
		if st.Progress != nil {
			st.Progress(i+1, nl)
		}
	}

	replay := transcript.New()
	sumcheck.BindPreamble(replay, id, st.Params, st.Public, comm.Root)
	stream.Reset()
	cons, err := sumcheck.Run(c, st.Layout, replay, &stream, st.Public)
	if err != nil {
		return nil, err
	}
	if stream.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing elements after replay", sumcheck.ErrSumcheckMismatch, stream.Remaining())
	}

	lp, err := st.LP.Prove(replay, cons, st.Layout.Triples())
	if err != nil {
		return nil, err
	}

	stream.Reset()
	return &circuit.ZkProof{
		CircuitID:  id,
		Params:     st.Params,
		Commitment: comm,
		Sumcheck:   stream,
		Ligero:     lp,
	}, nil
}

func (st *State) layerPads(layer int) sumcheck.LayerPads {
	lay := st.Layout
	rounds := make([][]fr.Element, lay.NbRounds(layer))
	for r := range rounds {
		nb := 2
		if r < lay.CopyRounds() {
			nb = 3
		}
		row := make([]fr.Element, nb)
		for k := range row {
			row[k] = st.Vec[lay.RoundPadIdx(layer, r, k)]
		}
		rounds[r] = row
	}
	return sumcheck.LayerPads{
		Rounds: rounds,
		Pvl:    st.Vec[lay.PvlIdx(layer)],
		Pvr:    st.Vec[lay.PvrIdx(layer)],
	}
}
