package circuit

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"QuadZK/modules/ligero"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Proof is the sumcheck message stream, a flat element array consumed
// through a cursor. The element order is fixed by the protocol, so no
// framing is needed.
type Proof struct {
	Idx   int
	Elems []fr.Element
}

func (p *Proof) Append(fs ...fr.Element) {
	p.Elems = append(p.Elems, fs...)
}

// Next returns the element under the cursor and advances. Callers check
// Remaining first; overruns are a programming error.
func (p *Proof) Next() fr.Element {
	e := p.Elems[p.Idx]
	p.Idx++
	return e
}

func (p *Proof) Remaining() int {
	return len(p.Elems) - p.Idx
}

func (p *Proof) Reset() {
	p.Idx = 0
}

// ZkProof is the complete proof: the sumcheck stream plus the
// commitment and its opening proof, tagged with the circuit identifier
// and the commitment parameters it was produced under.
type ZkProof struct {
	CircuitID  [32]byte
	Params     ligero.Params
	Commitment ligero.Commitment
	Sumcheck   Proof
	Ligero     *ligero.Proof
}

// WriteTo serializes the proof. Wire counts are sanity-capped on read
// and re-derived from the circuit and parameters during verification.
func (zp *ZkProof) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	if err := binary.Write(bw, binary.LittleEndian, proofMagic); err != nil {
		return cw.n, err
	}
	if err := writeModulus(bw); err != nil {
		return cw.n, err
	}
	if _, err := bw.Write(zp.CircuitID[:]); err != nil {
		return cw.n, err
	}

	header := []uint32{
		uint32(zp.Params.Width), uint32(zp.Params.SlotLog),
		uint32(zp.Params.RateInv), uint32(zp.Params.NbQueries),
		zp.Commitment.Total, uint32(len(zp.Sumcheck.Elems)),
	}
	for _, h := range header {
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return cw.n, err
		}
	}
	if _, err := bw.Write(zp.Commitment.Root[:]); err != nil {
		return cw.n, err
	}
	for i := range zp.Sumcheck.Elems {
		if err := writeElem(bw, &zp.Sumcheck.Elems[i]); err != nil {
			return cw.n, err
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	if _, err := zp.Ligero.WriteTo(cw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadZkProofFrom parses a serialized proof.
func ReadZkProofFrom(r io.Reader) (*ZkProof, error) {
	br := bufio.NewReader(r)

	var magic uint64
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != proofMagic {
		return nil, fmt.Errorf("%w: bad proof magic", ErrMalformedCircuit)
	}
	if err := checkModulus(br); err != nil {
		return nil, err
	}

	zp := &ZkProof{}
	if _, err := io.ReadFull(br, zp.CircuitID[:]); err != nil {
		return nil, err
	}

	var header [6]uint32
	for i := range header {
		if err := binary.Read(br, binary.LittleEndian, &header[i]); err != nil {
			return nil, err
		}
	}
	zp.Params = ligero.Params{
		Width:     int(header[0]),
		SlotLog:   uint(header[1]),
		RateInv:   int(header[2]),
		NbQueries: int(header[3]),
	}
	zp.Commitment.Total = header[4]
	nbElems := header[5]
	if nbElems > 1<<24 {
		return nil, fmt.Errorf("%w: unreasonable proof size", ErrMalformedCircuit)
	}
	if _, err := io.ReadFull(br, zp.Commitment.Root[:]); err != nil {
		return nil, err
	}

	zp.Sumcheck.Elems = make([]fr.Element, nbElems)
	for i := range zp.Sumcheck.Elems {
		if err := readElem(br, &zp.Sumcheck.Elems[i]); err != nil {
			return nil, err
		}
	}

	lp, err := ligero.ReadProofFrom(br)
	if err != nil {
		return nil, err
	}
	zp.Ligero = lp
	return zp, nil
}

func ReadZkProofFile(path string) (*ZkProof, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadZkProofFrom(f)
}
