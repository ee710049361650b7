package ligero

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// SparseTerm is one coefficient of a linear constraint, addressing the
// committed vector by flat index.
type SparseTerm struct {
	Idx  int
	Coef fr.Element
}

// LinearConstraint asserts sum_t Coef_t * vec[Idx_t] = B over the
// committed vector.
type LinearConstraint struct {
	Terms []SparseTerm
	B     fr.Element
}

// Proof carries the three test responses and the opened columns.
type Proof struct {
	// U is the low-degree test response, W coefficients.
	U []fr.Element

	// DotQ is the dot-product test response, 2W coefficients, every one
	// blinded by one of the two dot mask rows. S0 is the sum of both
	// mask rows' slots, the one revealed relation the global check
	// consumes.
	DotQ []fr.Element
	S0   fr.Element

	// QuadQ is the quadratic test response, 2W coefficients.
	QuadQ []fr.Element

	// Columns[t] holds one codeword cell per tableau row for the t-th
	// opened column; Paths[t] is its Merkle path.
	Columns [][]fr.Element
	Paths   [][][]byte
}

func writeElems(w io.Writer, es []fr.Element) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(es))); err != nil {
		return err
	}
	for i := range es {
		if _, err := w.Write(es[i].Marshal()); err != nil {
			return err
		}
	}
	return nil
}

func readElems(r io.Reader, maxLen uint32) ([]fr.Element, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxLen {
		return nil, fmt.Errorf("%w: unreasonable element count %d", ErrLigeroTestFailure, n)
	}
	es := make([]fr.Element, n)
	var buf [fr.Bytes]byte
	for i := range es {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		if err := es[i].SetBytesCanonical(buf[:]); err != nil {
			return nil, err
		}
	}
	return es, nil
}

// WriteTo serializes the proof. The layout is self-describing so the
// reader needs no parameters, but Verify still checks every length
// against the commitment shape.
func (p *Proof) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	if err := writeElems(bw, p.U); err != nil {
		return cw.n, err
	}
	if err := writeElems(bw, p.DotQ); err != nil {
		return cw.n, err
	}
	if _, err := bw.Write(p.S0.Marshal()); err != nil {
		return cw.n, err
	}
	if err := writeElems(bw, p.QuadQ); err != nil {
		return cw.n, err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(p.Columns))); err != nil {
		return cw.n, err
	}
	for t := range p.Columns {
		if err := writeElems(bw, p.Columns[t]); err != nil {
			return cw.n, err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(p.Paths[t]))); err != nil {
			return cw.n, err
		}
		for _, node := range p.Paths[t] {
			if _, err := bw.Write(node); err != nil {
				return cw.n, err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

const (
	maxProofElems = 1 << 24
	maxProofItems = 1 << 16
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// ReadProofFrom parses a serialized proof.
func ReadProofFrom(r io.Reader) (*Proof, error) {
	br := bufio.NewReader(r)
	p := &Proof{}

	var err error
	if p.U, err = readElems(br, maxProofElems); err != nil {
		return nil, err
	}
	if p.DotQ, err = readElems(br, maxProofElems); err != nil {
		return nil, err
	}
	var buf [fr.Bytes]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return nil, err
	}
	if err := p.S0.SetBytesCanonical(buf[:]); err != nil {
		return nil, err
	}
	if p.QuadQ, err = readElems(br, maxProofElems); err != nil {
		return nil, err
	}

	var nbCols uint32
	if err := binary.Read(br, binary.LittleEndian, &nbCols); err != nil {
		return nil, err
	}
	if nbCols > maxProofItems {
		return nil, fmt.Errorf("%w: unreasonable column count %d", ErrLigeroTestFailure, nbCols)
	}
	p.Columns = make([][]fr.Element, nbCols)
	p.Paths = make([][][]byte, nbCols)
	for t := range p.Columns {
		if p.Columns[t], err = readElems(br, maxProofElems); err != nil {
			return nil, err
		}
		var depth uint32
		if err := binary.Read(br, binary.LittleEndian, &depth); err != nil {
			return nil, err
		}
		if depth > 64 {
			return nil, fmt.Errorf("%w: unreasonable path depth %d", ErrMerklePathInvalid, depth)
		}
		p.Paths[t] = make([][]byte, depth)
		for lvl := range p.Paths[t] {
			node := make([]byte, 32)
			if _, err := io.ReadFull(br, node); err != nil {
				return nil, err
			}
			p.Paths[t][lvl] = node
		}
	}
	return p, nil
}
