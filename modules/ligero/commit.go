package ligero

import (
	"encoding/binary"
	"fmt"
	"runtime"

	"QuadZK/modules/rng"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"golang.org/x/sync/errgroup"
)

// RowTriple names three column-aligned data rows under the quadratic
// test: every slot must satisfy x*y = z. The extended-witness layout is
// responsible for producing vectors that respect this alignment.
type RowTriple struct {
	X, Y, Z int
}

// Commitment is the public part of a Ligero commitment.
type Commitment struct {
	Root  [32]byte
	Total uint32 // committed vector length, data cells only
}

// Prover holds the committed tableau between Commit and Prove.
type Prover struct {
	params     Params
	nbDataRows int

	rows      [][]fr.Element // W slots per row: data, then blinding fill
	coeffs    [][]fr.Element
	codewords [][]fr.Element
	tree      *merkleTree

	domainW, domainN, domain2W *fft.Domain

	comm Commitment
}

// Mask row order, appended after the data rows. The dot response has 2W
// coefficients, so it carries two mask rows: one entering directly and
// one shifted by X^W, with only the sum of their row sums revealed.
const (
	ldtMaskOff   = iota // blinds the low-degree test combination
	dotMaskOff          // blinds the low half of the dot response
	dotHiMaskOff        // blinds the high half, riding on X^W
	rhoMaskOff          // blinds the quadratic response as (X^W-1)*rho
	nbMaskRows
)

func (pr *Prover) Commitment() Commitment { return pr.comm }

func (p Params) nbRows(totalLen int) int { return p.NbDataRows(totalLen) + nbMaskRows }

// Commit reshapes vec into the tableau, samples the blinding fill and
// mask rows, Reed-Solomon encodes every row and hashes the codeword
// columns into a Merkle tree. Row encoding and column hashing run in
// parallel; all randomness is drawn sequentially up front so the
// commitment is a deterministic function of (vec, params, src).
func Commit(vec []fr.Element, quad []RowTriple, p Params, src rng.Source) (*Prover, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(vec)%p.Width != 0 {
		return nil, fmt.Errorf("%w: vector length %d not a multiple of row width %d",
			ErrLigeroTestFailure, len(vec), p.Width)
	}

	w, W, n := p.Width, p.Slots(), p.CodewordLen()
	nd := p.NbDataRows(len(vec))
	nbRows := nd + nbMaskRows

	pr := &Prover{
		params:     p,
		nbDataRows: nd,
		rows:       make([][]fr.Element, nbRows),
		coeffs:     make([][]fr.Element, nbRows),
		codewords:  make([][]fr.Element, nbRows),
		domainW:    fft.NewDomain(uint64(W)),
		domainN:    fft.NewDomain(uint64(n)),
		domain2W:   fft.NewDomain(uint64(2 * W)),
	}

	for i := 0; i < nd; i++ {
		row := make([]fr.Element, W)
		copy(row[:w], vec[i*w:(i+1)*w])
		for j := w; j < W; j++ {
			row[j] = src.Element()
		}
		pr.rows[i] = row
	}
	// Aligned quadratic rows must satisfy x*y = z on the blinding fill
	// as well, otherwise the row-wise quadratic identity breaks there.
	for _, t := range quad {
		for j := w; j < W; j++ {
			pr.rows[t.Z][j].Mul(&pr.rows[t.X][j], &pr.rows[t.Y][j])
		}
	}
	for i := nd; i < nbRows; i++ {
		row := make([]fr.Element, W)
		for j := range row {
			row[j] = src.Element()
		}
		pr.rows[i] = row
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < nbRows; i++ {
		i := i
		g.Go(func() error {
			pr.coeffs[i] = interpolateRow(pr.domainW, pr.rows[i])
			pr.codewords[i] = encodeRow(pr.domainN, pr.coeffs[i])
			return nil
		})
	}
	g.Wait()

	leaves := make([][]byte, n)
	for j := 0; j < n; j++ {
		j := j
		g.Go(func() error {
			leaves[j] = pr.leafBytes(j)
			return nil
		})
	}
	g.Wait()

	pr.tree = buildMerkleTree(leaves)
	pr.comm = Commitment{Root: pr.tree.root(), Total: uint32(len(vec))}
	return pr, nil
}

func (pr *Prover) leafBytes(col int) []byte {
	buf := make([]byte, 4+len(pr.codewords)*fr.Bytes)
	binary.LittleEndian.PutUint32(buf, uint32(col))
	for i := range pr.codewords {
		b := pr.codewords[i][col].Bytes()
		copy(buf[4+i*fr.Bytes:], b[:])
	}
	return buf
}

func columnLeafBytes(col int, values []fr.Element) []byte {
	buf := make([]byte, 4+len(values)*fr.Bytes)
	binary.LittleEndian.PutUint32(buf, uint32(col))
	for i := range values {
		b := values[i].Bytes()
		copy(buf[4+i*fr.Bytes:], b[:])
	}
	return buf
}
