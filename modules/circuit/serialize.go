package circuit

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	circuitMagic uint64 = 0x31544b4344415551 // b"QUADCKT1"
	witnessMagic uint64 = 0x314e544957445a51 // b"QZDWITN1", witness files
	proofMagic   uint64 = 0x31464f5250445a51 // b"QZDPROF1", proof files
)

// LeadingFieldBytes is the serialized width of the field modulus
// prefix: every file starts with the modulus of the field it was
// produced over, and readers reject files from a different field.
const LeadingFieldBytes = 32

func writeModulus(w io.Writer) error {
	var mod [LeadingFieldBytes]byte
	fr.Modulus().FillBytes(mod[:])
	_, err := w.Write(mod[:])
	return err
}

func checkModulus(r io.Reader) error {
	var mod [LeadingFieldBytes]byte
	if _, err := io.ReadFull(r, mod[:]); err != nil {
		return err
	}
	var want [LeadingFieldBytes]byte
	fr.Modulus().FillBytes(want[:])
	if mod != want {
		return fmt.Errorf("%w: field modulus mismatch", ErrMalformedCircuit)
	}
	return nil
}

func writeElem(w io.Writer, e *fr.Element) error {
	_, err := w.Write(e.Marshal())
	return err
}

func readElem(r io.Reader, e *fr.Element) error {
	var buf [fr.Bytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	return e.SetBytesCanonical(buf[:])
}

// WriteTo emits the canonical circuit serialization. The circuit
// identifier is the SHA-256 of exactly these bytes.
func (c *Circuit) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	if err := binary.Write(bw, binary.LittleEndian, circuitMagic); err != nil {
		return cw.n, err
	}
	if err := writeModulus(bw); err != nil {
		return cw.n, err
	}

	header := []uint32{
		uint32(c.LogOutputs), uint32(c.LogCopies),
		uint32(c.NbInputs), uint32(c.LogInputs), uint32(c.NbPublicInputs),
		uint32(len(c.Layers)),
	}
	for _, h := range header {
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return cw.n, err
		}
	}

	for i := range c.Layers {
		layer := &c.Layers[i]
		if err := binary.Write(bw, binary.LittleEndian, uint32(layer.LogWires)); err != nil {
			return cw.n, err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(layer.Terms))); err != nil {
			return cw.n, err
		}
		for _, t := range layer.Terms {
			for _, v := range []uint32{t.Gate, t.L, t.R} {
				if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
					return cw.n, err
				}
			}
			if err := writeElem(bw, &t.Coef); err != nil {
				return cw.n, err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadCircuitFrom parses a canonical circuit serialization and
// validates it.
func ReadCircuitFrom(r io.Reader) (*Circuit, error) {
	br := bufio.NewReader(r)

	var magic uint64
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != circuitMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedCircuit)
	}
	if err := checkModulus(br); err != nil {
		return nil, err
	}

	var header [6]uint32
	for i := range header {
		if err := binary.Read(br, binary.LittleEndian, &header[i]); err != nil {
			return nil, err
		}
	}

	c := &Circuit{
		LogOutputs:     uint(header[0]),
		LogCopies:      uint(header[1]),
		NbInputs:       uint(header[2]),
		LogInputs:      uint(header[3]),
		NbPublicInputs: uint(header[4]),
	}
	nbLayers := header[5]
	if nbLayers > 1<<20 {
		return nil, fmt.Errorf("%w: unreasonable layer count %d", ErrMalformedCircuit, nbLayers)
	}
	c.Layers = make([]Layer, nbLayers)

	for i := range c.Layers {
		var logWires, nbTerms uint32
		if err := binary.Read(br, binary.LittleEndian, &logWires); err != nil {
			return nil, err
		}
		if err := binary.Read(br, binary.LittleEndian, &nbTerms); err != nil {
			return nil, err
		}
		c.Layers[i].LogWires = uint(logWires)
		c.Layers[i].Terms = make(Quad, nbTerms)
		for j := range c.Layers[i].Terms {
			t := &c.Layers[i].Terms[j]
			for _, v := range []*uint32{&t.Gate, &t.L, &t.R} {
				if err := binary.Read(br, binary.LittleEndian, v); err != nil {
					return nil, err
				}
			}
			if err := readElem(br, &t.Coef); err != nil {
				return nil, err
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Circuit) computeID() ([32]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// WriteTo serializes a dense value array (witness files).
func (d *Dense) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	if err := binary.Write(bw, binary.LittleEndian, witnessMagic); err != nil {
		return cw.n, err
	}
	if err := writeModulus(bw); err != nil {
		return cw.n, err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(d.NbCopies)); err != nil {
		return cw.n, err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(d.RowLen)); err != nil {
		return cw.n, err
	}
	for i := range d.V {
		if err := writeElem(bw, &d.V[i]); err != nil {
			return cw.n, err
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadDenseFrom parses a witness file.
func ReadDenseFrom(r io.Reader) (*Dense, error) {
	br := bufio.NewReader(r)

	var magic uint64
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != witnessMagic {
		return nil, fmt.Errorf("%w: bad witness magic", ErrMalformedCircuit)
	}
	if err := checkModulus(br); err != nil {
		return nil, err
	}

	var nbCopies, rowLen uint32
	if err := binary.Read(br, binary.LittleEndian, &nbCopies); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &rowLen); err != nil {
		return nil, err
	}
	if uint64(nbCopies)*uint64(rowLen) > 1<<32 {
		return nil, fmt.Errorf("%w: unreasonable witness size", ErrMalformedCircuit)
	}

	d := NewDense(int(nbCopies), int(rowLen))
	for i := range d.V {
		if err := readElem(br, &d.V[i]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func ReadCircuitFile(path string) (*Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCircuitFrom(f)
}

func ReadDenseFile(path string) (*Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDenseFrom(f)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
