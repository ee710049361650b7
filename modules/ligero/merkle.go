package ligero

import (
	"bytes"
	"crypto/sha256"
)

// merkleTree is a full binary Merkle tree of 32-byte hashes over the
// codeword columns. Leaves beyond the populated range hash the empty
// string, so the tree is always balanced.
type merkleTree struct {
	layers [][][32]byte
}

func buildMerkleTree(leaves [][]byte) *merkleTree {
	n := len(leaves)
	size := 1
	for size < n {
		size <<= 1
	}
	layer := make([][32]byte, size)
	for i := 0; i < n; i++ {
		layer[i] = sha256.Sum256(leaves[i])
	}
	for i := n; i < size; i++ {
		layer[i] = sha256.Sum256(nil)
	}
	layers := [][][32]byte{layer}

	for sz := size; sz > 1; sz >>= 1 {
		prev := layers[len(layers)-1]
		next := make([][32]byte, sz/2)
		for i := 0; i < sz; i += 2 {
			h := sha256.New()
			h.Write(prev[i][:])
			h.Write(prev[i+1][:])
			copy(next[i/2][:], h.Sum(nil))
		}
		layers = append(layers, next)
	}

	return &merkleTree{layers: layers}
}

func (mt *merkleTree) root() [32]byte {
	return mt.layers[len(mt.layers)-1][0]
}

// path returns the sibling hashes from leaf idx up to the root.
func (mt *merkleTree) path(idx int) [][]byte {
	path := make([][]byte, len(mt.layers)-1)
	for lvl := 0; lvl < len(mt.layers)-1; lvl++ {
		sib := mt.layers[lvl][idx^1]
		path[lvl] = append([]byte(nil), sib[:]...)
		idx >>= 1
	}
	return path
}

// verifyPath recomputes the root from a leaf and its sibling path.
func verifyPath(leaf []byte, path [][]byte, root [32]byte, idx int) bool {
	h := sha256.Sum256(leaf)
	for _, sib := range path {
		hh := sha256.New()
		if idx&1 == 0 {
			hh.Write(h[:])
			hh.Write(sib)
		} else {
			hh.Write(sib)
			hh.Write(h[:])
		}
		copy(h[:], hh.Sum(nil))
		idx >>= 1
	}
	return bytes.Equal(h[:], root[:])
}
