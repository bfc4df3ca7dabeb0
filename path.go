package vdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// maxPathDepth bounds paths over a 64-bit address space.
const maxPathDepth = 64

// AuthPath proves membership of one leaf under a root.
//
// Siblings[i] is the sibling hash at level i, counted from the leaves, and
// Left[i] reports whether the node on the path is the left child at that
// level. Leaves is the number of leaves of the tree the path was taken from.
type AuthPath struct {
	Digest   string
	Index    uint64
	Leaves   uint64
	Leaf     common.Hash
	Siblings []common.Hash
	Left     []bool
}

// Verify recomputes the root from the path's own leaf hash.
// A mismatch returns false with a nil error; a structurally invalid path
// returns ErrMalformedPath.
func (p *AuthPath) Verify(root common.Hash) (bool, error) {
	return p.VerifyLeaf(p.Leaf, root)
}

// VerifyLeaf is like Verify but starts from a caller-supplied leaf hash.
func (p *AuthPath) VerifyLeaf(leaf, root common.Hash) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	hasher, err := NewDigestHasher(p.Digest)
	if err != nil {
		return false, err
	}
	return p.computeRoot(hasher, leaf) == root, nil
}

// Validate checks the path's shape against its index and tree size.
func (p *AuthPath) Validate() error {
	if len(p.Siblings) != len(p.Left) {
		return errors.Wrapf(ErrMalformedPath, "%d siblings, %d directions", len(p.Siblings), len(p.Left))
	}
	if len(p.Siblings) > maxPathDepth {
		return errors.Wrapf(ErrMalformedPath, "depth %d", len(p.Siblings))
	}
	if p.Index >= p.Leaves {
		return errors.Wrapf(ErrMalformedPath, "index %d, leaves %d", p.Index, p.Leaves)
	}
	if depth := treeDepth(p.Leaves); depth != len(p.Siblings) {
		return errors.Wrapf(ErrMalformedPath, "depth %d, want %d", len(p.Siblings), depth)
	}
	for i, left := range p.Left {
		if left != ((p.Index>>uint(i))&1 == 0) {
			return errors.Wrapf(ErrMalformedPath, "direction mismatch at level %d", i)
		}
	}
	return nil
}

func (p *AuthPath) computeRoot(hasher *Hasher, leaf common.Hash) common.Hash {
	node := leaf
	for i, sibling := range p.Siblings {
		if p.padded(i) {
			sibling = node
		}
		if p.Left[i] {
			node = hasher.Node(node, sibling)
		} else {
			node = hasher.Node(sibling, node)
		}
	}
	return node
}

// padded reports whether the path node at level l is the unpaired last node
// of its level, in which case its sibling is itself.
func (p *AuthPath) padded(l int) bool {
	index := p.Index >> uint(l)
	return index%2 == 0 && index+1 == levelWidth(p.Leaves, l)
}

// Copy returns a deep copy of the path.
func (p *AuthPath) Copy() *AuthPath {
	siblings := make([]common.Hash, len(p.Siblings))
	copy(siblings, p.Siblings)
	left := make([]bool, len(p.Left))
	copy(left, p.Left)
	return &AuthPath{
		Digest:   p.Digest,
		Index:    p.Index,
		Leaves:   p.Leaves,
		Leaf:     p.Leaf,
		Siblings: siblings,
		Left:     left,
	}
}
