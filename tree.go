package vdb

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

// minParallelWidth is the narrowest level that is split across workers.
const minParallelWidth = 4096

// Tree is a binary hash tree over an ordered leaf sequence.
//
// levels[0] holds the leaves and the last level holds the root. When a level
// has an odd number of nodes, the last node is paired with itself.
type Tree struct {
	digest string
	levels [][]common.Hash
}

// BuildTree builds a tree over leaves using digest for internal nodes. The
// optional workers pool splits wide levels into chunks hashed concurrently;
// the result is identical to a sequential build.
func BuildTree(digest string, leaves []common.Hash, workers *ants.Pool) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	newHash, err := lookupDigest(digest)
	if err != nil {
		return nil, err
	}
	hashers, err := NewHasherPool(newHash)
	if err != nil {
		return nil, err
	}
	copied := make([]common.Hash, len(leaves))
	copy(copied, leaves)
	return buildTree(digest, hashers, copied, workers), nil
}

// buildTree takes ownership of leaves, which must not be empty.
func buildTree(digest string, hashers *HasherPool, leaves []common.Hash, workers *ants.Pool) *Tree {
	levels := make([][]common.Hash, 0, treeDepth(uint64(len(leaves)))+1)
	levels = append(levels, leaves)
	for cur := leaves; len(cur) > 1; {
		next := make([]common.Hash, (len(cur)+1)/2)
		parallelFor(workers, len(next), func(lo, hi int) {
			h := hashers.Get()
			defer hashers.Put(h)
			for i := lo; i < hi; i++ {
				left := cur[2*i]
				right := left
				if 2*i+1 < len(cur) {
					right = cur[2*i+1]
				}
				next[i] = h.Node(left, right)
			}
		})
		levels = append(levels, next)
		cur = next
	}
	return &Tree{
		digest: digest,
		levels: levels,
	}
}

func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Size returns the number of leaves.
func (t *Tree) Size() uint64 {
	return uint64(len(t.levels[0]))
}

// Depth returns the length of every authentication path in the tree.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

func (t *Tree) Leaf(index uint64) (common.Hash, error) {
	if index >= t.Size() {
		return common.Hash{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", index, t.Size())
	}
	return t.levels[0][index], nil
}

// Path returns the authentication path of the leaf at index.
func (t *Tree) Path(index uint64) (*AuthPath, error) {
	if index >= t.Size() {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", index, t.Size())
	}
	return t.path(index), nil
}

func (t *Tree) path(index uint64) *AuthPath {
	depth := t.Depth()
	path := &AuthPath{
		Digest:   t.digest,
		Index:    index,
		Leaves:   t.Size(),
		Leaf:     t.levels[0][index],
		Siblings: make([]common.Hash, 0, depth),
		Left:     make([]bool, 0, depth),
	}
	i := index
	for _, level := range t.levels[:depth] {
		sibling := i ^ 1
		if sibling >= uint64(len(level)) {
			// padded: the last node of an odd level is its own sibling
			sibling = i
		}
		path.Siblings = append(path.Siblings, level[sibling])
		path.Left = append(path.Left, i%2 == 0)
		i >>= 1
	}
	return path
}

// treeDepth returns the number of levels above the leaves for n leaves.
func treeDepth(n uint64) int {
	depth := 0
	for w := n; w > 1; w = w/2 + w%2 {
		depth++
	}
	return depth
}

// levelWidth returns the number of nodes at level l of a tree with n leaves.
func levelWidth(n uint64, l int) uint64 {
	w := n
	for i := 0; i < l; i++ {
		w = w/2 + w%2
	}
	return w
}

// parallelFor calls fn over [0, n) in chunks. Without a pool, or for narrow
// ranges, fn runs once on the calling goroutine.
func parallelFor(workers *ants.Pool, n int, fn func(lo, hi int)) {
	if workers == nil || n < minParallelWidth {
		fn(0, n)
		return
	}
	chunks := workers.Cap()
	if chunks < 1 {
		chunks = 1
	}
	size := (n + chunks - 1) / chunks
	if size < minParallelWidth/4 {
		size = minParallelWidth / 4
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		lo := lo
		wg.Add(1)
		err := workers.Submit(func() {
			defer wg.Done()
			fn(lo, hi)
		})
		if err != nil {
			// pool released or overloaded, fall back to the caller
			wg.Done()
			fn(lo, hi)
		}
	}
	wg.Wait()
}
