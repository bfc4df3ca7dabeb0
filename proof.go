package vdb

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ProofEntry covers one address read or written by a transaction.
//
// OldValue is the committed value before the transaction and NewValue the
// value after it; they are equal unless Written is set. Path was taken from
// the tree before the writes were applied.
type ProofEntry struct {
	Address  uint64
	OldValue uint64
	NewValue uint64
	Written  bool
	Path     *AuthPath
}

// Proof is returned by Commit and lets a party holding only OldRoot check
// every value the transaction observed, and check that applying its writes
// leads to NewRoot. Entries are sorted by address.
type Proof struct {
	Version uint64
	Digest  string
	OldRoot common.Hash
	NewRoot common.Hash
	Entries []*ProofEntry
}

// Entry returns the entry for address.
func (p *Proof) Entry(address uint64) (*ProofEntry, bool) {
	i := sort.Search(len(p.Entries), func(i int) bool {
		return p.Entries[i].Address >= address
	})
	if i < len(p.Entries) && p.Entries[i].Address == address {
		return p.Entries[i], true
	}
	return nil, false
}

func (p *Proof) Addresses() []uint64 {
	addresses := make([]uint64, len(p.Entries))
	for i, entry := range p.Entries {
		addresses[i] = entry.Address
	}
	return addresses
}

// VerifyAddress checks that address holding claimed is a leaf under root,
// using the proof's pre-write path for address. The caller supplies the value
// it believes was committed; a mismatch returns false with a nil error.
func (p *Proof) VerifyAddress(address, claimed uint64, root common.Hash) (bool, error) {
	entry, ok := p.Entry(address)
	if !ok {
		return false, errors.Wrapf(ErrAddressNotInProof, "address %d", address)
	}
	hasher, err := p.hasher(entry)
	if err != nil {
		return false, err
	}
	return entry.Path.computeRoot(hasher, hasher.Leaf(address, claimed)) == root, nil
}

// Verify checks every entry's OldValue against OldRoot using the entry's own
// path. Entries must be in strictly ascending address order.
func (p *Proof) Verify() (bool, error) {
	for i, entry := range p.Entries {
		if i > 0 && entry.Address <= p.Entries[i-1].Address {
			return false, errors.Wrapf(ErrMalformedPath, "address %d out of order", entry.Address)
		}
		hasher, err := p.hasher(entry)
		if err != nil {
			return false, err
		}
		if entry.Path.computeRoot(hasher, hasher.Leaf(entry.Address, entry.OldValue)) != p.OldRoot {
			return false, nil
		}
	}
	return true, nil
}

// VerifyTransition checks the pre-state with Verify, then replays the writes
// over the pre-write paths and compares the recomputed root with NewRoot.
// Every changed leaf is covered by the proof, so any node off the covered
// paths is unchanged and its pre-state sibling hash can be reused.
func (p *Proof) VerifyTransition() (bool, error) {
	if ok, err := p.Verify(); err != nil || !ok {
		return false, err
	}
	if len(p.Entries) == 0 {
		return p.OldRoot == p.NewRoot, nil
	}

	leaves := p.Entries[0].Path.Leaves
	depth := len(p.Entries[0].Path.Siblings)
	hasher, err := NewDigestHasher(p.Digest)
	if err != nil {
		return false, err
	}

	current := make(map[uint64]common.Hash, len(p.Entries))
	siblings := make([]map[uint64]common.Hash, depth)
	for l := range siblings {
		siblings[l] = make(map[uint64]common.Hash)
	}
	for _, entry := range p.Entries {
		path := entry.Path
		if path.Leaves != leaves || path.Digest != p.Digest {
			return false, errors.Wrapf(ErrMalformedPath, "address %d taken from a different tree", entry.Address)
		}
		current[path.Index] = hasher.Leaf(entry.Address, entry.NewValue)
		index := path.Index
		for l := 0; l < depth; l++ {
			if !path.padded(l) {
				siblings[l][index^1] = path.Siblings[l]
			}
			index >>= 1
		}
	}

	for l := 0; l < depth; l++ {
		width := levelWidth(leaves, l)
		pick := func(index uint64) common.Hash {
			if h, ok := current[index]; ok {
				return h
			}
			return siblings[l][index]
		}
		next := make(map[uint64]common.Hash, (len(current)+1)/2)
		for index := range current {
			parent := index / 2
			if _, ok := next[parent]; ok {
				continue
			}
			left := pick(2 * parent)
			right := left
			if 2*parent+1 < width {
				right = pick(2*parent + 1)
			}
			next[parent] = hasher.Node(left, right)
		}
		current = next
	}
	return current[0] == p.NewRoot, nil
}

func (p *Proof) hasher(entry *ProofEntry) (*Hasher, error) {
	path := entry.Path
	if path == nil {
		return nil, errors.Wrapf(ErrMalformedPath, "address %d has no path", entry.Address)
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if path.Index != entry.Address {
		return nil, errors.Wrapf(ErrMalformedPath, "path index %d for address %d", path.Index, entry.Address)
	}
	return NewDigestHasher(path.Digest)
}
