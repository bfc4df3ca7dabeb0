// Copyright 2022 bnb-chain. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package vdb

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	DigestSHA256    = "sha256"
	DigestKeccak256 = "keccak256"

	// leafSize is the fixed-width leaf encoding: be64(address) || be64(value).
	leafSize = 16
)

var (
	digestLock sync.RWMutex
	digests    = map[string]func() hash.Hash{
		DigestSHA256:    sha256.New,
		DigestKeccak256: sha3.NewLegacyKeccak256,
	}
)

// RegisterDigest makes a digest function available under name, so that
// stores can be configured with it and proofs naming it can be verified.
func RegisterDigest(name string, newHash func() hash.Hash) error {
	if name == "" || newHash == nil {
		return errors.Wrap(ErrUnknownDigest, "empty digest registration")
	}
	if size := newHash().Size(); size != common.HashLength {
		return errors.Wrapf(ErrInvalidDigestSize, "%s produces %d bytes", name, size)
	}
	digestLock.Lock()
	defer digestLock.Unlock()
	digests[name] = newHash
	return nil
}

// Digests returns the names of all registered digest functions.
func Digests() []string {
	digestLock.RLock()
	defer digestLock.RUnlock()
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDigest(name string) (func() hash.Hash, error) {
	digestLock.RLock()
	defer digestLock.RUnlock()
	newHash, ok := digests[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDigest, "%q", name)
	}
	return newHash, nil
}

// NewDigestHasher returns a hasher for a registered digest name.
func NewDigestHasher(name string) (*Hasher, error) {
	newHash, err := lookupDigest(name)
	if err != nil {
		return nil, err
	}
	return NewHasher(newHash())
}

func NewHasher(hasher hash.Hash) (*Hasher, error) {
	if hasher.Size() != common.HashLength {
		return nil, errors.Wrapf(ErrInvalidDigestSize, "got %d bytes", hasher.Size())
	}
	return &Hasher{
		hasher: hasher,
	}, nil
}

// Hasher is not safe for concurrent use; take one from a HasherPool per goroutine.
type Hasher struct {
	hasher hash.Hash
	buf    [leafSize]byte
}

func (h *Hasher) Hash(inputs ...[]byte) common.Hash {
	h.hasher.Reset()
	for i := range inputs {
		h.hasher.Write(inputs[i])
	}
	return common.BytesToHash(h.hasher.Sum(nil))
}

// Leaf returns Hash(be64(address) || be64(value)).
func (h *Hasher) Leaf(address, value uint64) common.Hash {
	binary.BigEndian.PutUint64(h.buf[:8], address)
	binary.BigEndian.PutUint64(h.buf[8:], value)
	return h.Hash(h.buf[:])
}

// Node returns Hash(left || right).
func (h *Hasher) Node(left, right common.Hash) common.Hash {
	return h.Hash(left[:], right[:])
}

// HasherPool hands out hashers to concurrent rebuild workers.
type HasherPool struct {
	pool sync.Pool
}

func NewHasherPool(newHash func() hash.Hash) (*HasherPool, error) {
	if size := newHash().Size(); size != common.HashLength {
		return nil, errors.Wrapf(ErrInvalidDigestSize, "got %d bytes", size)
	}
	return &HasherPool{
		pool: sync.Pool{
			New: func() interface{} {
				return &Hasher{hasher: newHash()}
			},
		},
	}, nil
}

func (p *HasherPool) Get() *Hasher {
	return p.pool.Get().(*Hasher)
}

func (p *HasherPool) Put(h *Hasher) {
	p.pool.Put(h)
}

func (p *HasherPool) Hash(inputs ...[]byte) common.Hash {
	h := p.Get()
	defer p.Put(h)
	return h.Hash(inputs...)
}

func (p *HasherPool) Leaf(address, value uint64) common.Hash {
	h := p.Get()
	defer p.Put(h)
	return h.Leaf(address, value)
}
