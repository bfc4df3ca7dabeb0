package vdb

import (
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"github.com/bnb-chain/zkbnb-vdb/metrics"
)

var _ VerifiableStore = (*Store)(nil)

// Store is a dense key-value address space committed to by a hash tree.
// Every address in [0, Size()) exists from creation with value zero.
//
// The tree is rebuilt in full on every commit, so commit latency is linear in
// the address space regardless of how many addresses a transaction touched.
type Store struct {
	// txnLock is held by the open Transaction, from Begin to Commit or Discard.
	txnLock sync.Mutex

	values  []uint64
	tree    *Tree
	hashers *HasherPool
	workers *ants.Pool

	// metaLock guards root and version for readers outside a transaction.
	metaLock sync.RWMutex
	root     common.Hash
	version  uint64
	history  *rootHistory

	size           uint64
	digest         string
	rebuildWorkers int
	historySize    int
	unverified     bool
	metrics        metrics.Metrics
	logger         log.Logger
}

// NewStore creates a store with every address set to zero and builds the
// initial commitment.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		size:        DefaultAddressSpace,
		digest:      DigestSHA256,
		historySize: DefaultRootHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New("module", "vdb")
	}
	if s.size == 0 {
		return nil, ErrInvalidAddressSpace
	}
	// two tree generations of hashes per address must stay addressable
	if s.size > uint64(math.MaxInt/(2*2*common.HashLength)) {
		return nil, errors.Wrapf(ErrInvalidAddressSpace, "size %d", s.size)
	}

	newHash, err := lookupDigest(s.digest)
	if err != nil {
		return nil, err
	}
	if s.hashers, err = NewHasherPool(newHash); err != nil {
		return nil, err
	}
	if s.history, err = newRootHistory(s.historySize); err != nil {
		return nil, err
	}
	if s.rebuildWorkers > 1 && !s.unverified {
		if s.workers, err = ants.NewPool(s.rebuildWorkers, ants.WithPreAlloc(true)); err != nil {
			return nil, errors.Wrap(ErrInvalidOption, err.Error())
		}
	}

	s.values = make([]uint64, s.size)
	if !s.unverified {
		s.rebuild()
		s.root = s.tree.Root()
	}
	s.history.add(0, s.root)

	s.logger.Debug("Created verifiable store", "size", s.size, "digest", s.digest,
		"workers", s.rebuildWorkers, "verified", !s.unverified, "root", s.root.Hex())
	return s, nil
}

// Begin blocks until no other transaction is open and returns a transaction
// holding exclusive access to the store. The caller must Commit or Discard it.
func (s *Store) Begin() *Transaction {
	start := time.Now()
	s.txnLock.Lock()
	if s.metrics != nil {
		s.metrics.LockWait(time.Since(start))
	}
	return newTransaction(s)
}

func (s *Store) Root() common.Hash {
	s.metaLock.RLock()
	defer s.metaLock.RUnlock()
	return s.root
}

// Version returns the number of commits applied since creation.
func (s *Store) Version() uint64 {
	s.metaLock.RLock()
	defer s.metaLock.RUnlock()
	return s.version
}

// RootAt returns the root committed at version, if it is still remembered.
func (s *Store) RootAt(version uint64) (common.Hash, bool) {
	s.metaLock.RLock()
	defer s.metaLock.RUnlock()
	if version == s.version {
		return s.root, true
	}
	if version > s.version {
		return common.Hash{}, false
	}
	return s.history.get(version)
}

func (s *Store) Size() uint64 {
	return s.size
}

func (s *Store) DigestName() string {
	return s.digest
}

// Verified reports whether commits produce proofs.
func (s *Store) Verified() bool {
	return !s.unverified
}

// Close releases the rebuild workers. The store must not be used afterwards.
func (s *Store) Close() {
	if s.workers != nil {
		s.workers.Release()
	}
}

func (s *Store) checkAddress(address uint64) error {
	if address >= s.size {
		return errors.Wrapf(ErrAddressOutOfRange, "address %d, size %d", address, s.size)
	}
	return nil
}

// get returns the committed value at address.
func (s *Store) get(address uint64) uint64 {
	return s.values[address]
}

func (s *Store) apply(writes map[uint64]uint64) {
	for address, value := range writes {
		s.values[address] = value
	}
}

// rebuild recomputes every leaf hash and the whole tree from the current values.
func (s *Store) rebuild() {
	leaves := make([]common.Hash, len(s.values))
	parallelFor(s.workers, len(leaves), func(lo, hi int) {
		h := s.hashers.Get()
		defer s.hashers.Put(h)
		for i := lo; i < hi; i++ {
			leaves[i] = h.Leaf(uint64(i), s.values[i])
		}
	})
	s.tree = buildTree(s.digest, s.hashers, leaves, s.workers)
}

// publish makes root the committed state of the next version.
func (s *Store) publish(root common.Hash) uint64 {
	s.metaLock.Lock()
	defer s.metaLock.Unlock()
	s.version++
	s.root = root
	s.history.add(s.version, root)
	return s.version
}
