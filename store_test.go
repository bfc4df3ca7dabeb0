package vdb

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	store, err := NewStore(opts...)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestNewStore_DefaultsToZero(t *testing.T) {
	store := newTestStore(t)
	require.Equal(t, DefaultAddressSpace, store.Size())
	require.Equal(t, uint64(0), store.Version())
	require.True(t, store.Verified())

	tx := store.Begin()
	defer tx.Discard()
	for address := uint64(0); address < store.Size(); address++ {
		value, err := tx.Get(address)
		require.NoError(t, err)
		if value != 0 {
			t.Fatalf("address %d holds %d", address, value)
		}
	}
}

func TestNewStore_RootCommitsToEveryAddress(t *testing.T) {
	const size = 1000
	store := newTestStore(t, AddressSpace(size))

	hasher, err := NewDigestHasher(DigestSHA256)
	require.NoError(t, err)
	leaves := make([]common.Hash, size)
	for i := range leaves {
		leaves[i] = hasher.Leaf(uint64(i), 0)
	}
	tree, err := BuildTree(DigestSHA256, leaves, nil)
	require.NoError(t, err)
	require.Equal(t, tree.Root(), store.Root())

	other := newTestStore(t, AddressSpace(size), Digest(DigestKeccak256))
	require.NotEqual(t, store.Root(), other.Root())
}

func TestNewStore_InvalidOptions(t *testing.T) {
	_, err := NewStore(AddressSpace(0))
	require.True(t, errors.Is(err, ErrInvalidAddressSpace))

	_, err = NewStore(AddressSpace(1 << 61))
	require.True(t, errors.Is(err, ErrInvalidAddressSpace))

	_, err = NewStore(Digest("sha1"))
	require.True(t, errors.Is(err, ErrUnknownDigest))
}

func TestStore_BeginIsExclusive(t *testing.T) {
	store := newTestStore(t, AddressSpace(64))
	first := store.Begin()
	require.NoError(t, first.Put(1, 11))

	acquired := make(chan *Transaction)
	go func() {
		acquired <- store.Begin()
	}()

	select {
	case <-acquired:
		t.Fatal("second transaction began while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	_, err := first.Commit()
	require.NoError(t, err)

	select {
	case second := <-acquired:
		value, err := second.Get(1)
		require.NoError(t, err)
		require.Equal(t, uint64(11), value)
		second.Discard()
	case <-time.After(5 * time.Second):
		t.Fatal("second transaction never began")
	}
}

func TestStore_RootHistory(t *testing.T) {
	store := newTestStore(t, AddressSpace(32), RootHistory(2))
	roots := []common.Hash{store.Root()}
	for i := uint64(1); i <= 3; i++ {
		tx := store.Begin()
		require.NoError(t, tx.Put(i, i))
		proof, err := tx.Commit()
		require.NoError(t, err)
		require.Equal(t, i, proof.Version)
		roots = append(roots, proof.NewRoot)
	}
	require.Equal(t, uint64(3), store.Version())
	require.Equal(t, 2, store.history.len())

	for version := uint64(2); version <= 3; version++ {
		root, ok := store.RootAt(version)
		require.True(t, ok)
		require.Equal(t, roots[version], root)
	}
	_, ok := store.RootAt(0)
	require.False(t, ok, "evicted from the history")
	_, ok = store.RootAt(4)
	require.False(t, ok)

	disabled := newTestStore(t, AddressSpace(32), RootHistory(0))
	root, ok := disabled.RootAt(0)
	require.True(t, ok, "the current version is always known")
	require.Equal(t, disabled.Root(), root)
}

func TestStore_Unverified(t *testing.T) {
	store := newTestStore(t, AddressSpace(128), Unverified(), RebuildWorkers(4))
	require.False(t, store.Verified())
	require.Equal(t, common.Hash{}, store.Root())

	tx := store.Begin()
	require.NoError(t, tx.Put(7, 70))
	proof, err := tx.Commit()
	require.NoError(t, err)
	require.Nil(t, proof)
	require.Equal(t, uint64(1), store.Version())

	tx = store.Begin()
	defer tx.Discard()
	value, err := tx.Get(7)
	require.NoError(t, err)
	require.Equal(t, uint64(70), value)
}

func TestStore_RebuildWorkers(t *testing.T) {
	const size = 3 * minParallelWidth
	sequential := newTestStore(t, AddressSpace(size))
	parallel := newTestStore(t, AddressSpace(size), RebuildWorkers(4))
	require.Equal(t, sequential.Root(), parallel.Root())

	for _, store := range []*Store{sequential, parallel} {
		tx := store.Begin()
		require.NoError(t, tx.MultiPut([]Item{{Address: 0, Value: 1}, {Address: size - 1, Value: 2}}))
		_, err := tx.Commit()
		require.NoError(t, err)
	}
	require.Equal(t, sequential.Root(), parallel.Root())
}
