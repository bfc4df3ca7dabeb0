package vdb

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestHasher_EmptyInputVectors(t *testing.T) {
	sha, err := NewDigestHasher(DigestSHA256)
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"), sha.Hash())

	keccak, err := NewDigestHasher(DigestKeccak256)
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"), keccak.Hash())
}

func TestHasher_Leaf(t *testing.T) {
	hasher, err := NewHasher(sha256.New())
	require.NoError(t, err)

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], 5)
	binary.BigEndian.PutUint64(buf[8:], 42)
	expected := common.Hash(sha256.Sum256(buf[:]))

	require.Equal(t, expected, hasher.Leaf(5, 42))
	require.Equal(t, hasher.Leaf(5, 42), hasher.Leaf(5, 42), "leaf hash must be deterministic")
	require.NotEqual(t, hasher.Leaf(5, 42), hasher.Leaf(5, 43))
	require.NotEqual(t, hasher.Leaf(5, 42), hasher.Leaf(6, 42))
	// the fixed-width encoding keeps (address, value) pairs apart
	require.NotEqual(t, hasher.Leaf(0, 1<<32), hasher.Leaf(1, 0))
}

func TestHasher_Node(t *testing.T) {
	hasher, err := NewHasher(sha3.NewLegacyKeccak256())
	require.NoError(t, err)

	left, right := hasher.Leaf(0, 0), hasher.Leaf(1, 0)
	require.Equal(t, hasher.Hash(left[:], right[:]), hasher.Node(left, right))
	require.NotEqual(t, hasher.Node(left, right), hasher.Node(right, left))
}

func TestHasher_InvalidDigestSize(t *testing.T) {
	_, err := NewHasher(sha512.New())
	require.True(t, errors.Is(err, ErrInvalidDigestSize))

	_, err = NewHasherPool(md5.New)
	require.True(t, errors.Is(err, ErrInvalidDigestSize))

	err = RegisterDigest("md5", md5.New)
	require.True(t, errors.Is(err, ErrInvalidDigestSize))
	require.NotContains(t, Digests(), "md5")
}

func TestRegisterDigest(t *testing.T) {
	require.NoError(t, RegisterDigest("sha512_256", sha512.New512_256))
	require.Contains(t, Digests(), "sha512_256")

	hasher, err := NewDigestHasher("sha512_256")
	require.NoError(t, err)
	require.Equal(t, common.Hash(sha512.Sum512_256(nil)), hasher.Hash())

	_, err = NewDigestHasher("whirlpool")
	require.True(t, errors.Is(err, ErrUnknownDigest))
}

func TestHasherPool_Concurrent(t *testing.T) {
	pool, err := NewHasherPool(func() hash.Hash { return sha256.New() })
	require.NoError(t, err)
	expected := pool.Leaf(7, 7)

	var wg sync.WaitGroup
	results := make([]common.Hash, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				results[i] = pool.Leaf(7, 7)
			}
		}(i)
	}
	wg.Wait()
	for i := range results {
		if results[i] != expected {
			t.Fatalf("worker %d hashed %s, want %s", i, results[i].Hex(), expected.Hex())
		}
	}
}
