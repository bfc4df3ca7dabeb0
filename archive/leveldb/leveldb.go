package leveldb

import (
	"bytes"
	stdErrors "errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bnb-chain/zkbnb-vdb/archive"
)

var (
	_ archive.Backend = (*Backend)(nil)
	_ archive.Batch   = (*batch)(nil)
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to leveldb
	// read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the open
	// database files.
	minHandles = 16
)

type Backend struct {
	namespace []byte
	db        *leveldb.DB
}

// New opens the leveldb archive at file. Keys are prefixed with namespace
// when it is not empty.
func New(file string, namespace string, cache int, handles int) (*Backend, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
	}

	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(file, options)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return NewFromDB(db, namespace), nil
}

// NewFromDB wraps an already opened leveldb instance.
func NewFromDB(db *leveldb.DB, namespace string) *Backend {
	backend := &Backend{
		db: db,
	}
	if len(namespace) != 0 {
		backend.namespace = []byte(namespace)
	}
	return backend
}

// wrapKey returns a wrapper key with namespace.
func wrapKey(namespace, key []byte) []byte {
	if len(namespace) > 0 {
		return bytes.Join([][]byte{namespace, key}, []byte(":"))
	}
	return key
}

// Close flushes any pending data to disk and closes
// all io accesses to the underlying key-value store.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Has(key []byte) (bool, error) {
	return b.db.Has(wrapKey(b.namespace, key), nil)
}

func (b *Backend) Get(key []byte) ([]byte, error) {
	dat, err := b.db.Get(wrapKey(b.namespace, key), nil)
	if err != nil && stdErrors.Is(err, leveldb.ErrNotFound) {
		return nil, archive.ErrNotFound
	}
	return dat, err
}

func (b *Backend) Set(key []byte, value []byte) error {
	return b.db.Put(wrapKey(b.namespace, key), value, nil)
}

func (b *Backend) Delete(key []byte) error {
	return b.db.Delete(wrapKey(b.namespace, key), nil)
}

func (b *Backend) NewBatch() archive.Batch {
	return &batch{
		db:        b.db,
		namespace: b.namespace,
		b:         new(leveldb.Batch),
	}
}

// batch is a write-only leveldb batch that commits changes to its host database
// when Write is called. A batch cannot be used concurrently.
type batch struct {
	namespace []byte
	db        *leveldb.DB
	b         *leveldb.Batch
	size      int
}

func (b *batch) Set(key, value []byte) error {
	b.b.Put(wrapKey(b.namespace, key), value)
	b.size += len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(wrapKey(b.namespace, key))
	b.size += len(key)
	return nil
}

// Write flushes any accumulated data to disk.
func (b *batch) Write() error {
	return b.db.Write(b.b, nil)
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}
