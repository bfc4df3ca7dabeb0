package memory

import (
	"sync"

	"github.com/bnb-chain/zkbnb-vdb/archive"
	"github.com/bnb-chain/zkbnb-vdb/utils"
)

var (
	_ archive.Backend = (*Backend)(nil)
	_ archive.Batch   = (*batch)(nil)
)

func New() *Backend {
	return &Backend{
		db: make(map[string][]byte),
	}
}

// Backend keeps archived proofs in a map; its contents die with the process.
type Backend struct {
	db   map[string][]byte
	lock sync.RWMutex
}

func (b *Backend) Get(key []byte) ([]byte, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if b.db == nil {
		return nil, archive.ErrBackendClosed
	}
	if entry, ok := b.db[string(key)]; ok {
		return utils.CopyBytes(entry), nil
	}
	return nil, archive.ErrNotFound
}

func (b *Backend) Has(key []byte) (bool, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if b.db == nil {
		return false, archive.ErrBackendClosed
	}
	_, ok := b.db[string(key)]
	return ok, nil
}

func (b *Backend) Set(key []byte, value []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.db == nil {
		return archive.ErrBackendClosed
	}
	b.db[string(key)] = utils.CopyBytes(value)
	return nil
}

func (b *Backend) Delete(key []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.db == nil {
		return archive.ErrBackendClosed
	}
	delete(b.db, string(key))
	return nil
}

func (b *Backend) NewBatch() archive.Batch {
	return &batch{
		backend: b,
	}
}

func (b *Backend) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.db = nil
	return nil
}

type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// batch is a write-only memory batch that commits changes to its host
// backend when Write is called. A batch cannot be used concurrently.
type batch struct {
	backend *Backend
	writes  []keyvalue
	size    int
}

func (b *batch) Set(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{utils.CopyBytes(key), utils.CopyBytes(value), false})
	b.size += len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{utils.CopyBytes(key), nil, true})
	b.size += len(key)
	return nil
}

// Write applies every buffered change at once.
func (b *batch) Write() error {
	b.backend.lock.Lock()
	defer b.backend.lock.Unlock()

	if b.backend.db == nil {
		return archive.ErrBackendClosed
	}
	for _, kv := range b.writes {
		if kv.delete {
			delete(b.backend.db, string(kv.key))
			continue
		}
		b.backend.db[string(kv.key)] = kv.value
	}
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}
