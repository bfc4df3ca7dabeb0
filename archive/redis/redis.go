// Copyright 2022 bnb-chain. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package redis

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/bnb-chain/zkbnb-vdb/archive"
)

var (
	_ archive.Backend = (*Backend)(nil)
	_ archive.Batch   = (*batch)(nil)
)

const defaultDialTimeout = 5 * time.Second

// New connects to redis and checks the connection with a ping.
func New(config *Config, opts ...Option) (*Backend, error) {
	if config.DialTimeout == 0 {
		config.DialTimeout = defaultDialTimeout
	}
	client := newClient(config)
	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client Client, opts ...Option) *Backend {
	b := &Backend{
		client: client,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type Backend struct {
	namespace []byte
	client    Client
}

// wrapKey returns a wrapper key with namespace.
func wrapKey(namespace, key []byte) string {
	if len(namespace) > 0 {
		return string(bytes.Join([][]byte{namespace, key}, []byte(":")))
	}
	return string(key)
}

func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) Has(key []byte) (bool, error) {
	n, err := b.client.Exists(context.Background(), wrapKey(b.namespace, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *Backend) Get(key []byte) ([]byte, error) {
	dat, err := b.client.Get(context.Background(), wrapKey(b.namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, archive.ErrNotFound
	}
	return dat, err
}

func (b *Backend) Set(key []byte, value []byte) error {
	return b.client.Set(context.Background(), wrapKey(b.namespace, key), value, 0).Err()
}

func (b *Backend) Delete(key []byte) error {
	return b.client.Del(context.Background(), wrapKey(b.namespace, key)).Err()
}

// NewBatch returns a batch backed by a MULTI/EXEC pipeline, so an archived
// proof and the latest version marker land together.
func (b *Backend) NewBatch() archive.Batch {
	return &batch{
		namespace: b.namespace,
		pipe:      b.client.TxPipeline(),
	}
}

// batch is a write-only redis batch that commits changes to its host database
// when Write is called.
type batch struct {
	namespace []byte
	pipe      redis.Pipeliner
	size      int
	lock      sync.Mutex
}

func (b *batch) Set(key, value []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.pipe.Set(context.Background(), wrapKey(b.namespace, key), value, 0)
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.pipe.Del(context.Background(), wrapKey(b.namespace, key))
	b.size += len(key)
	return nil
}

func (b *batch) Write() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.size == 0 {
		return nil
	}
	if _, err := b.pipe.Exec(context.Background()); err != nil {
		return err
	}
	b.size = 0
	return nil
}

func (b *batch) ValueSize() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.size
}

func (b *batch) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.pipe.Discard()
	b.size = 0
}
