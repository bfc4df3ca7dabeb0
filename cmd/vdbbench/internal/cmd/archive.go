package cmd

import (
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/bnb-chain/zkbnb-vdb/archive"
	"github.com/bnb-chain/zkbnb-vdb/archive/leveldb"
	"github.com/bnb-chain/zkbnb-vdb/archive/memory"
	"github.com/bnb-chain/zkbnb-vdb/archive/redis"
	"github.com/bnb-chain/zkbnb-vdb/cmd/vdbbench/internal/config"
)

// openArchive returns a nil archive for config.ArchiveNone. The returned
// close function is never nil.
func openArchive(conf config.ArchiveConfig) (*archive.Archive, func() error, error) {
	nop := func() error { return nil }
	switch conf.Type {
	case config.ArchiveNone, "":
		return nil, nop, nil
	case config.ArchiveMemory:
		a := archive.New(memory.New())
		return a, a.Close, nil
	case config.ArchiveLevelDB:
		backend, err := leveldb.New(conf.Path, conf.Namespace, conf.Cache, conf.Handles)
		if err != nil {
			return nil, nop, err
		}
		a := archive.New(backend)
		return a, a.Close, nil
	case config.ArchiveRedis:
		backend, err := redis.New(&redis.Config{Addr: conf.RedisAddr}, redis.WithNamespace(conf.Namespace))
		if err != nil {
			return nil, nop, err
		}
		a := archive.New(backend)
		return a, a.Close, nil
	case config.ArchiveRedisEmbedded:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nop, errors.Wrap(err, "start embedded redis")
		}
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		a := archive.New(redis.NewFromClient(client, redis.WithNamespace(conf.Namespace)))
		return a, func() error {
			defer mr.Close()
			return a.Close()
		}, nil
	}
	return nil, nop, errors.Wrapf(config.ErrInvalidConfig, "unknown archive type %q", conf.Type)
}
