// Package config loads and validates the benchmark configuration.
package config

import (
	"bytes"
	"math"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"

	vdb "github.com/bnb-chain/zkbnb-vdb"
)

const (
	ArchiveNone          = "none"
	ArchiveMemory        = "memory"
	ArchiveLevelDB       = "leveldb"
	ArchiveRedis         = "redis"
	ArchiveRedisEmbedded = "redis-embedded"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config describes one benchmark run.
type Config struct {
	AddressSpace   uint64 `toml:"address_space"`
	Digest         string `toml:"digest"`
	Transactions   int    `toml:"transactions"`
	WritesPerTxn   int    `toml:"writes_per_txn"`
	ReadsPerTxn    int    `toml:"reads_per_txn"`
	Clients        int    `toml:"clients"`
	RebuildWorkers int    `toml:"rebuild_workers"`
	RootHistory    int    `toml:"root_history"`
	Seed           int64  `toml:"seed"`

	// VerifyProofs checks every returned proof with VerifyTransition.
	VerifyProofs bool `toml:"verify_proofs"`
	// Baseline also runs the same workload against an unverified store.
	Baseline bool `toml:"baseline"`

	Output      string        `toml:"output"`
	MetricsAddr string        `toml:"metrics_addr"`
	LogLevel    string        `toml:"log_level"`
	Archive     ArchiveConfig `toml:"archive"`
}

type ArchiveConfig struct {
	Type      string `toml:"type"`
	Path      string `toml:"path"`
	Namespace string `toml:"namespace"`
	RedisAddr string `toml:"redis_addr"`
	Cache     int    `toml:"cache"`
	Handles   int    `toml:"handles"`
}

// Default mirrors the reference experiment: 10000 transactions of 100 random
// writes over the 16-bit address space, with an unverified baseline.
func Default() *Config {
	return &Config{
		AddressSpace:   vdb.DefaultAddressSpace,
		Digest:         vdb.DigestSHA256,
		Transactions:   10000,
		WritesPerTxn:   100,
		Clients:        1,
		RebuildWorkers: 1,
		RootHistory:    vdb.DefaultRootHistory,
		Seed:           1,
		Baseline:       true,
		Output:         "commits.csv",
		LogLevel:       "info",
		Archive: ArchiveConfig{
			Type:      ArchiveNone,
			Namespace: "vdb",
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return conf, nil
}

// Save writes conf to path in TOML encoding.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate rejects configurations the benchmark cannot run, including an
// address space whose tree would not fit in half of the system memory.
func (c *Config) Validate() error {
	switch {
	case c.AddressSpace == 0:
		return errors.Wrap(ErrInvalidConfig, "address_space must be positive")
	case c.Transactions <= 0:
		return errors.Wrap(ErrInvalidConfig, "transactions must be positive")
	case c.WritesPerTxn < 0 || c.ReadsPerTxn < 0:
		return errors.Wrap(ErrInvalidConfig, "reads and writes per transaction must not be negative")
	case c.Clients <= 0:
		return errors.Wrap(ErrInvalidConfig, "clients must be positive")
	case c.RebuildWorkers < 0 || c.RootHistory < 0:
		return errors.Wrap(ErrInvalidConfig, "rebuild_workers and root_history must not be negative")
	}

	known := false
	for _, name := range vdb.Digests() {
		if name == c.Digest {
			known = true
		}
	}
	if !known {
		return errors.Wrapf(ErrInvalidConfig, "unknown digest %q", c.Digest)
	}

	switch c.Archive.Type {
	case ArchiveNone, ArchiveMemory, ArchiveRedisEmbedded:
	case ArchiveLevelDB:
		if c.Archive.Path == "" {
			return errors.Wrap(ErrInvalidConfig, "leveldb archive needs a path")
		}
	case ArchiveRedis:
		if c.Archive.RedisAddr == "" {
			return errors.Wrap(ErrInvalidConfig, "redis archive needs redis_addr")
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown archive type %q", c.Archive.Type)
	}

	if total := memory.TotalMemory(); total > 0 && c.AddressSpace > total/2/bytesPerAddress {
		return errors.Wrapf(ErrInvalidConfig, "address space %d needs about %d bytes, system has %d",
			c.AddressSpace, Footprint(c.AddressSpace), total)
	}
	return nil
}

// Footprint estimates the bytes a verified store of size addresses holds
// during a commit: the values, the live tree and the tree being rebuilt.
// The estimate saturates at math.MaxUint64.
func Footprint(size uint64) uint64 {
	if size > math.MaxUint64/bytesPerAddress {
		return math.MaxUint64
	}
	return size * bytesPerAddress
}

// a binary tree has fewer than 2n nodes, and two trees are alive at once
const bytesPerAddress = 8 + 2*2*common.HashLength
