package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
address_space = 4096
digest = "keccak256"
transactions = 50
clients = 4

[archive]
type = "leveldb"
path = "/tmp/proofs"
`), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, conf.Validate())
	require.Equal(t, uint64(4096), conf.AddressSpace)
	require.Equal(t, "keccak256", conf.Digest)
	require.Equal(t, 50, conf.Transactions)
	require.Equal(t, 4, conf.Clients)
	require.Equal(t, 100, conf.WritesPerTxn, "unset keys keep their defaults")
	require.Equal(t, ArchiveLevelDB, conf.Archive.Type)
	require.Equal(t, "vdb", conf.Archive.Namespace)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.toml")
	conf := Default()
	conf.Transactions = 7
	conf.Archive.Type = ArchiveRedisEmbedded
	require.NoError(t, conf.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, conf, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero address space":  func(c *Config) { c.AddressSpace = 0 },
		"no transactions":     func(c *Config) { c.Transactions = 0 },
		"negative writes":     func(c *Config) { c.WritesPerTxn = -1 },
		"no clients":          func(c *Config) { c.Clients = 0 },
		"unknown digest":      func(c *Config) { c.Digest = "md4" },
		"unknown archive":     func(c *Config) { c.Archive.Type = "s3" },
		"leveldb no path":     func(c *Config) { c.Archive.Type = ArchiveLevelDB },
		"redis no address":    func(c *Config) { c.Archive.Type = ArchiveRedis },
		"exceeds memory":      func(c *Config) { c.AddressSpace = 1 << 50 },
		"overflows footprint": func(c *Config) { c.AddressSpace = 1 << 61 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			conf := Default()
			mutate(conf)
			require.True(t, errors.Is(conf.Validate(), ErrInvalidConfig))
		})
	}
}

func TestFootprintSaturates(t *testing.T) {
	require.Equal(t, uint64(65536*136), Footprint(65536))
	require.Equal(t, uint64(math.MaxUint64), Footprint(1<<61))
}
