package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bnb-chain/zkbnb-vdb/archive"
	"github.com/bnb-chain/zkbnb-vdb/archive/archivetest"
)

func TestLevelDBBackend(t *testing.T) {
	t.Run("ArchiveSuite", func(t *testing.T) {
		archivetest.TestArchiveSuite(t, func() archive.Backend {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}
			return NewFromDB(db, "")
		})
	})
}

func TestLevelDBBackendWithNamespace(t *testing.T) {
	t.Run("ArchiveSuite", func(t *testing.T) {
		archivetest.TestArchiveSuite(t, func() archive.Backend {
			db, err := leveldb.Open(storage.NewMemStorage(), nil)
			if err != nil {
				t.Fatal(err)
			}
			return NewFromDB(db, "test")
		})
	})
}

func TestLevelDBBackend_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proofs")
	backend, err := New(dir, "vdb", 0, 0)
	require.NoError(t, err)
	require.NoError(t, backend.Set([]byte("k"), []byte("v")))
	require.NoError(t, backend.Close())

	backend, err = New(dir, "vdb", 0, 0)
	require.NoError(t, err)
	defer backend.Close()
	got, err := backend.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)

	_, err = backend.Get([]byte("missing"))
	require.Equal(t, archive.ErrNotFound, err)
}
