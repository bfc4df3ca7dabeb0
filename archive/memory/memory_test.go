package memory

import (
	"testing"

	"github.com/bnb-chain/zkbnb-vdb/archive"
	"github.com/bnb-chain/zkbnb-vdb/archive/archivetest"
)

func TestMemoryBackend(t *testing.T) {
	t.Run("ArchiveSuite", func(t *testing.T) {
		archivetest.TestArchiveSuite(t, func() archive.Backend {
			return New()
		})
	})
}

func TestMemoryBackend_Closed(t *testing.T) {
	backend := New()
	if err := backend.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := backend.Get([]byte("latest")); err != archive.ErrBackendClosed {
		t.Fatalf("wrong error: %v", err)
	}
	if err := backend.NewBatch().Write(); err != archive.ErrBackendClosed {
		t.Fatalf("wrong error: %v", err)
	}
}
