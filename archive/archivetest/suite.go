// Package archivetest holds the test suite every archive backend must pass.
package archivetest

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	vdb "github.com/bnb-chain/zkbnb-vdb"
	"github.com/bnb-chain/zkbnb-vdb/archive"
)

// TestArchiveSuite runs the raw key-value checks against a backend, then
// archives real proofs through it and verifies them after decoding.
func TestArchiveSuite(t *testing.T, New func() archive.Backend) {
	t.Run("KeyValueOperations", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("foo")

		if got, err := db.Has(key); err != nil {
			t.Error(err)
		} else if got {
			t.Errorf("wrong value: %t", got)
		}
		if _, err := db.Get(key); !errors.Is(err, archive.ErrNotFound) {
			t.Errorf("wrong error: %v", err)
		}

		value := []byte("hello world")
		if err := db.Set(key, value); err != nil {
			t.Error(err)
		}

		if got, err := db.Has(key); err != nil {
			t.Error(err)
		} else if !got {
			t.Errorf("wrong value: %t", got)
		}

		if got, err := db.Get(key); err != nil {
			t.Error(err)
		} else if !bytes.Equal(got, value) {
			t.Errorf("wrong value: %q", got)
		}

		if err := db.Delete(key); err != nil {
			t.Error(err)
		}

		if got, err := db.Has(key); err != nil {
			t.Error(err)
		} else if got {
			t.Errorf("wrong value: %t", got)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		db := New()
		defer db.Close()

		b := db.NewBatch()
		for _, k := range []string{"1", "2", "3"} {
			if err := b.Set([]byte(k), []byte("v"+k)); err != nil {
				t.Fatal(err)
			}
		}
		if b.ValueSize() == 0 {
			t.Error("batch reports no queued data")
		}
		if has, err := db.Has([]byte("1")); err != nil {
			t.Fatal(err)
		} else if has {
			t.Error("db contains element before batch write")
		}
		if err := b.Write(); err != nil {
			t.Fatal(err)
		}
		b.Reset()

		// Reset drops queued changes
		if err := b.Set([]byte("5"), []byte("v5")); err != nil {
			t.Fatal(err)
		}
		b.Reset()
		if b.ValueSize() != 0 {
			t.Errorf("reset batch reports %d queued bytes", b.ValueSize())
		}
		if err := b.Write(); err != nil {
			t.Fatal(err)
		}
		if has, err := db.Has([]byte("5")); err != nil {
			t.Fatal(err)
		} else if has {
			t.Error("reset change was written")
		}

		// Mix writes and deletes in batch
		b.Delete([]byte("1"))
		b.Set([]byte("4"), []byte("v4"))
		b.Delete([]byte("3"))
		b.Set([]byte("3"), []byte("test3"))
		if err := b.Write(); err != nil {
			t.Fatal(err)
		}

		expected := map[string][]byte{
			"1": nil,
			"2": []byte("v2"),
			"3": []byte("test3"),
			"4": []byte("v4"),
		}
		for k, want := range expected {
			if want == nil {
				if has, err := db.Has([]byte(k)); err != nil {
					t.Error(err)
				} else if has {
					t.Errorf("key %s should be deleted", k)
				}
				continue
			}
			if got, err := db.Get([]byte(k)); err != nil {
				t.Error(err)
			} else if !bytes.Equal(got, want) {
				t.Errorf("key %s: wrong value %q", k, got)
			}
		}
	})

	t.Run("Proofs", func(t *testing.T) {
		a := archive.New(New())
		defer a.Close()

		if _, err := a.Latest(); !errors.Is(err, archive.ErrEmptyArchive) {
			t.Fatalf("wrong error: %v", err)
		}
		if err := a.Append(nil); !errors.Is(err, archive.ErrNilProof) {
			t.Fatalf("wrong error: %v", err)
		}

		store, err := vdb.NewStore(vdb.AddressSpace(100))
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		var proofs []*vdb.Proof
		for i := uint64(0); i < 3; i++ {
			tx := store.Begin()
			if _, err := tx.Get(99 - i); err != nil {
				t.Fatal(err)
			}
			if err := tx.Put(i, i+1); err != nil {
				t.Fatal(err)
			}
			proof, err := tx.Commit()
			if err != nil {
				t.Fatal(err)
			}
			proofs = append(proofs, proof)
		}
		// appended out of order; latest follows the highest version
		for _, i := range []int{1, 2, 0} {
			if err := a.Append(proofs[i]); err != nil {
				t.Fatal(err)
			}
		}

		// each append reports at least the encoded proof
		if written := a.Written(); written < uint64(len(proofs)) {
			t.Errorf("wrong written size: %d", written)
		}
		before := a.Written()
		if err := a.Append(proofs[0]); err != nil {
			t.Fatal(err)
		}
		if a.Written() <= before {
			t.Error("re-append did not advance the written size")
		}

		if latest, err := a.Latest(); err != nil {
			t.Fatal(err)
		} else if latest != 3 {
			t.Errorf("wrong latest version: %d", latest)
		}

		for _, want := range proofs {
			got, err := a.Proof(want.Version)
			if err != nil {
				t.Fatal(err)
			}
			if got.OldRoot != want.OldRoot || got.NewRoot != want.NewRoot || got.Digest != want.Digest {
				t.Errorf("version %d: roots changed in the archive", want.Version)
			}
			if len(got.Entries) != len(want.Entries) {
				t.Fatalf("version %d: %d entries, want %d", want.Version, len(got.Entries), len(want.Entries))
			}
			if ok, err := got.VerifyTransition(); err != nil || !ok {
				t.Errorf("version %d: archived proof does not verify (%v)", want.Version, err)
			}
		}

		if has, err := a.Has(2); err != nil || !has {
			t.Errorf("version 2 should be archived (%v)", err)
		}
		if _, err := a.Proof(42); !errors.Is(err, archive.ErrProofNotFound) {
			t.Errorf("wrong error: %v", err)
		}
	})
}
