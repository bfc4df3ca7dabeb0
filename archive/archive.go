// Package archive keeps the proofs issued by a store so that auditors can
// fetch and re-verify them later. It records proofs only; a store cannot be
// restored from an archive.
package archive

import (
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	vdb "github.com/bnb-chain/zkbnb-vdb"
	"github.com/bnb-chain/zkbnb-vdb/utils"
)

var (
	proofKeyPrefix = []byte("proof:")
	latestKey      = []byte("latest")
)

func proofKey(version uint64) []byte {
	return append(append([]byte{}, proofKeyPrefix...), utils.Uint64ToBytes(version)...)
}

// Archive stores RLP-encoded proofs by commit version. Appends reuse one
// batch, guarded by lock.
type Archive struct {
	backend Backend
	lock    sync.Mutex
	batch   Batch
	written uint64
}

func New(backend Backend) *Archive {
	return &Archive{
		backend: backend,
		batch:   backend.NewBatch(),
	}
}

// Append stores proof under its version and advances the latest version.
func (a *Archive) Append(proof *vdb.Proof) error {
	if proof == nil {
		return ErrNilProof
	}
	buf, err := rlp.EncodeToBytes(proof)
	if err != nil {
		return errors.Wrapf(err, "encode proof %d", proof.Version)
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	latest, err := a.latest()
	empty := errors.Is(err, ErrEmptyArchive)
	if err != nil && !empty {
		return err
	}
	defer a.batch.Reset()
	if err := a.batch.Set(proofKey(proof.Version), buf); err != nil {
		return err
	}
	if empty || proof.Version > latest {
		if err := a.batch.Set(latestKey, utils.Uint64ToBytes(proof.Version)); err != nil {
			return err
		}
	}
	size := a.batch.ValueSize()
	if err := a.batch.Write(); err != nil {
		return errors.Wrapf(err, "write proof %d", proof.Version)
	}
	a.written += uint64(size)
	return nil
}

// Written returns the number of bytes queued by successful appends.
func (a *Archive) Written() uint64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.written
}

// Proof returns the proof committed at version.
func (a *Archive) Proof(version uint64) (*vdb.Proof, error) {
	buf, err := a.backend.Get(proofKey(version))
	if errors.Is(err, ErrNotFound) {
		return nil, errors.Wrapf(ErrProofNotFound, "version %d", version)
	}
	if err != nil {
		return nil, err
	}
	proof := &vdb.Proof{}
	if err := rlp.DecodeBytes(buf, proof); err != nil {
		return nil, errors.Wrapf(err, "decode proof %d", version)
	}
	return proof, nil
}

func (a *Archive) Has(version uint64) (bool, error) {
	return a.backend.Has(proofKey(version))
}

// Latest returns the highest version appended so far.
func (a *Archive) Latest() (uint64, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.latest()
}

func (a *Archive) latest() (uint64, error) {
	buf, err := a.backend.Get(latestKey)
	if errors.Is(err, ErrNotFound) {
		return 0, ErrEmptyArchive
	}
	if err != nil {
		return 0, err
	}
	version, ok := utils.BytesToUint64(buf)
	if !ok {
		return 0, errors.Errorf("corrupt latest version %x", buf)
	}
	return version, nil
}

func (a *Archive) Close() error {
	return a.backend.Close()
}
