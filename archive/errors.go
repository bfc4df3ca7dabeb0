package archive

import "github.com/pkg/errors"

var (
	// ErrBackendClosed is returned if a backend was already closed at the
	// invocation of a data access operation.
	ErrBackendClosed = errors.New("archive backend closed")

	// ErrNotFound is returned by backends for a key that is not present.
	ErrNotFound = errors.New("key not found")

	ErrProofNotFound = errors.New("proof not found")

	ErrEmptyArchive = errors.New("archive is empty")

	ErrNilProof = errors.New("nil proof")
)
