package archive

type (
	KeyValueReader interface {
		// Has retrieves if a key is present in the backend.
		Has(key []byte) (bool, error)

		// Get retrieves the given key if it's present in the backend.
		Get(key []byte) ([]byte, error)
	}
	KeyValueWriter interface {
		// Set inserts the given value into the backend.
		Set(key []byte, value []byte) error

		// Delete removes the key from the backend.
		Delete(key []byte) error
	}
	// Backend is the key-value store an Archive keeps its proofs in.
	Backend interface {
		KeyValueReader
		KeyValueWriter
		// NewBatch creates a write-only batch that buffers changes to its host
		// backend until a final write is called.
		NewBatch() Batch
		Close() error
	}

	Batch interface {
		KeyValueWriter

		// Write flushes any accumulated data to the backend.
		Write() error

		// Reset resets the batch for reuse.
		Reset()

		// ValueSize retrieves the amount of data queued up for writing.
		ValueSize() int
	}
)
