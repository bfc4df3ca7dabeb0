package vdb

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/bnb-chain/zkbnb-vdb/metrics"
)

const (
	// DefaultAddressSpace covers every 16-bit key.
	DefaultAddressSpace uint64 = 1 << 16

	DefaultRootHistory = 128
)

// Option is a function that configures a Store.
type Option func(*Store)

// AddressSpace sets the number of addresses; keys range over [0, size).
func AddressSpace(size uint64) Option {
	return func(s *Store) {
		s.size = size
	}
}

// Digest selects a registered digest function by name.
func Digest(name string) Option {
	return func(s *Store) {
		s.digest = name
	}
}

// RebuildWorkers hashes wide tree levels on a pool of n workers.
// Values below 2 keep the rebuild on the committing goroutine.
func RebuildWorkers(n int) Option {
	return func(s *Store) {
		s.rebuildWorkers = n
	}
}

// RootHistory keeps the roots of the last n commits for RootAt.
// Zero disables the history.
func RootHistory(n int) Option {
	return func(s *Store) {
		s.historySize = n
	}
}

// Unverified disables the commitment tree. Commits only apply writes and
// return no proof, and the root stays zero.
func Unverified() Option {
	return func(s *Store) {
		s.unverified = true
	}
}

func EnableMetrics(metrics metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

func WithLogger(logger log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}
