// Package bench drives a store with random transactions and times every commit.
package bench

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	vdb "github.com/bnb-chain/zkbnb-vdb"
	"github.com/bnb-chain/zkbnb-vdb/archive"
	"github.com/bnb-chain/zkbnb-vdb/cmd/vdbbench/internal/config"
	"github.com/bnb-chain/zkbnb-vdb/metrics"
)

type Mode string

const (
	ModeVerified   Mode = "verified"
	ModeUnverified Mode = "unverified"

	progressInterval = 1000
)

var ErrProofRejected = errors.New("proof rejected")

type Result struct {
	Mode         Mode
	Transactions int
	Verified     int
	Elapsed      time.Duration
	Version      uint64
	Root         common.Hash
}

type Option func(*Runner)

func WithRecorder(recorder *Recorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

func WithArchive(archive *archive.Archive) Option {
	return func(r *Runner) {
		r.archive = archive
	}
}

func WithMetrics(metrics metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = metrics
	}
}

func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner submits conf.Transactions transactions to a pool of conf.Clients
// goroutines, all contending for the same store.
type Runner struct {
	conf     *config.Config
	recorder *Recorder
	archive  *archive.Archive
	metrics  metrics.Metrics
	logger   log.Logger
}

func New(conf *config.Config, opts ...Option) *Runner {
	r := &Runner{
		conf: conf,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New("module", "bench")
	}
	return r
}

// Run executes the workload against a fresh store. The first failing
// transaction stops the run.
func (r *Runner) Run(ctx context.Context, mode Mode) (*Result, error) {
	opts := []vdb.Option{
		vdb.AddressSpace(r.conf.AddressSpace),
		vdb.Digest(r.conf.Digest),
		vdb.RebuildWorkers(r.conf.RebuildWorkers),
		vdb.RootHistory(r.conf.RootHistory),
		vdb.WithLogger(r.logger.New("mode", mode)),
	}
	if mode == ModeUnverified {
		opts = append(opts, vdb.Unverified())
	} else if r.metrics != nil {
		opts = append(opts, vdb.EnableMetrics(r.metrics))
	}
	store, err := vdb.NewStore(opts...)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	clients, err := ants.NewPool(r.conf.Clients)
	if err != nil {
		return nil, err
	}
	defer clients.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		failure  error
		verified int64
	)
	fail := func(err error) {
		failOnce.Do(func() {
			failure = err
			cancel()
		})
	}

	r.logger.Info("Starting run", "mode", mode, "txns", r.conf.Transactions, "size", r.conf.AddressSpace,
		"clients", r.conf.Clients)
	start := time.Now()
	for i := 0; i < r.conf.Transactions && runCtx.Err() == nil; i++ {
		i := i
		wg.Add(1)
		err := clients.Submit(func() {
			defer wg.Done()
			if runCtx.Err() != nil {
				return
			}
			ok, err := r.runTxn(store, mode, i)
			if err != nil {
				fail(errors.Wrapf(err, "transaction %d", i))
				return
			}
			if ok {
				atomic.AddInt64(&verified, 1)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	if failure != nil {
		return nil, failure
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := &Result{
		Mode:         mode,
		Transactions: r.conf.Transactions,
		Verified:     int(verified),
		Elapsed:      elapsed,
		Version:      store.Version(),
		Root:         store.Root(),
	}
	r.logger.Info("Finished run", "mode", mode, "txns", result.Transactions, "verified", result.Verified,
		"elapsed", common.PrettyDuration(elapsed), "root", result.Root.Hex())
	if r.archive != nil {
		r.logger.Info("Archived proofs", "mode", mode, "bytes", common.StorageSize(r.archive.Written()))
	}
	return result, nil
}

// runTxn performs one transaction and reports whether its proof was checked.
func (r *Runner) runTxn(store *vdb.Store, mode Mode, i int) (bool, error) {
	rng := rand.New(rand.NewSource(r.conf.Seed + int64(i)))
	size := int64(store.Size())

	tx := store.Begin()
	defer tx.Discard()
	for j := 0; j < r.conf.ReadsPerTxn; j++ {
		if _, err := tx.Get(uint64(rng.Int63n(size))); err != nil {
			return false, err
		}
	}
	written := make(map[uint64]struct{}, r.conf.WritesPerTxn)
	for j := 0; j < r.conf.WritesPerTxn; j++ {
		address := uint64(rng.Int63n(size))
		if err := tx.Put(address, rng.Uint64()); err != nil {
			return false, err
		}
		written[address] = struct{}{}
	}
	start := time.Now()
	proof, err := tx.Commit()
	if err != nil {
		return false, err
	}
	row := Row{
		Mode:     mode,
		Txn:      i,
		Writes:   len(written),
		CommitUS: time.Since(start).Microseconds(),
	}

	checked := false
	if proof != nil {
		row.Version = proof.Version
		row.Affected = len(proof.Entries)
		if r.conf.VerifyProofs {
			ok, err := proof.VerifyTransition()
			if err != nil {
				return false, err
			}
			if !ok {
				return false, errors.Wrapf(ErrProofRejected, "version %d", proof.Version)
			}
			checked = true
		}
		if r.archive != nil {
			if err := r.archive.Append(proof); err != nil {
				return false, err
			}
		}
	}
	if r.recorder != nil {
		if err := r.recorder.Record(row); err != nil {
			return false, err
		}
	}
	if (i+1)%progressInterval == 0 {
		r.logger.Info("Progress", "mode", mode, "txns", i+1)
	}
	return checked, nil
}
