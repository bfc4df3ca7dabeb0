package vdb

import (
	"sort"
	"time"
)

type txnState uint8

const (
	txnOpen txnState = iota
	txnCommitted
	txnDiscarded
)

// Transaction is an exclusive handle on a Store that buffers writes and
// records reads until Commit. It is not safe for concurrent use.
type Transaction struct {
	store  *Store
	state  txnState
	reads  map[uint64]struct{}
	writes map[uint64]uint64
}

func newTransaction(store *Store) *Transaction {
	return &Transaction{
		store:  store,
		reads:  make(map[uint64]struct{}),
		writes: make(map[uint64]uint64),
	}
}

// Get returns the value at address. A value buffered by Put in this
// transaction is returned as is; otherwise the committed value is returned
// and the address joins the read set.
func (tx *Transaction) Get(address uint64) (uint64, error) {
	if tx.state != txnOpen {
		return 0, ErrTxnClosed
	}
	if err := tx.store.checkAddress(address); err != nil {
		return 0, err
	}
	if value, ok := tx.writes[address]; ok {
		return value, nil
	}
	tx.reads[address] = struct{}{}
	return tx.store.get(address), nil
}

// Put buffers value for address, replacing any earlier Put of the same address.
func (tx *Transaction) Put(address, value uint64) error {
	if tx.state != txnOpen {
		return ErrTxnClosed
	}
	if err := tx.store.checkAddress(address); err != nil {
		return err
	}
	tx.writes[address] = value
	return nil
}

// MultiPut buffers every item, failing before buffering anything if one
// address is out of range.
func (tx *Transaction) MultiPut(items []Item) error {
	if tx.state != txnOpen {
		return ErrTxnClosed
	}
	for _, item := range items {
		if err := tx.store.checkAddress(item.Address); err != nil {
			return err
		}
	}
	for _, item := range items {
		tx.writes[item.Address] = item.Value
	}
	return nil
}

// Commit applies the buffered writes, rebuilds the commitment and returns a
// proof whose paths were taken before the writes were applied. Exclusive
// access is released on return. An unverified store returns a nil proof.
func (tx *Transaction) Commit() (*Proof, error) {
	if tx.state != txnOpen {
		return nil, ErrTxnClosed
	}
	defer tx.release(txnCommitted)

	s := tx.store
	start := time.Now()
	if s.unverified {
		s.apply(tx.writes)
		version := s.publish(s.root)
		tx.report(version, start, 0, 0)
		return nil, nil
	}

	proof := &Proof{
		Digest:  s.digest,
		OldRoot: s.tree.Root(),
	}
	affected := tx.affected()
	proof.Entries = make([]*ProofEntry, 0, len(affected))
	for _, address := range affected {
		old := s.get(address)
		value, written := tx.writes[address]
		if !written {
			value = old
		}
		proof.Entries = append(proof.Entries, &ProofEntry{
			Address:  address,
			OldValue: old,
			NewValue: value,
			Written:  written,
			Path:     s.tree.path(address),
		})
	}

	s.apply(tx.writes)
	rebuildStart := time.Now()
	s.rebuild()
	rebuilt := time.Since(rebuildStart)

	proof.NewRoot = s.tree.Root()
	proof.Version = s.publish(proof.NewRoot)
	tx.report(proof.Version, start, rebuilt, len(affected))
	return proof, nil
}

// Discard abandons the transaction without touching the store and releases
// exclusive access. It is a no-op once the transaction has ended, so it can
// be deferred right after Begin.
func (tx *Transaction) Discard() {
	if tx.state != txnOpen {
		return
	}
	tx.release(txnDiscarded)
}

// Open reports whether the transaction can still be used.
func (tx *Transaction) Open() bool {
	return tx.state == txnOpen
}

func (tx *Transaction) release(state txnState) {
	tx.state = state
	tx.reads = nil
	tx.writes = nil
	tx.store.txnLock.Unlock()
}

// affected returns the union of the read set and the written addresses in
// ascending order.
func (tx *Transaction) affected() []uint64 {
	affected := make([]uint64, 0, len(tx.reads)+len(tx.writes))
	for address := range tx.reads {
		affected = append(affected, address)
	}
	for address := range tx.writes {
		if _, ok := tx.reads[address]; !ok {
			affected = append(affected, address)
		}
	}
	sort.Slice(affected, func(i, j int) bool { return affected[i] < affected[j] })
	return affected
}

func (tx *Transaction) report(version uint64, start time.Time, rebuilt time.Duration, affected int) {
	s := tx.store
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.Version(version)
		s.metrics.CommitDuration(elapsed)
		s.metrics.WriteKeys(len(tx.writes))
		if !s.unverified {
			s.metrics.RebuildDuration(rebuilt)
			s.metrics.AffectedKeys(affected)
		}
	}
	s.logger.Trace("Committed transaction", "version", version, "writes", len(tx.writes),
		"affected", affected, "elapsed", elapsed)
}
