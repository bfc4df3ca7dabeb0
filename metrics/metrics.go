package metrics

import "time"

type Metrics interface {
	// The version reached by the latest commit
	Version(uint64)
	// Wall time of each commit, from the first path capture to the new root
	CommitDuration(time.Duration)
	// Wall time of each full tree rebuild
	RebuildDuration(time.Duration)
	// The number of addresses covered by each proof
	AffectedKeys(int)
	// The number of buffered writes applied by each commit
	WriteKeys(int)
	// Time spent in Begin waiting for exclusive access
	LockWait(time.Duration)
}
