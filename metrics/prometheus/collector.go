package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bnb-chain/zkbnb-vdb/metrics"
)

var _ metrics.Metrics = (*Collector)(nil)

// NewCollector creates the store collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	version := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdb_version",
		Help: "The version reached by the latest commit",
	})
	commits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vdb_commits_total",
		Help: "The number of committed transactions",
	})
	commitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vdb_commit_duration_seconds",
		Help:    "Wall time of each commit",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})
	rebuildDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vdb_rebuild_duration_seconds",
		Help:    "Wall time of each full tree rebuild",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})
	affectedKeys := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdb_affected_keys",
		Help: "The number of addresses covered by the latest proof",
	})
	writeKeys := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdb_write_keys",
		Help: "The number of writes applied by the latest commit",
	})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vdb_lock_wait_seconds",
		Help:    "Time spent waiting for exclusive access in Begin",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
	})
	reg.MustRegister(
		version,
		commits,
		commitDuration,
		rebuildDuration,
		affectedKeys,
		writeKeys,
		lockWait)

	return &Collector{
		version:         version,
		commits:         commits,
		commitDuration:  commitDuration,
		rebuildDuration: rebuildDuration,
		affectedKeys:    affectedKeys,
		writeKeys:       writeKeys,
		lockWait:        lockWait,
	}
}

type Collector struct {
	version         prometheus.Gauge
	commits         prometheus.Counter
	commitDuration  prometheus.Histogram
	rebuildDuration prometheus.Histogram
	affectedKeys    prometheus.Gauge
	writeKeys       prometheus.Gauge
	lockWait        prometheus.Histogram
}

func (c *Collector) Version(ver uint64) {
	c.version.Set(float64(ver))
}

func (c *Collector) CommitDuration(d time.Duration) {
	c.commits.Inc()
	c.commitDuration.Observe(d.Seconds())
}

func (c *Collector) RebuildDuration(d time.Duration) {
	c.rebuildDuration.Observe(d.Seconds())
}

func (c *Collector) AffectedKeys(n int) {
	c.affectedKeys.Set(float64(n))
}

func (c *Collector) WriteKeys(n int) {
	c.writeKeys.Set(float64(n))
}

func (c *Collector) LockWait(d time.Duration) {
	c.lockWait.Observe(d.Seconds())
}
