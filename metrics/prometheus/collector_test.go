package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	vdb "github.com/bnb-chain/zkbnb-vdb"
)

func sampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestCollector_StoreCommits(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	store, err := vdb.NewStore(vdb.AddressSpace(64), vdb.EnableMetrics(collector))
	require.NoError(t, err)
	defer store.Close()

	for i := uint64(0); i < 3; i++ {
		tx := store.Begin()
		require.NoError(t, tx.Put(i, i+1))
		require.NoError(t, tx.Put(i+10, i+1))
		_, err := tx.Get(i + 20)
		require.NoError(t, err)
		_, err = tx.Commit()
		require.NoError(t, err)
	}

	require.Equal(t, float64(3), testutil.ToFloat64(collector.version))
	require.Equal(t, float64(3), testutil.ToFloat64(collector.commits))
	require.Equal(t, float64(3), testutil.ToFloat64(collector.affectedKeys))
	require.Equal(t, float64(2), testutil.ToFloat64(collector.writeKeys))
	require.Equal(t, uint64(3), sampleCount(t, reg, "vdb_commit_duration_seconds"))
	require.Equal(t, uint64(3), sampleCount(t, reg, "vdb_rebuild_duration_seconds"))
	require.Equal(t, uint64(3), sampleCount(t, reg, "vdb_lock_wait_seconds"))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	require.Panics(t, func() { NewCollector(reg) })
}
