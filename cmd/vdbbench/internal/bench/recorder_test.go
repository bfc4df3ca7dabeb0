package bench

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var buf bytes.Buffer
	recorder, err := NewRecorder(&buf)
	require.NoError(t, err)
	require.NoError(t, recorder.Record(Row{Mode: ModeVerified, Txn: 3, Version: 4, Writes: 100, Affected: 97, CommitUS: 1250}))
	require.NoError(t, recorder.Flush())
	require.Equal(t, "mode,txn,version,writes,affected,commit_us\nverified,3,4,100,97,1250\n", buf.String())
}

func TestRecorderConcurrent(t *testing.T) {
	var buf bytes.Buffer
	recorder, err := NewRecorder(&buf)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, recorder.Record(Row{Mode: ModeUnverified, Txn: i}))
		}(i)
	}
	wg.Wait()
	require.NoError(t, recorder.Flush())
	require.Len(t, readRows(t, &buf), 50)
}
