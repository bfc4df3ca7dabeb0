package bench

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
)

var header = []string{"mode", "txn", "version", "writes", "affected", "commit_us"}

// Row is one committed transaction.
type Row struct {
	Mode     Mode
	Txn      int
	Version  uint64
	Writes   int
	Affected int
	CommitUS int64
}

// Recorder writes rows as CSV; it is safe for concurrent use.
type Recorder struct {
	lock sync.Mutex
	w    *csv.Writer
}

func NewRecorder(w io.Writer) (*Recorder, error) {
	r := &Recorder{w: csv.NewWriter(w)}
	if err := r.w.Write(header); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) Record(row Row) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.w.Write([]string{
		string(row.Mode),
		strconv.Itoa(row.Txn),
		strconv.FormatUint(row.Version, 10),
		strconv.Itoa(row.Writes),
		strconv.Itoa(row.Affected),
		strconv.FormatInt(row.CommitUS, 10),
	})
}

func (r *Recorder) Flush() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.w.Flush()
	return r.w.Error()
}
