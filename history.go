package vdb

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// rootHistory remembers the roots of recent commits by version.
// A nil history records nothing.
type rootHistory struct {
	roots *lru.Cache
}

func newRootHistory(size int) (*rootHistory, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidOption, err.Error())
	}
	return &rootHistory{roots: cache}, nil
}

func (h *rootHistory) add(version uint64, root common.Hash) {
	if h == nil {
		return
	}
	h.roots.Add(version, root)
}

func (h *rootHistory) get(version uint64) (common.Hash, bool) {
	if h == nil {
		return common.Hash{}, false
	}
	v, ok := h.roots.Get(version)
	if !ok {
		return common.Hash{}, false
	}
	return v.(common.Hash), true
}

func (h *rootHistory) len() int {
	if h == nil {
		return 0
	}
	return h.roots.Len()
}
