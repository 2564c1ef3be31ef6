package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/celestiaorg/headersync/header"
)

// Local is an in-memory Source over headers indexed by height.
type Local struct {
	addr string

	lk      sync.RWMutex
	headers []*header.Header
	byHash  map[header.Hash]*header.Header
	// excluded keeps the exclusion lists received, for inspection
	excluded [][]string
}

// NewLocal creates a Local source. headers[i] is served as height i.
func NewLocal(addr string, headers []*header.Header) *Local {
	l := &Local{
		addr:   addr,
		byHash: make(map[header.Hash]*header.Header, len(headers)),
	}
	l.Append(headers...)
	return l
}

// Append extends the served chain.
func (l *Local) Append(headers ...*header.Header) {
	l.lk.Lock()
	defer l.lk.Unlock()
	for _, h := range headers {
		l.headers = append(l.headers, h)
		l.byHash[h.Hash] = h
	}
}

func (l *Local) Address() string {
	return l.addr
}

// Height returns the height of the last served header.
func (l *Local) Height() uint64 {
	l.lk.RLock()
	defer l.lk.RUnlock()
	if len(l.headers) == 0 {
		return 0
	}
	return uint64(len(l.headers) - 1)
}

func (l *Local) GetBlockHash(_ context.Context, height uint64) (header.Hash, error) {
	l.lk.RLock()
	defer l.lk.RUnlock()
	if height >= uint64(len(l.headers)) {
		return header.Hash{}, fmt.Errorf("%w: height %d", header.ErrNotFound, height)
	}
	return l.headers[height].Hash, nil
}

func (l *Local) GetBlockHeader(_ context.Context, hash header.Hash) (*header.Header, error) {
	l.lk.RLock()
	defer l.lk.RUnlock()
	h, ok := l.byHash[hash]
	if !ok {
		return nil, fmt.Errorf("%w: hash %s", header.ErrNotFound, hash)
	}
	return h.Copy(), nil
}

func (l *Local) GetBlockHeaders(
	_ context.Context,
	from, count uint64,
	excluded []string,
) ([]*header.Header, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	l.excluded = append(l.excluded, excluded)

	have := uint64(len(l.headers))
	if count > have || from > have-count {
		return nil, fmt.Errorf("%w: range [%d:%d), have up to %d",
			header.ErrNotFound, from, from+count, len(l.headers))
	}
	out := make([]*header.Header, count)
	for i := range out {
		out[i] = l.headers[from+uint64(i)].Copy()
	}
	return out, nil
}

// Excluded returns every exclusion list received by GetBlockHeaders so far.
func (l *Local) Excluded() [][]string {
	l.lk.RLock()
	defer l.lk.RUnlock()
	out := make([][]string, len(l.excluded))
	copy(out, l.excluded)
	return out
}
