package sync

import (
	"sync"

	"github.com/celestiaorg/headersync/chain"
)

// Assembler serializes insertions into a Chain, which does not support concurrent
// writers, while fetches feeding it run concurrently.
type Assembler struct {
	lk    sync.Mutex
	chain *chain.Chain
}

// NewAssembler wraps c.
func NewAssembler(c *chain.Chain) *Assembler {
	return &Assembler{chain: c}
}

// AddChunk inserts the chunk's headers in their order and returns how many got
// connected. Chunks may come in any height order, the chain links by hash.
func (a *Assembler) AddChunk(c Chunk) int {
	a.lk.Lock()
	defer a.lk.Unlock()
	return a.chain.AddHeaders(c.Items...)
}

// LongestChain returns the current best branch, root first.
func (a *Assembler) LongestChain() []chain.Entry {
	a.lk.Lock()
	defer a.lk.Unlock()
	return a.chain.LongestChain()
}

// ChainStats summarizes the chain structure.
type ChainStats struct {
	Label   string
	Height  uint64
	Length  int
	Known   int
	Orphans int
	Tips    int
	Reorgs  int
}

// Stats reports the current shape of the chain.
func (a *Assembler) Stats() ChainStats {
	a.lk.Lock()
	defer a.lk.Unlock()
	tip := a.chain.Tip()
	return ChainStats{
		Label:   a.chain.Label(),
		Height:  tip.Height,
		Length:  int(tip.Height-a.chain.Root().Height) + 1,
		Known:   a.chain.Len(),
		Orphans: a.chain.Orphans(),
		Tips:    a.chain.Tips(),
		Reorgs:  a.chain.Reorgs(),
	}
}
