package chain

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	logging "github.com/ipfs/go-log/v2"

	"github.com/celestiaorg/headersync/header"
)

var log = logging.Logger("chain")

// Entry is a single link of the longest chain.
type Entry struct {
	Height uint64
	Hash   header.Hash
	Header *header.Header
}

type node struct {
	header *header.Header
	height uint64
	parent *node
}

func (n *node) entry() Entry {
	return Entry{Height: n.height, Hash: n.header.Hash, Header: n.header}
}

// Chain keeps every known header rooted at a synthetic genesis and tracks competing
// branches. Headers are linked by their predecessor hash, so the order they are added
// in does not matter: headers with an unknown parent wait in the orphan pool until the
// parent shows up.
//
// Chain is not safe for concurrent use.
type Chain struct {
	label         string
	confirmations uint64

	root  *node
	tip   *node
	nodes map[header.Hash]*node
	// leaves of every known branch
	tips map[header.Hash]*node

	orphans *simplelru.LRU[header.Hash, *header.Header]
	// maps a missing parent hash to the orphans waiting for it
	waiting map[header.Hash]map[header.Hash]struct{}

	reorgs int
	// set while orphans leave the pool to get connected
	adopting bool
}

// New creates a Chain rooted at the given root header.
// The last confirmationDepth entries of the longest chain are not reported by Confirmed.
func New(label string, confirmationDepth uint64, root *header.RootHeader, opts ...Option) (*Chain, error) {
	if root == nil || root.Header == nil {
		return nil, fmt.Errorf("chain: nil root")
	}

	params := DefaultParameters()
	for _, opt := range opts {
		opt(&params)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := &Chain{
		label:         label,
		confirmations: confirmationDepth,
		nodes:         make(map[header.Hash]*node),
		tips:          make(map[header.Hash]*node),
		waiting:       make(map[header.Hash]map[header.Hash]struct{}),
	}

	orphans, err := simplelru.NewLRU[header.Hash, *header.Header](params.OrphanLimit, c.evictOrphan)
	if err != nil {
		return nil, fmt.Errorf("chain: creating orphan pool: %w", err)
	}
	c.orphans = orphans

	c.root = &node{header: root.Header, height: root.Height}
	c.tip = c.root
	c.nodes[root.Hash] = c.root
	c.tips[root.Hash] = c.root
	log.Debugw("created chain", "label", label, "root_height", root.Height, "root_hash", root.Hash)
	return c, nil
}

// Label returns the name the chain was created with.
func (c *Chain) Label() string {
	return c.label
}

// AddHeaders inserts a batch of headers and returns how many got connected to the
// chain, including previously buffered orphans. Known headers are ignored.
func (c *Chain) AddHeaders(headers ...*header.Header) int {
	var added int
	for _, h := range headers {
		if h == nil || h.Hash.IsZero() {
			continue
		}
		if _, ok := c.nodes[h.Hash]; ok {
			continue
		}
		if c.orphans.Contains(h.Hash) {
			continue
		}

		parent, ok := c.nodes[h.PrevHash]
		if !ok {
			c.addOrphan(h)
			continue
		}
		added += c.connect(h, parent)
	}
	return added
}

// connect links h under parent and then links every orphan that was waiting on it.
func (c *Chain) connect(h *header.Header, parent *node) int {
	type link struct {
		h      *header.Header
		parent *node
	}

	var added int
	queue := []link{{h, parent}}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]

		n := &node{header: l.h, height: l.parent.height + 1, parent: l.parent}
		c.nodes[l.h.Hash] = n
		delete(c.tips, l.parent.header.Hash)
		c.tips[l.h.Hash] = n
		c.setTip(n)
		added++

		children := make([]header.Hash, 0, len(c.waiting[l.h.Hash]))
		for hash := range c.waiting[l.h.Hash] {
			children = append(children, hash)
		}
		for _, hash := range children {
			child, ok := c.orphans.Peek(hash)
			if !ok {
				continue
			}
			queue = append(queue, link{child, n})
			c.adopting = true
			c.orphans.Remove(hash)
			c.adopting = false
		}
	}
	return added
}

// setTip makes n the best tip if it is higher than the current one.
// Equal heights keep the current tip.
func (c *Chain) setTip(n *node) {
	if n.height <= c.tip.height {
		return
	}

	if !c.descends(n, c.tip) {
		c.reorgs++
		log.Infow("reorg",
			"label", c.label,
			"old_height", c.tip.height,
			"old_hash", c.tip.header.Hash,
			"new_height", n.height,
			"new_hash", n.header.Hash,
		)
	}
	c.tip = n
}

// descends reports whether n has anc as an ancestor (or is anc).
func (c *Chain) descends(n, anc *node) bool {
	for n != nil && n.height > anc.height {
		n = n.parent
	}
	return n == anc
}

func (c *Chain) addOrphan(h *header.Header) {
	c.orphans.Add(h.Hash, h)
	children, ok := c.waiting[h.PrevHash]
	if !ok {
		children = make(map[header.Hash]struct{})
		c.waiting[h.PrevHash] = children
	}
	children[h.Hash] = struct{}{}
}

// evictOrphan is called by the orphan pool whenever an orphan leaves it,
// either adopted by its parent or dropped for being the oldest.
func (c *Chain) evictOrphan(hash header.Hash, h *header.Header) {
	children := c.waiting[h.PrevHash]
	delete(children, hash)
	if len(children) == 0 {
		delete(c.waiting, h.PrevHash)
	}
	if !c.adopting {
		log.Warnw("dropped orphan header", "label", c.label, "hash", hash, "parent", h.PrevHash)
	}
}

// LongestChain returns the best branch ordered from the root up to the tip.
func (c *Chain) LongestChain() []Entry {
	out := make([]Entry, c.tip.height-c.root.height+1)
	for n := c.tip; n != nil; n = n.parent {
		out[n.height-c.root.height] = n.entry()
	}
	return out
}

// Confirmed returns the longest chain without its last confirmationDepth entries.
func (c *Chain) Confirmed() []Entry {
	lc := c.LongestChain()
	if uint64(len(lc)) <= c.confirmations {
		return nil
	}
	return lc[:uint64(len(lc))-c.confirmations]
}

// Tip returns the head of the longest chain.
func (c *Chain) Tip() Entry {
	return c.tip.entry()
}

// Root returns the synthetic genesis.
func (c *Chain) Root() Entry {
	return c.root.entry()
}

// Has reports whether the header is connected to the chain, on any branch.
func (c *Chain) Has(hash header.Hash) bool {
	_, ok := c.nodes[hash]
	return ok
}

// Len returns the amount of connected headers, root included.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Orphans returns the amount of headers waiting for their parent.
func (c *Chain) Orphans() int {
	return c.orphans.Len()
}

// Tips returns the amount of known branches.
func (c *Chain) Tips() int {
	return len(c.tips)
}

// Reorgs returns how many times the best tip moved to another branch.
func (c *Chain) Reorgs() int {
	return c.reorgs
}
