package sync

import (
	"fmt"
	"sort"

	"github.com/celestiaorg/headersync/header"
)

// StoreEntry is a header at its height.
type StoreEntry struct {
	Height uint64
	Header *header.Header
}

// HeaderStore is a flat, height-ordered view over fetched chunks, built independently
// of the chain's fork tracking. It is kept for diagnostics and export.
type HeaderStore struct {
	entries []StoreEntry
	gaps    []Range
}

// Assemble orders chunks by their start height and flattens them, assigning every
// header the height From+i. A missing chunk is not compacted away: heights jump over
// it and the hole is reported through a *GapError alongside the store.
// Chunks covering the same heights fail with ErrOverlap.
func Assemble(chunks []Chunk) (*HeaderStore, error) {
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From < sorted[j].From
	})

	var total int
	for _, c := range sorted {
		total += len(c.Items)
	}

	hs := &HeaderStore{entries: make([]StoreEntry, 0, total)}
	var next uint64
	for i, c := range sorted {
		if len(c.Items) == 0 {
			continue
		}
		if len(hs.entries) > 0 {
			switch {
			case c.From < next:
				return hs, fmt.Errorf("%w: chunk %d starts at %d, below %d",
					ErrOverlap, i, c.From, next)
			case c.From > next:
				hs.gaps = append(hs.gaps, Range{From: next, To: c.From})
			}
		}
		for j, h := range c.Items {
			hs.entries = append(hs.entries, StoreEntry{Height: c.From + uint64(j), Header: h})
		}
		next = c.From + uint64(len(c.Items))
	}

	if len(hs.gaps) > 0 {
		return hs, &GapError{Gaps: hs.Gaps()}
	}
	return hs, nil
}

// Entries returns the headers in height order.
func (hs *HeaderStore) Entries() []StoreEntry {
	return hs.entries
}

// Len returns the amount of stored headers.
func (hs *HeaderStore) Len() int {
	return len(hs.entries)
}

// Range returns the span from the lowest to past the highest stored height.
func (hs *HeaderStore) Range() Range {
	if len(hs.entries) == 0 {
		return Range{}
	}
	return Range{From: hs.entries[0].Height, To: hs.entries[len(hs.entries)-1].Height + 1}
}

// Gaps returns the holes found between stored heights.
func (hs *HeaderStore) Gaps() []Range {
	out := make([]Range, len(hs.gaps))
	copy(out, hs.gaps)
	return out
}

// Contiguous reports whether stored heights form a single run without holes.
func (hs *HeaderStore) Contiguous() bool {
	return len(hs.gaps) == 0
}

// Cover checks the store holds every height of r, reporting missing heights at
// either end as well as inner holes.
func (hs *HeaderStore) Cover(r Range) error {
	if r.Empty() {
		return nil
	}
	if len(hs.entries) == 0 {
		return &GapError{Gaps: []Range{r}}
	}

	var gaps []Range
	have := hs.Range()
	if have.From > r.From {
		gaps = append(gaps, Range{From: r.From, To: min(have.From, r.To)})
	}
	for _, g := range hs.gaps {
		if g.To > r.From && g.From < r.To {
			gaps = append(gaps, Range{From: max(g.From, r.From), To: min(g.To, r.To)})
		}
	}
	if have.To < r.To {
		gaps = append(gaps, Range{From: max(have.To, r.From), To: r.To})
	}

	if len(gaps) > 0 {
		return &GapError{Gaps: gaps}
	}
	return nil
}

// Get returns the header stored at the given height.
func (hs *HeaderStore) Get(height uint64) (*header.Header, bool) {
	i := sort.Search(len(hs.entries), func(i int) bool {
		return hs.entries[i].Height >= height
	})
	if i == len(hs.entries) || hs.entries[i].Height != height {
		return nil, false
	}
	return hs.entries[i].Header, true
}
