package sync

import (
	"fmt"

	"github.com/celestiaorg/headersync/header"
)

// Chunk is a contiguous, height-aligned batch of headers: Items[i] sits at height From+i.
type Chunk struct {
	From, To uint64
	Items    []*header.Header
}

// Range returns the heights the chunk was requested for.
func (c Chunk) Range() Range {
	return Range{From: c.From, To: c.To}
}

// Validate checks the chunk holds exactly one well-formed header per height.
func (c Chunk) Validate() error {
	if uint64(len(c.Items)) != c.Range().Len() {
		return fmt.Errorf("%w: chunk %s holds %d", ErrShortBatch, c.Range(), len(c.Items))
	}
	for i, h := range c.Items {
		if err := h.Validate(); err != nil {
			return fmt.Errorf("sync: chunk %s: height %d: %w", c.Range(), c.From+uint64(i), err)
		}
	}
	return nil
}
