package header

import "fmt"

// RootHeader is a Header re-rooted to act as the synthetic genesis of a locally built chain.
// Its predecessor is the ZeroHash sentinel and its difficulty bits are decoded into an integer.
type RootHeader struct {
	*Header
	// Height is the chain height the root was fetched at.
	Height uint64
	// CompactBits is Header.Bits decoded from hex.
	CompactBits uint32
}

// NewRoot applies the root adjustments to a copy of h.
func NewRoot(h *Header, height uint64) (*RootHeader, error) {
	if h == nil {
		return nil, fmt.Errorf("header: nil root header")
	}
	bits, err := ParseBits(h.Bits)
	if err != nil {
		return nil, fmt.Errorf("header: adjusting root at height %d: %w", height, err)
	}

	root := h.Copy()
	root.PrevHash = ZeroHash
	return &RootHeader{
		Header:      root,
		Height:      height,
		CompactBits: bits,
	}, nil
}
