package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/header/headertest"
)

func chunksOf(headers []*header.Header, r Range, step uint64) []Chunk {
	var chunks []Chunk
	for _, tile := range Tile(r, step) {
		chunks = append(chunks, Chunk{From: tile.From, To: tile.To, Items: headers[tile.From:tile.To]})
	}
	return chunks
}

func TestAssembleContiguous(t *testing.T) {
	gen := headertest.NewGenerator(1)
	gen.GenUpTo(99)
	headers := gen.Headers()

	chunks := chunksOf(headers, Range{From: 0, To: 100}, 10)
	// arrival order does not matter
	chunks[0], chunks[7] = chunks[7], chunks[0]
	chunks[3], chunks[9] = chunks[9], chunks[3]

	hs, err := Assemble(chunks)
	require.NoError(t, err)
	require.Equal(t, 100, hs.Len())
	assert.True(t, hs.Contiguous())
	assert.Empty(t, hs.Gaps())
	assert.Equal(t, Range{From: 0, To: 100}, hs.Range())
	for i, e := range hs.Entries() {
		assert.Equal(t, uint64(i), e.Height)
		assert.Same(t, headers[i], e.Header)
	}
	require.NoError(t, hs.Cover(Range{From: 0, To: 100}))

	h, ok := hs.Get(42)
	require.True(t, ok)
	assert.Same(t, headers[42], h)
	_, ok = hs.Get(100)
	assert.False(t, ok)
}

func TestAssembleGap(t *testing.T) {
	gen := headertest.NewGenerator(2)
	gen.GenUpTo(29)
	headers := gen.Headers()

	chunks := []Chunk{
		{From: 20, To: 30, Items: headers[20:30]},
		{From: 0, To: 10, Items: headers[0:10]},
	}
	hs, err := Assemble(chunks)
	var gapErr *GapError
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, []Range{{From: 10, To: 20}}, gapErr.Gaps)

	require.NotNil(t, hs)
	assert.False(t, hs.Contiguous())
	require.Equal(t, 20, hs.Len())
	entries := hs.Entries()
	assert.Equal(t, uint64(9), entries[9].Height)
	// heights jump over the missing chunk instead of compacting
	assert.Equal(t, uint64(20), entries[10].Height)
	assert.Same(t, headers[20], entries[10].Header)
}

func TestAssembleOverlap(t *testing.T) {
	gen := headertest.NewGenerator(3)
	gen.GenUpTo(20)
	headers := gen.Headers()

	_, err := Assemble([]Chunk{
		{From: 0, To: 10, Items: headers[0:10]},
		{From: 5, To: 15, Items: headers[5:15]},
	})
	require.ErrorIs(t, err, ErrOverlap)
}

func TestHeaderStoreCover(t *testing.T) {
	gen := headertest.NewGenerator(4)
	gen.GenUpTo(40)
	headers := gen.Headers()

	hs, err := Assemble([]Chunk{{From: 10, To: 20, Items: headers[10:20]}})
	require.NoError(t, err)

	var gapErr *GapError
	err = hs.Cover(Range{From: 0, To: 30})
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, []Range{{From: 0, To: 10}, {From: 20, To: 30}}, gapErr.Gaps)

	require.NoError(t, hs.Cover(Range{From: 12, To: 18}))
	require.NoError(t, hs.Cover(Range{}))

	empty, err := Assemble(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
	err = empty.Cover(Range{From: 1, To: 3})
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, []Range{{From: 1, To: 3}}, gapErr.Gaps)
}
