package source

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/header/headertest"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	gen := headertest.NewGenerator(1)
	gen.GenUpTo(99)
	src := NewLocal("local", gen.Headers())

	assert.Equal(t, "local", src.Address())
	assert.Equal(t, uint64(99), src.Height())

	hash, err := src.GetBlockHash(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, gen.Headers()[0].Hash, hash)

	h, err := src.GetBlockHeader(ctx, gen.Headers()[42].Hash)
	require.NoError(t, err)
	assert.Equal(t, gen.Headers()[42], h)

	hs, err := src.GetBlockHeaders(ctx, 10, 20, []string{"other"})
	require.NoError(t, err)
	require.Len(t, hs, 20)
	assert.Equal(t, gen.Headers()[10].Hash, hs[0].Hash)
	assert.Equal(t, gen.Headers()[29].Hash, hs[19].Hash)
	assert.Equal(t, [][]string{{"other"}}, src.Excluded())

	_, err = src.GetBlockHash(ctx, 100)
	require.ErrorIs(t, err, header.ErrNotFound)
	_, err = src.GetBlockHeader(ctx, headertest.RandHash())
	require.ErrorIs(t, err, header.ErrNotFound)
	_, err = src.GetBlockHeaders(ctx, 90, 11, nil)
	require.ErrorIs(t, err, header.ErrNotFound)
}

func TestLocalGetBlockHeadersOutOfRange(t *testing.T) {
	ctx := context.Background()
	gen := headertest.NewGenerator(2)
	gen.GenUpTo(20)
	src := NewLocal("local", gen.Headers())

	tests := []struct {
		name        string
		from, count uint64
	}{
		{"huge count", 10, math.MaxUint64},
		{"huge start", math.MaxUint64, 2},
		{"past the tip", 15, 7},
		{"start past the tip", 22, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs, err := src.GetBlockHeaders(ctx, tt.from, tt.count, nil)
			require.ErrorIs(t, err, header.ErrNotFound)
			assert.Nil(t, hs)
		})
	}

	hs, err := src.GetBlockHeaders(ctx, 15, 6, nil)
	require.NoError(t, err)
	assert.Len(t, hs, 6)
	hs, err = src.GetBlockHeaders(ctx, 21, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, hs)
}
