package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/header/headertest"
	hsync "github.com/celestiaorg/headersync/header/sync"
)

func testEntries(from uint64, n int) []hsync.StoreEntry {
	gen := headertest.NewGenerator(int64(from))
	gen.GenUpTo(from + uint64(n))
	headers := gen.Headers()

	entries := make([]hsync.StoreEntry, n)
	for i := range entries {
		height := from + uint64(i)
		entries[i] = hsync.StoreEntry{Height: height, Header: headers[height]}
	}
	return entries
}

func TestExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	exp, err := NewExporter(NewInMemory(), WithWriteBatchSize(7))
	require.NoError(t, err)

	_, err = exp.Head(ctx)
	require.ErrorIs(t, err, header.ErrNotFound)

	entries := testEntries(1001, 24)
	require.NoError(t, exp.Export(ctx, entries))

	head, err := exp.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), head)

	for _, e := range entries {
		h, err := exp.Get(ctx, e.Height)
		require.NoError(t, err)
		assert.Equal(t, e.Header, h)
	}
	_, err = exp.Get(ctx, 1000)
	require.ErrorIs(t, err, header.ErrNotFound)

	heights, err := exp.Heights(ctx)
	require.NoError(t, err)
	require.Len(t, heights, 24)
	assert.Equal(t, uint64(1001), heights[0])
	assert.Equal(t, uint64(1024), heights[23])
}

func TestExporterEmpty(t *testing.T) {
	exp, err := NewExporter(NewInMemory())
	require.NoError(t, err)
	require.NoError(t, exp.Export(context.Background(), nil))

	heights, err := exp.Heights(context.Background())
	require.NoError(t, err)
	assert.Empty(t, heights)
}

func TestExporterInvalidParams(t *testing.T) {
	_, err := NewExporter(NewInMemory(), WithWriteBatchSize(0))
	require.Error(t, err)
}

func TestExporterBadger(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	path := t.TempDir()
	ds, err := OpenBadger(path)
	require.NoError(t, err)

	exp, err := NewExporter(ds)
	require.NoError(t, err)
	entries := testEntries(0, 50)
	require.NoError(t, exp.Export(ctx, entries))
	require.NoError(t, ds.Close())

	// exported headers survive reopening
	ds, err = OpenBadger(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ds.Close())
	})
	exp, err = NewExporter(ds)
	require.NoError(t, err)

	head, err := exp.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(49), head)
	h, err := exp.Get(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, entries[25].Header.Hash, h.Hash)
}
