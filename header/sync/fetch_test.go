package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/header/headertest"
	"github.com/celestiaorg/headersync/source"
	"github.com/celestiaorg/headersync/source/mocks"
)

func TestFetchRangeTiles(t *testing.T) {
	ctx := context.Background()
	gen := headertest.NewGenerator(1)
	gen.GenUpTo(150)
	headers := gen.Headers()

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)
	excluded := []string{"peer-1", "peer-2"}

	mock.EXPECT().Address().Return("mock").AnyTimes()
	mock.EXPECT().GetBlockHash(gomock.Any(), uint64(0)).Return(headers[0].Hash, nil)
	gomock.InOrder(
		mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(100), uint64(20), excluded).
			Return(headers[100:120], nil),
		mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(120), uint64(20), excluded).
			Return(headers[120:140], nil),
		mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(140), uint64(5), excluded).
			Return(headers[140:145], nil),
	)

	var progress int
	f := &fetcher{genesis: headers[0].Hash, clock: clock.New(), progress: func(n int) { progress += n }}
	chunk, err := f.fetchRange(ctx, mock, Range{From: 100, To: 145}, 20, excluded)
	require.NoError(t, err)
	require.NoError(t, chunk.Validate())
	assert.Equal(t, Range{From: 100, To: 145}, chunk.Range())
	assert.Equal(t, headers[100:145], chunk.Items)
	assert.Equal(t, 45, progress)
}

func TestFetchRangeErrorAborts(t *testing.T) {
	ctx := context.Background()
	gen := headertest.NewGenerator(2)
	gen.GenUpTo(50)
	headers := gen.Headers()

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)
	boom := errors.New("connection reset")

	mock.EXPECT().Address().Return("mock").AnyTimes()
	mock.EXPECT().GetBlockHash(gomock.Any(), uint64(0)).Return(headers[0].Hash, nil)
	mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(10), uint64(10), gomock.Nil()).
		Return(headers[10:20], nil)
	// the third batch is never requested
	mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(20), uint64(10), gomock.Nil()).
		Return(nil, boom)

	f := &fetcher{clock: clock.New()}
	_, err := f.fetchRange(ctx, mock, Range{From: 10, To: 40}, 10, nil)
	require.ErrorIs(t, err, boom)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "mock", ferr.Source)
	assert.Equal(t, "GetBlockHeaders", ferr.Op)
	assert.Equal(t, Range{From: 20, To: 30}, ferr.Range)
}

func TestFetchRangeShortBatch(t *testing.T) {
	ctx := context.Background()
	gen := headertest.NewGenerator(3)
	gen.GenUpTo(20)
	headers := gen.Headers()

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)
	mock.EXPECT().Address().Return("mock").AnyTimes()
	mock.EXPECT().GetBlockHash(gomock.Any(), uint64(0)).Return(headers[0].Hash, nil)
	mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(1), uint64(10), gomock.Any()).
		Return(headers[1:8], nil)

	f := &fetcher{clock: clock.New()}
	_, err := f.fetchRange(ctx, mock, Range{From: 1, To: 11}, 10, nil)
	require.ErrorIs(t, err, ErrShortBatch)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
}

func TestFetchRangeGenesisMismatch(t *testing.T) {
	ctx := context.Background()
	ours := headertest.NewGenerator(4)
	ours.GenUpTo(20)
	theirs := headertest.NewGenerator(5)
	theirs.GenUpTo(20)

	src := source.NewLocal("other-network", theirs.Headers())
	f := &fetcher{genesis: ours.Headers()[0].Hash, clock: clock.New()}
	_, err := f.fetchRange(ctx, src, Range{From: 1, To: 11}, 10, nil)
	require.ErrorIs(t, err, ErrGenesisMismatch)
	assert.Empty(t, src.Excluded(), "no batch is requested after a mismatch")
}

func TestFetchRangeEmpty(t *testing.T) {
	gen := headertest.NewGenerator(6)
	gen.GenUpTo(5)
	src := source.NewLocal("local", gen.Headers())

	f := &fetcher{clock: clock.New()}
	chunk, err := f.fetchRange(context.Background(), src, Range{From: 3, To: 3}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, chunk.Items)
	assert.Empty(t, src.Excluded())
}

func TestChunkValidate(t *testing.T) {
	gen := headertest.NewGenerator(7)
	headers := gen.GenHeaders(3)

	require.NoError(t, Chunk{From: 5, To: 8, Items: headers}.Validate())
	require.ErrorIs(t, Chunk{From: 5, To: 9, Items: headers}.Validate(), ErrShortBatch)
	require.Error(t, Chunk{From: 5, To: 8, Items: []*header.Header{headers[0], nil, headers[2]}}.Validate())

	unhashed := headers[1].Copy()
	unhashed.Hash = header.ZeroHash
	require.Error(t, Chunk{From: 5, To: 8, Items: []*header.Header{headers[0], unhashed, headers[2]}}.Validate())

	badBits := headers[1].Copy()
	badBits.Bits = "zz"
	require.Error(t, Chunk{From: 5, To: 8, Items: []*header.Header{headers[0], badBits, headers[2]}}.Validate())
}

func TestFetchRangeMalformedHeader(t *testing.T) {
	ctx := context.Background()
	gen := headertest.NewGenerator(8)
	gen.GenUpTo(20)
	headers := gen.Headers()

	batch := make([]*header.Header, 10)
	copy(batch, headers[1:11])
	batch[4] = batch[4].Copy()
	batch[4].Hash = header.ZeroHash

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)
	mock.EXPECT().Address().Return("mock").AnyTimes()
	mock.EXPECT().GetBlockHash(gomock.Any(), uint64(0)).Return(headers[0].Hash, nil)
	mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(1), uint64(10), gomock.Any()).Return(batch, nil)

	f := &fetcher{clock: clock.New()}
	_, err := f.fetchRange(ctx, mock, Range{From: 1, To: 11}, 10, nil)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "GetBlockHeaders", ferr.Op)
	assert.Contains(t, err.Error(), "height 5")
}
