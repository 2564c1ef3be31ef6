package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/header/headertest"
	"github.com/celestiaorg/headersync/source/mocks"
)

var testRetryParams = RetryParameters{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     time.Millisecond * 5,
}

func TestRetryRecovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)

	want := headertest.RandHash()
	gomock.InOrder(
		mock.EXPECT().GetBlockHash(gomock.Any(), uint64(7)).Return(header.Hash{}, errors.New("flaky")),
		mock.EXPECT().GetBlockHash(gomock.Any(), uint64(7)).Return(want, nil),
	)
	mock.EXPECT().Address().Return("mock").AnyTimes()

	src := Retry(mock, testRetryParams)
	got, err := src.GetBlockHash(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRetryGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)

	boom := errors.New("boom")
	mock.EXPECT().GetBlockHeaders(gomock.Any(), uint64(1), uint64(2), gomock.Nil()).
		Return(nil, boom).Times(3)
	mock.EXPECT().Address().Return("mock").AnyTimes()

	src := Retry(mock, testRetryParams)
	_, err := src.GetBlockHeaders(context.Background(), 1, 2, nil)
	require.ErrorIs(t, err, boom)
}

func TestRetryNotFoundIsPermanent(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)

	mock.EXPECT().GetBlockHeader(gomock.Any(), gomock.Any()).Return(nil, header.ErrNotFound).Times(1)

	src := Retry(mock, testRetryParams)
	_, err := src.GetBlockHeader(context.Background(), headertest.RandHash())
	require.ErrorIs(t, err, header.ErrNotFound)
}

func TestRetryDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSource(ctrl)
	assert.Equal(t, Source(mock), Retry(mock, RetryParameters{}))
}

func TestRetryParametersValidate(t *testing.T) {
	require.NoError(t, DefaultRetryParameters().Validate())
	require.Error(t, RetryParameters{MaxRetries: 1}.Validate())
	require.Error(t, RetryParameters{
		MaxRetries:      1,
		InitialInterval: time.Second,
		MaxInterval:     time.Millisecond,
	}.Validate())
}
