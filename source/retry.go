package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/celestiaorg/headersync/header"
)

// RetryParameters configure the Retry decorator.
type RetryParameters struct {
	// MaxRetries is the amount of retries after the first attempt. Zero disables retrying.
	MaxRetries uint64
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the delay between retries.
	MaxInterval time.Duration
}

// DefaultRetryParameters returns the default retry policy.
func DefaultRetryParameters() RetryParameters {
	return RetryParameters{
		MaxRetries:      3,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Validate checks the parameters are sane.
func (p RetryParameters) Validate() error {
	if p.MaxRetries > 0 && p.InitialInterval <= 0 {
		return fmt.Errorf("source: invalid retry interval: %v", p.InitialInterval)
	}
	if p.MaxInterval < p.InitialInterval {
		return fmt.Errorf("source: max retry interval %v is less than initial %v", p.MaxInterval, p.InitialInterval)
	}
	return nil
}

type retrying struct {
	Source
	params RetryParameters
}

// Retry wraps src so that failed calls are retried with exponential backoff.
// ErrNotFound is not retried, neither is anything once ctx is done.
func Retry(src Source, params RetryParameters) Source {
	if params.MaxRetries == 0 {
		return src
	}
	return &retrying{Source: src, params: params}
}

func (r *retrying) GetBlockHash(ctx context.Context, height uint64) (header.Hash, error) {
	return retry(ctx, r, "GetBlockHash", func() (header.Hash, error) {
		return r.Source.GetBlockHash(ctx, height)
	})
}

func (r *retrying) GetBlockHeader(ctx context.Context, hash header.Hash) (*header.Header, error) {
	return retry(ctx, r, "GetBlockHeader", func() (*header.Header, error) {
		return r.Source.GetBlockHeader(ctx, hash)
	})
}

func (r *retrying) GetBlockHeaders(
	ctx context.Context,
	from, count uint64,
	excluded []string,
) ([]*header.Header, error) {
	return retry(ctx, r, "GetBlockHeaders", func() ([]*header.Header, error) {
		return r.Source.GetBlockHeaders(ctx, from, count, excluded)
	})
}

func (r *retrying) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.params.InitialInterval
	exp.MaxInterval = r.params.MaxInterval
	// attempts are bounded by MaxRetries instead
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, r.params.MaxRetries), ctx)
}

func retry[T any](ctx context.Context, r *retrying, op string, fn func() (T, error)) (T, error) {
	return backoff.RetryNotifyWithData(
		func() (T, error) {
			out, err := fn()
			if err != nil && !retriable(ctx, err) {
				return out, backoff.Permanent(err)
			}
			return out, err
		},
		r.backOff(ctx),
		func(err error, next time.Duration) {
			log.Warnw("retrying request",
				"source", r.Address(),
				"op", op,
				"next_attempt_in", next,
				"err", err,
			)
		},
	)
}

// retriable reports whether err is worth another attempt. Timeouts of a single call are,
// while the caller's context being done is not.
func retriable(ctx context.Context, err error) bool {
	return ctx.Err() == nil && !errors.Is(err, header.ErrNotFound)
}
