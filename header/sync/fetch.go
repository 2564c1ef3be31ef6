package sync

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/libs/utils"
	"github.com/celestiaorg/headersync/source"
)

// fetcher requests header ranges from sources.
type fetcher struct {
	// genesis is the network genesis every source must agree on. Zero skips the check.
	genesis header.Hash
	// clock times batches
	clock   clock.Clock
	metrics *metrics
	// progress is called after every successful batch with the amount of headers in it.
	progress func(n int)
}

// fetchRange requests r from src in batches of step headers, one batch after another,
// and returns them as a single Chunk. Excluded is passed through to the source.
// Any failing call aborts the whole range.
func (f *fetcher) fetchRange(
	ctx context.Context,
	src source.Source,
	r Range,
	step uint64,
	excluded []string,
) (_ Chunk, err error) {
	ctx, span := tracer.Start(ctx, "sync/fetch-range", trace.WithAttributes(
		attribute.String("source", src.Address()),
		attribute.Int64("from", int64(r.From)),
		attribute.Int64("to", int64(r.To)),
		attribute.Int64("step", int64(step)),
	))
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	if r.Empty() {
		return Chunk{From: r.From, To: r.To}, nil
	}
	if err := f.probeGenesis(ctx, src, r); err != nil {
		return Chunk{}, err
	}

	chunk := Chunk{From: r.From, To: r.To, Items: make([]*header.Header, 0, r.Len())}
	for _, tile := range Tile(r, step) {
		hs, err := f.fetchBatch(ctx, src, tile, excluded)
		if err != nil {
			return Chunk{}, err
		}
		chunk.Items = append(chunk.Items, hs...)
		if f.progress != nil {
			f.progress(len(hs))
		}
		log.Debugw("fetched batch",
			"source", src.Address(),
			"from", tile.From,
			"to", tile.To,
		)
	}
	return chunk, nil
}

// probeGenesis asks src for the network genesis and compares it to the expected one.
func (f *fetcher) probeGenesis(ctx context.Context, src source.Source, r Range) error {
	genesis, err := src.GetBlockHash(ctx, 0)
	if err != nil {
		f.metrics.observeFailure(ctx, src.Address(), "GetBlockHash")
		return &FetchError{Source: src.Address(), Op: "GetBlockHash", Range: r, Err: err}
	}
	if !f.genesis.IsZero() && genesis != f.genesis {
		return &FetchError{
			Source: src.Address(),
			Op:     "GetBlockHash",
			Range:  r,
			Err:    fmt.Errorf("%w: expected %s, got %s", ErrGenesisMismatch, f.genesis, genesis),
		}
	}
	return nil
}

func (f *fetcher) fetchBatch(
	ctx context.Context,
	src source.Source,
	tile Range,
	excluded []string,
) ([]*header.Header, error) {
	start := f.clock.Now()
	hs, err := src.GetBlockHeaders(ctx, tile.From, tile.Len(), excluded)
	if err != nil {
		f.metrics.observeFailure(ctx, src.Address(), "GetBlockHeaders")
		return nil, &FetchError{Source: src.Address(), Op: "GetBlockHeaders", Range: tile, Err: err}
	}

	batch := Chunk{From: tile.From, To: tile.To, Items: hs}
	if err := batch.Validate(); err != nil {
		f.metrics.observeFailure(ctx, src.Address(), "GetBlockHeaders")
		return nil, &FetchError{Source: src.Address(), Op: "GetBlockHeaders", Range: tile, Err: err}
	}
	f.metrics.observeBatch(ctx, src.Address(), len(hs), f.clock.Since(start))
	return hs, nil
}
