package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"
	logging "github.com/ipfs/go-log/v2"

	"github.com/celestiaorg/headersync/header"
	hsync "github.com/celestiaorg/headersync/header/sync"
)

var log = logging.Logger("header/store")

var (
	storePrefix = datastore.NewKey("headers")
	headKey     = datastore.NewKey("head")
	heightsKey  = datastore.NewKey("height")
)

// Exporter writes assembled HeaderStores into a Datastore, one key per height.
// It is write-mostly diagnostics: nothing in a sync reads exported headers back.
type Exporter struct {
	ds     datastore.Batching
	params Parameters
}

// NewExporter constructs an Exporter over the given datastore.
func NewExporter(ds datastore.Batching, opts ...Option) (*Exporter, error) {
	params := DefaultParameters()
	for _, opt := range opts {
		opt(&params)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("header/store: exporter params: %w", err)
	}

	return &Exporter{
		ds:     namespace.Wrap(ds, storePrefix),
		params: params,
	}, nil
}

// Export writes the entries in batches and points the head to the last one.
// Entries are expected in height order.
func (e *Exporter) Export(ctx context.Context, entries []hsync.StoreEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for from := 0; from < len(entries); from += e.params.WriteBatchSize {
		to := min(from+e.params.WriteBatchSize, len(entries))
		if err := e.flush(ctx, entries[from:to]); err != nil {
			return fmt.Errorf("header/store: writing heights %d-%d: %w",
				entries[from].Height, entries[to-1].Height, err)
		}
	}

	log.Infow("exported headers",
		"from", entries[0].Height,
		"to", entries[len(entries)-1].Height,
		"amount", len(entries),
	)
	return nil
}

func (e *Exporter) flush(ctx context.Context, entries []hsync.StoreEntry) error {
	batch, err := e.ds.Batch(ctx)
	if err != nil {
		return err
	}

	// collect all the headers in the batch to be written
	for _, entry := range entries {
		b, err := entry.Header.MarshalBinary()
		if err != nil {
			return err
		}
		if err = batch.Put(ctx, heightKey(entry.Height), b); err != nil {
			return err
		}
	}

	// and the reference to the new head
	head := make([]byte, 8)
	binary.BigEndian.PutUint64(head, entries[len(entries)-1].Height)
	if err = batch.Put(ctx, headKey, head); err != nil {
		return err
	}

	// finally, commit the batch on disk
	return batch.Commit(ctx)
}

// Get loads the header exported at the given height.
func (e *Exporter) Get(ctx context.Context, height uint64) (*header.Header, error) {
	b, err := e.ds.Get(ctx, heightKey(height))
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, fmt.Errorf("%w: height %d", header.ErrNotFound, height)
		}
		return nil, err
	}

	h := new(header.Header)
	if err := h.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("header/store: decoding header at height %d: %w", height, err)
	}
	return h, nil
}

// Head returns the height of the last exported header.
func (e *Exporter) Head(ctx context.Context) (uint64, error) {
	b, err := e.ds.Get(ctx, headKey)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return 0, fmt.Errorf("%w: no head", header.ErrNotFound)
		}
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("header/store: corrupted head of %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// Heights lists every exported height in ascending order.
func (e *Exporter) Heights(ctx context.Context) ([]uint64, error) {
	results, err := e.ds.Query(ctx, query.Query{Prefix: heightsKey.String(), KeysOnly: true})
	if err != nil {
		return nil, err
	}
	defer results.Close()

	var heights []uint64
	for {
		res, ok := results.NextSync()
		if !ok {
			break
		}
		if res.Error != nil {
			return nil, res.Error
		}
		height, err := strconv.ParseUint(datastore.RawKey(res.Key).BaseNamespace(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("header/store: unexpected key %s: %w", res.Key, err)
		}
		heights = append(heights, height)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights, nil
}

func heightKey(height uint64) datastore.Key {
	return heightsKey.ChildString(strconv.FormatUint(height, 10))
}
