package source

import (
	"context"

	logging "github.com/ipfs/go-log/v2"

	"github.com/celestiaorg/headersync/header"
)

var log = logging.Logger("source")

//go:generate mockgen -destination=mocks/source.go -package=mocks . Source

// Source is a remote node headers are requested from.
type Source interface {
	// Address identifies the source. It is what other sources get told to exclude.
	Address() string
	// GetBlockHash returns the hash of the header at the given height.
	// Height 0 is the network genesis.
	GetBlockHash(ctx context.Context, height uint64) (header.Hash, error)
	// GetBlockHeader returns the header with the given hash.
	GetBlockHeader(ctx context.Context, hash header.Hash) (*header.Header, error)
	// GetBlockHeaders returns count headers starting at from, ordered by height.
	// Excluded lists addresses the source should avoid querying itself while
	// resolving the request. Honoring it is up to the source.
	GetBlockHeaders(ctx context.Context, from, count uint64, excluded []string) ([]*header.Header, error)
}
