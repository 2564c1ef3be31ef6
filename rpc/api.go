package rpc

import (
	"context"

	"github.com/celestiaorg/headersync/header"
)

// Namespace is the JSON-RPC namespace chain methods are served under.
const Namespace = "chain"

// API is the client side of the chain namespace. go-jsonrpc fills Internal.
type API struct {
	Internal struct {
		GetBlockHash func(
			ctx context.Context,
			height uint64,
		) (header.Hash, error) `perm:"read"`
		GetBlockHeader func(
			ctx context.Context,
			hash header.Hash,
		) (*header.Header, error) `perm:"read"`
		GetBlockHeaders func(
			ctx context.Context,
			from, count uint64,
			excluded []string,
		) ([]*header.Header, error) `perm:"read"`
	}
}
