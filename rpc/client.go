package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/libs/utils"
	"github.com/celestiaorg/headersync/source"
)

var log = logging.Logger("rpc/chain")

// ClientOption configures a Client.
type ClientOption func(*clientParams)

type clientParams struct {
	timeout    time.Duration
	httpHeader http.Header
}

// WithTimeout bounds the duration of every single call. Zero means no bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(p *clientParams) {
		p.timeout = timeout
	}
}

// WithAuthToken sets a bearer token on every request.
func WithAuthToken(token string) ClientOption {
	return func(p *clientParams) {
		p.httpHeader.Set("Authorization", "Bearer "+token)
	}
}

// Client is a Source served by a remote node over JSON-RPC.
type Client struct {
	addr    string
	api     API
	timeout time.Duration
	closer  jsonrpc.ClientCloser
}

var _ source.Source = (*Client)(nil)

// NewClient creates a Client for the node at addr. Addresses without a scheme are
// assumed to be plain HTTP.
func NewClient(ctx context.Context, addr string, opts ...ClientOption) (*Client, error) {
	endpoint, err := utils.Endpoint(addr)
	if err != nil {
		return nil, fmt.Errorf("rpc: %w", err)
	}

	params := clientParams{httpHeader: http.Header{}}
	for _, opt := range opts {
		opt(&params)
	}

	cl := &Client{addr: addr, timeout: params.timeout}
	closer, err := jsonrpc.NewClient(ctx, endpoint, Namespace, &cl.api.Internal, params.httpHeader)
	if err != nil {
		return nil, fmt.Errorf("rpc: connecting to %s: %w", endpoint, err)
	}
	cl.closer = closer
	log.Debugw("created client", "addr", addr, "endpoint", endpoint)
	return cl, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.closer()
}

func (c *Client) Address() string {
	return c.addr
}

func (c *Client) GetBlockHash(ctx context.Context, height uint64) (header.Hash, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	hash, err := c.api.Internal.GetBlockHash(ctx, height)
	return hash, remoteErr(err)
}

func (c *Client) GetBlockHeader(ctx context.Context, hash header.Hash) (*header.Header, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	h, err := c.api.Internal.GetBlockHeader(ctx, hash)
	if err != nil {
		return nil, remoteErr(err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: hash %s", header.ErrNotFound, hash)
	}
	return h, nil
}

func (c *Client) GetBlockHeaders(
	ctx context.Context,
	from, count uint64,
	excluded []string,
) ([]*header.Header, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	hs, err := c.api.Internal.GetBlockHeaders(ctx, from, count, excluded)
	return hs, remoteErr(err)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout == 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// remoteErr restores header.ErrNotFound, which loses its identity on the wire.
func remoteErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), header.ErrNotFound.Error()) {
		return fmt.Errorf("%w: %s", header.ErrNotFound, err)
	}
	return err
}
