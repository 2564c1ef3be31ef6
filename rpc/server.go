package rpc

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"

	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/source"
)

// Server serves a Source over JSON-RPC under the chain namespace.
type Server struct {
	srv      *http.Server
	rpc      *jsonrpc.RPCServer
	listener net.Listener

	started atomic.Bool
}

// NewServer creates a Server for src listening on addr (host:port).
func NewServer(src source.Source, addr string) *Server {
	rpc := jsonrpc.NewServer()
	rpc.Register(Namespace, &handler{src: src})

	s := &Server{rpc: rpc}
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// the amount of time allowed to read request headers. set to the default 2 seconds
		ReadHeaderTimeout: 2 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler serving JSON-RPC on "/" and a liveness probe on "/health".
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(s.rpc)
	return r
}

// Start starts the Server.
func (s *Server) Start(context.Context) error {
	couldStart := s.started.CompareAndSwap(false, true)
	if !couldStart {
		log.Warn("cannot start server: already started")
		return nil
	}
	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		s.started.Store(false)
		return err
	}
	s.listener = listener
	log.Infow("server started", "listening on", listener.Addr().String())
	//nolint:errcheck
	go s.srv.Serve(listener)
	return nil
}

// Stop stops the Server.
func (s *Server) Stop(ctx context.Context) error {
	couldStop := s.started.CompareAndSwap(true, false)
	if !couldStop {
		log.Warn("cannot stop server: already stopped")
		return nil
	}
	err := s.srv.Shutdown(ctx)
	if err != nil {
		return err
	}
	s.listener = nil
	log.Info("server stopped")
	return nil
}

// ListenAddr returns the listen address of the server.
func (s *Server) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handler exposes only the chain methods of a Source.
type handler struct {
	src source.Source
}

func (h *handler) GetBlockHash(ctx context.Context, height uint64) (header.Hash, error) {
	return h.src.GetBlockHash(ctx, height)
}

func (h *handler) GetBlockHeader(ctx context.Context, hash header.Hash) (*header.Header, error) {
	return h.src.GetBlockHeader(ctx, hash)
}

func (h *handler) GetBlockHeaders(
	ctx context.Context,
	from, count uint64,
	excluded []string,
) ([]*header.Header, error) {
	log.Debugw("serving headers", "from", from, "count", count, "excluded", excluded)
	return h.src.GetBlockHeaders(ctx, from, count, excluded)
}
