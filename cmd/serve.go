package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/celestiaorg/headersync/header/headertest"
	"github.com/celestiaorg/headersync/rpc"
	"github.com/celestiaorg/headersync/source"
)

var (
	serveAddrFlag   = "addr"
	serveHeightFlag = "height"
	serveSeedFlag   = "seed"
)

// ServeFlags gives a set of hardcoded flags for serving a synthetic chain.
func ServeFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		serveAddrFlag,
		"127.0.0.1:26660",
		"Address to serve the chain on",
	)

	flags.Uint64(
		serveHeightFlag,
		2100,
		"Height of the served chain",
	)

	flags.Int64(
		serveSeedFlag,
		1,
		"Seed of the generated chain. Nodes serving the same seed serve the same chain",
	)

	return flags
}

// Serve constructs a CLI command serving a deterministic synthetic chain over JSON-RPC,
// so that a sync can be tried out locally.
func Serve(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serves a deterministic synthetic header chain over JSON-RPC until stopped.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			if err := ParseMiscFlags(ctx, cmd); err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, GetEnv(ctx).Shutdown(context.WithoutCancel(ctx)))
			}()

			addr := cmd.Flag(serveAddrFlag).Value.String()
			height, err := cmd.Flags().GetUint64(serveHeightFlag)
			if err != nil {
				return err
			}
			seed, err := cmd.Flags().GetInt64(serveSeedFlag)
			if err != nil {
				return err
			}

			gen := headertest.NewGenerator(seed)
			gen.GenUpTo(height)
			srv := rpc.NewServer(source.NewLocal(addr, gen.Headers()), addr)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			log.Infow("serving chain",
				"addr", srv.ListenAddr(),
				"height", height,
				"genesis", gen.Headers()[0].Hash,
			)

			ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			<-ctx.Done()
			return srv.Stop(context.WithoutCancel(ctx))
		},
	}

	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}
