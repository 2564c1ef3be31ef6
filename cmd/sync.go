package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/celestiaorg/headersync/config"
	"github.com/celestiaorg/headersync/header"
	hsync "github.com/celestiaorg/headersync/header/sync"
	"github.com/celestiaorg/headersync/header/store"
	"github.com/celestiaorg/headersync/rpc"
	"github.com/celestiaorg/headersync/source"
)

// Sync constructs a CLI command syncing a range of headers with the given flags.
func Sync(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use: "sync [seeds...]",
		Short: `Builds a header chain over a height range fetched from the given seeds.
With no seeds given, the built-in test nodes are used.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			if err := ParseMiscFlags(ctx, cmd); err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, GetEnv(ctx).Shutdown(context.WithoutCancel(ctx)))
			}()

			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := ParseSyncFlags(cmd, cfg); err != nil {
				return err
			}
			if err := ParseSourcesFlags(cmd, args, cfg); err != nil {
				return err
			}
			if err := ParseExportFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			res, err := RunSync(ctx, cfg)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			if err := PrintOutput(cmd.OutOrStdout(), res, nil, summarize); err != nil {
				return err
			}

			switch {
			case res.Export != nil:
				return &ExitError{Code: 1, Err: res.Export}
			case res.Suspect():
				return &ExitError{Code: 2, Err: ErrSuspect}
			}
			return nil
		},
	}

	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}

// RunSync performs a single sync as configured.
func RunSync(ctx context.Context, cfg *config.Config) (*hsync.Result, error) {
	sources := make([]source.Source, 0, len(cfg.Sources.Seeds))
	for _, seed := range cfg.Sources.Seeds {
		opts := []rpc.ClientOption{rpc.WithTimeout(cfg.Sources.Timeout)}
		if cfg.Sources.AuthToken != "" {
			opts = append(opts, rpc.WithAuthToken(cfg.Sources.AuthToken))
		}
		client, err := rpc.NewClient(ctx, seed, opts...)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		sources = append(sources, source.Retry(client, cfg.RetryParameters()))
	}

	opts, err := cfg.SyncOptions()
	if err != nil {
		return nil, err
	}
	syncer, err := hsync.NewSyncer(sources, opts...)
	if err != nil {
		return nil, err
	}
	if GetEnv(ctx).MetricsEnabled() {
		if err := syncer.WithMetrics(); err != nil {
			return nil, err
		}
	}

	ds, err := openExport(cfg.Export)
	if err != nil {
		return nil, err
	}
	if ds != nil {
		defer func() {
			if err := ds.Close(); err != nil {
				log.Errorw("closing export datastore", "err", err)
			}
		}()
		exporter, err := store.NewExporter(ds, store.WithWriteBatchSize(cfg.Export.WriteBatchSize))
		if err != nil {
			return nil, err
		}
		syncer.SetExporter(exporter)
	}

	return syncer.Run(ctx)
}

// openExport opens the datastore the header store is exported to, if any.
func openExport(cfg config.ExportConfig) (datastore.Batching, error) {
	switch {
	case cfg.Path != "":
		return store.OpenBadger(cfg.Path)
	case cfg.InMemory:
		return store.NewInMemory(), nil
	default:
		return nil, nil
	}
}

type syncSummary struct {
	From        uint64        `json:"from"`
	To          uint64        `json:"to"`
	Fetched     uint64        `json:"fetched"`
	Tip         string        `json:"tip"`
	ChainLength int           `json:"chain_length"`
	StoreLength int           `json:"store_length"`
	Orphans     int           `json:"orphans"`
	Reorgs      int           `json:"reorgs"`
	Checkpoints []header.Hash `json:"checkpoints"`
	Valid       bool          `json:"valid"`
	Gaps        []string      `json:"gaps,omitempty"`
	Took        string        `json:"took"`
}

func summarize(data interface{}) interface{} {
	res := data.(*hsync.Result)
	summary := syncSummary{
		From:        res.State.FromHeight,
		To:          res.State.ToHeight,
		Fetched:     res.State.Fetched,
		ChainLength: len(res.Chain),
		StoreLength: res.Store.Len(),
		Orphans:     res.Stats.Orphans,
		Reorgs:      res.Stats.Reorgs,
		Checkpoints: res.Checkpoints,
		Valid:       res.Validation == nil,
		Took:        res.State.Duration().String(),
	}
	if len(res.Chain) > 0 {
		tip := res.Chain[len(res.Chain)-1]
		summary.Tip = fmt.Sprintf("%d:%s", tip.Height, tip.Hash)
	}
	var gapErr *hsync.GapError
	if errors.As(res.Gap, &gapErr) {
		for _, gap := range gapErr.Gaps {
			summary.Gaps = append(summary.Gaps, gap.String())
		}
	}
	return summary
}
