package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/celestiaorg/headersync/config"
	hsync "github.com/celestiaorg/headersync/header/sync"
)

var (
	configFlag = "config"

	parallelFlag      = "parallel"
	fromFlag          = "from"
	toFlag            = "to"
	stepFlag          = "step"
	checkpointsFlag   = "checkpoints"
	trustedFlag       = "trusted-checkpoint"
	confirmationsFlag = "confirmations"
	labelFlag         = "label"

	timeoutFlag   = "sources.timeout"
	retriesFlag   = "sources.retries"
	authTokenFlag = "sources.token"

	exportFlag       = "export"
	exportMemoryFlag = "export.memory"
)

// ConfigFlags gives the flag pointing to a config file.
func ConfigFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		configFlag,
		"",
		"Path to a TOML config file. Flags given explicitly override its values",
	)

	return flags
}

// SyncFlags gives a set of hardcoded sync flags.
func SyncFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.BoolP(
		parallelFlag,
		"p",
		false,
		"Splits the range across all seeds and fetches from them concurrently",
	)

	flags.Uint64P(
		fromFlag,
		"f",
		hsync.DefaultFrom,
		"Height of the root header to build the chain on",
	)

	flags.Uint64P(
		toFlag,
		"t",
		hsync.DefaultTo,
		"Last height to sync",
	)

	flags.Uint64P(
		stepFlag,
		"s",
		0,
		fmt.Sprintf("Amount of headers per request. 0 picks it from the range, capped to %d", hsync.MaxStep),
	)

	flags.IntP(
		checkpointsFlag,
		"k",
		hsync.DefaultCheckpoints,
		"Amount of hashes sampled from the built chain and validated against it",
	)

	flags.StringSlice(
		trustedFlag,
		nil,
		"Trusted checkpoint the chain must agree with. (Format: <height>:<hex hash>)",
	)

	flags.Uint64(
		confirmationsFlag,
		hsync.DefaultConfirmationDepth,
		"Amount of headers on top of a header for it to be considered confirmed",
	)

	flags.String(
		labelFlag,
		"main",
		"Name of the synced chain in logs",
	)

	return flags
}

// SourcesFlags gives a set of hardcoded flags configuring how seeds are reached.
func SourcesFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.Duration(
		timeoutFlag,
		0,
		"Timeout of a single request to a seed. 0 keeps the configured one",
	)

	flags.Uint64(
		retriesFlag,
		0,
		"Amount of retries of a failed request. 0 keeps the configured one",
	)

	flags.String(
		authTokenFlag,
		"",
		"Bearer token sent to seeds",
	)

	return flags
}

// ExportFlags gives a set of hardcoded flags for the header store export.
func ExportFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		exportFlag,
		"",
		"Directory of a Badger datastore the synced headers are exported to",
	)

	flags.Bool(
		exportMemoryFlag,
		false,
		"Exports the synced headers into memory. Only exercises the export",
	)

	return flags
}

// LoadConfig loads the config file given by the config flag, or the default config.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cmd.Flag(configFlag).Value.String()
	if path == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("cmd: loading config: %w", err)
	}
	return cfg, nil
}

// ParseSyncFlags applies explicitly given sync flags over the config.
func ParseSyncFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed(parallelFlag) {
		cfg.Sync.Parallel, err = flags.GetBool(parallelFlag)
		if err != nil {
			return err
		}
	}
	if flags.Changed(fromFlag) {
		cfg.Sync.From, err = flags.GetUint64(fromFlag)
		if err != nil {
			return err
		}
	}
	if flags.Changed(toFlag) {
		cfg.Sync.To, err = flags.GetUint64(toFlag)
		if err != nil {
			return err
		}
	}
	if flags.Changed(stepFlag) {
		cfg.Sync.Step, err = flags.GetUint64(stepFlag)
		if err != nil {
			return err
		}
	}
	if flags.Changed(checkpointsFlag) {
		cfg.Sync.Checkpoints, err = flags.GetInt(checkpointsFlag)
		if err != nil {
			return err
		}
	}
	if flags.Changed(trustedFlag) {
		trusted, err := flags.GetStringSlice(trustedFlag)
		if err != nil {
			return err
		}
		for _, cp := range trusted {
			if _, err := hsync.ParseCheckpoint(cp); err != nil {
				return fmt.Errorf("cmd: while parsing '%s': %w", trustedFlag, err)
			}
		}
		cfg.Sync.TrustedCheckpoints = append(cfg.Sync.TrustedCheckpoints, trusted...)
	}
	if flags.Changed(confirmationsFlag) {
		cfg.Sync.ConfirmationDepth, err = flags.GetUint64(confirmationsFlag)
		if err != nil {
			return err
		}
	}
	if flags.Changed(labelFlag) {
		cfg.Sync.Label = cmd.Flag(labelFlag).Value.String()
	}
	return nil
}

// ParseSourcesFlags applies explicitly given source flags over the config.
// Positional seeds replace the configured ones.
func ParseSourcesFlags(cmd *cobra.Command, seeds []string, cfg *config.Config) error {
	if len(seeds) != 0 {
		cfg.Sources.Seeds = seeds
	}

	timeout, err := cmd.Flags().GetDuration(timeoutFlag)
	if err != nil {
		return err
	}
	if timeout != 0 {
		cfg.Sources.Timeout = timeout
	}

	retries, err := cmd.Flags().GetUint64(retriesFlag)
	if err != nil {
		return err
	}
	if retries != 0 {
		cfg.Sources.Retry.MaxRetries = retries
	}

	if token := cmd.Flag(authTokenFlag).Value.String(); token != "" {
		cfg.Sources.AuthToken = token
	}
	return nil
}

// ParseExportFlags applies explicitly given export flags over the config.
func ParseExportFlags(cmd *cobra.Command, cfg *config.Config) error {
	if path := cmd.Flag(exportFlag).Value.String(); path != "" {
		cfg.Export.Path = path
	}

	inMemory, err := cmd.Flags().GetBool(exportMemoryFlag)
	if err != nil {
		return err
	}
	if inMemory {
		cfg.Export.InMemory = true
	}
	return nil
}
