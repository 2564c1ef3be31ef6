package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	hsync "github.com/celestiaorg/headersync/header/sync"
	"github.com/celestiaorg/headersync/source"
)

// DefaultSeeds are the test nodes synced from when no seeds are given.
var DefaultSeeds = []string{
	"http://127.0.0.1:26660",
	"http://127.0.0.1:26661",
	"http://127.0.0.1:26662",
}

// Config is the main configuration structure for headersync.
type Config struct {
	Sync    SyncConfig
	Sources SourcesConfig
	Export  ExportConfig
}

// SyncConfig configures the range and the mode of a sync.
type SyncConfig struct {
	From              uint64
	To                uint64
	Step              uint64
	Parallel          bool
	Checkpoints       int
	ConfirmationDepth uint64
	Label             string
	// TrustedCheckpoints are "height:hash" pairs the synced chain must agree with.
	TrustedCheckpoints []string
}

// SourcesConfig configures how sources are reached.
type SourcesConfig struct {
	Seeds     []string
	Timeout   time.Duration
	AuthToken string `toml:",omitempty"`
	Retry     RetryConfig
}

// RetryConfig configures retries of failed source calls.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ExportConfig configures where the flat header store of a sync is written.
type ExportConfig struct {
	// Path is the Badger directory to export to. Empty disables the export.
	Path string `toml:",omitempty"`
	// InMemory exports into memory, only useful to exercise the export path.
	InMemory       bool
	WriteBatchSize int
}

// DefaultConfig provides the default Config.
func DefaultConfig() *Config {
	retry := source.DefaultRetryParameters()
	return &Config{
		Sync: SyncConfig{
			From:              hsync.DefaultFrom,
			To:                hsync.DefaultTo,
			Checkpoints:       hsync.DefaultCheckpoints,
			ConfirmationDepth: hsync.DefaultConfirmationDepth,
			Label:             "main",
		},
		Sources: SourcesConfig{
			Seeds:   append([]string(nil), DefaultSeeds...),
			Timeout: time.Second * 30,
			Retry: RetryConfig{
				MaxRetries:      retry.MaxRetries,
				InitialInterval: retry.InitialInterval,
				MaxInterval:     retry.MaxInterval,
			},
		},
		Export: ExportConfig{
			WriteBatchSize: 2048,
		},
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if cfg.Sync.To < cfg.Sync.From {
		return fmt.Errorf("config: sync: last height %d is below the start height %d", cfg.Sync.To, cfg.Sync.From)
	}
	if cfg.Sync.Checkpoints < 0 {
		return fmt.Errorf("config: sync: negative amount of checkpoints")
	}
	if _, err := cfg.TrustedCheckpoints(); err != nil {
		return fmt.Errorf("config: sync: %w", err)
	}
	if cfg.Sources.Timeout < 0 {
		return fmt.Errorf("config: sources: negative timeout")
	}
	if err := cfg.RetryParameters().Validate(); err != nil {
		return fmt.Errorf("config: sources: %w", err)
	}
	if cfg.Export.WriteBatchSize <= 0 {
		return fmt.Errorf("config: export: write batch size must be positive")
	}
	return nil
}

// TrustedCheckpoints parses the configured trusted checkpoints.
func (cfg *Config) TrustedCheckpoints() ([]hsync.Checkpoint, error) {
	cps := make([]hsync.Checkpoint, 0, len(cfg.Sync.TrustedCheckpoints))
	for _, s := range cfg.Sync.TrustedCheckpoints {
		cp, err := hsync.ParseCheckpoint(s)
		if err != nil {
			return nil, err
		}
		cps = append(cps, cp)
	}
	return cps, nil
}

// SyncOptions turns the sync section into options for the syncer.
func (cfg *Config) SyncOptions() ([]hsync.Options, error) {
	trusted, err := cfg.TrustedCheckpoints()
	if err != nil {
		return nil, err
	}
	return []hsync.Options{
		hsync.WithRange(cfg.Sync.From, cfg.Sync.To),
		hsync.WithStep(cfg.Sync.Step),
		hsync.WithParallel(cfg.Sync.Parallel),
		hsync.WithCheckpoints(cfg.Sync.Checkpoints),
		hsync.WithConfirmationDepth(cfg.Sync.ConfirmationDepth),
		hsync.WithLabel(cfg.Sync.Label),
		hsync.WithTrustedCheckpoints(trusted...),
	}, nil
}

// RetryParameters returns the retry section as source parameters.
func (cfg *Config) RetryParameters() source.RetryParameters {
	return source.RetryParameters{
		MaxRetries:      cfg.Sources.Retry.MaxRetries,
		InitialInterval: cfg.Sources.Retry.InitialInterval,
		MaxInterval:     cfg.Sources.Retry.MaxInterval,
	}
}

// SaveConfig saves Config 'cfg' under the given 'path'.
func SaveConfig(path string, cfg *Config) error {
	path, err := expand(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return cfg.Encode(f)
}

// LoadConfig loads Config from the given 'path'. Keys missing in the file keep their
// DefaultConfig values, while keys set explicitly, zeros included, override them.
func LoadConfig(path string) (*Config, error) {
	path, err := expand(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := cfg.Decode(f); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Encode encodes a given Config into w.
func (cfg *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Decode decodes a Config from a given reader r.
func (cfg *Config) Decode(r io.Reader) error {
	_, err := toml.NewDecoder(r).Decode(cfg)
	return err
}

func expand(path string) (string, error) {
	return homedir.Expand(filepath.Clean(path))
}
