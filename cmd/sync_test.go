package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/config"
	"github.com/celestiaorg/headersync/header/headertest"
	"github.com/celestiaorg/headersync/header/store"
	"github.com/celestiaorg/headersync/rpc"
	"github.com/celestiaorg/headersync/source"
)

func newTestSeed(t *testing.T, seed int64, height uint64) string {
	gen := headertest.NewGenerator(seed)
	gen.GenUpTo(height)
	srv := httptest.NewServer(rpc.NewServer(source.NewLocal("seed", gen.Headers()), "127.0.0.1:0").Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func newTestSyncCmd() *cobra.Command {
	return Sync(ConfigFlags(), SyncFlags(), SourcesFlags(), ExportFlags(), MiscFlags())
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (*bytes.Buffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	out := bytes.NewBuffer(nil)
	cmd.SetOut(out)
	cmd.SetErr(bytes.NewBuffer(nil))
	cmd.SetArgs(args)
	return out, cmd.ExecuteContext(WithEnv(ctx))
}

func TestSyncCommand(t *testing.T) {
	seed := newTestSeed(t, 1, 1100)

	out, err := execute(t, newTestSyncCmd(), seed, "-f", "1000", "-t", "1024", "-s", "24", "--log.level", "error")
	require.NoError(t, err)
	assert.Zero(t, ExitCode(err))

	var resp struct {
		Result syncSummary `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, uint64(1000), resp.Result.From)
	assert.Equal(t, uint64(1024), resp.Result.To)
	assert.Equal(t, 25, resp.Result.ChainLength)
	assert.Equal(t, 24, resp.Result.StoreLength)
	assert.Len(t, resp.Result.Checkpoints, 2)
	assert.True(t, resp.Result.Valid)
	assert.Empty(t, resp.Result.Gaps)
}

func TestSyncCommandParallelExport(t *testing.T) {
	seeds := []string{newTestSeed(t, 2, 400), newTestSeed(t, 2, 400), newTestSeed(t, 2, 400)}
	dir := filepath.Join(t.TempDir(), "export")

	args := append(seeds, "-p", "-f", "100", "-t", "400", "--export", dir, "--log.level", "error")
	_, err := execute(t, newTestSyncCmd(), args...)
	require.NoError(t, err)

	ds, err := store.OpenBadger(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ds.Close())
	})
	exp, err := store.NewExporter(ds)
	require.NoError(t, err)
	head, err := exp.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(400), head)
}

func TestSyncCommandFailed(t *testing.T) {
	seed := newTestSeed(t, 3, 1010)

	_, err := execute(t, newTestSyncCmd(), seed, "-f", "1000", "-t", "1024", "--sources.retries", "1",
		"--log.level", "error")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestSyncCommandSuspect(t *testing.T) {
	seed := newTestSeed(t, 4, 100)

	wrong := headertest.RandHash()
	_, err := execute(t, newTestSyncCmd(), seed, "-f", "10", "-t", "50",
		"--trusted-checkpoint", "20:"+wrong.String(), "--log.level", "error")
	require.ErrorIs(t, err, ErrSuspect)
	assert.Equal(t, 2, ExitCode(err))
}

func TestSyncCommandConfigFile(t *testing.T) {
	seed := newTestSeed(t, 5, 300)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, ConfigInit(), path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	cfg.Sources.Seeds = []string{seed}
	cfg.Sync.From, cfg.Sync.To = 200, 300
	require.NoError(t, config.SaveConfig(path, cfg))

	// flags override the file
	out, err := execute(t, newTestSyncCmd(), "--config", path, "-t", "250", "--log.level", "error")
	require.NoError(t, err)

	var resp struct {
		Result syncSummary `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, uint64(200), resp.Result.From)
	assert.Equal(t, uint64(250), resp.Result.To)
	assert.Equal(t, 51, resp.Result.ChainLength)
}

func TestSyncCommandInvalidRange(t *testing.T) {
	_, err := execute(t, newTestSyncCmd(), "127.0.0.1:1", "-f", "100", "-t", "50", "--log.level", "error")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Zero(t, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2, Err: ErrSuspect}))
}
