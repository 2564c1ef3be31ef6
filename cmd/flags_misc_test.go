package cmd

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMisc(t *testing.T, args ...string) (*Env, error) {
	ctx := WithEnv(context.Background())
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(MiscFlags())
	require.NoError(t, cmd.Flags().Parse(args))
	return GetEnv(ctx), ParseMiscFlags(ctx, cmd)
}

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestMiscFlagsPprof(t *testing.T) {
	addr := freeAddr(t)
	env, err := parseMisc(t, "--pprof", "--pprof.addr", addr, "--log.level", "error")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/debug/pprof/cmdline")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, env.Shutdown(context.Background()))
	_, err = http.Get("http://" + addr + "/debug/pprof/cmdline") //nolint:bodyclose
	require.Error(t, err)
}

func TestMiscFlagsPprofAddrTaken(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	_, err = parseMisc(t, "--pprof", "--pprof.addr", l.Addr().String(), "--log.level", "error")
	require.Error(t, err)
}

func TestMiscFlagsLogLevels(t *testing.T) {
	_, err := parseMisc(t, "--log.level", "warn", "--log.level.module", "header/sync:debug")
	require.NoError(t, err)

	_, err = parseMisc(t, "--log.level", "loud")
	require.Error(t, err)
	_, err = parseMisc(t, "--log.level", "error", "--log.level.module", "header/sync")
	require.Error(t, err)
}
