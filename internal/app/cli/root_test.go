package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/ports"
	"lexicon/internal/app/bootstrap"
	"lexicon/internal/platform/config"
)

func memoryRuntime(t *testing.T) *bootstrap.Runtime {
	t.Helper()
	runtime, err := bootstrap.BuildRuntime(config.Config{
		DatabaseDriver:   "memory",
		WorkerInterval:   time.Minute,
		SweepConcurrency: 1,
		OutboxBatchSize:  10,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return runtime
}

func run(t *testing.T, runtime *bootstrap.Runtime, args ...string) (string, error) {
	t.Helper()
	cmd := RootCommand(WithRuntime(runtime), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--database-driver", "memory"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDirectoryCommandsUpdateMemoryDirectory(t *testing.T) {
	runtime := memoryRuntime(t)

	out, err := run(t, runtime, "directory", "roles", "rev-1", "--reviewer")
	require.NoError(t, err)
	assert.Equal(t, "rev-1 reviewer=true admin=false\n", out)

	reviewer, err := runtime.Module.Directory.IsReviewer(context.Background(), "rev-1")
	require.NoError(t, err)
	assert.True(t, reviewer)

	out, err = run(t, runtime, "directory", "profile", "rev-1", "--username", "ana", "--municipality", "Basco")
	require.NoError(t, err)
	assert.Contains(t, out, `username="ana"`)

	profiles, err := runtime.Module.Directory.ListProfiles(context.Background(), []string{"rev-1"})
	require.NoError(t, err)
	assert.Equal(t, ports.Profile{UserID: "rev-1", Username: "ana", Municipality: "Basco"}, profiles["rev-1"])
}

func TestMaintenanceAndOutboxCommands(t *testing.T) {
	runtime := memoryRuntime(t)

	out, err := run(t, runtime, "maintenance", "run")
	require.NoError(t, err)
	assert.Contains(t, out, "dictionary: archived=0 deleted=0")
	assert.Contains(t, out, "failed:     0")

	out, err = run(t, runtime, "outbox", "relay")
	require.NoError(t, err)
	assert.Equal(t, "published=0\n", out)

	out, err = run(t, runtime, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema up to date\n", out)
}

func TestContributionCommands(t *testing.T) {
	runtime := memoryRuntime(t)

	out, err := run(t, runtime, "contributions", "summary", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "total:            0")
	assert.Contains(t, out, "last:             -")

	out, err = run(t, runtime, "contributions", "leaderboard", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")

	_, err = run(t, runtime, "contributions", "summary")
	assert.Error(t, err)
}
