package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=info\n"), 0o644))

	var reloads atomic.Int32
	w, err := NewWatcher(envFile, slog.New(slog.DiscardHandler), func() {
		reloads.Add(1)
	})
	require.NoError(t, err)
	defer w.Stop()

	w.Start(context.Background())

	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\n"), 0o644))

	assert.Eventually(t, func() bool {
		return reloads.Load() == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=info\n"), 0o644))

	var reloads atomic.Int32
	w, err := NewWatcher(envFile, slog.New(slog.DiscardHandler), func() {
		reloads.Add(1)
	})
	require.NoError(t, err)
	defer w.Stop()

	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "other.txt"), []byte("x"), 0o644))

	time.Sleep(2 * debounceWindow)
	assert.Zero(t, reloads.Load())
}
