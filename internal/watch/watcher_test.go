package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherDebouncesDatabaseWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "visionary.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("x"), 0o644))

	var calls atomic.Int32
	w, err := NewSettingsWatcher(dbPath, 50*time.Millisecond, func(context.Context) { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(dbPath+"-wal", []byte{byte(i)}, 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes should produce one callback")
	assert.GreaterOrEqual(t, w.Events(), 1)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "visionary.db")

	var calls atomic.Int32
	w, err := NewSettingsWatcher(dbPath, 30*time.Millisecond, func(context.Context) { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, w.Events())
}

func TestWatcherStartFailsForMissingDir(t *testing.T) {
	w, err := NewSettingsWatcher(filepath.Join(t.TempDir(), "missing", "visionary.db"), 0, nil, nil)
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewSettingsWatcher(filepath.Join(t.TempDir(), "visionary.db"), 0, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
