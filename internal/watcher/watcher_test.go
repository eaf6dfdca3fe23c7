package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_ReportsTargetChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "credentials.db")

	rec := newRecorder()
	w, err := New(target, 30*time.Millisecond, newTestLogger(), rec.fire)
	require.NoError(t, err)
	defer w.Close()

	// The file does not exist yet; creating it counts as a change.
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o600))

	select {
	case got := <-rec.ch:
		assert.Equal(t, w.Target(), got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_SideFileMapsToTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "credentials.sqlite")

	rec := newRecorder()
	w, err := New(target, 30*time.Millisecond, newTestLogger(), rec.fire)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(target+"-journal", []byte("j"), 0o600))

	select {
	case got := <-rec.ch:
		assert.Equal(t, w.Target(), got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "credentials.db")

	rec := newRecorder()
	w, err := New(target, 20*time.Millisecond, newTestLogger(), rec.fire)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.db.bak"), []byte("x"), 0o600))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestWatcher_IsRelevant(t *testing.T) {
	w := &Watcher{target: "/data/credentials.db"}

	assert.True(t, w.isRelevant("/data/credentials.db"))
	assert.True(t, w.isRelevant("/data/credentials.db-wal"))
	assert.True(t, w.isRelevant("/data/./credentials.db"))
	assert.False(t, w.isRelevant("/data/credentials.dbx"))
	assert.False(t, w.isRelevant("/other/credentials.db"))
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "credentials.db"), 0, newTestLogger(), func(string) {})
	require.Error(t, err)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "credentials.db"), 0, newTestLogger(), func(string) {})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
