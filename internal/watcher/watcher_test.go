package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		StabilityWindow: 50 * time.Millisecond,
		RescanInterval:  time.Hour, // initial scan + fsnotify only
		MaxDepth:        2,
	}
}

func waitEvent(t *testing.T, events <-chan Event, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-events:
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestInitialScanEmitsBacklog(t *testing.T) {
	dir := t.TempDir()
	pre := filepath.Join(dir, "backlog.txt")
	require.NoError(t, os.WriteFile(pre, []byte("already here"), 0o644))

	w, err := Observe(dir, testConfig())
	require.NoError(t, err)
	defer w.Close()

	ev, ok := waitEvent(t, w.Events(), 3*time.Second)
	require.True(t, ok, "expected backlog event")
	assert.Equal(t, pre, ev.Path)
}

func TestNewFileEmittedAfterStability(t *testing.T) {
	dir := t.TempDir()
	w, err := Observe(dir, testConfig())
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "fresh.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	ev, ok := waitEvent(t, w.Events(), 3*time.Second)
	require.True(t, ok, "expected event for new file")
	assert.Equal(t, path, ev.Path)

	// The same unchanged file is not reported twice within one run.
	_, again := waitEvent(t, w.Events(), 300*time.Millisecond)
	assert.False(t, again)
}

func TestNoiseAndWrongExtensionFiltered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie.crdownload"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("x"), 0o644))

	w, err := Observe(dir, testConfig())
	require.NoError(t, err)
	defer w.Close()

	ev, ok := waitEvent(t, w.Events(), 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "real.txt"), ev.Path)

	_, more := waitEvent(t, w.Events(), 300*time.Millisecond)
	assert.False(t, more, "noise files must never be emitted")
}

func TestDepthBound(t *testing.T) {
	dir := t.TempDir()
	shallow := filepath.Join(dir, "a", "b")
	deep := filepath.Join(shallow, "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(shallow, "ok.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "too-deep.txt"), []byte("x"), 0o644))

	w, err := Observe(dir, testConfig())
	require.NoError(t, err)
	defer w.Close()

	ev, ok := waitEvent(t, w.Events(), 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(shallow, "ok.txt"), ev.Path)

	_, more := waitEvent(t, w.Events(), 300*time.Millisecond)
	assert.False(t, more, "files beyond the depth bound must not be emitted")
}

func TestManagerReconfigure(t *testing.T) {
	oldDir := t.TempDir()
	newDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(oldDir, "old.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(newDir, "new.txt"), []byte("x"), 0o644))

	m := NewManager()
	defer m.Close()
	require.NoError(t, m.Start("transcripts", oldDir, testConfig()))

	ev, ok := waitEvent(t, m.Events(), 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(oldDir, "old.txt"), ev.Path)

	require.NoError(t, m.Reconfigure("transcripts", newDir))

	ev, ok = waitEvent(t, m.Events(), 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(newDir, "new.txt"), ev.Path)

	// Files arriving under the old root are no longer sourced.
	require.NoError(t, os.WriteFile(filepath.Join(oldDir, "late.txt"), []byte("x"), 0o644))
	if late, got := waitEvent(t, m.Events(), 300*time.Millisecond); got {
		assert.NotEqual(t, filepath.Join(oldDir, "late.txt"), late.Path)
	}
}

func TestStartDuplicateRole(t *testing.T) {
	m := NewManager()
	defer m.Close()
	dir := t.TempDir()
	require.NoError(t, m.Start("transcripts", dir, testConfig()))
	assert.Error(t, m.Start("transcripts", dir, testConfig()))
}
