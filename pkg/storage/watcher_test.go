package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu   sync.Mutex
	dirs []string
}

func (r *changeRecorder) record(dir string) {
	r.mu.Lock()
	r.dirs = append(r.dirs, dir)
	r.mu.Unlock()
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dirs)
}

func newTestWatcher(t *testing.T, rec *changeRecorder) *Watcher {
	t.Helper()
	isNote := func(name string) bool {
		ext := filepath.Ext(name)
		return ext == ".md" || ext == ".txt"
	}
	w, err := NewWatcher(isNote, 30*time.Millisecond, rec.record, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWatcherReportsNoteChanges(t *testing.T) {
	dir := t.TempDir()
	rec := &changeRecorder{}
	w := newTestWatcher(t, rec)
	require.NoError(t, w.Watch(dir))

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o644))
	}

	assert.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	rec.mu.Lock()
	assert.Equal(t, dir, rec.dirs[0])
	rec.mu.Unlock()
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &changeRecorder{}
	w := newTestWatcher(t, rec)
	require.NoError(t, w.Watch(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0o644))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestWatcherSwitchAndStop(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	rec := &changeRecorder{}
	w := newTestWatcher(t, rec)

	require.NoError(t, w.Watch(first))
	require.NoError(t, w.Watch(second))
	assert.Equal(t, second, w.Dir())

	require.NoError(t, w.Watch(""))
	assert.Equal(t, "", w.Dir())

	require.NoError(t, os.WriteFile(filepath.Join(second, "a.md"), []byte("a"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestWatcherRejectsMissingDir(t *testing.T) {
	w := newTestWatcher(t, &changeRecorder{})
	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
	assert.Equal(t, "", w.Dir())
}

func TestWatcherCloseDropsPendingChanges(t *testing.T) {
	dir := t.TempDir()
	rec := &changeRecorder{}
	isNote := func(name string) bool { return filepath.Ext(name) == ".md" }
	w, err := NewWatcher(isNote, 200*time.Millisecond, rec.record, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, w.Close())
	closedAt := rec.count()
	assert.Zero(t, w.debouncer.Pending())

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, closedAt, rec.count())
}
