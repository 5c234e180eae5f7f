package fsnotify

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
	mu    sync.Mutex
	paths []string
}

func (r *changeRecorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *changeRecorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

func tsOnly(ext string) bool { return ext == ".ts" }

func TestWatcher_ReportsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &changeRecorder{}

	w, err := NewWatcher(tsOnly)
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Watch(dir, rec.record))

	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("export function a() {}"), 0o644))

	require.Eventually(t, func() bool { return rec.seen(path) },
		2*time.Second, 20*time.Millisecond)
}

func TestWatcher_FiltersUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &changeRecorder{}

	w, err := NewWatcher(tsOnly)
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Watch(dir, rec.record))

	ignored := filepath.Join(dir, "notes.md")
	watched := filepath.Join(dir, "b.ts")
	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(watched, []byte("x"), 0o644))

	// once the supported file shows up, the unsupported one had its chance
	require.Eventually(t, func() bool { return rec.seen(watched) },
		2*time.Second, 20*time.Millisecond)
	assert.False(t, rec.seen(ignored))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch(t.TempDir(), func(string) {}))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
