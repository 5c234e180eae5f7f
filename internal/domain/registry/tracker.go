package registry

import (
	"os"
	"path/filepath"
	"time"
)

// TrackedFile records per-file parse bookkeeping. Identity is the absolute
// path. Exists=false marks a file removed from disk whose record is retained
// until explicit cleanup.
type TrackedFile struct {
	Path         string    `json:"path"`
	LastParsedAt time.Time `json:"last_parsed_at"`
	LastModified time.Time `json:"last_modified_at"`
	Exists       bool      `json:"exists"`
}

// Tracker keeps the per-file staleness records. Staleness is timestamp-only:
// a file rewritten with identical content inside the mtime resolution window
// is considered not stale. That is a known limitation, not a bug.
type Tracker struct {
	files map[string]*TrackedFile
}

// NewTracker creates an empty file tracker.
func NewTracker() *Tracker {
	return &Tracker{files: make(map[string]*TrackedFile)}
}

// resolve normalizes a path to absolute form. Identity in the tracker (and
// in Symbol.SourceFile) is always the resolved path.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Track records that the file was parsed now. For an already-tracked file it
// advances LastParsedAt, re-reads the on-disk mtime (when the file is
// present), and updates Exists. New files are inserted with both timestamps
// set to now. Returns the resolved path.
func (t *Tracker) Track(path string, exists bool) string {
	abs := resolve(path)
	now := time.Now()

	if rec, ok := t.files[abs]; ok {
		rec.LastParsedAt = now
		if exists {
			if info, err := os.Stat(abs); err == nil {
				rec.LastModified = info.ModTime()
			}
		}
		rec.Exists = exists
		return abs
	}

	t.files[abs] = &TrackedFile{
		Path:         abs,
		LastParsedAt: now,
		LastModified: now,
		Exists:       exists,
	}
	return abs
}

// Discover inserts a record for a file found by a full scan but never parsed.
// LastParsedAt stays zero so NeedsRefresh flags it for parsing. Already
// tracked files are left untouched. Returns true if a record was added.
func (t *Tracker) Discover(path string) bool {
	abs := resolve(path)
	if _, ok := t.files[abs]; ok {
		return false
	}
	rec := &TrackedFile{Path: abs, Exists: true}
	if info, err := os.Stat(abs); err == nil {
		rec.LastModified = info.ModTime()
	}
	t.files[abs] = rec
	return true
}

// NeedsRefresh reports whether the file must be (re)parsed: false when the
// file is gone from disk, true when it was never tracked, otherwise true iff
// the on-disk mtime is strictly newer than the recorded parse time.
func (t *Tracker) NeedsRefresh(path string) bool {
	abs := resolve(path)

	info, err := os.Stat(abs)
	if err != nil {
		return false // nothing on disk to refresh
	}

	rec, ok := t.files[abs]
	if !ok {
		return true // never parsed
	}
	return info.ModTime().After(rec.LastParsedAt)
}

// ListStale returns the paths of tracked files that exist and need a refresh.
func (t *Tracker) ListStale() []string {
	var stale []string
	for path, rec := range t.files {
		if rec.Exists && t.NeedsRefresh(path) {
			stale = append(stale, path)
		}
	}
	return stale
}

// MarkDeleted flags the record as no longer on disk without removing it.
func (t *Tracker) MarkDeleted(path string) {
	if rec, ok := t.files[resolve(path)]; ok {
		rec.Exists = false
	}
}

// Get returns the tracked record for a path, if any.
func (t *Tracker) Get(path string) (TrackedFile, bool) {
	rec, ok := t.files[resolve(path)]
	if !ok {
		return TrackedFile{}, false
	}
	return *rec, true
}

// All returns a snapshot of every tracked record.
func (t *Tracker) All() []TrackedFile {
	out := make([]TrackedFile, 0, len(t.files))
	for _, rec := range t.files {
		out = append(out, *rec)
	}
	return out
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int { return len(t.files) }

// Clear empties the tracker.
func (t *Tracker) Clear() {
	t.files = make(map[string]*TrackedFile)
}
