package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTracker_TrackThenFresh(t *testing.T) {
	tr := NewTracker()
	path := writeTempFile(t, "a.ts", "export function a() {}")

	abs := tr.Track(path, true)
	assert.True(t, filepath.IsAbs(abs))
	assert.False(t, tr.NeedsRefresh(path))

	rec, ok := tr.Get(path)
	require.True(t, ok)
	assert.True(t, rec.Exists)
	assert.False(t, rec.LastParsedAt.IsZero())
}

func TestTracker_StaleAfterModification(t *testing.T) {
	tr := NewTracker()
	path := writeTempFile(t, "a.ts", "one")

	tr.Track(path, true)

	// Push the mtime past the recorded parse time; avoids sleeping through
	// filesystem timestamp granularity.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.True(t, tr.NeedsRefresh(path))
	assert.Equal(t, []string{resolve(path)}, tr.ListStale())
}

func TestTracker_UntrackedFileIsStale(t *testing.T) {
	tr := NewTracker()
	path := writeTempFile(t, "new.ts", "x")

	assert.True(t, tr.NeedsRefresh(path))
}

func TestTracker_MissingFileNeverStale(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.NeedsRefresh("/no/such/file.ts"))
}

func TestTracker_DiscoverLeavesParseTimeZero(t *testing.T) {
	tr := NewTracker()
	path := writeTempFile(t, "found.ts", "x")

	assert.True(t, tr.Discover(path))
	assert.False(t, tr.Discover(path)) // already tracked

	rec, ok := tr.Get(path)
	require.True(t, ok)
	assert.True(t, rec.LastParsedAt.IsZero())
	assert.True(t, tr.NeedsRefresh(path))
}

func TestTracker_MarkDeletedRetainsRecord(t *testing.T) {
	tr := NewTracker()
	path := writeTempFile(t, "gone.ts", "x")
	tr.Track(path, true)

	tr.MarkDeleted(path)

	rec, ok := tr.Get(path)
	require.True(t, ok)
	assert.False(t, rec.Exists)
	assert.Equal(t, 1, tr.Len())
	assert.Empty(t, tr.ListStale())
}
