package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/symdex/internal/domain/registry"
)

func sampleState() *registry.State {
	return &registry.State{
		Symbols: []registry.Symbol{
			{
				Name:       "getUser",
				Kind:       registry.KindFunction,
				SourceFile: "/src/user.ts",
				Signature:  "(id): User",
				Exported:   true,
				Location:   registry.Location{Line: 12, Column: 1},
				Detail:     &registry.FunctionDetail{IsComponent: false},
			},
			{
				Name:       "GET /users",
				Kind:       registry.KindRoute,
				SourceFile: "/src/app.ts",
				Exported:   true,
				Detail:     &registry.RouteDetail{HTTPMethod: "GET", Path: "/users"},
			},
			{
				Name:       "hashToken",
				Kind:       registry.KindMethod,
				SourceFile: "/src/service.ts",
				Parent:     "UserService",
				Detail:     &registry.MemberDetail{Visibility: registry.VisibilityPrivate},
			},
		},
		Files: []registry.TrackedFile{
			{Path: "/src/user.ts", LastParsedAt: time.Now().UTC().Truncate(time.Second), Exists: true},
		},
		LastFullRefresh: time.Now().Unix(),
	}
}

// assertRoundtrip checks that a loaded state carries the typed details back.
func assertRoundtrip(t *testing.T, loaded *registry.State) {
	t.Helper()
	require.NotNil(t, loaded)
	require.Len(t, loaded.Symbols, 3)

	byName := make(map[string]registry.Symbol)
	for _, sym := range loaded.Symbols {
		byName[sym.Name] = sym
	}

	fn := byName["getUser"]
	assert.Equal(t, registry.Location{Line: 12, Column: 1}, fn.Location)
	require.IsType(t, &registry.FunctionDetail{}, fn.Detail)

	route := byName["GET /users"]
	detail, ok := route.Detail.(*registry.RouteDetail)
	require.True(t, ok)
	assert.Equal(t, "/users", detail.Path)

	method := byName["hashToken"]
	member, ok := method.Detail.(*registry.MemberDetail)
	require.True(t, ok)
	assert.Equal(t, registry.VisibilityPrivate, member.Visibility)
	assert.True(t, method.IsPrivate())

	require.Len(t, loaded.Files, 1)
	assert.True(t, loaded.Files[0].Exists)
	assert.Greater(t, loaded.LastFullRefresh, int64(0))
}

func TestJSONStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".symdex", "registry.json")
	store := NewJSONStore(path)

	require.NoError(t, store.Save(sampleState()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assertRoundtrip(t, loaded)
}

func TestJSONStore_MissingFileIsFresh(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nope.json"))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestJSONStore_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONStore(path).Load()
	assert.Error(t, err)
}

func TestJSONStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	store := NewJSONStore(path)

	require.NoError(t, store.Save(sampleState()))
	require.NoError(t, store.Save(&registry.State{}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Symbols)
}

func TestBoltStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	store, err := NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(sampleState()))

	loaded, err := store.Load()
	require.NoError(t, err)
	assertRoundtrip(t, loaded)
}

func TestBoltStore_FreshDatabase(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleState()))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	assertRoundtrip(t, loaded)
}
