package usage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/symdex/internal/domain/registry"
	"github.com/corey/symdex/internal/ports"
)

type noopParser struct{}

func (noopParser) ParseFile(string, []byte) (*ports.ParsedFile, error) { return nil, nil }
func (noopParser) SupportsExtension(string) bool                       { return false }

// newScanner sets up a project dir with the given files and a registry that
// already knows the "helper" function defined in a.ts.
func newScanner(t *testing.T, files map[string]string) (*Scanner, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	reg := registry.New(nil, nil)
	reg.RegisterFileSymbols(&ports.ParsedFile{
		FilePath: filepath.Join(dir, "a.ts"),
		Functions: []ports.Function{{
			Name:     "helper",
			Exported: true,
			Line:     1,
		}},
	})

	ref := registry.NewRefresher(reg, noopParser{}, dir, nil)
	return NewScanner(reg, ref, dir, nil), dir
}

func TestFindUsages_DefinitionAndReferences(t *testing.T) {
	s, dir := newScanner(t, map[string]string{
		"a.ts": "export function helper() {\n  return 1\n}\n",
		"b.ts": "import { helper } from './a'\n\nconst x = helper()\n",
	})

	got := s.FindUsages(Options{Symbol: "helper", IncludeDefinition: true})

	require.True(t, got.Found)
	require.NotNil(t, got.Symbol)
	assert.Equal(t, "helper", got.Symbol.Name)

	require.NotEmpty(t, got.Usages)
	def := got.Usages[0]
	assert.True(t, def.IsDefinition)
	assert.Equal(t, filepath.Join(dir, "a.ts"), def.File)
	assert.Equal(t, 1, def.Line)
	assert.Equal(t, "export function helper() {", def.Text)

	// both lines in b.ts reference helper
	refs := got.Usages[1:]
	require.Len(t, refs, 2)
	for _, u := range refs {
		assert.Equal(t, filepath.Join(dir, "b.ts"), u.File)
		assert.False(t, u.IsDefinition)
	}
	assert.Equal(t, 3, got.TotalFound)
	assert.False(t, got.LimitReached)
}

func TestFindUsages_SkipDefinition(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"a.ts": "export function helper() {}\n",
		"b.ts": "helper()\n",
	})

	got := s.FindUsages(Options{Symbol: "helper"})

	require.True(t, got.Found)
	for _, u := range got.Usages {
		assert.False(t, u.IsDefinition)
	}
	// without the definition short-circuit the defining file is scanned too
	assert.Equal(t, 2, got.TotalFound)
}

func TestFindUsages_MaxResultsKeepsCounting(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"a.ts": "export function helper() {}\nhelper()\nhelper()\n",
	})

	got := s.FindUsages(Options{Symbol: "helper", MaxResults: 1})

	require.True(t, got.Found)
	assert.Len(t, got.Usages, 1)
	assert.True(t, got.LimitReached)
	// counting runs through the rest of the file that tripped the cap
	assert.Equal(t, 3, got.TotalFound)
}

func TestFindUsages_WordBoundary(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"a.ts": "export function helper() {}\n",
		"b.ts": "helperFactory()\nmyhelper()\nhelper()\n",
	})

	got := s.FindUsages(Options{Symbol: "helper"})

	require.True(t, got.Found)
	// helperFactory and myhelper must not match
	assert.Equal(t, 2, got.TotalFound) // definition line in a.ts + call in b.ts
}

func TestFindUsages_UnknownSymbol(t *testing.T) {
	s, _ := newScanner(t, map[string]string{"a.ts": "export function helper() {}\n"})

	got := s.FindUsages(Options{Symbol: "nonexistent"})

	assert.False(t, got.Found)
	assert.Nil(t, got.Symbol)
	assert.Empty(t, got.Usages)
}

func TestFindUsages_ContextSnippet(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"a.ts": "export function helper() {}\n",
		"b.ts": "// before\nhelper()\n// after\n",
	})

	got := s.FindUsages(Options{Symbol: "helper", FileFilter: "a.ts"})

	require.True(t, got.Found)
	var ref *Usage
	for i := range got.Usages {
		if filepath.Base(got.Usages[i].File) == "b.ts" {
			ref = &got.Usages[i]
		}
	}
	require.NotNil(t, ref)
	assert.Equal(t, []string{"// before", "helper()", "// after"}, ref.Context)
}
