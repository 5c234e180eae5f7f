package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/symdex/internal/domain/registry"
)

func fixture() []registry.Symbol {
	return []registry.Symbol{
		{Name: "getUser", Kind: registry.KindFunction, SourceFile: "/src/user.ts", Exported: true},
		{Name: "getUserInternal", Kind: registry.KindFunction, SourceFile: "/src/user.ts"},
		{Name: "getUser", Kind: registry.KindMethod, SourceFile: "/src/service.ts", Parent: "UserService", Exported: true},
		{Name: "UserService", Kind: registry.KindClass, SourceFile: "/src/service.ts", Exported: true},
		{Name: "UserRecord", Kind: registry.KindInterface, SourceFile: "/src/types.ts", Exported: true},
		{Name: "_normalizeUser", Kind: registry.KindFunction, SourceFile: "/src/user.ts"},
		{Name: "GET /users", Kind: registry.KindRoute, SourceFile: "/src/app.ts", Exported: true},
	}
}

func names(syms []registry.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}

func TestRun_ExactBeforeSubstring(t *testing.T) {
	got := Run(fixture(), Options{Query: "getUser"})

	require.NotEmpty(t, got)
	// both exact hits come first: the exported function outranks the method
	// via kind priority
	assert.Equal(t, "getUser", got[0].Name)
	assert.Equal(t, registry.KindFunction, got[0].Kind)
	assert.Equal(t, "getUser", got[1].Name)
	assert.Equal(t, registry.KindMethod, got[1].Kind)
	// the longer non-exact name ranks after
	assert.Contains(t, names(got), "getUserInternal")
}

func TestRun_ExactMatchOnly(t *testing.T) {
	got := Run(fixture(), Options{Query: "getUser", ExactMatch: true})

	require.Len(t, got, 2)
	for _, sym := range got {
		assert.Equal(t, "getUser", sym.Name)
	}
}

func TestRun_CaseInsensitiveSubstring(t *testing.T) {
	got := Run(fixture(), Options{Query: "userservice"})
	require.Len(t, got, 1)
	assert.Equal(t, "UserService", got[0].Name)
}

func TestRun_PrivateExcludedByDefault(t *testing.T) {
	got := Run(fixture(), Options{Query: "user"})
	assert.NotContains(t, names(got), "_normalizeUser")

	got = Run(fixture(), Options{Query: "user", IncludePrivate: true})
	assert.Contains(t, names(got), "_normalizeUser")
}

func TestRun_KindFilter(t *testing.T) {
	got := Run(fixture(), Options{Query: "user", Kind: registry.KindClass})
	require.Len(t, got, 1)
	assert.Equal(t, "UserService", got[0].Name)
}

func TestRun_FileFilter(t *testing.T) {
	got := Run(fixture(), Options{Query: "user", FileFilter: "types.ts"})
	require.Len(t, got, 1)
	assert.Equal(t, "UserRecord", got[0].Name)
}

func TestRun_LimitTruncatesAfterRanking(t *testing.T) {
	got := Run(fixture(), Options{Query: "getUser", Limit: 1})
	require.Len(t, got, 1)
	// the top-ranked symbol survives truncation
	assert.Equal(t, "getUser", got[0].Name)
	assert.Equal(t, registry.KindFunction, got[0].Kind)
}

func TestRun_ZeroLimitMeansUnlimited(t *testing.T) {
	got := Run(fixture(), Options{Query: "user", IncludePrivate: true})
	assert.Greater(t, len(got), 3)
}

func TestRun_NoMatchesReturnsEmpty(t *testing.T) {
	got := Run(fixture(), Options{Query: "zzz_nothing"})
	assert.Empty(t, got)
}

func TestRun_FuzzyWidensMatch(t *testing.T) {
	// transposed letters miss the substring filter but are similar enough
	strict := Run(fixture(), Options{Query: "getUsre"})
	assert.Empty(t, strict)

	fuzzy := Run(fixture(), Options{Query: "getUsre", Fuzzy: true})
	assert.Contains(t, names(fuzzy), "getUser")
}

func TestRun_ExportedOutranksUnexported(t *testing.T) {
	syms := []registry.Symbol{
		{Name: "parseConfig", Kind: registry.KindFunction, SourceFile: "/a.ts"},
		{Name: "parseConfigFile", Kind: registry.KindFunction, SourceFile: "/a.ts", Exported: true},
	}
	got := Run(syms, Options{Query: "parseConfig"})
	require.Len(t, got, 2)
	// exact match beats exported
	assert.Equal(t, "parseConfig", got[0].Name)

	got = Run(syms, Options{Query: "parse"})
	require.Len(t, got, 2)
	// no exact hit: exported wins
	assert.Equal(t, "parseConfigFile", got[0].Name)
}

func TestRun_RankingIsDeterministic(t *testing.T) {
	syms := []registry.Symbol{
		{Name: "getUserInternal", Kind: registry.KindFunction, SourceFile: "/a.ts"},
		{Name: "GetSvc", Kind: registry.KindClass, SourceFile: "/b.ts", Exported: true},
		{Name: "getUser", Kind: registry.KindFunction, SourceFile: "/a.ts", Exported: true},
	}

	got := Run(syms, Options{Query: "get"})
	require.Len(t, got, 3)
	// exported function, exported class, then the unexported function
	assert.Equal(t, []string{"getUser", "GetSvc", "getUserInternal"}, names(got))

	// identical input ranks identically regardless of registration order
	reversed := []registry.Symbol{syms[2], syms[1], syms[0]}
	assert.Equal(t, names(got), names(Run(reversed, Options{Query: "get"})))
}

func TestAutocomplete(t *testing.T) {
	got := Autocomplete(fixture(), "getU")
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), AutocompleteLimit)
	for _, sym := range got {
		assert.Contains(t, sym.Name, "getUser")
	}
}

func TestDocFor_ParentAndChildren(t *testing.T) {
	got := DocFor(fixture(), "UserService")

	require.True(t, got.Found)
	assert.Equal(t, registry.KindClass, got.Symbol.Kind)
	assert.Nil(t, got.Parent)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "getUser", got.Children[0].Name)

	member := DocFor(fixture(), "getUser")
	require.True(t, member.Found)
	// exact resolution prefers the function; it has no parent
	assert.Equal(t, registry.KindFunction, member.Symbol.Kind)
}

func TestDocFor_ResolvesPrivate(t *testing.T) {
	got := DocFor(fixture(), "_normalizeUser")
	require.True(t, got.Found)
	assert.Equal(t, "_normalizeUser", got.Symbol.Name)
}

func TestDocFor_NotFound(t *testing.T) {
	got := DocFor(fixture(), "nope")
	assert.False(t, got.Found)
}
