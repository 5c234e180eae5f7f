// Package search filters and ranks registry snapshots against a query.
// Matching is substring (case-insensitive) or exact; ranking is a stable
// three-key sort so identical inputs always produce identical output order.
package search

import (
	"sort"
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"github.com/corey/symdex/internal/domain/registry"
)

// DefaultLimit is applied by front ends when a request omits a limit.
const DefaultLimit = 20

// AutocompleteLimit is the default result cap for prefix completion.
const AutocompleteLimit = 10

// fuzzyThreshold is the minimum Jaro-Winkler similarity for a fuzzy hit.
const fuzzyThreshold = 0.8

// Options control the filter pipeline and ranking.
type Options struct {
	Query          string
	Kind           registry.Kind // empty = any kind
	FileFilter     string        // substring of SourceFile
	ExactMatch     bool          // case-sensitive whole-name equality
	IncludePrivate bool
	Fuzzy          bool // widen the name match with edit-distance similarity
	Limit          int  // results cap; 0 or negative disables truncation
}

// Run applies the filter pipeline (kind, file, privacy, name) and ranks the
// survivors. Returns an empty slice (never an error) when nothing matches.
func Run(symbols []registry.Symbol, opts Options) []registry.Symbol {
	queryLower := strings.ToLower(opts.Query)

	type scored struct {
		sym        registry.Symbol
		exact      bool
		similarity float32
	}

	var hits []scored
	for _, sym := range symbols {
		if opts.Kind != "" && sym.Kind != opts.Kind {
			continue
		}
		if opts.FileFilter != "" && !strings.Contains(sym.SourceFile, opts.FileFilter) {
			continue
		}
		if !opts.IncludePrivate && sym.IsPrivate() {
			continue
		}

		exact := sym.Name == opts.Query
		if opts.ExactMatch {
			if !exact {
				continue
			}
			hits = append(hits, scored{sym: sym, exact: true})
			continue
		}

		if strings.Contains(strings.ToLower(sym.Name), queryLower) {
			hits = append(hits, scored{sym: sym, exact: exact, similarity: 1})
			continue
		}
		if opts.Fuzzy {
			sim, err := edlib.StringsSimilarity(queryLower, strings.ToLower(sym.Name), edlib.JaroWinkler)
			if err == nil && sim >= fuzzyThreshold {
				hits = append(hits, scored{sym: sym, similarity: sim})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.sym.Exported != b.sym.Exported {
			return a.sym.Exported
		}
		ra, rb := registry.KindRank(a.sym.Kind), registry.KindRank(b.sym.Kind)
		if ra != rb {
			return ra < rb
		}
		return a.similarity > b.similarity
	})

	out := make([]registry.Symbol, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.sym)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Autocomplete is a non-exact search with the completion default limit.
func Autocomplete(symbols []registry.Symbol, prefix string) []registry.Symbol {
	return Run(symbols, Options{Query: prefix, Limit: AutocompleteLimit})
}

// DocResult carries one resolved symbol plus its related symbols: the
// enclosing parent (when recorded) and all children naming it as parent.
type DocResult struct {
	Found    bool
	Symbol   registry.Symbol
	Parent   *registry.Symbol
	Children []registry.Symbol
}

// DocFor resolves name via exact match and expands related symbols.
func DocFor(symbols []registry.Symbol, name string) DocResult {
	exact := Run(symbols, Options{Query: name, ExactMatch: true, IncludePrivate: true, Limit: 1})
	if len(exact) == 0 {
		return DocResult{}
	}
	target := exact[0]
	result := DocResult{Found: true, Symbol: target}

	if target.Parent != "" {
		parents := Run(symbols, Options{Query: target.Parent, ExactMatch: true, IncludePrivate: true, Limit: 1})
		if len(parents) > 0 {
			result.Parent = &parents[0]
		}
	}

	for _, sym := range symbols {
		if sym.Parent == target.Name {
			result.Children = append(result.Children, sym)
		}
	}
	sort.SliceStable(result.Children, func(i, j int) bool {
		return result.Children[i].Name < result.Children[j].Name
	})
	return result
}
