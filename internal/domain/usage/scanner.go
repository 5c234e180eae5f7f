// Package usage locates where a symbol is defined and referenced by textual
// scanning. This is an explicitly heuristic capability: matching is regex
// over lines, not semantic resolution, and results are approximate: a name
// recurring incidentally earlier in a file can be mis-reported as the
// definition. Exact lookup lives in the search package; callers wanting
// guarantees should not reach for this.
package usage

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/corey/symdex/internal/domain/registry"
	"github.com/corey/symdex/internal/domain/search"
)

// DefaultMaxResults caps stored usages when a request omits the limit.
const DefaultMaxResults = 50

// scanExtensions is the fixed set of file extensions the reference scan
// visits.
var scanExtensions = map[string]bool{
	".ts": true, ".tsx": true,
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".py": true,
}

// Options select the target symbol and scan behavior.
type Options struct {
	Symbol            string
	Kind              registry.Kind // empty = any
	FileFilter        string
	IncludeDefinition bool
	MaxResults        int // cap on stored usages; <=0 means DefaultMaxResults
}

// Usage is one located occurrence with a 3-line context snippet.
type Usage struct {
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Text         string   `json:"text"`
	Context      []string `json:"context,omitempty"`
	IsDefinition bool     `json:"is_definition,omitempty"`
}

// Result reports the scan outcome. TotalFound keeps counting through the
// remainder of the file being scanned when the stored-usage cap triggers,
// then iteration stops, so TotalFound may exceed len(Usages) once
// LimitReached is set.
type Result struct {
	Found        bool             `json:"found"`
	Symbol       *registry.Symbol `json:"symbol,omitempty"`
	Usages       []Usage          `json:"usages"`
	TotalFound   int              `json:"total_found"`
	LimitReached bool             `json:"limit_reached"`
}

// Scanner performs best-effort usage scans over the project tree.
type Scanner struct {
	reg       *registry.Registry
	refresher *registry.Refresher
	root      string
	logger    *log.Logger
}

// NewScanner creates a usage scanner rooted at the project dir.
func NewScanner(reg *registry.Registry, refresher *registry.Refresher, root string, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Scanner{reg: reg, refresher: refresher, root: root, logger: logger}
}

// FindUsages refreshes stale files incrementally, resolves the target symbol
// exactly, then scans: first the defining file for a heuristic definition
// line, then the project tree for word-boundary references.
func (s *Scanner) FindUsages(opts Options) Result {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	// Answer against current data, not whatever the last refresh left behind.
	s.refresher.Refresh(registry.RefreshOptions{})

	resolved := search.Run(s.reg.AllSymbols(), search.Options{
		Query:          opts.Symbol,
		Kind:           opts.Kind,
		FileFilter:     opts.FileFilter,
		ExactMatch:     true,
		IncludePrivate: true,
		Limit:          1,
	})
	if len(resolved) == 0 {
		return Result{Usages: []Usage{}}
	}
	target := resolved[0]
	result := Result{Found: true, Symbol: &target, Usages: []Usage{}}

	definitionCounted := false
	if opts.IncludeDefinition {
		if def, ok := s.findDefinition(target); ok {
			result.Usages = append(result.Usages, def)
			result.TotalFound++
			definitionCounted = true
		}
	}

	wordRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(target.Name) + `\b`)

	for _, path := range s.candidateFiles() {
		if definitionCounted && path == target.SourceFile {
			continue // already reported as the definition
		}

		lines, err := readLines(path)
		if err != nil {
			s.logger.Printf("warn: skipping unreadable file %s: %v", path, err)
			continue
		}

		for i, line := range lines {
			n := len(wordRe.FindAllStringIndex(line, -1))
			if n == 0 {
				continue
			}
			result.TotalFound += n
			if len(result.Usages) < opts.MaxResults {
				result.Usages = append(result.Usages, Usage{
					File:    path,
					Line:    i + 1,
					Text:    strings.TrimSpace(line),
					Context: snippet(lines, i),
				})
			}
		}

		// Counting runs to the end of the file that tripped the cap; outer
		// iteration then halts with partial stored results.
		if len(result.Usages) >= opts.MaxResults {
			result.LimitReached = true
			break
		}
	}

	return result
}

// definitionPatterns are tried in order against each line of the defining
// file; the first line matching any of them is reported as the definition.
func definitionPatterns(name string) []*regexp.Regexp {
	quoted := regexp.QuoteMeta(name)
	return []*regexp.Regexp{
		regexp.MustCompile(`\b` + quoted + `\s*\(`), // call style
		regexp.MustCompile(`\b` + quoted + `\s*\{`), // block style
		regexp.MustCompile(`\b` + quoted + `\s*:`),  // property style
		regexp.MustCompile(`\bfunction\s+` + quoted + `\b`),
	}
}

func (s *Scanner) findDefinition(target registry.Symbol) (Usage, bool) {
	lines, err := readLines(target.SourceFile)
	if err != nil {
		s.logger.Printf("warn: skipping unreadable file %s: %v", target.SourceFile, err)
		return Usage{}, false
	}

	patterns := definitionPatterns(target.Name)
	for i, line := range lines {
		for _, re := range patterns {
			if re.MatchString(line) {
				return Usage{
					File:         target.SourceFile,
					Line:         i + 1,
					Text:         strings.TrimSpace(line),
					Context:      snippet(lines, i),
					IsDefinition: true,
				}, true
			}
		}
	}
	return Usage{}, false
}

// candidateFiles walks the project root collecting files with the fixed scan
// extensions, skipping the usual vendored/generated dirs. Sorted by walk
// order (lexical), so scans are deterministic.
func (s *Scanner) candidateFiles() []string {
	var files []string
	filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if registry.SkipDir(info.Name()) && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if scanExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// snippet returns the line plus one line of context on each side.
func snippet(lines []string, i int) []string {
	start := i - 1
	if start < 0 {
		start = 0
	}
	end := i + 2
	if end > len(lines) {
		end = len(lines)
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
