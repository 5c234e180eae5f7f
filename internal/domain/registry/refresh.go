package registry

import (
	"log"
	"os"
	"time"

	"github.com/corey/symdex/internal/ports"
)

// DefaultPatterns are the glob patterns a full scan uses when the caller
// supplies none. They cover the languages the parser collaborator supports.
var DefaultPatterns = []string{
	"**/*.ts", "**/*.tsx",
	"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
	"**/*.py",
}

// RefreshOptions selects between a full directory scan and an incremental
// pass over files already flagged stale.
type RefreshOptions struct {
	FullScan bool
	BaseDir  string   // full scan root; defaults to the refresher's root
	Patterns []string // doublestar globs; defaults to DefaultPatterns
}

// RefreshResult reports what a refresh cycle did. Refreshed=false carries an
// error message instead of counts; a refresh never panics out to the caller.
type RefreshResult struct {
	Refreshed      bool   `json:"refreshed"`
	FilesProcessed int    `json:"files_processed"`
	FilesRemoved   int    `json:"files_removed"`
	TotalSymbols   int    `json:"total_symbols"`
	Error          string `json:"error,omitempty"`
}

// Refresher re-derives parsed-file documents for stale or newly discovered
// files through the parser collaborator and reconciles the registry.
type Refresher struct {
	reg    *Registry
	parser ports.Parser
	root   string
	logger *log.Logger
}

// NewRefresher creates a refresh orchestrator rooted at the project dir.
func NewRefresher(reg *Registry, parser ports.Parser, root string, logger *log.Logger) *Refresher {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Refresher{reg: reg, parser: parser, root: root, logger: logger}
}

// Refresh runs one refresh cycle: purge symbols of deleted files, collect
// candidates (full scan discovery or the stale set), then re-parse and
// re-register each candidate. Per-file parse failures are not fatal; the
// failing file simply carries no symbols until a later cycle succeeds.
func (f *Refresher) Refresh(opts RefreshOptions) RefreshResult {
	result := RefreshResult{Refreshed: true}

	result.FilesRemoved += f.reg.CleanupDeletedFiles()

	var candidates []string
	if opts.FullScan {
		baseDir := opts.BaseDir
		if baseDir == "" {
			baseDir = f.root
		}
		patterns := opts.Patterns
		if len(patterns) == 0 {
			patterns = DefaultPatterns
		}
		files, err := f.reg.FullScan(baseDir, patterns)
		if err != nil {
			return RefreshResult{Error: err.Error()}
		}
		candidates = files
	} else {
		candidates = f.reg.FilesNeedingRefresh()
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			f.reg.RemoveFileSymbols(path)
			result.FilesRemoved++
			continue
		}
		f.processFile(path)
		result.FilesProcessed++
	}

	if opts.FullScan {
		f.reg.markFullRefresh(time.Now())
	}

	result.TotalSymbols = f.reg.SymbolCount()
	return result
}

// RefreshFile re-parses a single file, or removes its symbols when it has
// been deleted. Used by the watcher-driven refresh path in serve mode.
func (f *Refresher) RefreshFile(path string) {
	if _, err := os.Stat(path); err != nil {
		f.reg.RemoveFileSymbols(path)
		return
	}
	f.processFile(path)
}

// processFile parses one file and feeds the document through the registry's
// remove-then-reinsert cycle. On parse failure the file's stale symbols are
// purged and its tracker record left stale so a later cycle retries.
func (f *Refresher) processFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		f.logger.Printf("warn: read %s: %v", path, err)
		return
	}

	doc, err := f.parser.ParseFile(path, source)
	if err != nil {
		f.logger.Printf("warn: parse %s: %v", path, err)
		f.reg.RemoveFileSymbols(path)
		return
	}
	if doc == nil {
		// Unsupported language: register an empty document so the file stops
		// showing up as stale.
		doc = &ports.ParsedFile{FilePath: path}
	}
	f.reg.RegisterFileSymbols(doc)
}
