// Package app wires together the adapters and domain logic. It is the
// composition root: nothing in the domain is a singleton, and all lifecycle
// happens through explicit Initialize/Start/Stop calls on an App instance.
package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	fsw "github.com/corey/symdex/internal/adapters/fsnotify"
	"github.com/corey/symdex/internal/adapters/socket"
	"github.com/corey/symdex/internal/adapters/state"
	"github.com/corey/symdex/internal/adapters/treesitter"
	"github.com/corey/symdex/internal/domain/registry"
	"github.com/corey/symdex/internal/domain/search"
	"github.com/corey/symdex/internal/domain/usage"
	"github.com/corey/symdex/internal/ports"
)

// Backend selects the state-store implementation.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// Config controls app construction.
type Config struct {
	ProjectRoot string
	Backend     string      // BackendJSON (default) or BackendBolt
	Parser      ports.Parser // override for tests; defaults to tree-sitter
	LogWriter   io.Writer    // defaults to stderr
}

// App is the top-level container wiring all components together. Its
// operation methods serialize through one mutex, matching the registry's
// single-writer, one-request-at-a-time processing model.
type App struct {
	ProjectRoot string
	Paths       *Paths

	Registry  *registry.Registry
	Refresher *registry.Refresher
	Scanner   *usage.Scanner
	Parser    ports.Parser

	watcher ports.Watcher
	server  *socket.Server
	store   *state.BoltStore // retained for Close; nil for the JSON backend
	logger  *log.Logger

	mu          sync.Mutex
	initialized bool
}

// New constructs an app without touching disk state. Call Initialize to
// load persisted state and reconcile against the filesystem.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root is required")
	}
	paths := NewPaths(cfg.ProjectRoot)

	logWriter := cfg.LogWriter
	if logWriter == nil {
		logWriter = os.Stderr
	}
	logger := log.New(logWriter, "", log.LstdFlags)

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		logger:      logger,
	}

	var stateStore registry.StateStore
	switch cfg.Backend {
	case "", BackendJSON:
		stateStore = state.NewJSONStore(paths.State)
	case BackendBolt:
		if err := os.MkdirAll(paths.Root, 0755); err != nil {
			return nil, fmt.Errorf("create project dir: %w", err)
		}
		bs, err := state.NewBoltStore(paths.DB)
		if err != nil {
			return nil, err
		}
		a.store = bs
		stateStore = bs
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	a.Parser = cfg.Parser
	if a.Parser == nil {
		a.Parser = treesitter.NewParser()
	}

	a.Registry = registry.New(stateStore, logger)
	a.Refresher = registry.NewRefresher(a.Registry, a.Parser, cfg.ProjectRoot, logger)
	a.Scanner = usage.NewScanner(a.Registry, a.Refresher, cfg.ProjectRoot, logger)
	return a, nil
}

// Initialize loads persisted state and reconciles it against the current
// filesystem (files deleted while the process was down lose their symbols).
// Idempotent.
func (a *App) Initialize() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		return
	}
	a.Registry.Load()
	a.Registry.CleanupDeletedFiles()
	a.initialized = true
}

// Start initializes the app and brings up the daemon surface: the socket
// server and the change watcher.
func (a *App) Start() error {
	a.Initialize()

	a.server = socket.NewServer(a, socket.SocketPath(a.ProjectRoot))
	if err := a.server.Start(); err != nil {
		return err
	}

	w, err := fsw.NewWatcher(a.Parser.SupportsExtension)
	if err != nil {
		a.server.Stop()
		return err
	}
	if err := w.Watch(a.ProjectRoot, a.onFileChange); err != nil {
		w.Stop()
		a.server.Stop()
		return err
	}
	a.watcher = w
	return nil
}

// Stop shuts down the daemon surface and releases resources.
func (a *App) Stop() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.server != nil {
		a.server.Stop()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// ShutdownCh exposes the server's remote-shutdown channel.
func (a *App) ShutdownCh() <-chan struct{} {
	if a.server == nil {
		return nil
	}
	return a.server.ShutdownCh()
}

// SocketAddr returns the daemon socket path, if serving.
func (a *App) SocketAddr() string {
	if a.server == nil {
		return ""
	}
	return a.server.Addr()
}

// onFileChange re-parses a changed file (or drops a deleted one). Invoked
// from the watcher goroutine; the app lock keeps it from interleaving with
// protocol requests.
func (a *App) onFileChange(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Refresher.RefreshFile(path)
}

// ---------- socket.Ops ----------

// Search runs a ranked symbol search.
func (a *App) Search(params socket.SearchParams) socket.SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	limit := search.DefaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	symbols := search.Run(a.Registry.AllSymbols(), search.Options{
		Query:          params.Query,
		Kind:           registry.Kind(params.Kind),
		FileFilter:     params.File,
		ExactMatch:     params.Exact,
		IncludePrivate: params.IncludePrivate,
		Fuzzy:          params.Fuzzy,
		Limit:          limit,
	})
	return socket.SearchResult{Symbols: socket.NewSymbolInfos(symbols), Count: len(symbols)}
}

// Complete runs prefix autocompletion.
func (a *App) Complete(params socket.CompleteParams) socket.SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	symbols := search.Autocomplete(a.Registry.AllSymbols(), params.Prefix)
	return socket.SearchResult{Symbols: socket.NewSymbolInfos(symbols), Count: len(symbols)}
}

// Doc resolves one symbol and its related symbols.
func (a *App) Doc(params socket.DocParams) socket.DocResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := search.DocFor(a.Registry.AllSymbols(), params.Name)
	if !doc.Found {
		return socket.DocResult{}
	}
	sym := socket.NewSymbolInfo(doc.Symbol)
	result := socket.DocResult{Found: true, Symbol: &sym}
	if doc.Parent != nil {
		parent := socket.NewSymbolInfo(*doc.Parent)
		result.Parent = &parent
	}
	if len(doc.Children) > 0 {
		result.Children = socket.NewSymbolInfos(doc.Children)
	}
	return result
}

// Usages runs the heuristic usage scan.
func (a *App) Usages(params socket.UsagesParams) socket.UsagesResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	maxResults := usage.DefaultMaxResults
	if params.MaxResults != nil {
		maxResults = *params.MaxResults
	}
	result := a.Scanner.FindUsages(usage.Options{
		Symbol:            params.Symbol,
		Kind:              registry.Kind(params.Kind),
		FileFilter:        params.File,
		IncludeDefinition: !params.SkipDefinition,
		MaxResults:        maxResults,
	})

	out := socket.UsagesResult{
		Found:        result.Found,
		Usages:       result.Usages,
		TotalFound:   result.TotalFound,
		LimitReached: result.LimitReached,
	}
	if result.Symbol != nil {
		sym := socket.NewSymbolInfo(*result.Symbol)
		out.Symbol = &sym
	}
	return out
}

// Refresh runs a refresh cycle (incremental or full scan).
func (a *App) Refresh(params socket.RefreshParams) registry.RefreshResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.Refresher.Refresh(registry.RefreshOptions{
		FullScan: params.FullScan,
		BaseDir:  params.BaseDir,
		Patterns: params.Patterns,
	})
}

// Stats summarizes the registry contents.
func (a *App) Stats() socket.StatsResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	kinds := make(map[string]int)
	for _, sym := range a.Registry.AllSymbols() {
		kinds[string(sym.Kind)]++
	}
	result := socket.StatsResult{
		SymbolCount: a.Registry.SymbolCount(),
		FileCount:   len(a.Registry.TrackedFiles()),
		Kinds:       kinds,
	}
	if t := a.Registry.LastFullRefresh(); !t.IsZero() {
		result.LastFullRefresh = t.Unix()
	}
	return result
}

// Wipe clears the registry and its persisted state.
func (a *App) Wipe() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Registry.Clear()
	return nil
}
