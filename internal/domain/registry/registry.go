package registry

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corey/symdex/internal/ports"
)

// StateStore persists the registry's whole-state document. The interface
// lives with its consumer; concrete backends are in internal/adapters/state.
type StateStore interface {
	// Save overwrites the persisted state wholesale.
	Save(st *State) error
	// Load retrieves the persisted state. Returns nil, nil when no state
	// exists yet (fresh project).
	Load() (*State, error)
}

// State is the persisted registry document: every symbol, every tracked
// file, and the time of the last full refresh (unix seconds, 0 = never).
type State struct {
	Symbols         []Symbol      `json:"symbols"`
	Files           []TrackedFile `json:"files"`
	LastFullRefresh int64         `json:"last_full_refresh"`
}

// skipDirs lists directories excluded from full scans and usage scans.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".symdex":      true,
}

// SkipDir reports whether a directory name is excluded from scans.
func SkipDir(name string) bool { return skipDirs[name] }

// Registry is the facade over the symbol store and file tracker. It owns
// both collections exclusively for the process lifetime and is the only
// writer of the persisted state. Not safe for concurrent use; callers
// serialize requests (the protocol front end processes one at a time).
type Registry struct {
	store   *Store
	tracker *Tracker
	state   StateStore
	logger  *log.Logger

	lastFullRefresh time.Time
}

// New creates a registry backed by the given state store. The logger may be
// nil, in which case warnings are dropped.
func New(state StateStore, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Registry{
		store:   NewStore(),
		tracker: NewTracker(),
		state:   state,
		logger:  logger,
	}
}

// Load restores persisted state from the backing store. Missing or corrupt
// state is tolerated: the registry falls back to empty and logs, it never
// fails process start over it.
func (r *Registry) Load() {
	if r.state == nil {
		return
	}
	st, err := r.state.Load()
	if err != nil {
		r.logger.Printf("warn: registry state unreadable, starting empty: %v", err)
		return
	}
	if st == nil {
		return
	}
	for _, sym := range st.Symbols {
		r.store.Upsert(sym)
	}
	for _, f := range st.Files {
		rec := f
		r.tracker.files[f.Path] = &rec
	}
	if st.LastFullRefresh > 0 {
		r.lastFullRefresh = time.Unix(st.LastFullRefresh, 0)
	}
}

// persist writes the full state through to the backing store. Persistence
// failures are logged, not propagated: in-memory state stays authoritative
// for the rest of the process lifetime.
func (r *Registry) persist() {
	if r.state == nil {
		return
	}
	st := &State{
		Symbols: r.store.All(),
		Files:   r.tracker.All(),
	}
	if !r.lastFullRefresh.IsZero() {
		st.LastFullRefresh = r.lastFullRefresh.Unix()
	}
	if err := r.state.Save(st); err != nil {
		r.logger.Printf("warn: persist registry state: %v", err)
	}
}

// RegisterFileSymbols ingests one parsed-file document: tracks the file,
// removes every previously stored symbol for it (so in-file deletions and
// renames are reflected), registers the new batch, and persists once.
// Returns the number of symbols registered.
func (r *Registry) RegisterFileSymbols(doc *ports.ParsedFile) int {
	abs := r.tracker.Track(doc.FilePath, true)
	r.store.RemoveByFile(abs)

	count := 0
	add := func(sym Symbol) {
		sym.SourceFile = abs
		r.store.Upsert(sym)
		count++
	}

	for _, fn := range doc.Functions {
		add(Symbol{
			Name:        fn.Name,
			Kind:        KindFunction,
			Description: fn.Description,
			Signature:   renderCallable(fn.Params, fn.ReturnType),
			Exported:    fn.Exported,
			Location:    Location{Line: fn.Line, Column: fn.Column},
			Detail:      &FunctionDetail{IsComponent: fn.IsComponent},
		})
	}

	for _, cls := range doc.Classes {
		add(Symbol{
			Name:        cls.Name,
			Kind:        KindClass,
			Description: cls.Description,
			Exported:    cls.Exported,
			Location:    Location{Line: cls.Line},
		})
		for _, m := range cls.Methods {
			add(memberSymbol(cls.Name, m, KindMethod, cls.Exported))
		}
		for _, p := range cls.Properties {
			add(propertySymbol(cls.Name, p, cls.Exported))
		}
	}

	for _, iface := range doc.Interfaces {
		add(Symbol{
			Name:        iface.Name,
			Kind:        KindInterface,
			Description: iface.Description,
			Exported:    iface.Exported,
			Location:    Location{Line: iface.Line},
		})
		for _, m := range iface.Methods {
			add(memberSymbol(iface.Name, m, KindMethod, iface.Exported))
		}
		for _, p := range iface.Properties {
			add(propertySymbol(iface.Name, p, iface.Exported))
		}
	}

	for _, alias := range doc.TypeAliases {
		add(Symbol{
			Name:        alias.Name,
			Kind:        KindTypeAlias,
			Description: alias.Description,
			Signature:   renderTyped(alias.Definition),
			Exported:    alias.Exported,
			Location:    Location{Line: alias.Line},
		})
	}

	for _, route := range doc.Routes {
		add(Symbol{
			Name:      route.Method + " " + route.Path,
			Kind:      KindRoute,
			Signature: renderTyped(route.Handler),
			Exported:  true,
			Location:  Location{Line: route.Line},
			Detail:    &RouteDetail{HTTPMethod: route.Method, Path: route.Path},
		})
	}

	r.persist()
	return count
}

func memberSymbol(parent string, m ports.Method, kind Kind, parentExported bool) Symbol {
	return Symbol{
		Name:        m.Name,
		Kind:        kind,
		Description: m.Description,
		Signature:   renderCallable(m.Params, m.ReturnType),
		Exported:    parentExported && m.Visibility != string(VisibilityPrivate),
		Parent:      parent,
		Location:    Location{Line: m.Line},
		Detail:      &MemberDetail{Visibility: Visibility(m.Visibility), Static: m.Static},
	}
}

func propertySymbol(parent string, p ports.Property, parentExported bool) Symbol {
	return Symbol{
		Name:        p.Name,
		Kind:        KindProperty,
		Description: p.Description,
		Signature:   renderTyped(p.Type),
		Exported:    parentExported && p.Visibility != string(VisibilityPrivate),
		Parent:      parent,
		Location:    Location{Line: p.Line},
		Detail:      &MemberDetail{Visibility: Visibility(p.Visibility), Static: p.Static},
	}
}

// renderCallable renders a callable signature as "(a, b): Ret".
func renderCallable(params []ports.Param, returnType string) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	sig := "(" + strings.Join(names, ", ") + ")"
	if returnType != "" {
		sig += ": " + returnType
	}
	return sig
}

// renderTyped renders a typed-member signature as ": T".
func renderTyped(t string) string {
	if t == "" {
		return ""
	}
	return ": " + t
}

// RemoveFileSymbols removes a file's symbols and, when the file is gone from
// disk, marks its tracked record deleted. Persists once.
func (r *Registry) RemoveFileSymbols(path string) int {
	abs := resolve(path)
	removed := r.store.RemoveByFile(abs)
	if _, err := os.Stat(abs); err != nil {
		r.tracker.MarkDeleted(abs)
	}
	r.persist()
	return removed
}

// CleanupDeletedFiles reconciles the registry against the filesystem: every
// tracked file no longer on disk loses its symbols and is marked deleted
// (the tracked record itself is retained). Persists once at the end.
// Returns the number of files cleaned up.
func (r *Registry) CleanupDeletedFiles() int {
	cleaned := 0
	for _, rec := range r.tracker.All() {
		if !rec.Exists {
			continue
		}
		if _, err := os.Stat(rec.Path); err == nil {
			continue
		}
		r.store.RemoveByFile(rec.Path)
		r.tracker.MarkDeleted(rec.Path)
		cleaned++
	}
	if cleaned > 0 {
		r.persist()
	}
	return cleaned
}

// AllSymbols returns a snapshot of every stored symbol.
func (r *Registry) AllSymbols() []Symbol { return r.store.All() }

// SymbolCount returns the number of stored symbols.
func (r *Registry) SymbolCount() int { return r.store.Len() }

// TrackedFiles returns a snapshot of every tracked file record.
func (r *Registry) TrackedFiles() []TrackedFile { return r.tracker.All() }

// TrackedFile returns the record for one path.
func (r *Registry) TrackedFile(path string) (TrackedFile, bool) { return r.tracker.Get(path) }

// LastFullRefresh returns when the last full scan completed (zero = never).
func (r *Registry) LastFullRefresh() time.Time { return r.lastFullRefresh }

// markFullRefresh records a completed full scan and persists.
func (r *Registry) markFullRefresh(at time.Time) {
	r.lastFullRefresh = at
	r.persist()
}

// FullScan enumerates files under baseDir matching the glob patterns
// (doublestar syntax, matched against the path relative to baseDir). Files
// not already tracked get a tracker record flagged for parsing. Parsing is
// the caller's job; this only discovers candidates. Returns every match.
func (r *Registry) FullScan(baseDir string, patterns []string) ([]string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}

	var matches []string
	discovered := 0
	err = filepath.Walk(absBase, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			if SkipDir(info.Name()) && path != absBase {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(absBase, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if ok {
				matches = append(matches, path)
				if r.tracker.Discover(path) {
					discovered++
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if discovered > 0 {
		r.persist()
	}
	return matches, nil
}

// FilesNeedingRefresh returns the tracked files that exist on disk and are
// stale relative to their last parse.
func (r *Registry) FilesNeedingRefresh() []string {
	return r.tracker.ListStale()
}

// Clear empties the store and tracker, resets the full-refresh timestamp,
// and persists the empty state.
func (r *Registry) Clear() {
	r.store.Clear()
	r.tracker.Clear()
	r.lastFullRefresh = time.Time{}
	r.persist()
}
