// Package socket implements the newline-delimited JSON protocol for the
// symdex daemon over a Unix socket: each message is one JSON object + \n.
// Requests are processed one at a time, in arrival order; there are no
// overlapping registry operations within one process.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/symdex/internal/domain/registry"
	"github.com/corey/symdex/internal/domain/usage"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/symdex-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/symdex-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodSearch   = "search"
	MethodComplete = "complete"
	MethodDoc      = "doc"
	MethodUsages   = "usages"
	MethodRefresh  = "refresh"
	MethodStats    = "stats"
	MethodHealth   = "health"
	MethodShutdown = "shutdown"
	MethodWipe     = "wipe"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SymbolInfo is the wire form of a registry symbol.
type SymbolInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	File        string `json:"file"`
	Signature   string `json:"signature,omitempty"`
	Description string `json:"description,omitempty"`
	Exported    bool   `json:"exported"`
	Parent      string `json:"parent,omitempty"`
	Line        int    `json:"line,omitempty"`
}

// NewSymbolInfo converts a registry symbol to its wire form.
func NewSymbolInfo(sym registry.Symbol) SymbolInfo {
	return SymbolInfo{
		Name:        sym.Name,
		Kind:        string(sym.Kind),
		File:        sym.SourceFile,
		Signature:   sym.Signature,
		Description: sym.Description,
		Exported:    sym.Exported,
		Parent:      sym.Parent,
		Line:        sym.Location.Line,
	}
}

// NewSymbolInfos converts a symbol slice to wire form (never nil).
func NewSymbolInfos(syms []registry.Symbol) []SymbolInfo {
	out := make([]SymbolInfo, len(syms))
	for i, s := range syms {
		out[i] = NewSymbolInfo(s)
	}
	return out
}

// SearchParams is the params for a search request. Limit nil applies the
// engine default (20); explicit 0 or negative disables truncation.
type SearchParams struct {
	Query          string `json:"query"`
	Kind           string `json:"kind,omitempty"`
	File           string `json:"file,omitempty"`
	Exact          bool   `json:"exact,omitempty"`
	IncludePrivate bool   `json:"include_private,omitempty"`
	Fuzzy          bool   `json:"fuzzy,omitempty"`
	Limit          *int   `json:"limit,omitempty"`
}

// SearchResult is the result of a search or complete request.
type SearchResult struct {
	Symbols []SymbolInfo `json:"symbols"`
	Count   int          `json:"count"`
}

// CompleteParams is the params for an autocomplete request.
type CompleteParams struct {
	Prefix string `json:"prefix"`
}

// DocParams is the params for a doc request.
type DocParams struct {
	Name string `json:"name"`
}

// DocResult is the result of a doc request: the resolved symbol plus its
// related symbols (enclosing parent and member children).
type DocResult struct {
	Found    bool         `json:"found"`
	Symbol   *SymbolInfo  `json:"symbol,omitempty"`
	Parent   *SymbolInfo  `json:"parent,omitempty"`
	Children []SymbolInfo `json:"children,omitempty"`
}

// UsagesParams is the params for a usages request. MaxResults nil applies
// the scanner default (50).
type UsagesParams struct {
	Symbol         string `json:"symbol"`
	Kind           string `json:"kind,omitempty"`
	File           string `json:"file,omitempty"`
	SkipDefinition bool   `json:"skip_definition,omitempty"`
	MaxResults     *int   `json:"max_results,omitempty"`
}

// UsagesResult is the result of a usages request.
type UsagesResult struct {
	Found        bool          `json:"found"`
	Symbol       *SymbolInfo   `json:"symbol,omitempty"`
	Usages       []usage.Usage `json:"usages"`
	TotalFound   int           `json:"total_found"`
	LimitReached bool          `json:"limit_reached"`
}

// RefreshParams is the params for a refresh request.
type RefreshParams struct {
	FullScan bool     `json:"full_scan,omitempty"`
	BaseDir  string   `json:"base_dir,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
}

// StatsResult is the result of a stats request.
type StatsResult struct {
	SymbolCount     int            `json:"symbol_count"`
	FileCount       int            `json:"file_count"`
	Kinds           map[string]int `json:"kinds,omitempty"`
	LastFullRefresh int64          `json:"last_full_refresh,omitempty"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status      string `json:"status"`
	SymbolCount int    `json:"symbol_count"`
	FileCount   int    `json:"file_count"`
	Uptime      string `json:"uptime"`
}

// Ops is the operation surface the server dispatches to, implemented by the
// app layer. The server serializes calls: at most one operation runs at a
// time, matching the registry's single-writer model.
type Ops interface {
	Search(SearchParams) SearchResult
	Complete(CompleteParams) SearchResult
	Doc(DocParams) DocResult
	Usages(UsagesParams) UsagesResult
	Refresh(RefreshParams) registry.RefreshResult
	Stats() StatsResult
	Wipe() error
}
