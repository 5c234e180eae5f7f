// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// Parser produces a language-agnostic parsed-file document from source code.
// The concrete implementation (tree-sitter) lives in internal/adapters/treesitter.
type Parser interface {
	// ParseFile extracts declarations from a source file. Returns nil, nil for
	// unsupported languages (not an error). A non-nil error means this one file
	// could not be parsed; callers must not abort multi-file batches on it.
	ParseFile(path string, source []byte) (*ParsedFile, error)

	// SupportsExtension returns true if the parser can handle files with this
	// extension (e.g., ".ts", ".py"). Extension includes the leading dot.
	SupportsExtension(ext string) bool
}

// ParsedFile is the structured output of a parser for one source file.
// It is the only document format the registry ingests; everything the
// registry knows about a file's contents arrives through it.
type ParsedFile struct {
	FilePath    string      `json:"file_path"`
	Functions   []Function  `json:"functions,omitempty"`
	Classes     []Class     `json:"classes,omitempty"`
	Interfaces  []Interface `json:"interfaces,omitempty"`
	TypeAliases []TypeAlias `json:"type_aliases,omitempty"`
	Routes      []Route     `json:"routes,omitempty"`
}

// Param is a single declared parameter of a callable.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Function is a top-level function declaration (including arrow-function
// consts in JS/TS sources).
type Function struct {
	Name        string  `json:"name"`
	Params      []Param `json:"params,omitempty"`
	ReturnType  string  `json:"return_type,omitempty"`
	Description string  `json:"description,omitempty"`
	Exported    bool    `json:"exported,omitempty"`
	IsComponent bool    `json:"is_component,omitempty"`
	Line        int     `json:"line,omitempty"`
	Column      int     `json:"column,omitempty"`
}

// Method is a callable member of a class or interface.
type Method struct {
	Name        string  `json:"name"`
	Params      []Param `json:"params,omitempty"`
	ReturnType  string  `json:"return_type,omitempty"`
	Description string  `json:"description,omitempty"`
	Visibility  string  `json:"visibility,omitempty"` // "public", "private", "protected"
	Static      bool    `json:"static,omitempty"`
	Line        int     `json:"line,omitempty"`
}

// Property is a data member of a class or interface.
type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	Static      bool   `json:"static,omitempty"`
	Line        int    `json:"line,omitempty"`
}

// Class is a class declaration with its members.
type Class struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Exported    bool       `json:"exported,omitempty"`
	Methods     []Method   `json:"methods,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
	Line        int        `json:"line,omitempty"`
}

// Interface is an interface declaration with its members (TypeScript only).
type Interface struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Exported    bool       `json:"exported,omitempty"`
	Methods     []Method   `json:"methods,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
	Line        int        `json:"line,omitempty"`
}

// TypeAlias is a named type alias declaration (TypeScript only).
type TypeAlias struct {
	Name        string `json:"name"`
	Definition  string `json:"definition,omitempty"`
	Description string `json:"description,omitempty"`
	Exported    bool   `json:"exported,omitempty"`
	Line        int    `json:"line,omitempty"`
}

// Route is an HTTP route declaration (Express-style app.get(...) calls or
// Flask-style @app.route decorators).
type Route struct {
	Method  string `json:"method"` // "GET", "POST", ...
	Path    string `json:"path"`
	Handler string `json:"handler,omitempty"`
	Line    int    `json:"line,omitempty"`
}
