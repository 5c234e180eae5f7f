// Package treesitter implements the ports.Parser contract using tree-sitter
// grammars. It extracts functions, classes, interfaces, type aliases, and
// route declarations from TypeScript, JavaScript, and Python sources and
// renders them as the language-agnostic parsed-file document the registry
// ingests. Extraction is structural: grammar semantics beyond declaration
// shapes are out of scope.
package treesitter

import (
	"path/filepath"
	"strings"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/corey/symdex/internal/ports"
)

// Parser extracts parsed-file documents using compiled-in grammars.
type Parser struct {
	languages map[string]*tree_sitter.Language
	extToLang map[string]string
}

// langPtr wraps a Language() call that returns unsafe.Pointer.
func langPtr(p unsafe.Pointer) *tree_sitter.Language {
	return tree_sitter.NewLanguage(p)
}

// NewParser creates a parser with the supported grammars registered.
func NewParser() *Parser {
	p := &Parser{
		languages: make(map[string]*tree_sitter.Language),
		extToLang: make(map[string]string),
	}
	p.languages["javascript"] = langPtr(ts_javascript.Language())
	p.languages["typescript"] = langPtr(ts_typescript.LanguageTypescript())
	p.languages["tsx"] = langPtr(ts_typescript.LanguageTSX())
	p.languages["python"] = langPtr(ts_python.Language())

	add := func(lang string, exts ...string) {
		for _, ext := range exts {
			p.extToLang[ext] = lang
		}
	}
	add("javascript", ".js", ".jsx", ".mjs", ".cjs")
	add("typescript", ".ts", ".mts")
	add("tsx", ".tsx")
	add("python", ".py", ".pyw")
	return p
}

// SupportsExtension returns true if the parser recognizes this extension.
func (p *Parser) SupportsExtension(ext string) bool {
	_, ok := p.extToLang[strings.ToLower(ext)]
	return ok
}

// detectLanguage determines the grammar from the file path.
func (p *Parser) detectLanguage(filePath string) string {
	return p.extToLang[strings.ToLower(filepath.Ext(filePath))]
}

// ParseFile extracts a parsed-file document from source code. Returns
// nil, nil for unsupported languages.
func (p *Parser) ParseFile(filePath string, source []byte) (*ports.ParsedFile, error) {
	langName := p.detectLanguage(filePath)
	if langName == "" {
		return nil, nil
	}
	lang := p.languages[langName]

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	defer tree.Close()

	doc := &ports.ParsedFile{FilePath: filePath}
	switch langName {
	case "python":
		extractPythonModule(tree.RootNode(), source, doc)
	default:
		jsx := langName == "tsx" || strings.HasSuffix(strings.ToLower(filePath), ".jsx")
		extractScriptModule(tree.RootNode(), source, doc, jsx)
	}
	return doc, nil
}

// ---------- shared node helpers ----------

// nodeText returns the source text for a node.
func nodeText(n *tree_sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// childByKind finds the first child with the given kind.
func childByKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// hasChildKind reports whether any direct child has the given kind.
func hasChildKind(n *tree_sitter.Node, kind string) bool {
	return childByKind(n, kind) != nil
}

// firstDescendantByKind does a shallow depth-first search for a node kind.
func firstDescendantByKind(n *tree_sitter.Node, kind string, depth int) *tree_sitter.Node {
	if depth < 0 {
		return nil
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Kind() == kind {
			return c
		}
		if found := firstDescendantByKind(c, kind, depth-1); found != nil {
			return found
		}
	}
	return nil
}

func line(n *tree_sitter.Node) int   { return int(n.StartPosition().Row) + 1 }
func column(n *tree_sitter.Node) int { return int(n.StartPosition().Column) + 1 }

// cleanComment strips comment markers and surrounding whitespace so the
// description reads as plain text.
func cleanComment(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/**")
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		var lines []string
		for _, l := range strings.Split(text, "\n") {
			l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
			if l != "" && !strings.HasPrefix(l, "@") {
				lines = append(lines, l)
			}
		}
		return strings.Join(lines, " ")
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "//"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, " ")
}

// precedingComment returns the cleaned text of the comment immediately
// before child i of parent, if any.
func precedingComment(parent *tree_sitter.Node, i uint, source []byte) string {
	if i == 0 {
		return ""
	}
	prev := parent.Child(i - 1)
	if prev != nil && prev.Kind() == "comment" {
		return cleanComment(nodeText(prev, source))
	}
	return ""
}
