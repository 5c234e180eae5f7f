package treesitter

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/symdex/internal/ports"
)

// httpMethods are the member call names recognized as route declarations
// (Express-style app.get('/path', handler)).
var httpMethods = map[string]string{
	"get":    "GET",
	"post":   "POST",
	"put":    "PUT",
	"delete": "DELETE",
	"patch":  "PATCH",
	"head":   "HEAD",
	"all":    "ALL",
}

// extractScriptModule walks a JS/TS/TSX program node and fills the document.
func extractScriptModule(root *tree_sitter.Node, source []byte, doc *ports.ParsedFile, jsx bool) {
	walkScriptChildren(root, source, doc, jsx, false, "")
}

func walkScriptChildren(n *tree_sitter.Node, source []byte, doc *ports.ParsedFile, jsx, exported bool, inherited string) {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		child := n.Child(i)
		desc := precedingComment(n, i, source)
		if desc == "" {
			// A comment before `export function f` sits before the export
			// statement, not the declaration inside it.
			desc = inherited
		}

		switch child.Kind() {
		case "export_statement":
			// Recurse with the exported flag so `export function f` and
			// `export default class C` land in the right lists.
			walkScriptChildren(child, source, doc, jsx, true, desc)

		case "function_declaration", "generator_function_declaration":
			doc.Functions = append(doc.Functions, scriptFunction(child, source, desc, jsx, exported))

		case "class_declaration":
			doc.Classes = append(doc.Classes, scriptClass(child, source, desc, exported))

		case "interface_declaration":
			doc.Interfaces = append(doc.Interfaces, scriptInterface(child, source, desc, exported))

		case "type_alias_declaration":
			doc.TypeAliases = append(doc.TypeAliases, scriptTypeAlias(child, source, desc, exported))

		case "lexical_declaration", "variable_declaration":
			extractScriptVarDecl(child, source, doc, desc, jsx, exported)

		case "expression_statement":
			if route, ok := scriptRoute(child, source); ok {
				doc.Routes = append(doc.Routes, route)
			}
		}
	}
}

func scriptFunction(n *tree_sitter.Node, source []byte, desc string, jsx, exported bool) ports.Function {
	name := ""
	if id := childByKind(n, "identifier"); id != nil {
		name = nodeText(id, source)
	}
	params, ret := scriptCallable(n, source)
	return ports.Function{
		Name:        name,
		Params:      params,
		ReturnType:  ret,
		Description: desc,
		Exported:    exported,
		IsComponent: jsx && isComponentName(name),
		Line:        line(n),
		Column:      column(n),
	}
}

// scriptCallable pulls the parameter list and return type annotation off a
// callable node.
func scriptCallable(n *tree_sitter.Node, source []byte) ([]ports.Param, string) {
	var params []ports.Param
	if pl := childByKind(n, "formal_parameters"); pl != nil {
		for i := uint(0); i < uint(pl.ChildCount()); i++ {
			p := pl.Child(i)
			switch p.Kind() {
			case "identifier":
				params = append(params, ports.Param{Name: nodeText(p, source)})
			case "required_parameter", "optional_parameter", "assignment_pattern", "rest_pattern":
				param := ports.Param{}
				if id := firstDescendantByKind(p, "identifier", 2); id != nil {
					param.Name = nodeText(id, source)
				}
				if ta := childByKind(p, "type_annotation"); ta != nil {
					param.Type = typeAnnotationText(ta, source)
				}
				if param.Name != "" {
					params = append(params, param)
				}
			}
		}
	}
	ret := ""
	if ta := childByKind(n, "type_annotation"); ta != nil {
		ret = typeAnnotationText(ta, source)
	}
	return params, ret
}

// typeAnnotationText strips the leading ": " off a type_annotation node.
func typeAnnotationText(n *tree_sitter.Node, source []byte) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(nodeText(n, source)), ":"))
}

func scriptClass(n *tree_sitter.Node, source []byte, desc string, exported bool) ports.Class {
	cls := ports.Class{
		Description: desc,
		Exported:    exported,
		Line:        line(n),
	}
	if id := childByKind(n, "identifier"); id != nil {
		cls.Name = nodeText(id, source)
	} else if id := childByKind(n, "type_identifier"); id != nil {
		cls.Name = nodeText(id, source)
	}

	body := childByKind(n, "class_body")
	if body == nil {
		return cls
	}
	for i := uint(0); i < uint(body.ChildCount()); i++ {
		member := body.Child(i)
		memberDesc := precedingComment(body, i, source)
		switch member.Kind() {
		case "method_definition":
			m := ports.Method{
				Name:        memberName(member, source),
				Description: memberDesc,
				Visibility:  accessibility(member, source),
				Static:      hasChildKind(member, "static"),
				Line:        line(member),
			}
			m.Params, m.ReturnType = scriptCallable(member, source)
			cls.Methods = append(cls.Methods, m)
		case "field_definition", "public_field_definition":
			p := ports.Property{
				Name:        memberName(member, source),
				Description: memberDesc,
				Visibility:  accessibility(member, source),
				Static:      hasChildKind(member, "static"),
				Line:        line(member),
			}
			if ta := childByKind(member, "type_annotation"); ta != nil {
				p.Type = typeAnnotationText(ta, source)
			}
			cls.Properties = append(cls.Properties, p)
		}
	}
	return cls
}

// memberName resolves the property name of a class member, including
// private-hash names (#secret).
func memberName(n *tree_sitter.Node, source []byte) string {
	if id := childByKind(n, "property_identifier"); id != nil {
		return nodeText(id, source)
	}
	if id := childByKind(n, "private_property_identifier"); id != nil {
		return nodeText(id, source)
	}
	return ""
}

// accessibility returns the TS accessibility modifier text, if present.
func accessibility(n *tree_sitter.Node, source []byte) string {
	if mod := childByKind(n, "accessibility_modifier"); mod != nil {
		return nodeText(mod, source)
	}
	return ""
}

func scriptInterface(n *tree_sitter.Node, source []byte, desc string, exported bool) ports.Interface {
	iface := ports.Interface{
		Description: desc,
		Exported:    exported,
		Line:        line(n),
	}
	if id := childByKind(n, "type_identifier"); id != nil {
		iface.Name = nodeText(id, source)
	}

	body := childByKind(n, "interface_body")
	if body == nil {
		body = childByKind(n, "object_type")
	}
	if body == nil {
		return iface
	}
	for i := uint(0); i < uint(body.ChildCount()); i++ {
		member := body.Child(i)
		memberDesc := precedingComment(body, i, source)
		switch member.Kind() {
		case "property_signature":
			p := ports.Property{
				Name:        memberName(member, source),
				Description: memberDesc,
				Line:        line(member),
			}
			if ta := childByKind(member, "type_annotation"); ta != nil {
				p.Type = typeAnnotationText(ta, source)
			}
			iface.Properties = append(iface.Properties, p)
		case "method_signature":
			m := ports.Method{
				Name:        memberName(member, source),
				Description: memberDesc,
				Line:        line(member),
			}
			m.Params, m.ReturnType = scriptCallable(member, source)
			iface.Methods = append(iface.Methods, m)
		}
	}
	return iface
}

func scriptTypeAlias(n *tree_sitter.Node, source []byte, desc string, exported bool) ports.TypeAlias {
	alias := ports.TypeAlias{
		Description: desc,
		Exported:    exported,
		Line:        line(n),
	}
	if id := childByKind(n, "type_identifier"); id != nil {
		alias.Name = nodeText(id, source)
	}
	// The aliased type is the last named child (after the "=").
	if count := uint(n.NamedChildCount()); count > 1 {
		if val := n.NamedChild(count - 1); val != nil && val.Kind() != "type_identifier" {
			alias.Definition = nodeText(val, source)
		} else if val != nil && nodeText(val, source) != alias.Name {
			alias.Definition = nodeText(val, source)
		}
	}
	return alias
}

// extractScriptVarDecl turns `const f = (x) => ...` declarations into
// functions. Plain value consts are not indexed.
func extractScriptVarDecl(n *tree_sitter.Node, source []byte, doc *ports.ParsedFile, desc string, jsx, exported bool) {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		decl := n.Child(i)
		if decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := childByKind(decl, "identifier")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, source)
		for j := uint(0); j < uint(decl.ChildCount()); j++ {
			val := decl.Child(j)
			if val.Kind() != "arrow_function" && val.Kind() != "function_expression" && val.Kind() != "function" {
				continue
			}
			params, ret := scriptCallable(val, source)
			doc.Functions = append(doc.Functions, ports.Function{
				Name:        name,
				Params:      params,
				ReturnType:  ret,
				Description: desc,
				Exported:    exported,
				IsComponent: jsx && isComponentName(name),
				Line:        line(decl),
				Column:      column(decl),
			})
			break
		}
	}
}

// scriptRoute recognizes `app.get('/path', handler)` style calls.
func scriptRoute(stmt *tree_sitter.Node, source []byte) (ports.Route, bool) {
	call := childByKind(stmt, "call_expression")
	if call == nil {
		return ports.Route{}, false
	}
	member := childByKind(call, "member_expression")
	if member == nil {
		return ports.Route{}, false
	}
	prop := childByKind(member, "property_identifier")
	if prop == nil {
		return ports.Route{}, false
	}
	verb, ok := httpMethods[nodeText(prop, source)]
	if !ok {
		return ports.Route{}, false
	}

	args := childByKind(call, "arguments")
	if args == nil {
		return ports.Route{}, false
	}
	route := ports.Route{Method: verb, Line: line(stmt)}
	for i := uint(0); i < uint(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Kind() {
		case "string":
			if route.Path == "" {
				route.Path = strings.Trim(nodeText(arg, source), `'"`+"`")
			}
		case "identifier":
			if route.Handler == "" {
				route.Handler = nodeText(arg, source)
			}
		}
	}
	if route.Path == "" {
		return ports.Route{}, false
	}
	return route, true
}

// isComponentName follows the React convention: components are capitalized.
func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}
