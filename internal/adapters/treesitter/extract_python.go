package treesitter

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/symdex/internal/ports"
)

// routeDecorators maps Flask/FastAPI decorator attribute names to HTTP verbs.
// A bare @app.route(...) defaults to GET.
var routeDecorators = map[string]string{
	"route":  "GET",
	"get":    "GET",
	"post":   "POST",
	"put":    "PUT",
	"delete": "DELETE",
	"patch":  "PATCH",
}

// extractPythonModule walks a Python module node and fills the document.
func extractPythonModule(root *tree_sitter.Node, source []byte, doc *ports.ParsedFile) {
	for i := uint(0); i < uint(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Kind() {
		case "function_definition":
			doc.Functions = append(doc.Functions, pythonFunction(child, source))
		case "class_definition":
			doc.Classes = append(doc.Classes, pythonClass(child, source))
		case "decorated_definition":
			extractPythonDecorated(child, source, doc)
		}
	}
}

// extractPythonDecorated handles @decorator-wrapped definitions, emitting a
// route when the decorator is a recognized route registration.
func extractPythonDecorated(n *tree_sitter.Node, source []byte, doc *ports.ParsedFile) {
	inner := childByKind(n, "function_definition")
	if inner == nil {
		if cls := childByKind(n, "class_definition"); cls != nil {
			doc.Classes = append(doc.Classes, pythonClass(cls, source))
		}
		return
	}

	fn := pythonFunction(inner, source)
	doc.Functions = append(doc.Functions, fn)

	for i := uint(0); i < uint(n.ChildCount()); i++ {
		dec := n.Child(i)
		if dec.Kind() != "decorator" {
			continue
		}
		if route, ok := pythonRoute(dec, source, fn.Name); ok {
			doc.Routes = append(doc.Routes, route)
		}
	}
}

// pythonRoute recognizes @app.route('/path') and @router.get('/path') forms.
func pythonRoute(dec *tree_sitter.Node, source []byte, handler string) (ports.Route, bool) {
	call := childByKind(dec, "call")
	if call == nil {
		return ports.Route{}, false
	}
	attr := childByKind(call, "attribute")
	if attr == nil || attr.NamedChildCount() == 0 {
		return ports.Route{}, false
	}
	last := attr.NamedChild(uint(attr.NamedChildCount()) - 1)
	if last == nil {
		return ports.Route{}, false
	}
	verb, ok := routeDecorators[nodeText(last, source)]
	if !ok {
		return ports.Route{}, false
	}

	args := childByKind(call, "argument_list")
	if args == nil {
		return ports.Route{}, false
	}
	route := ports.Route{Method: verb, Handler: handler, Line: line(dec)}
	for i := uint(0); i < uint(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Kind() == "string" && route.Path == "" {
			route.Path = strings.Trim(nodeText(arg, source), `'"`)
		}
		// methods=["POST"] overrides the default verb of @app.route
		if arg.Kind() == "keyword_argument" && strings.HasPrefix(nodeText(arg, source), "methods") {
			if s := firstDescendantByKind(arg, "string", 2); s != nil {
				route.Method = strings.ToUpper(strings.Trim(nodeText(s, source), `'"`))
			}
		}
	}
	if route.Path == "" {
		return ports.Route{}, false
	}
	return route, true
}

func pythonFunction(n *tree_sitter.Node, source []byte) ports.Function {
	name := ""
	if id := childByKind(n, "identifier"); id != nil {
		name = nodeText(id, source)
	}
	return ports.Function{
		Name:        name,
		Params:      pythonParams(n, source),
		ReturnType:  pythonReturnType(n, source),
		Description: pythonDocstring(n, source),
		Exported:    !strings.HasPrefix(name, "_"),
		Line:        line(n),
		Column:      column(n),
	}
}

func pythonParams(n *tree_sitter.Node, source []byte) []ports.Param {
	pl := childByKind(n, "parameters")
	if pl == nil {
		return nil
	}
	var params []ports.Param
	for i := uint(0); i < uint(pl.NamedChildCount()); i++ {
		p := pl.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			name := nodeText(p, source)
			if name != "self" && name != "cls" {
				params = append(params, ports.Param{Name: name})
			}
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			param := ports.Param{}
			if id := firstDescendantByKind(p, "identifier", 1); id != nil {
				param.Name = nodeText(id, source)
			}
			if t := childByKind(p, "type"); t != nil {
				param.Type = nodeText(t, source)
			}
			if param.Name != "" && param.Name != "self" && param.Name != "cls" {
				params = append(params, param)
			}
		}
	}
	return params
}

func pythonReturnType(n *tree_sitter.Node, source []byte) string {
	if t := childByKind(n, "type"); t != nil {
		return nodeText(t, source)
	}
	return ""
}

// pythonDocstring returns the function/class docstring, first line only.
func pythonDocstring(n *tree_sitter.Node, source []byte) string {
	body := childByKind(n, "block")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := childByKind(first, "string")
	if str == nil {
		return ""
	}
	text := strings.Trim(nodeText(str, source), `"' `)
	text = strings.TrimSpace(strings.Split(text, "\n")[0])
	return text
}

func pythonClass(n *tree_sitter.Node, source []byte) ports.Class {
	cls := ports.Class{Line: line(n)}
	if id := childByKind(n, "identifier"); id != nil {
		cls.Name = nodeText(id, source)
	}
	cls.Exported = !strings.HasPrefix(cls.Name, "_")
	cls.Description = pythonDocstring(n, source)

	body := childByKind(n, "block")
	if body == nil {
		return cls
	}
	for i := uint(0); i < uint(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Kind() {
		case "function_definition":
			cls.Methods = append(cls.Methods, pythonMethod(member, source))
		case "decorated_definition":
			if inner := childByKind(member, "function_definition"); inner != nil {
				cls.Methods = append(cls.Methods, pythonMethod(inner, source))
			}
		case "expression_statement":
			if prop, ok := pythonClassProperty(member, source); ok {
				cls.Properties = append(cls.Properties, prop)
			}
		}
	}
	return cls
}

func pythonMethod(n *tree_sitter.Node, source []byte) ports.Method {
	name := ""
	if id := childByKind(n, "identifier"); id != nil {
		name = nodeText(id, source)
	}
	visibility := "public"
	// Dunder methods like __init__ stay public; single-underscore names are
	// private by convention.
	if strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__") {
		visibility = "private"
	}
	return ports.Method{
		Name:        name,
		Params:      pythonParams(n, source),
		ReturnType:  pythonReturnType(n, source),
		Description: pythonDocstring(n, source),
		Visibility:  visibility,
		Line:        line(n),
	}
}

// pythonClassProperty recognizes class-level `name = value` and
// `name: Type = value` assignments.
func pythonClassProperty(stmt *tree_sitter.Node, source []byte) (ports.Property, bool) {
	assign := childByKind(stmt, "assignment")
	if assign == nil {
		return ports.Property{}, false
	}
	id := childByKind(assign, "identifier")
	if id == nil {
		return ports.Property{}, false
	}
	prop := ports.Property{Name: nodeText(id, source), Line: line(stmt)}
	if t := childByKind(assign, "type"); t != nil {
		prop.Type = nodeText(t, source)
	}
	return prop, true
}
