// Copyright 2025 Rocket Tycoon
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package extractor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

// treeSitterPlugin is the shared shape behind the Go/Python/JavaScript/
// TypeScript plugins: a pool of parsers (tree-sitter parsers are not
// thread-safe, so each extraction borrows one) and a per-language AST
// walker.
type treeSitterPlugin struct {
	language string
	exts     []string
	pool     sync.Pool
	walk     func(root *sitter.Node, content []byte, path, language string, maxDepth int) Result
}

func newTreeSitterPlugin(language string, exts []string, lang *sitter.Language, walk func(*sitter.Node, []byte, string, string, int) Result) *treeSitterPlugin {
	p := &treeSitterPlugin{language: language, exts: exts, walk: walk}
	p.pool.New = func() any {
		parser := sitter.NewParser()
		parser.SetLanguage(lang)
		return parser
	}
	return p
}

func (p *treeSitterPlugin) Language() string     { return p.language }
func (p *treeSitterPlugin) Extensions() []string { return p.exts }

func (p *treeSitterPlugin) Extract(path string, source []byte, maxDepth int) (Result, error) {
	parserObj := p.pool.Get()
	parser, ok := parserObj.(*sitter.Parser)
	if !ok {
		return Result{}, fmt.Errorf("invalid parser type from %s pool", p.language)
	}
	defer p.pool.Put(parser)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return Result{}, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	result := p.walk(root, source, path, p.language, maxDepth)
	if root.HasError() {
		result.ErrorCount = countErrorNodes(root)
	}
	return result, nil
}

func countErrorNodes(node *sitter.Node) int {
	count := 0
	if node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrorNodes(node.Child(i))
	}
	return count
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func nodeLocation(path string, node *sitter.Node) model.Location {
	start := node.StartPoint()
	end := node.EndPoint()
	return model.NewLocationSpan(path, start.Row+1, start.Column+1, end.Row+1, end.Column+1)
}

func joinQualified(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}

// =============================================================================
// Go
// =============================================================================

func NewGoPlugin() Plugin {
	return newTreeSitterPlugin("go", []string{"go"}, golang.GetLanguage(), walkGo)
}

func walkGo(root *sitter.Node, content []byte, path, language string, maxDepth int) Result {
	var res Result
	res.ModulePath = goPackageName(root, content)

	var visit func(node *sitter.Node, depth int)
	visit = func(node *sitter.Node, depth int) {
		if node == nil || depth > maxDepth {
			return
		}
		switch node.Type() {
		case "function_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				sym := model.NewSymbol(name, joinQualified(res.ModulePath, name), model.KindFunction,
					nodeLocation(path, nameNode), visibilityFromGoName(name), language)
				res.Symbols = append(res.Symbols, sym)
			}
		case "method_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				recv := goReceiverTypeName(node, content)
				qualified := joinQualified(res.ModulePath, name)
				if recv != "" {
					qualified = joinQualified(joinQualified(res.ModulePath, recv), name)
				}
				sym := model.NewSymbol(name, qualified, model.KindMember,
					nodeLocation(path, nameNode), visibilityFromGoName(name), language)
				if recv != "" {
					parent := recv
					sym.Parent = &parent
				}
				res.Symbols = append(res.Symbols, sym)
			}
		case "type_spec":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				kind := model.KindType
				if typeNode := node.ChildByFieldName("type"); typeNode != nil {
					switch typeNode.Type() {
					case "struct_type":
						kind = model.KindClass
					case "interface_type":
						kind = model.KindInterface
					}
				}
				sym := model.NewSymbol(name, joinQualified(res.ModulePath, name), kind,
					nodeLocation(path, nameNode), visibilityFromGoName(name), language)
				res.Symbols = append(res.Symbols, sym)
			}
		case "import_spec":
			if pathNode := node.ChildByFieldName("path"); pathNode != nil {
				importPath := strings.Trim(nodeText(pathNode, content), `"`)
				start := node.StartPoint()
				res.Opens = append(res.Opens, model.Open{File: path, ModulePath: importPath, Line: start.Row + 1})
			}
		case "call_expression":
			if fnNode := node.ChildByFieldName("function"); fnNode != nil {
				name := calleeName(fnNode, content)
				if name != "" {
					start := fnNode.StartPoint()
					res.References = append(res.References, model.Reference{
						Name:     name,
						Location: model.NewLocation(path, start.Row+1, start.Column+1),
					})
				}
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i), depth+1)
		}
	}
	visit(root, 0)
	return res
}

func goPackageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "package_clause" {
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				return nodeText(nameNode, content)
			}
		}
	}
	return ""
}

func goReceiverTypeName(method *sitter.Node, content []byte) string {
	recvNode := method.ChildByFieldName("receiver")
	if recvNode == nil {
		return ""
	}
	// Walk down to the first type_identifier in the receiver parameter list.
	var find func(n *sitter.Node) string
	find = func(n *sitter.Node) string {
		if n == nil {
			return ""
		}
		if n.Type() == "type_identifier" {
			return nodeText(n, content)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if name := find(n.Child(i)); name != "" {
				return name
			}
		}
		return ""
	}
	return find(recvNode)
}

func calleeName(fnNode *sitter.Node, content []byte) string {
	switch fnNode.Type() {
	case "identifier":
		return nodeText(fnNode, content)
	case "selector_expression":
		if fieldNode := fnNode.ChildByFieldName("field"); fieldNode != nil {
			if operand := fnNode.ChildByFieldName("operand"); operand != nil {
				return nodeText(operand, content) + "." + nodeText(fieldNode, content)
			}
			return nodeText(fieldNode, content)
		}
	}
	return nodeText(fnNode, content)
}

func visibilityFromGoName(name string) model.Visibility {
	if name == "" {
		return model.VisibilityPrivate
	}
	r := name[0]
	if r >= 'A' && r <= 'Z' {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

// =============================================================================
// Python
// =============================================================================

func NewPythonPlugin() Plugin {
	return newTreeSitterPlugin("python", []string{"py", "pyi"}, python.GetLanguage(), walkPython)
}

func walkPython(root *sitter.Node, content []byte, path, language string, maxDepth int) Result {
	var res Result

	var visit func(node *sitter.Node, depth int, enclosingClass string)
	visit = func(node *sitter.Node, depth int, enclosingClass string) {
		if node == nil || depth > maxDepth {
			return
		}
		switch node.Type() {
		case "class_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				sym := model.NewSymbol(name, joinQualified(res.ModulePath, name), model.KindClass,
					nodeLocation(path, nameNode), pythonVisibility(name), language)
				res.Symbols = append(res.Symbols, sym)
				bodyNode := node.ChildByFieldName("body")
				for i := 0; i < int(node.ChildCount()); i++ {
					child := node.Child(i)
					if child == bodyNode {
						visit(child, depth+1, name)
						continue
					}
					visit(child, depth+1, enclosingClass)
				}
				return
			}
		case "function_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				kind := model.KindFunction
				qualified := joinQualified(res.ModulePath, name)
				var parent *string
				if enclosingClass != "" {
					kind = model.KindMember
					qualified = joinQualified(joinQualified(res.ModulePath, enclosingClass), name)
					p := enclosingClass
					parent = &p
				}
				sym := model.NewSymbol(name, qualified, kind, nodeLocation(path, nameNode), pythonVisibility(name), language)
				sym.Parent = parent
				res.Symbols = append(res.Symbols, sym)
			}
		case "call":
			if fnNode := node.ChildByFieldName("function"); fnNode != nil {
				name := nodeText(fnNode, content)
				start := fnNode.StartPoint()
				res.References = append(res.References, model.Reference{
					Name:     name,
					Location: model.NewLocation(path, start.Row+1, start.Column+1),
				})
			}
		case "import_statement", "import_from_statement":
			start := node.StartPoint()
			res.Opens = append(res.Opens, model.Open{File: path, ModulePath: strings.TrimSpace(nodeText(node, content)), Line: start.Row + 1})
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i), depth+1, enclosingClass)
		}
	}
	visit(root, 0, "")
	return res
}

func pythonVisibility(name string) model.Visibility {
	if strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__") {
		return model.VisibilityPrivate
	}
	if strings.HasPrefix(name, "_") {
		return model.VisibilityInternal
	}
	return model.VisibilityPublic
}

// =============================================================================
// JavaScript / TypeScript
// =============================================================================

func NewJavaScriptPlugin() Plugin {
	return newTreeSitterPlugin("javascript", []string{"js", "jsx", "mjs", "cjs"}, javascript.GetLanguage(), walkECMAScript)
}

func NewTypeScriptPlugin() Plugin {
	return newTreeSitterPlugin("typescript", []string{"ts", "tsx"}, typescript.GetLanguage(), walkECMAScript)
}

func walkECMAScript(root *sitter.Node, content []byte, path, language string, maxDepth int) Result {
	var res Result

	var visit func(node *sitter.Node, depth int, enclosingClass string)
	visit = func(node *sitter.Node, depth int, enclosingClass string) {
		if node == nil || depth > maxDepth {
			return
		}
		switch node.Type() {
		case "class_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				sym := model.NewSymbol(name, joinQualified(res.ModulePath, name), model.KindClass,
					nodeLocation(path, nameNode), model.VisibilityPublic, language)
				res.Symbols = append(res.Symbols, sym)
				for i := 0; i < int(node.ChildCount()); i++ {
					visit(node.Child(i), depth+1, name)
				}
				return
			}
		case "interface_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				sym := model.NewSymbol(name, joinQualified(res.ModulePath, name), model.KindInterface,
					nodeLocation(path, nameNode), model.VisibilityPublic, language)
				res.Symbols = append(res.Symbols, sym)
			}
		case "function_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				sym := model.NewSymbol(name, joinQualified(res.ModulePath, name), model.KindFunction,
					nodeLocation(path, nameNode), model.VisibilityPublic, language)
				res.Symbols = append(res.Symbols, sym)
			}
		case "method_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				qualified := joinQualified(res.ModulePath, name)
				var parent *string
				if enclosingClass != "" {
					qualified = joinQualified(joinQualified(res.ModulePath, enclosingClass), name)
					p := enclosingClass
					parent = &p
				}
				sym := model.NewSymbol(name, qualified, model.KindMember, nodeLocation(path, nameNode), model.VisibilityPublic, language)
				sym.Parent = parent
				res.Symbols = append(res.Symbols, sym)
			}
		case "call_expression":
			if fnNode := node.ChildByFieldName("function"); fnNode != nil {
				name := nodeText(fnNode, content)
				start := fnNode.StartPoint()
				res.References = append(res.References, model.Reference{
					Name:     name,
					Location: model.NewLocation(path, start.Row+1, start.Column+1),
				})
			}
		case "import_statement":
			start := node.StartPoint()
			res.Opens = append(res.Opens, model.Open{File: path, ModulePath: strings.TrimSpace(nodeText(node, content)), Line: start.Row + 1})
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i), depth+1, enclosingClass)
		}
	}
	visit(root, 0, "")
	return res
}
