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
	"regexp"
	"strings"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

// declPattern is one recognizable declaration shape for a regexFallback
// language: a compiled pattern whose first capture group is the symbol
// name, and the kind that shape produces.
type declPattern struct {
	re   *regexp.Regexp
	kind model.SymbolKind
	// parentGroup is the 1-based regex capture group holding a superclass
	// name, or 0 if this shape has none. Ruby's "class Foo < Bar" is the
	// only ruleset that currently populates it.
	parentGroup int
}

// langRules is the per-language table of declaration patterns and the
// import/use keyword used to recognize opens. This is the uniform,
// pattern-matching counterpart to the tree-sitter plugins above, covering
// every supported extension that doesn't have a bundled grammar.
type langRules struct {
	language string
	exts     []string
	decls    []declPattern
	opens    *regexp.Regexp // first capture group is the module path
}

// regexFallbackPlugin parses source with per-language declaration-keyword
// patterns rather than an AST — adequate for a syntactic symbol index, at
// the cost of call-graph precision for the languages it covers.
type regexFallbackPlugin struct {
	byExt map[string]*langRules
	exts  []string
}

func NewRegexFallbackPlugin() Plugin {
	rulesets := []*langRules{
		cLikeRules("c", []string{"c", "h"}),
		cLikeRules("cpp", []string{"cpp", "cc", "cxx", "hpp", "hxx", "hh"}),
		csharpRules(),
		fsharpRules(),
		javaRules(),
		kotlinRules(),
		objcRules(),
		phpRules(),
		rubyRules(),
		rustRules(),
		swiftRules(),
	}
	p := &regexFallbackPlugin{byExt: make(map[string]*langRules)}
	for _, rs := range rulesets {
		for _, ext := range rs.exts {
			p.byExt[ext] = rs
			p.exts = append(p.exts, ext)
		}
	}
	return p
}

func (p *regexFallbackPlugin) Language() string     { return "regex-fallback" }
func (p *regexFallbackPlugin) Extensions() []string { return p.exts }

func (p *regexFallbackPlugin) Extract(path string, source []byte, maxDepth int) (Result, error) {
	ext := normalizeExt(extOf(path))
	rules, ok := p.byExt[ext]
	if !ok {
		return Result{}, nil
	}

	var res Result
	lines := strings.Split(string(source), "\n")
	depth := 0
	for i, rawLine := range lines {
		line := rawLine
		lineNo := uint32(i + 1)

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			depth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
			if depth < 0 {
				depth = 0
			}
		}
		if maxDepth > 0 && depth > maxDepth {
			continue
		}

		for _, d := range rules.decls {
			m := d.re.FindStringSubmatch(line)
			if m == nil || len(m) < 2 {
				continue
			}
			name := m[1]
			vis := model.VisibilityPublic
			if strings.Contains(line, "private") {
				vis = model.VisibilityPrivate
			} else if strings.Contains(line, "protected") || strings.Contains(line, "internal") {
				vis = model.VisibilityInternal
			}
			col := uint32(strings.Index(line, name) + 1)
			if col == 0 {
				col = 1
			}
			sym := model.NewSymbol(name, name, d.kind, model.NewLocation(path, lineNo, col), vis, rules.language)
			if d.parentGroup > 0 && len(m) > d.parentGroup && m[d.parentGroup] != "" {
				parent := m[d.parentGroup]
				sym.Parent = &parent
			}
			res.Symbols = append(res.Symbols, sym)
		}

		if rules.opens != nil {
			if m := rules.opens.FindStringSubmatch(line); len(m) >= 2 {
				res.Opens = append(res.Opens, model.Open{File: path, ModulePath: m[1], Line: lineNo})
			}
		}
	}
	return res, nil
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx+1:]
}

func cLikeRules(language string, exts []string) *langRules {
	return &langRules{
		language: language,
		exts:     exts,
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:static\s+|inline\s+)*[\w:<>,\s\*&]+?\b(\w+)\s*\([^;{]*\)\s*\{`), model.KindFunction, 0},
			{regexp.MustCompile(`^\s*(?:typedef\s+)?(?:struct|class)\s+(\w+)\b`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*enum(?:\s+class)?\s+(\w+)\b`), model.KindUnion, 0},
			{regexp.MustCompile(`^\s*namespace\s+(\w+)\b`), model.KindModule, 0},
		},
		opens: regexp.MustCompile(`^\s*#include\s*[<"]([^">]+)[">]`),
	}
}

func csharpRules() *langRules {
	return &langRules{
		language: "csharp",
		exts:     []string{"cs"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:public|private|protected|internal|static|\s)*\s*(?:class)\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*(?:public|private|protected|internal|static|\s)*\s*interface\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*(?:public|private|protected|internal|static|async|\s)*\s*[\w<>\[\],\s]+?\s+(\w+)\s*\([^;{]*\)\s*\{`), model.KindMember, 0},
			{regexp.MustCompile(`^\s*namespace\s+([\w.]+)`), model.KindModule, 0},
		},
		opens: regexp.MustCompile(`^\s*using\s+([\w.]+)\s*;`),
	}
}

func fsharpRules() *langRules {
	return &langRules{
		language: "fsharp",
		exts:     []string{"fs", "fsi", "fsx"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*let\s+(?:rec\s+)?(\w+)`), model.KindFunction, 0},
			{regexp.MustCompile(`^\s*type\s+(\w+)`), model.KindType, 0},
			{regexp.MustCompile(`^\s*module\s+([\w.]+)`), model.KindModule, 0},
			{regexp.MustCompile(`^\s*member\s+(?:this|self|_)\.(\w+)`), model.KindMember, 0},
		},
		opens: regexp.MustCompile(`^\s*open\s+([\w.]+)`),
	}
}

func javaRules() *langRules {
	return &langRules{
		language: "java",
		exts:     []string{"java"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:public|private|protected|static|final|abstract|\s)*\s*class\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*(?:public|private|protected|static|final|abstract|\s)*\s*interface\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*(?:public|private|protected|static|final|abstract|synchronized|\s)*\s*[\w<>\[\],\s]+?\s+(\w+)\s*\([^;{]*\)\s*(?:throws\s+[\w,\s]+)?\{`), model.KindMember, 0},
		},
		opens: regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+)(?:\.\*)?\s*;`),
	}
}

func kotlinRules() *langRules {
	return &langRules{
		language: "kotlin",
		exts:     []string{"kt", "kts"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:public|private|internal|\s)*\s*(?:data\s+|sealed\s+|abstract\s+|open\s+)*class\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*(?:public|private|internal|\s)*\s*interface\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*(?:public|private|internal|override|suspend|\s)*\s*fun\s+(?:<[^>]*>\s*)?(?:[\w.]+\.)?(\w+)\s*\(`), model.KindFunction, 0},
		},
		opens: regexp.MustCompile(`^\s*import\s+([\w.]+)`),
	}
}

func objcRules() *langRules {
	return &langRules{
		language: "objc",
		exts:     []string{"m", "mm"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*@interface\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*@implementation\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*@protocol\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*[-+]\s*\([\w\s\*]+\)\s*(\w+)`), model.KindMember, 0},
		},
		opens: regexp.MustCompile(`^\s*#import\s*[<"]([^">]+)[">]`),
	}
}

func phpRules() *langRules {
	return &langRules{
		language: "php",
		exts:     []string{"php"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:abstract\s+|final\s+)?class\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*interface\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*trait\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*(?:public|private|protected|static|final|abstract|\s)*\s*function\s+(\w+)\s*\(`), model.KindFunction, 0},
		},
		opens: regexp.MustCompile(`^\s*(?:use|require|require_once|include|include_once)\s+['"]?([\w.\\/]+)['"]?\s*;`),
	}
}

func rubyRules() *langRules {
	return &langRules{
		language: "ruby",
		exts:     []string{"rb"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*class\s+(\w+)(?:\s*<\s*([\w:]+))?`), model.KindClass, 2},
			{regexp.MustCompile(`^\s*module\s+(\w+)`), model.KindModule, 0},
			{regexp.MustCompile(`^\s*def\s+(?:self\.)?(\w+[?!=]?)`), model.KindFunction, 0},
		},
		opens: regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`),
	}
}

func rustRules() *langRules {
	return &langRules{
		language: "rust",
		exts:     []string{"rs"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?fn\s+(\w+)`), model.KindFunction, 0},
			{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?struct\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?enum\s+(\w+)`), model.KindUnion, 0},
			{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?trait\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?mod\s+(\w+)`), model.KindModule, 0},
		},
		opens: regexp.MustCompile(`^\s*use\s+([\w:{}, ]+);`),
	}
}

func swiftRules() *langRules {
	return &langRules{
		language: "swift",
		exts:     []string{"swift"},
		decls: []declPattern{
			{regexp.MustCompile(`^\s*(?:public|private|internal|fileprivate|open|final|\s)*\s*class\s+(\w+)`), model.KindClass, 0},
			{regexp.MustCompile(`^\s*(?:public|private|internal|fileprivate|\s)*\s*struct\s+(\w+)`), model.KindRecord, 0},
			{regexp.MustCompile(`^\s*(?:public|private|internal|fileprivate|\s)*\s*protocol\s+(\w+)`), model.KindInterface, 0},
			{regexp.MustCompile(`^\s*(?:public|private|internal|fileprivate|static|override|\s)*\s*func\s+(\w+)\s*(?:<[^>]*>)?\(`), model.KindFunction, 0},
		},
		opens: regexp.MustCompile(`^\s*import\s+(\w+)`),
	}
}
