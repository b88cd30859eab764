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

// Package extractor dispatches a source file to the language plugin that
// knows how to extract its symbols, references and opens (§4.B, §6.3). The
// registry never conditions on language identity beyond the extension
// lookup; every plugin implements the same Plugin interface.
package extractor

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

// Result is the fixed output tuple every language plugin produces.
type Result struct {
	Symbols     []model.Symbol
	References  []model.Reference
	Opens       []model.Open
	ModulePath  string
	ErrorCount  int
}

// Plugin is a language extractor. Implementations are expected to be pure
// (no global state), to clamp recursion at maxDepth, and to tag emitted
// symbols with a language as their model.Symbol.Language: single-language
// plugins use Language(); the regex fallback, which bundles several
// languages, tags each symbol with the language of its file's ruleset.
type Plugin interface {
	Language() string
	Extensions() []string
	Extract(path string, source []byte, maxDepth int) (Result, error)
}

// Registry dispatches file extensions to plugins, built once at startup.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Plugin)}
}

// Register adds a plugin under every extension it declares. A later
// registration for the same extension replaces an earlier one.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.Extensions() {
		r.byExt[normalizeExt(ext)] = p
	}
}

// ForExtension returns the plugin registered for a raw extension (with or
// without a leading dot).
func (r *Registry) ForExtension(ext string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byExt[normalizeExt(ext)]
	return p, ok
}

// ForPath returns the plugin for a file path's extension.
func (r *Registry) ForPath(path string) (Plugin, bool) {
	return r.ForExtension(filepath.Ext(path))
}

// Extract dispatches path to its plugin and runs Extract, or returns
// (Result{}, nil, false) when no plugin is registered for the extension.
func (r *Registry) Extract(path string, source []byte, maxDepth int) (Result, error, bool) {
	p, ok := r.ForPath(path)
	if !ok {
		return Result{}, nil, false
	}
	res, err := p.Extract(path, source, maxDepth)
	return res, err, true
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// SupportedExtensions is the exact set of extensions the watcher and walker
// recognize (§6.2). Extensions outside this list are silently ignored.
var SupportedExtensions = []string{
	"c", "h", "cpp", "cc", "cxx", "hpp", "hxx", "hh",
	"cs", "fs", "fsi", "fsx",
	"go", "java", "js", "jsx", "mjs", "cjs",
	"kt", "kts", "m", "mm", "php", "py", "pyi", "rb", "rs", "swift", "ts", "tsx",
}

var supportedExtensionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SupportedExtensions))
	for _, e := range SupportedExtensions {
		set[e] = struct{}{}
	}
	return set
}()

// IsSupportedExtension reports whether ext (with or without leading dot) is
// one of the exact §6.2 extensions.
func IsSupportedExtension(ext string) bool {
	_, ok := supportedExtensionSet[normalizeExt(ext)]
	return ok
}

// DefaultRegistry builds the registry RocketIndex ships with: tree-sitter
// AST plugins for Go, Python, JavaScript/TypeScript, and a single
// pattern-matching fallback plugin covering every other supported
// extension (§4.B).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoPlugin())
	r.Register(NewPythonPlugin())
	r.Register(NewJavaScriptPlugin())
	r.Register(NewTypeScriptPlugin())
	r.Register(NewRegexFallbackPlugin())
	return r
}
