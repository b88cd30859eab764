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

// Package spider walks the call graph breadth-first from a starting
// symbol, either in the callee direction (what does this call) or the
// caller direction (what calls this), bounded by a maximum depth (§4.F).
package spider

import (
	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
	"github.com/rocket-tycoon/rocket-index-sub001/resolver"
)

// Node is one visited symbol plus the depth at which it was first reached.
type Node struct {
	Symbol model.Symbol
	Depth  int
}

// Result is the outcome of one spider run: the symbols reached, in BFS
// order, and every reference name that could not be resolved to a symbol
// along the way.
type Result struct {
	Nodes      []Node
	Unresolved []string
}

// Spider is a bound graph walker over one indexview.View.
type Spider struct {
	view *indexview.View
	res  *resolver.Resolver
}

// New builds a Spider over view, using res to turn references into
// symbols.
func New(view *indexview.View, res *resolver.Resolver) *Spider {
	return &Spider{view: view, res: res}
}

// Forward walks the callee direction: starting at entry, follow every
// reference found inside entry's body outward to whatever symbol it
// resolves to, up to maxDepth hops.
func (s *Spider) Forward(entry model.Symbol, maxDepth int) Result {
	return s.walk(entry, maxDepth, s.calleesOf)
}

// Reverse walks the caller direction: starting at entry, find every
// reference elsewhere in the index that resolves to entry (or to a node
// already visited), attributed to its closest enclosing callable symbol,
// up to maxDepth hops.
func (s *Spider) Reverse(entry model.Symbol, maxDepth int) Result {
	return s.walk(entry, maxDepth, s.callersOf)
}

type edgeFunc func(sym model.Symbol) (next []model.Symbol, unresolved []string)

func (s *Spider) walk(entry model.Symbol, maxDepth int, edges edgeFunc) Result {
	visited := map[string]bool{entry.Qualified: true}
	result := Result{Nodes: []Node{{Symbol: entry, Depth: 0}}}
	frontier := []model.Symbol{entry}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []model.Symbol
		for _, sym := range frontier {
			found, unresolved := edges(sym)
			result.Unresolved = append(result.Unresolved, unresolved...)
			for _, cand := range found {
				if visited[cand.Qualified] {
					continue
				}
				visited[cand.Qualified] = true
				result.Nodes = append(result.Nodes, Node{Symbol: cand, Depth: depth})
				next = append(next, cand)
			}
		}
		frontier = next
	}
	return result
}

// calleesOf resolves every reference located within sym's own body to the
// symbol it names. A symbol's body is approximated as the line range from
// its own declaration up to (but not including) the next callable symbol
// declared in the same file — extraction doesn't record an explicit body
// end line, so the next sibling's start is the best available boundary.
func (s *Spider) calleesOf(sym model.Symbol) ([]model.Symbol, []string) {
	endLine := bodyEndLine(s.view.SymbolsInFile(sym.Location.File), sym)

	var found []model.Symbol
	var unresolved []string
	for _, ref := range s.view.ReferencesInFile(sym.Location.File) {
		if ref.Location.Line < sym.Location.Line || ref.Location.Line > endLine {
			continue
		}
		target, ok := s.res.Resolve(ref.Name, sym.Location.File)
		if !ok {
			unresolved = append(unresolved, ref.Name)
			continue
		}
		found = append(found, target)
	}
	return found, unresolved
}

// bodyEndLine returns the line just before the next callable symbol that
// starts after sym in the same file, or an unbounded line when sym is the
// last callable symbol in the file.
func bodyEndLine(symbols []model.Symbol, sym model.Symbol) uint32 {
	const unbounded = ^uint32(0)
	best := unbounded
	for _, other := range symbols {
		if !other.IsCallable() || other.Qualified == sym.Qualified {
			continue
		}
		if other.Location.Line > sym.Location.Line && other.Location.Line < best {
			best = other.Location.Line - 1
		}
	}
	return best
}

// callersOf scans every reference in the index that resolves to sym, and
// attributes each one to its closest enclosing callable symbol — the
// caller-direction analog of calleesOf.
func (s *Spider) callersOf(sym model.Symbol) ([]model.Symbol, []string) {
	var found []model.Symbol
	seen := map[string]bool{}
	for _, ref := range s.view.AllReferences() {
		target, ok := s.res.Resolve(ref.Name, ref.Location.File)
		if !ok || target.Qualified != sym.Qualified {
			continue
		}
		caller, ok := findContainingSymbol(s.view.SymbolsInFile(ref.Location.File), ref.Location.Line)
		if !ok || seen[caller.Qualified] {
			continue
		}
		seen[caller.Qualified] = true
		found = append(found, caller)
	}
	return found, nil
}

// findContainingSymbol returns the callable symbol in file whose location
// line is the closest one at or before referenceLine — i.e. the function
// or method that textually contains the reference. Non-callable symbols
// (types, values) are never returned even if their line is a closer match,
// since a reference can't be "inside" a type declaration.
func findContainingSymbol(symbols []model.Symbol, referenceLine uint32) (model.Symbol, bool) {
	var best model.Symbol
	found := false
	for _, sym := range symbols {
		if !sym.IsCallable() || sym.Location.Line > referenceLine {
			continue
		}
		if !found || sym.Location.Line > best.Location.Line {
			best = sym
			found = true
		}
	}
	return best, found
}
