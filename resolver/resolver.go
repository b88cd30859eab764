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

// Package resolver turns a textual reference into the symbol it names,
// deterministically, in a fixed four-step order: direct qualified match,
// same-file fallback, resolution via the referencing file's opens, and a
// parent-module walk (§4.E). A compilation-order gate vetoes any candidate
// a forward-reference-restricted language isn't yet allowed to see.
package resolver

import (
	"strings"

	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

// Resolver resolves references against a live indexview.View.
type Resolver struct {
	view *indexview.View
}

// New builds a Resolver over view.
func New(view *indexview.View) *Resolver {
	return &Resolver{view: view}
}

// Resolve finds the symbol that a reference named `name`, written in
// `fromFile`, most plausibly denotes. It returns ok=false when no
// candidate survives the visibility gate.
func (r *Resolver) Resolve(name, fromFile string) (model.Symbol, bool) {
	order := r.view.FileOrder()

	// Step 1: direct qualified match, filtered by compilation order.
	if candidates := r.view.ByQualified(name); len(candidates) > 0 {
		if sym, ok := firstVisible(candidates, fromFile, order); ok {
			return sym, true
		}
	}

	// Step 2: same-file fallback — an unqualified reference inside the
	// file that declares it, regardless of compilation order.
	for _, sym := range r.view.SymbolsInFile(fromFile) {
		if sym.Name == name || sym.Qualified == name {
			return sym, true
		}
	}

	// Step 3: resolution via the referencing file's open/import/use
	// statements — join each open's module path with name and retry a
	// direct qualified match.
	for _, open := range r.view.OpensForFile(fromFile) {
		qualified := joinQualified(open.ModulePath, name)
		if candidates := r.view.ByQualified(qualified); len(candidates) > 0 {
			if sym, ok := firstVisible(candidates, fromFile, order); ok {
				return sym, true
			}
		}
	}

	// Step 4: parent-module walk — try an unqualified-name match first
	// (the common case of a same-package, different-file call with no
	// import statement at all), then progressively strip the leading
	// dotted segment of name and retry, covering partially-qualified
	// references written relative to an enclosing module.
	if candidates := r.view.ByName(name); len(candidates) == 1 {
		if order.CanReference(fromFile, candidates[0].Location.File) {
			return candidates[0], true
		}
	}
	rest := name
	for {
		idx := strings.IndexAny(rest, ".:")
		if idx < 0 {
			break
		}
		rest = rest[idx+1:]
		if candidates := r.view.ByQualified(rest); len(candidates) > 0 {
			if sym, ok := firstVisible(candidates, fromFile, order); ok {
				return sym, true
			}
		}
		if candidates := r.view.ByName(rest); len(candidates) == 1 {
			if order.CanReference(fromFile, candidates[0].Location.File) {
				return candidates[0], true
			}
		}
	}

	return model.Symbol{}, false
}

// firstVisible returns the first candidate that the compilation-order gate
// allows fromFile to reference. Candidates are otherwise undifferentiated:
// resolution is deliberately deterministic on input order, not on any
// scoring heuristic.
func firstVisible(candidates []model.Symbol, fromFile string, order model.ProjectFileOrder) (model.Symbol, bool) {
	for _, sym := range candidates {
		if order.CanReference(fromFile, sym.Location.File) {
			return sym, true
		}
	}
	return model.Symbol{}, false
}

func joinQualified(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}
