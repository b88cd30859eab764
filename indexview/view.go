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

// Package indexview is RocketIndex's hot in-memory mirror of the store:
// hash maps keyed by qualified name, unqualified name and file, kept
// consistent under a single RWMutex so the resolver and spider never touch
// the database on the query path (§4.D).
package indexview

import (
	"path/filepath"
	"sync"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

// View is the mutable in-memory projection of the index. Build one with
// New; the zero value has nil maps and is not ready to use.
type View struct {
	mu sync.RWMutex

	workspaceRoot string
	fileOrder     model.ProjectFileOrder
	typeCache     *model.TypeCacheSchema

	byQualified map[string][]model.Symbol
	byName      map[string][]model.Symbol
	byFile      map[string][]model.Symbol
	refsByFile  map[string][]model.Reference
	opensByFile map[string][]model.Open
}

// New returns an empty View.
func New() *View {
	return &View{
		byQualified: make(map[string][]model.Symbol),
		byName:      make(map[string][]model.Symbol),
		byFile:      make(map[string][]model.Symbol),
		refsByFile:  make(map[string][]model.Reference),
		opensByFile: make(map[string][]model.Open),
	}
}

// SetWorkspaceRoot records the absolute root used to resolve relative
// locations via MakeLocationAbsolute.
func (v *View) SetWorkspaceRoot(root string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.workspaceRoot = root
}

// SetFileOrder installs the declared compilation order used by the
// resolver's visibility gate.
func (v *View) SetFileOrder(order model.ProjectFileOrder) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fileOrder = order
}

// FileOrder returns the currently installed compilation order.
func (v *View) FileOrder() model.ProjectFileOrder {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fileOrder
}

// SetTypeCache installs an optional semantic type cache consulted by the
// resolver's type-aware fallback.
func (v *View) SetTypeCache(cache *model.TypeCacheSchema) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typeCache = cache
}

// TypeCache returns the currently installed type cache, or nil.
func (v *View) TypeCache() *model.TypeCacheSchema {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.typeCache
}

// MakeLocationAbsolute rewrites loc.File to an absolute path under the
// workspace root, if one is set and loc.File is relative.
func (v *View) MakeLocationAbsolute(loc model.Location) model.Location {
	v.mu.RLock()
	root := v.workspaceRoot
	v.mu.RUnlock()
	if root == "" || filepath.IsAbs(loc.File) {
		return loc
	}
	loc.File = filepath.Join(root, loc.File)
	return loc
}

// ClearFile drops every symbol, reference and open indexed for file, prior
// to AddSymbol/AddReference/AddOpen repopulating it — the in-memory analog
// of the store's per-file replace semantics.
func (v *View) ClearFile(file string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, sym := range v.byFile[file] {
		v.byQualified[sym.Qualified] = removeSymbol(v.byQualified[sym.Qualified], sym)
		v.byName[sym.Name] = removeSymbol(v.byName[sym.Name], sym)
	}
	delete(v.byFile, file)
	delete(v.refsByFile, file)
	delete(v.opensByFile, file)
}

// AddSymbol indexes sym under its qualified name, unqualified name and
// file.
func (v *View) AddSymbol(sym model.Symbol) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.byQualified[sym.Qualified] = append(v.byQualified[sym.Qualified], sym)
	v.byName[sym.Name] = append(v.byName[sym.Name], sym)
	v.byFile[sym.Location.File] = append(v.byFile[sym.Location.File], sym)
}

// AddReference indexes ref under its file.
func (v *View) AddReference(ref model.Reference) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refsByFile[ref.Location.File] = append(v.refsByFile[ref.Location.File], ref)
}

// AddOpen indexes o under its file.
func (v *View) AddOpen(o model.Open) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.opensByFile[o.File] = append(v.opensByFile[o.File], o)
}

// LoadSnapshot clears file and repopulates it from snap in one locked
// section.
func (v *View) LoadSnapshot(snap model.FileSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clearFileLocked(snap.File)
	for _, sym := range snap.Symbols {
		v.byQualified[sym.Qualified] = append(v.byQualified[sym.Qualified], sym)
		v.byName[sym.Name] = append(v.byName[sym.Name], sym)
		v.byFile[sym.Location.File] = append(v.byFile[sym.Location.File], sym)
	}
	if len(snap.References) > 0 {
		v.refsByFile[snap.File] = append(v.refsByFile[snap.File], snap.References...)
	}
	if len(snap.Opens) > 0 {
		v.opensByFile[snap.File] = append(v.opensByFile[snap.File], snap.Opens...)
	}
}

func (v *View) clearFileLocked(file string) {
	for _, sym := range v.byFile[file] {
		v.byQualified[sym.Qualified] = removeSymbol(v.byQualified[sym.Qualified], sym)
		v.byName[sym.Name] = removeSymbol(v.byName[sym.Name], sym)
	}
	delete(v.byFile, file)
	delete(v.refsByFile, file)
	delete(v.opensByFile, file)
}

func removeSymbol(symbols []model.Symbol, target model.Symbol) []model.Symbol {
	out := symbols[:0]
	for _, s := range symbols {
		if s.Location == target.Location && s.Qualified == target.Qualified {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ByQualified returns every symbol with an exact qualified-name match.
func (v *View) ByQualified(qualified string) []model.Symbol {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Symbol(nil), v.byQualified[qualified]...)
}

// ByName returns every symbol with an exact unqualified-name match.
func (v *View) ByName(name string) []model.Symbol {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Symbol(nil), v.byName[name]...)
}

// SymbolsInFile returns every symbol indexed for file.
func (v *View) SymbolsInFile(file string) []model.Symbol {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Symbol(nil), v.byFile[file]...)
}

// ReferencesInFile returns every reference indexed for file.
func (v *View) ReferencesInFile(file string) []model.Reference {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Reference(nil), v.refsByFile[file]...)
}

// OpensForFile returns every open indexed for file.
func (v *View) OpensForFile(file string) []model.Open {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Open(nil), v.opensByFile[file]...)
}

// Files returns every file with at least one indexed symbol.
func (v *View) Files() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, 0, len(v.byFile))
	for f := range v.byFile {
		out = append(out, f)
	}
	return out
}

// AllSymbols returns every indexed symbol across all files, for the spider
// and for reverse-resolution scans.
func (v *View) AllSymbols() []model.Symbol {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]model.Symbol, 0)
	for _, syms := range v.byFile {
		out = append(out, syms...)
	}
	return out
}

// AllReferences returns every indexed reference across all files.
func (v *View) AllReferences() []model.Reference {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]model.Reference, 0)
	for _, refs := range v.refsByFile {
		out = append(out, refs...)
	}
	return out
}
