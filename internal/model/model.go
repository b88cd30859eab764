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

// Package model defines the core value types RocketIndex operates on:
// locations, symbols, references, opens, type members, and project file
// order. Every type here is a plain value, cheaply copyable, with no
// back-pointers into owning structures.
package model

import "encoding/json"

// SymbolKind is the kind of a named program entity.
type SymbolKind string

const (
	KindModule    SymbolKind = "Module"
	KindFunction  SymbolKind = "Function"
	KindValue     SymbolKind = "Value"
	KindType      SymbolKind = "Type"
	KindRecord    SymbolKind = "Record"
	KindUnion     SymbolKind = "Union"
	KindInterface SymbolKind = "Interface"
	KindClass     SymbolKind = "Class"
	KindMember    SymbolKind = "Member"
)

// IsCallable is the only heuristic allowed at this layer: true iff the kind
// can be the enclosing caller of a reference.
func (k SymbolKind) IsCallable() bool {
	return k == KindFunction || k == KindMember
}

// Visibility is the access modifier a language's own visibility keywords map
// into.
type Visibility string

const (
	VisibilityPublic   Visibility = "Public"
	VisibilityInternal Visibility = "Internal"
	VisibilityPrivate  Visibility = "Private"
)

// Source distinguishes symbols produced by syntactic extraction from ones
// whose type signature was later attached by an optional semantic pass
// (a type cache load). Persisted alongside every symbol row.
type Source string

const (
	SourceSyntactic Source = "syntactic"
	SourceSemantic  Source = "semantic"
)

// Location is a span of source text: a file path plus 1-indexed start and
// end line/column. A point location has End == Start. Equality and hashing
// (via the struct's comparability) are over all five fields.
type Location struct {
	File      string `json:"file"`
	Line      uint32 `json:"line"`
	Column    uint32 `json:"column"`
	EndLine   uint32 `json:"end_line"`
	EndColumn uint32 `json:"end_column"`
}

// NewLocation builds a point location (End == Start).
func NewLocation(file string, line, column uint32) Location {
	return Location{File: file, Line: line, Column: column, EndLine: line, EndColumn: column}
}

// NewLocationSpan builds a location with explicit start and end positions.
func NewLocationSpan(file string, line, column, endLine, endColumn uint32) Location {
	return Location{File: file, Line: line, Column: column, EndLine: endLine, EndColumn: endColumn}
}

// Symbol is the fundamental indexed entity: a named program entity plus
// where it lives and how it may be referenced.
type Symbol struct {
	Name       string     `json:"name"`
	Qualified  string     `json:"qualified"`
	Kind       SymbolKind `json:"kind"`
	Location   Location   `json:"location"`
	Visibility Visibility `json:"visibility"`
	Language   string     `json:"language"`
	Source     Source     `json:"source"`

	// Optional enrichments. Omitted from JSON when absent, per the
	// round-trip contract in §4.A.
	Parent        *string  `json:"parent,omitempty"`
	Mixins        []string `json:"mixins,omitempty"`
	Attributes    []string `json:"attributes,omitempty"`
	Implements    []string `json:"implements,omitempty"`
	Doc           *string  `json:"doc,omitempty"`
	Signature     *string  `json:"signature,omitempty"`
	TypeSignature *string  `json:"type_signature,omitempty"`
}

// NewSymbol builds a syntactic symbol with no optional enrichments set.
func NewSymbol(name, qualified string, kind SymbolKind, loc Location, vis Visibility, language string) Symbol {
	return Symbol{
		Name:       name,
		Qualified:  qualified,
		Kind:       kind,
		Location:   loc,
		Visibility: vis,
		Language:   language,
		Source:     SourceSyntactic,
	}
}

func (s Symbol) IsCallable() bool { return s.Kind.IsCallable() }

// Reference is a textual mention of a name at a location. Names are stored
// as written — possibly unqualified, partially qualified, or fully
// qualified — and are never resolved at extraction time.
type Reference struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

// Open is a use/import/open/require/#include statement bringing a module's
// names into a file's unqualified scope.
type Open struct {
	File       string `json:"file"`
	ModulePath string `json:"module_path"`
	Line       uint32 `json:"line"`
}

// MemberKind is the kind of a TypeMember sourced from an external type
// cache.
type MemberKind string

const (
	MemberProperty MemberKind = "Property"
	MemberMethod   MemberKind = "Method"
	MemberField    MemberKind = "Field"
	MemberEvent    MemberKind = "Event"
)

// TypeMember is an optional semantic-layer fact about a type's members,
// sourced from the type cache file (§6.4), never produced by syntactic
// extraction.
type TypeMember struct {
	TypeName   string     `json:"type_name"`
	Member     string     `json:"member_name"`
	MemberType string     `json:"member_type"`
	Kind       MemberKind `json:"kind"`
}

// FileSnapshot is the tuple of (symbols, references, opens) for one file —
// the atomic unit of update in the store.
type FileSnapshot struct {
	File       string
	Symbols    []Symbol
	References []Reference
	Opens      []Open
}

// ProjectFileOrder is the declared compile order of source files for
// languages that require forward-only references. A file absent from the
// order is unrestricted (the "external-file escape hatch" in §4.E).
type ProjectFileOrder []string

// indexOf returns the position of file in the order, or -1 if absent.
func (o ProjectFileOrder) indexOf(file string) int {
	for i, f := range o {
		if f == file {
			return i
		}
	}
	return -1
}

// CanReference reports whether a symbol defined in fromFile may reference a
// symbol defined in toFile, per the compilation-order rule: fromFile must
// come strictly after toFile in the order, or either file must be absent
// from the order entirely.
func (o ProjectFileOrder) CanReference(fromFile, toFile string) bool {
	if len(o) == 0 {
		return true
	}
	fromIdx := o.indexOf(fromFile)
	toIdx := o.indexOf(toFile)
	if fromIdx == -1 || toIdx == -1 {
		return true
	}
	return toIdx < fromIdx
}

// TypeCacheSchema is the on-disk JSON shape of the optional type cache
// (§6.4), consumed read-only by the resolver's type-aware fallback.
type TypeCacheSchema struct {
	Version     int                   `json:"version"`
	ExtractedAt string                `json:"extracted_at"`
	Project     string                `json:"project"`
	Symbols     []TypedSymbolEntry    `json:"symbols"`
	Members     []TypeCacheMemberEntry `json:"members"`
}

// TypedSymbolEntry is one entry in the type cache's "symbols" array.
type TypedSymbolEntry struct {
	Name       string                `json:"name"`
	Qualified  string                `json:"qualified"`
	Type       string                `json:"type"`
	File       string                `json:"file"`
	Line       uint32                `json:"line"`
	Parameters []TypeCacheParamEntry `json:"parameters,omitempty"`
}

// TypeCacheParamEntry is one parameter of a typed symbol entry.
type TypeCacheParamEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypeCacheMemberEntry is one entry in the type cache's "members" array.
type TypeCacheMemberEntry struct {
	Type       string     `json:"type"`
	Member     string     `json:"member"`
	MemberType string     `json:"member_type"`
	Kind       MemberKind `json:"kind"`
}

const TypeCacheCurrentVersion = 1

// UnmarshalTypeCache parses and validates a type cache blob, rejecting any
// unsupported version per §6.4.
func UnmarshalTypeCache(data []byte) (*TypeCacheSchema, error) {
	var schema TypeCacheSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}
	if schema.Version != TypeCacheCurrentVersion {
		return nil, &UnsupportedTypeCacheVersionError{Found: schema.Version, Want: TypeCacheCurrentVersion}
	}
	return &schema, nil
}

// UnsupportedTypeCacheVersionError reports a type cache whose version this
// build does not understand.
type UnsupportedTypeCacheVersionError struct {
	Found int
	Want  int
}

func (e *UnsupportedTypeCacheVersionError) Error() string {
	return "unsupported type cache version"
}
