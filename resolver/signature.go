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

package resolver

import (
	"strings"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

// ResolveMember answers "what does receiverExpr.member resolve to", using
// the optional type cache: strip generics/pointer/array decoration and an
// arrow-style return type off a type signature, then look up
// baseType.member in the cache's members table. Returns ok=false if no
// type cache is loaded or the member isn't recorded.
func (r *Resolver) ResolveMember(receiverType, member string) (model.TypeMember, bool) {
	cache := r.view.TypeCache()
	if cache == nil {
		return model.TypeMember{}, false
	}
	base := stripTypeDecoration(receiverType)
	for _, m := range cache.Members {
		if m.Member == member && stripTypeDecoration(m.Type) == base {
			return model.TypeMember{TypeName: m.Type, Member: m.Member, MemberType: m.MemberType, Kind: m.Kind}, true
		}
	}
	return model.TypeMember{}, false
}

// ReceiverTypeOf looks a symbol's declared type signature up in the type
// cache by qualified name, returning the stripped base type name.
func (r *Resolver) ReceiverTypeOf(qualified string) (string, bool) {
	cache := r.view.TypeCache()
	if cache == nil {
		return "", false
	}
	for _, entry := range cache.Symbols {
		if entry.Qualified == qualified {
			return stripTypeDecoration(entry.Type), true
		}
	}
	return "", false
}

// stripTypeDecoration reduces a language's type signature down to a bare
// type name suitable as a members-table lookup key:
//   - an arrow-style return type ("(args) -> Foo", "() Foo") keeps only Foo
//   - trailing generic parameters ("List<Foo>", "Foo[T]") are dropped
//   - pointer/reference prefixes (*, &) and pointer/reference/array/optional
//     postfixes (*, &, [], ?) are stripped
func stripTypeDecoration(sig string) string {
	s := strings.TrimSpace(sig)

	if idx := strings.LastIndex(s, "->"); idx >= 0 {
		s = strings.TrimSpace(s[idx+2:])
	} else if idx := strings.LastIndex(s, ")"); idx >= 0 && strings.HasPrefix(s, "(") {
		rest := strings.TrimSpace(s[idx+1:])
		if rest != "" {
			s = rest
		}
	}

	if idx := strings.IndexAny(s, "<["); idx > 0 {
		s = s[:idx]
	}

	s = strings.TrimRight(s, "*&?")
	s = strings.TrimLeft(s, "*&")
	s = strings.TrimSpace(s)

	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		s = s[idx+2:]
	}

	return strings.TrimSpace(s)
}
