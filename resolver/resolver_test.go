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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

func TestResolveDirectQualifiedMatch(t *testing.T) {
	v := indexview.New()
	v.AddSymbol(model.NewSymbol("Run", "cmd.Run", model.KindFunction, model.NewLocation("cmd.go", 1, 1), model.VisibilityPublic, "go"))
	r := New(v)

	sym, ok := r.Resolve("cmd.Run", "other.go")
	require.True(t, ok)
	assert.Equal(t, "Run", sym.Name)
}

func TestResolveSameFileFallback(t *testing.T) {
	v := indexview.New()
	v.AddSymbol(model.NewSymbol("helper", "pkg.helper", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPrivate, "go"))
	r := New(v)

	sym, ok := r.Resolve("helper", "a.go")
	require.True(t, ok)
	assert.Equal(t, "helper", sym.Name)
}

func TestResolveViaOpens(t *testing.T) {
	v := indexview.New()
	v.AddSymbol(model.NewSymbol("Marshal", "json.Marshal", model.KindFunction, model.NewLocation("json.go", 1, 1), model.VisibilityPublic, "go"))
	v.AddOpen(model.Open{File: "user.go", ModulePath: "json", Line: 1})
	r := New(v)

	sym, ok := r.Resolve("Marshal", "user.go")
	require.True(t, ok)
	assert.Equal(t, "Marshal", sym.Name)
}

// An open's module path must be joined in full, not truncated to its last
// dotted segment — otherwise a multi-segment open like F#'s
// "open MyApp.Utils" could never reach "MyApp.Utils.helper".
func TestResolveViaOpensJoinsFullModulePath(t *testing.T) {
	v := indexview.New()
	v.AddSymbol(model.NewSymbol("helper", "MyApp.Utils.helper", model.KindFunction, model.NewLocation("utils.fs", 1, 1), model.VisibilityPublic, "fsharp"))
	v.AddOpen(model.Open{File: "user.fs", ModulePath: "MyApp.Utils", Line: 1})
	r := New(v)

	sym, ok := r.Resolve("helper", "user.fs")
	require.True(t, ok)
	assert.Equal(t, "MyApp.Utils.helper", sym.Qualified)
}

func TestResolveRespectsCompilationOrder(t *testing.T) {
	v := indexview.New()
	v.AddSymbol(model.NewSymbol("Later", "pkg.Later", model.KindFunction, model.NewLocation("b.go", 1, 1), model.VisibilityPublic, "go"))
	v.SetFileOrder(model.ProjectFileOrder{"a.go", "b.go"})
	r := New(v)

	// a.go compiles before b.go, so a.go may not reference a symbol
	// declared in b.go.
	_, ok := r.Resolve("pkg.Later", "a.go")
	assert.False(t, ok)

	// b.go compiles after a.go is fine referencing itself/forward is not
	// generally allowed either when both are in the order and b is not
	// strictly before a — but referencing a symbol declared in an earlier
	// file is fine.
	v.AddSymbol(model.NewSymbol("Earlier", "pkg.Earlier", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPublic, "go"))
	sym, ok := r.Resolve("pkg.Earlier", "b.go")
	require.True(t, ok)
	assert.Equal(t, "Earlier", sym.Name)
}

func TestResolveUnknownReferenceFails(t *testing.T) {
	v := indexview.New()
	r := New(v)
	_, ok := r.Resolve("nothing.Here", "a.go")
	assert.False(t, ok)
}

func TestResolveIsDeterministic(t *testing.T) {
	v := indexview.New()
	v.AddSymbol(model.NewSymbol("Run", "cmd.Run", model.KindFunction, model.NewLocation("cmd.go", 1, 1), model.VisibilityPublic, "go"))
	r := New(v)

	first, ok1 := r.Resolve("cmd.Run", "other.go")
	second, ok2 := r.Resolve("cmd.Run", "other.go")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestStripTypeDecoration(t *testing.T) {
	cases := map[string]string{
		"Foo":            "Foo",
		"*Foo":           "Foo",
		"Foo*":           "Foo",
		"List<Foo>":      "List",
		"(args) -> Foo":  "Foo",
		"pkg.Foo":        "Foo",
		"ns::Foo":        "Foo",
		"Foo?":           "Foo",
	}
	for in, want := range cases {
		assert.Equal(t, want, stripTypeDecoration(in), "input %q", in)
	}
}
