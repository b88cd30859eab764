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

package spider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
	"github.com/rocket-tycoon/rocket-index-sub001/resolver"
)

func sym(name, qualified string, line uint32) model.Symbol {
	return model.NewSymbol(name, qualified, model.KindFunction, model.NewLocation("a.go", line, 1), model.VisibilityPublic, "go")
}

func newFixture() (*indexview.View, *Spider) {
	v := indexview.New()
	r := resolver.New(v)
	return v, New(v, r)
}

func TestForwardSingleNodeNoReferences(t *testing.T) {
	v, s := newFixture()
	entry := sym("Leaf", "pkg.Leaf", 1)
	v.AddSymbol(entry)

	result := s.Forward(entry, 3)
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, 0, result.Nodes[0].Depth)
	assert.Empty(t, result.Unresolved)
}

func TestForwardFollowsReferences(t *testing.T) {
	v, s := newFixture()
	root := sym("Root", "pkg.Root", 1)
	leaf := sym("Leaf", "pkg.Leaf", 10)
	v.AddSymbol(root)
	v.AddSymbol(leaf)
	v.AddReference(model.Reference{Name: "Leaf", Location: model.NewLocation("a.go", 3, 2)})

	result := s.Forward(root, 3)
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "Leaf", result.Nodes[1].Symbol.Name)
	assert.Equal(t, 1, result.Nodes[1].Depth)
}

func TestForwardRespectsMaxDepth(t *testing.T) {
	v, s := newFixture()
	a := sym("A", "pkg.A", 1)
	b := sym("B", "pkg.B", 5)
	c := sym("C", "pkg.C", 10)
	v.AddSymbol(a)
	v.AddSymbol(b)
	v.AddSymbol(c)
	v.AddReference(model.Reference{Name: "B", Location: model.NewLocation("a.go", 2, 1)})
	v.AddReference(model.Reference{Name: "C", Location: model.NewLocation("a.go", 6, 1)})

	result := s.Forward(a, 1)
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "B", result.Nodes[1].Symbol.Name)
}

func TestForwardTracksUnresolved(t *testing.T) {
	v, s := newFixture()
	root := sym("Root", "pkg.Root", 1)
	v.AddSymbol(root)
	v.AddReference(model.Reference{Name: "Ghost", Location: model.NewLocation("a.go", 2, 1)})

	result := s.Forward(root, 2)
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, []string{"Ghost"}, result.Unresolved)
}

func TestForwardResolvesThroughOpens(t *testing.T) {
	v, s := newFixture()
	root := sym("Root", "pkg.Root", 1)
	v.AddSymbol(root)
	other := model.NewSymbol("Marshal", "json.Marshal", model.KindFunction, model.NewLocation("json.go", 1, 1), model.VisibilityPublic, "go")
	v.AddSymbol(other)
	v.AddOpen(model.Open{File: "a.go", ModulePath: "encoding/json", Line: 1})
	v.AddReference(model.Reference{Name: "Marshal", Location: model.NewLocation("a.go", 2, 1)})

	result := s.Forward(root, 2)
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "Marshal", result.Nodes[1].Symbol.Name)
}

func TestReverseFindsCallers(t *testing.T) {
	v, s := newFixture()
	leaf := sym("Leaf", "pkg.Leaf", 1)
	caller := sym("Caller", "pkg.Caller", 10)
	v.AddSymbol(leaf)
	v.AddSymbol(caller)
	v.AddReference(model.Reference{Name: "Leaf", Location: model.NewLocation("a.go", 11, 2)})

	result := s.Reverse(leaf, 2)
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "Caller", result.Nodes[1].Symbol.Name)
}

func TestReverseMultipleCallers(t *testing.T) {
	v := indexview.New()
	r := resolver.New(v)
	s := New(v, r)

	leaf := model.NewSymbol("Leaf", "pkg.Leaf", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPublic, "go")
	callerA := model.NewSymbol("CallerA", "pkg.CallerA", model.KindFunction, model.NewLocation("b.go", 1, 1), model.VisibilityPublic, "go")
	callerB := model.NewSymbol("CallerB", "pkg.CallerB", model.KindFunction, model.NewLocation("c.go", 1, 1), model.VisibilityPublic, "go")
	v.AddSymbol(leaf)
	v.AddSymbol(callerA)
	v.AddSymbol(callerB)
	v.AddReference(model.Reference{Name: "Leaf", Location: model.NewLocation("b.go", 2, 1)})
	v.AddReference(model.Reference{Name: "Leaf", Location: model.NewLocation("c.go", 2, 1)})

	result := s.Reverse(leaf, 2)
	assert.Len(t, result.Nodes, 3)
}

func TestReverseNotFoundHasOnlyEntry(t *testing.T) {
	v, s := newFixture()
	leaf := sym("Orphan", "pkg.Orphan", 1)
	v.AddSymbol(leaf)

	result := s.Reverse(leaf, 3)
	require.Len(t, result.Nodes, 1)
}

func TestReverseNoCycles(t *testing.T) {
	v, s := newFixture()
	a := sym("A", "pkg.A", 1)
	b := sym("B", "pkg.B", 10)
	v.AddSymbol(a)
	v.AddSymbol(b)
	v.AddReference(model.Reference{Name: "A", Location: model.NewLocation("a.go", 11, 1)})
	v.AddReference(model.Reference{Name: "B", Location: model.NewLocation("a.go", 2, 1)})

	result := s.Reverse(a, 5)
	// Must terminate and never revisit a node already in the result.
	seen := map[string]bool{}
	for _, n := range result.Nodes {
		require.False(t, seen[n.Symbol.Qualified])
		seen[n.Symbol.Qualified] = true
	}
}

// TestFindContainingSymbolPrefersFunctionsOverVariables guards the
// callable-only filter: a variable declared on a later line than the
// enclosing function must never be picked as the reference's container.
func TestFindContainingSymbolPrefersFunctionsOverVariables(t *testing.T) {
	fn := model.NewSymbol("DoWork", "pkg.DoWork", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPublic, "go")
	value := model.NewSymbol("localVar", "pkg.localVar", model.KindValue, model.NewLocation("a.go", 3, 1), model.VisibilityPrivate, "go")

	got, ok := findContainingSymbol([]model.Symbol{fn, value}, 5)
	require.True(t, ok)
	assert.Equal(t, "DoWork", got.Name)
}
