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

package indexview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
)

func TestLoadSnapshotReplacesFile(t *testing.T) {
	v := New()
	v.LoadSnapshot(model.FileSnapshot{
		File: "a.go",
		Symbols: []model.Symbol{
			model.NewSymbol("Foo", "pkg.Foo", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPublic, "go"),
			model.NewSymbol("Bar", "pkg.Bar", model.KindFunction, model.NewLocation("a.go", 2, 1), model.VisibilityPublic, "go"),
		},
	})
	require.Len(t, v.SymbolsInFile("a.go"), 2)
	require.Len(t, v.ByQualified("pkg.Foo"), 1)

	v.LoadSnapshot(model.FileSnapshot{
		File: "a.go",
		Symbols: []model.Symbol{
			model.NewSymbol("Baz", "pkg.Baz", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPublic, "go"),
		},
	})
	assert.Len(t, v.SymbolsInFile("a.go"), 1)
	assert.Empty(t, v.ByQualified("pkg.Foo"))
	assert.Len(t, v.ByQualified("pkg.Baz"), 1)
}

func TestClearFile(t *testing.T) {
	v := New()
	v.AddSymbol(model.NewSymbol("Foo", "pkg.Foo", model.KindFunction, model.NewLocation("a.go", 1, 1), model.VisibilityPublic, "go"))
	v.AddReference(model.Reference{Name: "Foo", Location: model.NewLocation("a.go", 2, 1)})
	v.ClearFile("a.go")
	assert.Empty(t, v.SymbolsInFile("a.go"))
	assert.Empty(t, v.ReferencesInFile("a.go"))
}

func TestMakeLocationAbsolute(t *testing.T) {
	v := New()
	v.SetWorkspaceRoot("/repo")
	loc := v.MakeLocationAbsolute(model.NewLocation("pkg/foo.go", 1, 1))
	assert.Equal(t, "/repo/pkg/foo.go", loc.File)
}
