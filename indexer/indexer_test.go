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

package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocket-tycoon/rocket-index-sub001/config"
	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
)

const sampleGoSource = `package widgets

import "fmt"

func NewWidget() *Widget {
	return &Widget{}
}

type Widget struct{}

func (w *Widget) Render() string {
	return fmt.Sprintf("widget")
}
`

const sampleRubySource = `require 'json'

class Gadget < Widget
  def initialize
  end
end
`

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.InMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "widget.go"), []byte(sampleGoSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gadget.rb"), []byte(sampleRubySource), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "junk.go"), []byte(sampleGoSource), 0o644))
	return root
}

func TestIndexFilePopulatesStoreAndView(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := writeProject(t)

	ix := New()
	symbols, refs, err := ix.IndexFile(ctx, st, view, root, filepath.Join(root, "widget.go"))
	require.NoError(t, err)
	assert.Positive(t, symbols)
	assert.GreaterOrEqual(t, refs, 0)

	stored, err := st.SymbolsInFile(ctx, "widget.go")
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	viewSymbols := view.SymbolsInFile("widget.go")
	assert.Len(t, viewSymbols, len(stored))
}

func TestIndexFileUnsupportedExtensionIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some notes"), 0o644))

	ix := New()
	symbols, refs, err := ix.IndexFile(ctx, st, view, root, path)
	require.NoError(t, err)
	assert.Zero(t, symbols)
	assert.Zero(t, refs)
}

func TestClearFileRemovesFromStoreAndView(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := writeProject(t)

	ix := New()
	_, _, err := ix.IndexFile(ctx, st, view, root, filepath.Join(root, "widget.go"))
	require.NoError(t, err)

	require.NoError(t, ix.ClearFile(ctx, st, view, root, filepath.Join(root, "widget.go")))

	stored, err := st.SymbolsInFile(ctx, "widget.go")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, view.SymbolsInFile("widget.go"))
}

func TestIndexRepoWalksAndExcludesDefaultDirs(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := writeProject(t)

	ix := New()
	stats, err := ix.IndexRepo(ctx, st, view, root, config.Default(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Zero(t, stats.FilesFailed)
	assert.Positive(t, stats.Symbols)

	files, err := st.ListFiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"widget.go", "gadget.rb"}, files)

	// node_modules is excluded by default (§4.G); its junk.go must never
	// reach the store.
	for _, f := range files {
		assert.NotContains(t, f, "node_modules")
	}
}

func TestIndexRepoReportsProgress(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := writeProject(t)

	var calls []int
	ix := New()
	_, err := ix.IndexRepo(ctx, st, view, root, config.Default(), func(current, total int) {
		calls = append(calls, current)
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Len(t, calls, 2)
}

func TestIndexRepoSetsWorkspaceRootOnView(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := writeProject(t)

	ix := New()
	_, err := ix.IndexRepo(ctx, st, view, root, config.Default(), nil)
	require.NoError(t, err)

	abs := view.MakeLocationAbsolute(model.NewLocation("widget.go", 1, 1))
	assert.Equal(t, filepath.Join(root, "widget.go"), abs.File)
}

func TestRubyClassCapturesSuperclassAsParent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	view := indexview.New()
	root := writeProject(t)

	ix := New()
	_, _, err := ix.IndexFile(ctx, st, view, root, filepath.Join(root, "gadget.rb"))
	require.NoError(t, err)

	syms, err := st.SymbolsInFile(ctx, "gadget.rb")
	require.NoError(t, err)
	var gadget *model.Symbol
	for i := range syms {
		if syms[i].Name == "Gadget" {
			gadget = &syms[i]
		}
	}
	require.NotNil(t, gadget, "Gadget class symbol not found")
	require.NotNil(t, gadget.Parent)
	assert.Equal(t, "Widget", *gadget.Parent)
}
