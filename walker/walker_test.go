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

package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestWalkDiscoversSupportedExtensionsOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "README.md"), "# hi")
	writeFile(t, filepath.Join(root, "node_modules", "lib.js"), "x")
	writeFile(t, filepath.Join(root, "src", "app.py"), "x = 1")

	w := New()
	files, err := w.Collect(context.Background(), Options{Root: root})
	require.NoError(t, err)

	sort.Strings(files)
	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	sort.Strings(rels)

	assert.Contains(t, rels, "main.go")
	assert.Contains(t, rels, "src/app.py")
	assert.NotContains(t, rels, "README.md")
	for _, r := range rels {
		assert.NotContains(t, r, "node_modules")
	}
}

func TestWalkRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "vendor/\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "vendor", "dep.go"), "package dep")

	w := New()
	files, err := w.Collect(context.Background(), Options{Root: root, RespectGitignore: true})
	require.NoError(t, err)

	for _, f := range files {
		assert.NotContains(t, f, "vendor")
	}
}

func TestWalkNotADirectory(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.go")
	writeFile(t, filePath, "package main")

	w := New()
	_, err := w.Collect(context.Background(), Options{Root: filePath})
	assert.Error(t, err)
}
