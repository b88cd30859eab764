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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, configFileName), []byte(contents), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.ExcludeDirs)
	assert.Equal(t, 500, cfg.MaxRecursionDepth)
	excluded := cfg.ExcludedDirs()
	assert.Contains(t, excluded, "node_modules")
	assert.Contains(t, excluded, "bin")
	assert.Contains(t, excluded, "obj")
}

func TestLoadMissingConfig(t *testing.T) {
	root := t.TempDir()
	cfg := Load(root)
	assert.Empty(t, cfg.ExcludeDirs)
	assert.Equal(t, 500, cfg.MaxRecursionDepth)
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "exclude_dirs = [\"fcs-fable\", \"vendor\"]\n")

	cfg := Load(root)
	assert.Equal(t, []string{"fcs-fable", "vendor"}, cfg.ExcludeDirs)

	excluded := cfg.ExcludedDirs()
	assert.Contains(t, excluded, "fcs-fable")
	assert.Contains(t, excluded, "vendor")
	assert.Contains(t, excluded, "node_modules")
}

func TestLoadConfigWithMaxRecursionDepth(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "max_recursion_depth = 1000\n")

	cfg := Load(root)
	assert.Equal(t, 1000, cfg.MaxRecursionDepth)
	assert.Empty(t, cfg.ExcludeDirs)
}

func TestInvalidConfigReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "max_recursion_depth = \"not a number\"\n")

	cfg := Load(root)
	assert.Equal(t, 500, cfg.MaxRecursionDepth)
}

func TestUnknownKeyFallsBackToDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "primary_hub_addr = \"hub.example.com:443\"\n")

	cfg := Load(root)
	assert.Equal(t, Default(), cfg)
}

func TestPartialConfigMergesWithDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "respect_gitignore = false\n")

	cfg := Load(root)
	assert.False(t, cfg.RespectGitignore)
	assert.Equal(t, 500, cfg.MaxRecursionDepth)
	assert.Empty(t, cfg.ExcludeDirs)
}
