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

// Package config loads RocketIndex's project-level settings from
// .rocketindex.toml in the project root, layered over built-in defaults
// (§ SPEC_FULL.md ambient stack). A missing file is normal and yields
// defaults silently; a malformed file also falls back to defaults, but
// logs a warning rather than aborting — indexing should never hard-fail
// because of a typo in an optional config file.
package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultExcludeDirs are always excluded from indexing, regardless of what
// a project's config adds.
var DefaultExcludeDirs = []string{
	"node_modules", "bin", "obj", ".git", ".vs", ".idea", "target", "dist",
}

const (
	defaultMaxRecursionDepth = 500
	defaultRespectGitignore  = true
	configFileName           = ".rocketindex.toml"
)

// Config is RocketIndex's project-level configuration.
type Config struct {
	ExcludeDirs       []string `toml:"exclude_dirs"`
	MaxRecursionDepth int      `toml:"max_recursion_depth"`
	RespectGitignore  bool     `toml:"respect_gitignore"`
}

// Default returns the built-in configuration used when no project config
// file is present or readable.
func Default() Config {
	return Config{
		ExcludeDirs:       nil,
		MaxRecursionDepth: defaultMaxRecursionDepth,
		RespectGitignore:  defaultRespectGitignore,
	}
}

// Load reads .rocketindex.toml from root, layering it over Default(). A
// missing file returns the defaults without comment. A present-but-invalid
// file also returns the defaults, logging a warning — config errors are
// never fatal to indexing.
func Load(root string) Config {
	cfg := Default()
	path := filepath.Join(root, configFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("config: could not read config file", "path", path, "error", err)
		}
		return cfg
	}

	// Strict decoding: an unrecognized key is a diagnostic, not a hard
	// error, but it still falls back to defaults wholesale rather than a
	// partially-applied config (§4.J).
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		slog.Warn("config: invalid or unrecognized config, using defaults", "path", path, "error", err)
		return Default()
	}
	if cfg.MaxRecursionDepth <= 0 {
		cfg.MaxRecursionDepth = defaultMaxRecursionDepth
	}

	slog.Info("config: loaded project config", "path", path)
	return cfg
}

// ExcludedDirs returns DefaultExcludeDirs plus any project-configured
// additions, deduplicated, preserving the defaults-first ordering the
// original implementation exposed.
func (c Config) ExcludedDirs() []string {
	dirs := append([]string(nil), DefaultExcludeDirs...)
	seen := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		seen[d] = struct{}{}
	}
	for _, d := range c.ExcludeDirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	return dirs
}
