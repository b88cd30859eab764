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

// Package walker discovers source files under a project root in parallel,
// honoring .gitignore and a configured exclude-dirs list, and yielding only
// the extensions the extractor registry recognizes (§4.G).
package walker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/rocket-tycoon/rocket-index-sub001/extractor"
)

// Options configures one Walk call.
type Options struct {
	Root              string
	ExcludeDirs       []string
	RespectGitignore  bool
	MaxRecursionDepth int
	Workers           int
}

// Result is one discovered source file.
type Result struct {
	Path  string
	Error error
}

// DefaultExcludeDirs mirrors the original indexer's built-in skip list
// (§ SPEC_FULL.md supplemented features, config.rs).
var DefaultExcludeDirs = []string{"node_modules", "bin", "obj", ".git", ".vs", ".idea", "target", "dist"}

// Walker discovers files under a root using a worker pool, the way
// termfx-morfx's FileWalker does for its own domain.
type Walker struct {
	workers int
}

// New returns a Walker sized to the host's CPU count.
func New() *Walker {
	return &Walker{workers: runtime.NumCPU() * 2}
}

// Walk streams every supported source file under opts.Root on the returned
// channel, honoring exclude dirs, .gitignore (if present and enabled), and
// the max recursion depth.
func (w *Walker) Walk(ctx context.Context, opts Options) (<-chan Result, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &notADirectoryError{path: opts.Root}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = w.workers
	}
	if len(opts.ExcludeDirs) == 0 {
		opts.ExcludeDirs = DefaultExcludeDirs
	}

	var ignorer *gitignore.GitIgnore
	if opts.RespectGitignore {
		if gi, err := gitignore.CompileIgnoreFile(filepath.Join(opts.Root, ".gitignore")); err == nil {
			ignorer = gi
		}
	}

	paths := make(chan string, 1000)
	results := make(chan Result, 1000)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-paths:
					if !ok {
						return
					}
					select {
					case <-ctx.Done():
						return
					case results <- Result{Path: path}:
					}
				}
			}
		}()
	}

	go func() {
		defer close(paths)
		scanDir(ctx, opts.Root, opts, ignorer, paths, 0)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// Collect runs Walk to completion and returns every discovered path.
func (w *Walker) Collect(ctx context.Context, opts Options) ([]string, error) {
	results, err := w.Walk(ctx, opts)
	if err != nil {
		return nil, err
	}
	var out []string
	for r := range results {
		if r.Error != nil {
			continue
		}
		out = append(out, r.Path)
	}
	return out, nil
}

func scanDir(ctx context.Context, dir string, opts Options, ignorer *gitignore.GitIgnore, paths chan<- string, depth int) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	if opts.MaxRecursionDepth > 0 && depth > opts.MaxRecursionDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dir, entry.Name())
		rel, relErr := filepath.Rel(opts.Root, fullPath)
		if relErr != nil {
			rel = fullPath
		}

		if entry.IsDir() {
			if isExcludedDir(entry.Name(), opts.ExcludeDirs) {
				continue
			}
			if ignorer != nil && ignorer.MatchesPath(rel) {
				continue
			}
			scanDir(ctx, fullPath, opts, ignorer, paths, depth+1)
			continue
		}

		if ignorer != nil && ignorer.MatchesPath(rel) {
			continue
		}
		if !extractor.IsSupportedExtension(filepath.Ext(entry.Name())) {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case paths <- fullPath:
		}
	}
}

func isExcludedDir(name string, excludeDirs []string) bool {
	for _, pattern := range excludeDirs {
		if name == pattern {
			return true
		}
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

type notADirectoryError struct{ path string }

func (e *notADirectoryError) Error() string {
	return "not a directory: " + e.path
}
