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

// Package indexer wires the walker, the language extractors, the SQL store
// and the in-memory index view into the end-to-end indexing pipeline: walk
// the project, extract every supported file, and apply each result as one
// atomic file snapshot to both the store and the live view.
package indexer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rocket-tycoon/rocket-index-sub001/config"
	"github.com/rocket-tycoon/rocket-index-sub001/extractor"
	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/rxerr"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
	"github.com/rocket-tycoon/rocket-index-sub001/walker"
)

// DefaultMaxRecursionDepth bounds how deeply a plugin will descend into
// nested scopes; it is not the same as config.MaxRecursionDepth, which
// bounds directory walking.
const DefaultMaxRecursionDepth = 64

// ProgressFunc is called after each file is processed during a full index
// run, reporting (files processed so far, total files).
type ProgressFunc func(current, total int)

// Stats summarizes one Index run.
type Stats struct {
	FilesIndexed int
	FilesFailed  int
	Symbols      int
	References   int
	Opens        int
	ParseErrors  int
	Duration     time.Duration
}

// Indexer owns the registry used to extract every file it is given.
type Indexer struct {
	registry *extractor.Registry
}

// New builds an Indexer using RocketIndex's default language registry.
func New() *Indexer {
	return &Indexer{registry: extractor.DefaultRegistry()}
}

// IndexFile extracts a single file and applies the resulting snapshot to
// both st and view. It returns the number of symbols and references
// extracted, or an error if the file could not be read, parsed or stored.
// A file whose extension has no registered plugin is skipped: it returns
// 0, 0 and a nil error.
func (ix *Indexer) IndexFile(ctx context.Context, st *store.Store, view *indexview.View, root, path string) (int, int, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, rxerr.NewIoError("failed to read file", err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	res, err, ok := ix.registry.Extract(rel, source, DefaultMaxRecursionDepth)
	if !ok {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, rxerr.NewParseError(rel, err)
	}

	snap := model.FileSnapshot{
		File:       rel,
		Symbols:    res.Symbols,
		References: res.References,
		Opens:      res.Opens,
	}

	if err := st.ApplyFileSnapshot(ctx, snap); err != nil {
		return 0, 0, rxerr.NewDatabaseError(err)
	}
	view.LoadSnapshot(snap)

	return len(res.Symbols), len(res.References), nil
}

// ClearFile removes a file's rows from both st and view, used when a
// watched file is deleted.
func (ix *Indexer) ClearFile(ctx context.Context, st *store.Store, view *indexview.View, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	if err := st.ClearFile(ctx, rel); err != nil {
		return rxerr.NewDatabaseError(err)
	}
	view.ClearFile(rel)
	return nil
}

// IndexRepo walks root according to cfg, extracting every supported file
// into st and view. progress, if non-nil, is invoked after every file.
func (ix *Indexer) IndexRepo(ctx context.Context, st *store.Store, view *indexview.View, root string, cfg config.Config, progress ProgressFunc) (Stats, error) {
	start := time.Now()
	view.SetWorkspaceRoot(root)

	paths, err := walker.New().Collect(ctx, walker.Options{
		Root:              root,
		ExcludeDirs:       cfg.ExcludedDirs(),
		RespectGitignore:  cfg.RespectGitignore,
		MaxRecursionDepth: cfg.MaxRecursionDepth,
	})
	if err != nil {
		return Stats{}, err
	}

	// No compilation order is set here: project-file parsing is out of
	// scope (§1). A host that has parsed a project manifest declaring a
	// compile order feeds it in separately via view.SetFileOrder — the
	// walker's own enumeration order is implementation-defined (§4.G) and
	// must never be mistaken for one.

	var stats Stats
	for i, p := range paths {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		symbols, refs, err := ix.IndexFile(ctx, st, view, root, p)
		if err != nil {
			stats.FilesFailed++
			stats.ParseErrors++
		} else {
			stats.FilesIndexed++
			stats.Symbols += symbols
			stats.References += refs
		}

		if progress != nil {
			progress(i+1, len(paths))
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
