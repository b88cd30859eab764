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

// Package watcher watches a project tree for source-file changes and
// coalesces them into a debounced stream of WatchEvent values, which
// BatchProcessor (batch.go) accumulates into disjoint update/delete sets
// for periodic flushing into the store (§4.H).
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rocket-tycoon/rocket-index-sub001/extractor"
)

// EventKind is the normalized shape of a filesystem change, collapsing
// fsnotify's finer-grained ops into the two outcomes a reindex cares about.
type EventKind int

const (
	EventUpdated EventKind = iota
	EventRemoved
)

// WatchEvent is one normalized, debounced file change.
type WatchEvent struct {
	Path string
	Kind EventKind
}

// DefaultDebounce is the per-path coalescing window: rapid successive
// writes to the same file (an editor's save-then-format, for instance)
// collapse into a single event.
const DefaultDebounce = 200 * time.Millisecond

// DebouncedWatcher recursively watches a directory tree and emits one
// debounced WatchEvent per path onto Events, until Stop is called.
type DebouncedWatcher struct {
	fsw         *fsnotify.Watcher
	root        string
	excludeDirs map[string]struct{}
	debounce    time.Duration

	Events chan WatchEvent

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]EventKind

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a DebouncedWatcher rooted at root, recursively watching every
// subdirectory except those named in excludeDirs and hidden (dot-prefixed)
// directories.
func New(root string, excludeDirs []string, debounce time.Duration) (*DebouncedWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	excl := make(map[string]struct{}, len(excludeDirs))
	for _, d := range excludeDirs {
		excl[d] = struct{}{}
	}
	w := &DebouncedWatcher{
		fsw:         fsw,
		root:        root,
		excludeDirs: excl,
		debounce:    debounce,
		Events:      make(chan WatchEvent, 256),
		timers:      make(map[string]*time.Timer),
		pending:     make(map[string]EventKind),
		done:        make(chan struct{}),
	}
	if err := w.addDirsRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *DebouncedWatcher) addDirsRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if _, skip := w.excludeDirs[base]; skip || (strings.HasPrefix(base, ".") && base != ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			slog.Warn("watcher: failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Start begins the event loop in a background goroutine.
func (w *DebouncedWatcher) Start() {
	go w.loop()
}

func (w *DebouncedWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher: fsnotify error", "error", err)
		}
	}
}

func (w *DebouncedWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addDirsRecursive(event.Name)
			return
		}
	}
	if !extractor.IsSupportedExtension(filepath.Ext(event.Name)) {
		return
	}

	kind := EventUpdated
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		kind = EventRemoved
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = kind
	if t, ok := w.timers[event.Name]; ok {
		t.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.flushPath(path) })
}

func (w *DebouncedWatcher) flushPath(path string) {
	w.mu.Lock()
	kind, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
		delete(w.timers, path)
	}
	w.mu.Unlock()
	if !ok {
		return
	}
	select {
	case w.Events <- WatchEvent{Path: path, Kind: kind}:
	case <-w.done:
	}
}

// Stop releases the underlying fsnotify watcher and terminates the event
// loop. Safe to call more than once.
func (w *DebouncedWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}
