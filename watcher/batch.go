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

package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultFlushInterval is how often a BatchProcessor is eligible to flush
// its pending sets, absent an explicit ForceFlush.
const DefaultFlushInterval = 100 * time.Millisecond

// IndexFileFunc (re)indexes one file and reports how many rows it
// produced, for the update side of a flush.
type IndexFileFunc func(ctx context.Context, path string) (symbolsInserted, referencesInserted int, err error)

// ClearFileFunc removes every row recorded for one file, for the delete
// side of a flush.
type ClearFileFunc func(ctx context.Context, path string) error

// BatchStats summarizes the outcome of one Flush/ForceFlush call.
type BatchStats struct {
	FilesUpdated        int
	FilesDeleted        int
	SymbolsInserted     int
	ReferencesInserted  int
	Duration            time.Duration
}

// BatchProcessor accumulates watcher events into two disjoint sets —
// updates and deletes — so that a file touched then removed (or vice
// versa) before a flush fires is reflected exactly once, by its most
// recent event, never both (§4.H invariant: updates ∩ deletes = ∅).
type BatchProcessor struct {
	mu            sync.Mutex
	updates       map[string]struct{}
	deletes       map[string]struct{}
	flushInterval time.Duration
	lastFlush     time.Time

	metrics *batchMetrics
}

// NewBatchProcessor builds a BatchProcessor with an explicit flush
// interval.
func NewBatchProcessor(flushInterval time.Duration) *BatchProcessor {
	return &BatchProcessor{
		updates:       make(map[string]struct{}),
		deletes:       make(map[string]struct{}),
		flushInterval: flushInterval,
		lastFlush:     time.Now(),
		metrics:       defaultBatchMetrics,
	}
}

// WithDefaults builds a BatchProcessor using DefaultFlushInterval.
func WithDefaults() *BatchProcessor {
	return NewBatchProcessor(DefaultFlushInterval)
}

// AddEvent records one watch event, keeping the updates/deletes sets
// disjoint: an update for a path clears any pending delete for it, and
// vice versa.
func (b *BatchProcessor) AddEvent(ev WatchEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch ev.Kind {
	case EventUpdated:
		delete(b.deletes, ev.Path)
		b.updates[ev.Path] = struct{}{}
	case EventRemoved:
		delete(b.updates, ev.Path)
		b.deletes[ev.Path] = struct{}{}
	}
}

// AddEvents records each event in order via AddEvent.
func (b *BatchProcessor) AddEvents(events []WatchEvent) {
	for _, ev := range events {
		b.AddEvent(ev)
	}
}

// IsEmpty reports whether there is nothing pending to flush.
func (b *BatchProcessor) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates) == 0 && len(b.deletes) == 0
}

// PendingUpdateCount returns the number of files pending (re)indexing.
func (b *BatchProcessor) PendingUpdateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates)
}

// PendingDeleteCount returns the number of files pending removal.
func (b *BatchProcessor) PendingDeleteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.deletes)
}

// PendingUpdates returns a snapshot of the files pending (re)indexing.
func (b *BatchProcessor) PendingUpdates() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return keysOf(b.updates)
}

// PendingDeletes returns a snapshot of the files pending removal.
func (b *BatchProcessor) PendingDeletes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return keysOf(b.deletes)
}

func keysOf(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Clear discards every pending update/delete without processing them.
func (b *BatchProcessor) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = make(map[string]struct{})
	b.deletes = make(map[string]struct{})
}

// ShouldFlush reports whether enough time has passed since the last flush
// and there is something pending.
func (b *BatchProcessor) ShouldFlush() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.updates) == 0 && len(b.deletes) == 0 {
		return false
	}
	return time.Since(b.lastFlush) >= b.flushInterval
}

// Flush processes the pending sets if ShouldFlush allows it, applying
// indexFn to every update and clearFn to every delete, and returns the
// resulting BatchStats. If the interval hasn't elapsed, it returns a zero
// BatchStats and does nothing.
func (b *BatchProcessor) Flush(ctx context.Context, indexFn IndexFileFunc, clearFn ClearFileFunc) (BatchStats, error) {
	if !b.ShouldFlush() {
		return BatchStats{}, nil
	}
	return b.ForceFlush(ctx, indexFn, clearFn)
}

// ForceFlush processes the pending sets unconditionally — used on shutdown
// or whenever the caller wants to drain regardless of timing. A per-file
// clearFn/indexFn error is logged and skipped, never propagated: the
// pending sets are already drained into local slices before this loop runs,
// so returning early would silently drop every update/delete not yet
// reached, the lost-update failure §4.H forbids. Only a genuinely systemic
// failure (ctx cancellation) aborts the flush early.
func (b *BatchProcessor) ForceFlush(ctx context.Context, indexFn IndexFileFunc, clearFn ClearFileFunc) (BatchStats, error) {
	start := time.Now()

	b.mu.Lock()
	updates := keysOf(b.updates)
	deletes := keysOf(b.deletes)
	b.updates = make(map[string]struct{})
	b.deletes = make(map[string]struct{})
	b.lastFlush = start
	b.mu.Unlock()

	var stats BatchStats
	for _, path := range deletes {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			b.metrics.observe(stats)
			return stats, err
		}
		if err := clearFn(ctx, path); err != nil {
			slog.Warn("watch: failed to clear file from index, skipping", "path", path, "error", err)
			continue
		}
		stats.FilesDeleted++
	}
	for _, path := range updates {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			b.metrics.observe(stats)
			return stats, err
		}
		symbols, refs, err := indexFn(ctx, path)
		if err != nil {
			slog.Warn("watch: failed to index file, skipping", "path", path, "error", err)
			continue
		}
		stats.FilesUpdated++
		stats.SymbolsInserted += symbols
		stats.ReferencesInserted += refs
	}
	stats.Duration = time.Since(start)

	b.metrics.observe(stats)
	return stats, nil
}

type batchMetrics struct {
	batchesFlushed     prometheus.Counter
	filesUpdatedTotal  prometheus.Counter
	filesDeletedTotal  prometheus.Counter
	symbolsTotal       prometheus.Counter
	referencesTotal    prometheus.Counter
	flushDuration      prometheus.Histogram
}

var defaultBatchMetrics = newBatchMetrics()

func newBatchMetrics() *batchMetrics {
	return &batchMetrics{
		batchesFlushed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rocketindex_watch_batches_flushed_total",
			Help: "Number of watcher batches flushed into the store.",
		}),
		filesUpdatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rocketindex_watch_files_updated_total",
			Help: "Number of files (re)indexed by the watcher.",
		}),
		filesDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rocketindex_watch_files_deleted_total",
			Help: "Number of files removed from the index by the watcher.",
		}),
		symbolsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rocketindex_watch_symbols_inserted_total",
			Help: "Number of symbols inserted by watcher-triggered reindexing.",
		}),
		referencesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rocketindex_watch_references_inserted_total",
			Help: "Number of references inserted by watcher-triggered reindexing.",
		}),
		flushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rocketindex_watch_flush_duration_seconds",
			Help:    "Duration of each watcher batch flush.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *batchMetrics) observe(stats BatchStats) {
	m.batchesFlushed.Inc()
	m.filesUpdatedTotal.Add(float64(stats.FilesUpdated))
	m.filesDeletedTotal.Add(float64(stats.FilesDeleted))
	m.symbolsTotal.Add(float64(stats.SymbolsInserted))
	m.referencesTotal.Add(float64(stats.ReferencesInserted))
	m.flushDuration.Observe(stats.Duration.Seconds())
}
