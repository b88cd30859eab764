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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatesAndDeletesStayDisjoint(t *testing.T) {
	b := NewBatchProcessor(time.Millisecond)
	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventUpdated})
	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventRemoved})

	assert.Equal(t, 0, b.PendingUpdateCount())
	assert.Equal(t, 1, b.PendingDeleteCount())

	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventUpdated})
	assert.Equal(t, 1, b.PendingUpdateCount())
	assert.Equal(t, 0, b.PendingDeleteCount())
}

func TestShouldFlushRespectsInterval(t *testing.T) {
	b := NewBatchProcessor(50 * time.Millisecond)
	assert.False(t, b.ShouldFlush(), "nothing pending yet")

	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventUpdated})
	assert.False(t, b.ShouldFlush(), "interval hasn't elapsed")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, b.ShouldFlush())
}

func TestForceFlushProcessesBothSets(t *testing.T) {
	b := NewBatchProcessor(time.Hour)
	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventUpdated})
	b.AddEvent(WatchEvent{Path: "b.go", Kind: EventRemoved})

	var indexed, cleared []string
	stats, err := b.ForceFlush(context.Background(),
		func(ctx context.Context, path string) (int, int, error) {
			indexed = append(indexed, path)
			return 3, 5, nil
		},
		func(ctx context.Context, path string) error {
			cleared = append(cleared, path)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesUpdated)
	assert.Equal(t, 1, stats.FilesDeleted)
	assert.Equal(t, 3, stats.SymbolsInserted)
	assert.Equal(t, 5, stats.ReferencesInserted)
	assert.Equal(t, []string{"a.go"}, indexed)
	assert.Equal(t, []string{"b.go"}, cleared)
	assert.True(t, b.IsEmpty())
}

func TestForceFlushSkipsFailingFilesWithoutAbortingBatch(t *testing.T) {
	b := NewBatchProcessor(time.Hour)
	b.AddEvent(WatchEvent{Path: "bad.go", Kind: EventUpdated})
	b.AddEvent(WatchEvent{Path: "good.go", Kind: EventUpdated})
	b.AddEvent(WatchEvent{Path: "bad2.go", Kind: EventRemoved})
	b.AddEvent(WatchEvent{Path: "good2.go", Kind: EventRemoved})

	var indexed, cleared []string
	stats, err := b.ForceFlush(context.Background(),
		func(ctx context.Context, path string) (int, int, error) {
			if path == "bad.go" {
				return 0, 0, errors.New("parse error")
			}
			indexed = append(indexed, path)
			return 1, 2, nil
		},
		func(ctx context.Context, path string) error {
			if path == "bad2.go" {
				return errors.New("db error")
			}
			cleared = append(cleared, path)
			return nil
		},
	)

	// A per-file error must never abort the rest of the batch (§4.H: no
	// lost updates) nor be propagated out of Flush (§7).
	require.NoError(t, err)
	assert.Equal(t, []string{"good.go"}, indexed)
	assert.Equal(t, []string{"good2.go"}, cleared)
	assert.Equal(t, 1, stats.FilesUpdated)
	assert.Equal(t, 1, stats.FilesDeleted)
	assert.True(t, b.IsEmpty(), "pending sets are drained even when some files fail")
}

func TestForceFlushAbortsOnContextCancellation(t *testing.T) {
	b := NewBatchProcessor(time.Hour)
	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventUpdated})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.ForceFlush(ctx,
		func(ctx context.Context, path string) (int, int, error) { return 0, 0, nil },
		func(ctx context.Context, path string) error { return nil },
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlushNoOpBeforeInterval(t *testing.T) {
	b := NewBatchProcessor(time.Hour)
	b.AddEvent(WatchEvent{Path: "a.go", Kind: EventUpdated})

	stats, err := b.Flush(context.Background(),
		func(ctx context.Context, path string) (int, int, error) { return 0, 0, nil },
		func(ctx context.Context, path string) error { return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, BatchStats{}, stats)
	assert.Equal(t, 1, b.PendingUpdateCount(), "flush before interval must not drain the pending set")
}
