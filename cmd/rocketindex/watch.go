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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/rocket-tycoon/rocket-index-sub001/config"
	"github.com/rocket-tycoon/rocket-index-sub001/indexer"
	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/rxerr"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/ui"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
	"github.com/rocket-tycoon/rocket-index-sub001/watcher"
)

// runWatch executes the 'watch' command: index the repository once, then
// watch the tree for changes, debouncing and batching them into periodic
// flushes against the same store (§4.H).
func runWatch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	flushInterval := fs.Duration("flush-interval", watcher.DefaultFlushInterval, "Minimum time between batch flushes")
	debounce := fs.Duration("debounce", watcher.DefaultDebounce, "Per-path event coalescing window")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rocketindex watch [options] [path]

Indexes path once, then watches it for changes, keeping the index
up to date until interrupted.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	root, err := resolveRoot(fs.Args())
	if err != nil {
		fatal(err, globals)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			_ = srv.ListenAndServe()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := ensureDataDir(root); err != nil {
		fatal(rxerr.NewIoError("failed to create data directory", err), globals)
	}

	st, err := store.OpenOrCreate(ctx, dbPath(root))
	if err != nil {
		fatal(err, globals)
	}
	defer func() { _ = st.Close() }()

	cfg := config.Load(root)
	view := indexview.New()
	ix := indexer.New()

	if !globals.Quiet {
		ui.Header("Initial Index")
	}
	stats, err := ix.IndexRepo(ctx, st, view, root, cfg, nil)
	if err != nil {
		fatal(err, globals)
	}
	printIndexResult(stats, globals)

	w, err := watcher.New(root, cfg.ExcludedDirs(), *debounce)
	if err != nil {
		fatal(rxerr.NewIoError("failed to start filesystem watcher", err), globals)
	}
	defer w.Stop()
	w.Start()

	batch := watcher.NewBatchProcessor(*flushInterval)

	if !globals.Quiet {
		ui.Header("Watching")
		fmt.Printf("%s %s\n", ui.Label("Root:"), root)
	}

	ticker := time.NewTicker(*flushInterval)
	defer ticker.Stop()

	indexFn := func(ctx context.Context, path string) (int, int, error) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return 0, 0, nil
		}
		return ix.IndexFile(ctx, st, view, root, path)
	}
	clearFn := func(ctx context.Context, path string) error {
		return ix.ClearFile(ctx, st, view, root, path)
	}

	for {
		select {
		case <-ctx.Done():
			flushStats, err := batch.ForceFlush(context.Background(), indexFn, clearFn)
			if err != nil && !globals.Quiet {
				ui.Errorf("final flush failed: %v", err)
			}
			printFlushResult(flushStats, globals)
			return
		case ev := <-w.Events:
			batch.AddEvent(ev)
		case <-ticker.C:
			flushStats, err := batch.Flush(ctx, indexFn, clearFn)
			if err != nil {
				if !globals.Quiet {
					ui.Errorf("flush failed: %v", err)
				}
				continue
			}
			if flushStats.FilesUpdated > 0 || flushStats.FilesDeleted > 0 {
				printFlushResult(flushStats, globals)
			}
		}
	}
}

func printFlushResult(stats watcher.BatchStats, globals GlobalFlags) {
	if globals.Quiet || (stats.FilesUpdated == 0 && stats.FilesDeleted == 0) {
		return
	}
	fmt.Printf("%s %s updated, %s deleted (%s symbols, %s refs) in %s\n",
		ui.Label("flush:"),
		ui.CountText(stats.FilesUpdated), ui.CountText(stats.FilesDeleted),
		ui.CountText(stats.SymbolsInserted), ui.CountText(stats.ReferencesInserted),
		ui.DimText(stats.Duration.String()))
}
