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
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/rocket-tycoon/rocket-index-sub001/config"
	"github.com/rocket-tycoon/rocket-index-sub001/indexer"
	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/rxerr"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/ui"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
)

// runIndex executes the 'index' command: walk the repository, extract every
// supported file, and write the result into the project's SQL store.
//
// Flags:
//   - --full: delete the existing database first, forcing a clean reindex
//   - --metrics-addr: expose Prometheus metrics on this address while running
func runIndex(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	full := fs.Bool("full", false, "Delete the existing index and rebuild from scratch")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rocketindex index [options] [path]

Walks path (default: current directory) and extracts symbols, references
and opens from every supported source file into %s/%s.

Options:
`, dataDirName, dbFileName)
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

	if *full {
		if err := os.Remove(dbPath(root)); err != nil && !os.IsNotExist(err) {
			fatal(rxerr.NewIoError("failed to remove existing index", err), globals)
		}
	}

	st, err := store.OpenOrCreate(ctx, dbPath(root))
	if err != nil {
		fatal(err, globals)
	}
	defer func() { _ = st.Close() }()

	cfg := config.Load(root)
	view := indexview.New()
	ix := indexer.New()

	var bar *progressbar.ProgressBar
	if !globals.Quiet {
		bar = progressbar.Default(-1, "Indexing")
	}

	stats, err := ix.IndexRepo(ctx, st, view, root, cfg, func(current, total int) {
		if bar != nil {
			if bar.GetMax() != total {
				bar.ChangeMax(total)
			}
			_ = bar.Set(current)
		}
	})
	if err != nil {
		fatal(err, globals)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	printIndexResult(stats, globals)
}

func printIndexResult(stats indexer.Stats, globals GlobalFlags) {
	if globals.Quiet {
		return
	}
	ui.Header("Indexing Complete")
	fmt.Printf("%s %s\n", ui.Label("Files Indexed:"), ui.CountText(stats.FilesIndexed))
	if stats.FilesFailed > 0 {
		_, _ = ui.Yellow.Printf("Files Failed: %d\n", stats.FilesFailed)
	}
	fmt.Printf("%s %s\n", ui.Label("Symbols:"), ui.CountText(stats.Symbols))
	fmt.Printf("%s %s\n", ui.Label("References:"), ui.CountText(stats.References))
	fmt.Printf("%s %s\n", ui.Label("Duration:"), ui.DimText(stats.Duration.String()))
}

func fatal(err error, globals GlobalFlags) {
	msg := rxerr.FatalError(err, globals.JSON)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
