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
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/rxerr"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/ui"
	"github.com/rocket-tycoon/rocket-index-sub001/resolver"
	"github.com/rocket-tycoon/rocket-index-sub001/spider"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
)

// runSpider executes the 'spider' command: BFS the reference graph from a
// qualified entry symbol, forward (callees) by default or --reverse
// (callers), to a bounded depth.
func runSpider(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("spider", flag.ExitOnError)
	reverse := fs.Bool("reverse", false, "Walk callers instead of callees")
	depth := fs.Int("depth", 3, "Maximum BFS depth")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rocketindex spider [options] <qualified-name> [path]

Walks the call graph from a symbol's qualified name.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	entryName := fs.Arg(0)

	root, err := resolveRoot(fs.Args()[1:])
	if err != nil {
		fatal(err, globals)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, dbPath(root))
	if err != nil {
		fatal(err, globals)
	}
	defer func() { _ = st.Close() }()

	view, err := loadView(ctx, st, root)
	if err != nil {
		fatal(err, globals)
	}

	entry, ok, err := st.FindByQualified(ctx, entryName)
	if err != nil {
		fatal(err, globals)
	}
	if !ok {
		fatal(rxerr.NewSymbolNotFoundError(entryName), globals)
	}

	s := spider.New(view, resolver.New(view))
	var result spider.Result
	if *reverse {
		result = s.Reverse(entry, *depth)
	} else {
		result = s.Forward(entry, *depth)
	}

	printSpiderResult(result, globals)
}

func printSpiderResult(result spider.Result, globals GlobalFlags) {
	if globals.JSON {
		printJSON(result, globals)
		return
	}
	for _, node := range result.Nodes {
		indent := strings.Repeat("  ", node.Depth)
		fmt.Printf("%s%s  %s:%d\n", indent, node.Symbol.Qualified, node.Symbol.Location.File, node.Symbol.Location.Line)
	}
	if len(result.Unresolved) > 0 && !globals.Quiet {
		ui.SubHeader("Unresolved")
		for _, name := range result.Unresolved {
			fmt.Printf("  %s\n", ui.DimText(name))
		}
	}
}
