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
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/rocket-tycoon/rocket-index-sub001/indexview"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/rxerr"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/ui"
	"github.com/rocket-tycoon/rocket-index-sub001/resolver"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
)

// runQuery executes the 'query' command: find where a name is defined,
// either by exact qualified name (the default; --all for every overload), by
// glob over names and qualified names (--search), every reference to it
// (--refs), or as a reference resolved from a specific source file (--from).
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	from := fs.String("from", "", "Resolve name as written at this source file (uses opens/compilation-order)")
	search := fs.Bool("search", false, "Glob-match name against every symbol's name or qualified name")
	refs := fs.Bool("refs", false, "Find every reference to name instead of its definition")
	limit := fs.Int("limit", 50, "Maximum results for --search")
	language := fs.String("language", "", "Restrict --search to one language tag")
	all := fs.Bool("all", false, "Return every overload sharing this qualified name, not just the first")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rocketindex query [options] <name> [path]

Resolves a symbol name against the project's index.

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
	name := fs.Arg(0)

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

	switch {
	case *refs:
		results, err := st.FindReferences(ctx, name, true)
		if err != nil {
			fatal(err, globals)
		}
		printReferences(results, globals)
	case *search:
		symbols, err := st.Search(ctx, name, *limit, *language)
		if err != nil {
			fatal(err, globals)
		}
		printSymbols(symbols, globals)
	case *from != "":
		view, err := loadView(ctx, st, root)
		if err != nil {
			fatal(err, globals)
		}
		res := resolver.New(view)
		sym, ok := res.Resolve(name, *from)
		if !ok {
			fatal(rxerr.NewSymbolNotFoundError(name), globals)
		}
		printSymbols([]model.Symbol{sym}, globals)
	case *all:
		symbols, err := st.FindAllByQualified(ctx, name)
		if err != nil {
			fatal(err, globals)
		}
		if len(symbols) == 0 {
			fatal(rxerr.NewSymbolNotFoundError(name), globals)
		}
		printSymbols(symbols, globals)
	default:
		sym, ok, err := st.FindByQualified(ctx, name)
		if err != nil {
			fatal(err, globals)
		}
		if !ok {
			fatal(rxerr.NewSymbolNotFoundError(name), globals)
		}
		printSymbols([]model.Symbol{sym}, globals)
	}
}

// loadView drains st into a fresh indexview.View — the read path every
// query-shaped command that needs resolution (query --from, spider) shares.
func loadView(ctx context.Context, st *store.Store, root string) (*indexview.View, error) {
	view := indexview.New()
	view.SetWorkspaceRoot(root)
	files, err := st.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		symbols, err := st.SymbolsInFile(ctx, file)
		if err != nil {
			return nil, err
		}
		refs, err := st.ReferencesInFile(ctx, file)
		if err != nil {
			return nil, err
		}
		opens, err := st.OpensForFile(ctx, file)
		if err != nil {
			return nil, err
		}
		for _, sym := range symbols {
			view.AddSymbol(sym)
		}
		for _, ref := range refs {
			view.AddReference(ref)
		}
		for _, o := range opens {
			view.AddOpen(o)
		}
	}
	return view, nil
}

func printSymbols(symbols []model.Symbol, globals GlobalFlags) {
	if globals.JSON {
		printJSON(symbols, globals)
		return
	}
	if len(symbols) == 0 {
		fmt.Println(ui.DimText("no matching symbol"))
		return
	}
	for _, sym := range symbols {
		fmt.Printf("%s  %s  %s:%d:%d\n",
			ui.Label(string(sym.Kind)), sym.Qualified,
			sym.Location.File, sym.Location.Line, sym.Location.Column)
	}
}

func printReferences(refs []model.Reference, globals GlobalFlags) {
	if globals.JSON {
		printJSON(refs, globals)
		return
	}
	if len(refs) == 0 {
		fmt.Println(ui.DimText("no references found"))
		return
	}
	for _, ref := range refs {
		fmt.Printf("%s:%d:%d  %s\n", ref.Location.File, ref.Location.Line, ref.Location.Column, ref.Name)
	}
}

func printJSON(v any, globals GlobalFlags) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err, globals)
	}
	fmt.Println(string(b))
}
