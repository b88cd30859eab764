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
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/ui"
	"github.com/rocket-tycoon/rocket-index-sub001/stacktrace"
	"github.com/rocket-tycoon/rocket-index-sub001/store"
)

// runStacktrace executes the 'stacktrace' command: read a pasted
// stacktrace from stdin, parse it into frames, and — unless --no-enrich is
// given — cross-reference each frame's symbol against the project's index
// to report whether it resolves.
func runStacktrace(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("stacktrace", flag.ExitOnError)
	noEnrich := fs.Bool("no-enrich", false, "Skip cross-referencing frames against the index")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: rocketindex stacktrace [options] [path]

Reads a stacktrace from stdin and parses it into (symbol, file, line)
frames, tagging each as user code or framework code.

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

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal(err, globals)
	}

	result := stacktrace.Parse(string(text))

	var st *store.Store
	if !*noEnrich {
		ctx := context.Background()
		if s, err := store.Open(ctx, dbPath(root)); err == nil {
			st = s
			defer func() { _ = st.Close() }()
		}
	}

	printStacktraceResult(result, st, globals)
}

func printStacktraceResult(result stacktrace.Result, st *store.Store, globals GlobalFlags) {
	if globals.JSON {
		printJSON(result, globals)
		return
	}
	ui.Header(fmt.Sprintf("Stacktrace (%s)", result.DetectedLanguage))
	for _, frame := range result.Frames {
		tag := ui.DimText("framework")
		if frame.IsUserCode {
			tag = ui.Label("user")
		}
		loc := frame.Symbol
		if frame.File != "" {
			loc = fmt.Sprintf("%s (%s)", loc, frame.File)
		}
		fmt.Printf("  [%s] %s\n", tag, loc)
		if st != nil {
			ctx := context.Background()
			if sym, ok, _ := st.FindByQualified(ctx, frame.Symbol); ok {
				fmt.Printf("      -> %s:%d\n", sym.Location.File, sym.Location.Line)
			}
		}
	}
	if len(result.UnparsedLines) > 0 && !globals.Quiet {
		ui.SubHeader("Unparsed lines")
		for _, line := range result.UnparsedLines {
			fmt.Printf("  %s\n", ui.DimText(line))
		}
	}
}
