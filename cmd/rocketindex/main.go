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

// Package main implements the rocketindex CLI: index a repository, watch it
// for changes, resolve and query symbols, walk the call graph, and parse
// stacktraces against the index.
//
// Usage:
//
//	rocketindex index [path]               Index a repository
//	rocketindex watch [path]                Index, then watch for changes
//	rocketindex query <name> [path]         Resolve a symbol by name
//	rocketindex spider <name> [path]        Walk callers/callees of a symbol
//	rocketindex stacktrace [path]           Parse a stacktrace from stdin
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
)

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
	)

	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `rocketindex - polyglot code symbol indexer

Usage:
  rocketindex <command> [options] [path]

Commands:
  index        Index a repository (defaults to the current directory)
  watch        Index, then watch the repository for changes
  query        Resolve a symbol by name against the index
  spider       Walk the callers/callees of a symbol
  stacktrace   Parse a stacktrace (read from stdin) against the index

Global Options:
  --json        Output in JSON format (for applicable commands)
  --no-color    Disable color output (respects NO_COLOR env var)
  -q, --quiet   Suppress progress output
  -V, --version Show version and exit

Examples:
  rocketindex index .
  rocketindex query NewResolver
  rocketindex spider --reverse NewResolver
  rocketindex stacktrace < crash.log

For detailed command help: rocketindex <command> --help
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("rocketindex version %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *noColor {
		ui.Disable()
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Quiet: *quiet}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "index":
		runIndex(cmdArgs, globals)
	case "watch":
		runWatch(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "spider":
		runSpider(cmdArgs, globals)
	case "stacktrace":
		runStacktrace(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
