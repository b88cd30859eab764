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

// Package ui is RocketIndex's small terminal status-output helper: colored
// headers and labels gated by whether stdout is a real terminal.
package ui

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// Disable turns off all color output, regardless of terminal detection.
// Called from main() when --no-color is passed or NO_COLOR is set; init()
// already disables color when stdout isn't a terminal.
func Disable() {
	color.NoColor = true
}

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section title.
func Header(title string) {
	_, _ = Bold.Println(title)
}

// SubHeader prints a dim sub-section title.
func SubHeader(title string) {
	_, _ = Dim.Println(title)
}

// Label returns a bold-formatted field label for inline use with fmt.Printf.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns s rendered faint, for inline use with fmt.Printf.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText renders an integer count, highlighted green when non-zero.
func CountText(n int) string {
	if n == 0 {
		return strconv.Itoa(n)
	}
	return Green.Sprint(n)
}

// Errorf prints a red-formatted error line to stderr.
func Errorf(format string, args ...any) {
	_, _ = Red.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
}
