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

// Package stacktrace parses a pasted stacktrace into structured frames so
// the caller can cross-reference them against indexed symbols (§4.I).
// Each supported language/format gets its own small parse function, tried
// in order of specificity; the first line in a trace that a parser accepts
// sets the trace's detected language.
package stacktrace

import (
	"strconv"
	"strings"
)

// Language is a supported stacktrace format.
type Language string

const (
	LangJava       Language = "java"
	LangRuby       Language = "ruby"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangRust       Language = "rust"
	LangGo         Language = "go"
)

// Frame is one parsed stack frame.
type Frame struct {
	Symbol     string
	File       string
	Line       int
	Column     int
	HasLine    bool
	HasColumn  bool
	IsUserCode bool
	Language   Language
}

// Result is the outcome of parsing a whole stacktrace.
type Result struct {
	Frames           []Frame
	DetectedLanguage Language
	UnparsedLines    []string
}

// Parse splits text into lines, skips blank lines and exception headers,
// and tries each language's frame parser in turn on every remaining line.
func Parse(text string) Result {
	var result Result
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if isExceptionHeader(line) {
			continue
		}

		parsers := []struct {
			lang Language
			fn   func(string) (Frame, bool)
		}{
			{LangRust, tryParseRust},
			{LangPython, tryParsePython},
			{LangRuby, tryParseRuby},
			{LangJava, tryParseJava},
			{LangJavaScript, tryParseJavaScript},
			{LangGo, tryParseGo},
		}

		matched := false
		for _, p := range parsers {
			if frame, ok := p.fn(line); ok {
				if result.DetectedLanguage == "" {
					result.DetectedLanguage = p.lang
				}
				result.Frames = append(result.Frames, frame)
				matched = true
				break
			}
		}
		if !matched {
			result.UnparsedLines = append(result.UnparsedLines, line)
		}
	}
	return result
}

func isExceptionHeader(line string) bool {
	switch {
	case strings.HasPrefix(line, "Traceback"),
		strings.HasPrefix(line, "Caused by:"),
		strings.HasPrefix(line, "panic:"),
		strings.HasPrefix(line, "goroutine "),
		strings.HasPrefix(line, "thread '"):
		return true
	}
	if strings.Contains(line, "Exception:") && !strings.HasPrefix(strings.TrimSpace(line), "at ") {
		return true
	}
	if strings.Contains(line, "Error:") && !strings.HasPrefix(strings.TrimSpace(line), "at ") {
		return true
	}
	return false
}

var javaFrameworkPrefixes = []string{
	"java.", "javax.", "sun.", "com.sun.",
	"org.springframework.", "org.apache.", "org.hibernate.", "io.netty.",
}

var rubyFrameworkPatterns = []string{
	"/gems/", "/ruby/", "/bundler/", "rails/", "activerecord", "activesupport", "actionpack",
}

var pythonFrameworkPatterns = []string{
	"site-packages/", "/lib/python", "django/", "flask/", "werkzeug/", "celery/",
}

var jsFrameworkPatterns = []string{
	"node_modules/", "internal/", "timers.js", "events.js", "module.js",
}

var rustFrameworkPatterns = []string{
	"std::", "core::", "alloc::", "tokio::", "hyper::", "<unknown>",
}

var goFrameworkPatterns = []string{
	"runtime.", "runtime/", "net/http.", "syscall.", "internal/",
}

func isFrameworkCode(symbol, file string, language Language) bool {
	var patterns []string
	switch language {
	case LangJava:
		patterns = javaFrameworkPrefixes
	case LangRuby:
		patterns = rubyFrameworkPatterns
	case LangPython:
		patterns = pythonFrameworkPatterns
	case LangJavaScript:
		patterns = jsFrameworkPatterns
	case LangRust:
		patterns = rustFrameworkPatterns
	case LangGo:
		patterns = goFrameworkPatterns
	}
	for _, p := range patterns {
		if strings.Contains(symbol, p) {
			return true
		}
	}
	if file != "" {
		lower := strings.ToLower(file)
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}

// tryParseJava matches "at package.Class.method(File.java:42)".
func tryParseJava(line string) (Frame, bool) {
	rest, ok := strings.CutPrefix(line, "at ")
	if !ok {
		return Frame{}, false
	}
	parenStart := strings.IndexByte(rest, '(')
	if parenStart < 0 {
		return Frame{}, false
	}
	symbol := rest[:parenStart]
	if !strings.Contains(symbol, ".") || strings.Contains(symbol, " ") {
		return Frame{}, false
	}
	parenEnd := strings.IndexByte(rest, ')')
	if parenEnd < 0 {
		return Frame{}, false
	}
	fileInfo := rest[parenStart+1 : parenEnd]

	isJavaFile := hasAnySuffix(fileInfo, ".java", ".kt", ".scala", ".groovy") ||
		strings.Contains(fileInfo, ".java:") || strings.Contains(fileInfo, ".kt:") ||
		strings.Contains(fileInfo, ".scala:") || strings.Contains(fileInfo, ".groovy:") ||
		fileInfo == "Native Method" || fileInfo == "Unknown Source"
	if !isJavaFile {
		return Frame{}, false
	}

	frame := Frame{Symbol: symbol, Language: LangJava}
	if strings.Contains(fileInfo, ":") {
		idx := strings.LastIndexByte(fileInfo, ':')
		frame.File = fileInfo[:idx]
		if n, err := strconv.Atoi(fileInfo[idx+1:]); err == nil {
			frame.Line, frame.HasLine = n, true
		}
	} else if fileInfo != "Native Method" && fileInfo != "Unknown Source" {
		frame.File = fileInfo
	}
	frame.IsUserCode = !isFrameworkCode(symbol, frame.File, LangJava)
	return frame, true
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// tryParseRuby matches "[from ]path:line:in `method'".
func tryParseRuby(line string) (Frame, bool) {
	rest := strings.TrimPrefix(line, "from ")
	inPos := strings.Index(rest, ":in `")
	if inPos < 0 {
		return Frame{}, false
	}
	methodEnd := strings.LastIndexByte(rest, '\'')
	if methodEnd <= inPos+5 {
		return Frame{}, false
	}
	method := rest[inPos+5 : methodEnd]

	fileLinePart := rest[:inPos]
	colonPos := strings.LastIndexByte(fileLinePart, ':')
	if colonPos < 0 {
		return Frame{}, false
	}
	lineNum, err := strconv.Atoi(fileLinePart[colonPos+1:])
	if err != nil {
		return Frame{}, false
	}
	file := fileLinePart[:colonPos]

	return Frame{
		Symbol: method, File: file, Line: lineNum, HasLine: true,
		IsUserCode: !isFrameworkCode(method, file, LangRuby),
		Language:   LangRuby,
	}, true
}

// tryParsePython matches `File "path", line 42, in method`.
func tryParsePython(line string) (Frame, bool) {
	rest, ok := strings.CutPrefix(line, "File ")
	if !ok {
		return Frame{}, false
	}
	quoteStart := strings.IndexByte(rest, '"')
	if quoteStart < 0 {
		return Frame{}, false
	}
	rel := strings.IndexByte(rest[quoteStart+1:], '"')
	if rel < 0 {
		return Frame{}, false
	}
	quoteEnd := quoteStart + 1 + rel
	file := rest[quoteStart+1 : quoteEnd]

	afterFile := rest[quoteEnd+1:]
	const lineMarker = ", line "
	linePos := strings.Index(afterFile, lineMarker)
	if linePos < 0 {
		return Frame{}, false
	}
	afterLineMarker := afterFile[linePos+len(lineMarker):]
	lineEnd := strings.IndexByte(afterLineMarker, ',')
	if lineEnd < 0 {
		lineEnd = len(afterLineMarker)
	}
	lineNum, err := strconv.Atoi(afterLineMarker[:lineEnd])
	if err != nil {
		return Frame{}, false
	}

	method := "<module>"
	const inMarker = ", in "
	if inPos := strings.Index(afterLineMarker, inMarker); inPos >= 0 {
		method = strings.TrimSpace(afterLineMarker[inPos+len(inMarker):])
	}

	return Frame{
		Symbol: method, File: file, Line: lineNum, HasLine: true,
		IsUserCode: !isFrameworkCode(method, file, LangPython),
		Language:   LangPython,
	}, true
}

// tryParseJavaScript matches "at method (file:line:col)" or "at file:line:col".
func tryParseJavaScript(line string) (Frame, bool) {
	rest, ok := strings.CutPrefix(line, "at ")
	if !ok {
		return Frame{}, false
	}
	if parenStart := strings.IndexByte(rest, '('); parenStart >= 0 {
		method := strings.TrimSpace(rest[:parenStart])
		parenEnd := strings.IndexByte(rest, ')')
		if parenEnd < 0 {
			return Frame{}, false
		}
		file, lineNum, col, hasCol, ok := parseJSLocation(rest[parenStart+1 : parenEnd])
		if !ok {
			return Frame{}, false
		}
		return Frame{
			Symbol: method, File: file, Line: lineNum, HasLine: true,
			Column: col, HasColumn: hasCol,
			IsUserCode: !isFrameworkCode(method, file, LangJavaScript),
			Language:   LangJavaScript,
		}, true
	}
	file, lineNum, col, hasCol, ok := parseJSLocation(rest)
	if !ok {
		return Frame{}, false
	}
	return Frame{
		Symbol: "<anonymous>", File: file, Line: lineNum, HasLine: true,
		Column: col, HasColumn: hasCol,
		IsUserCode: !isFrameworkCode("<anonymous>", file, LangJavaScript),
		Language:   LangJavaScript,
	}, true
}

// parseJSLocation parses "/path/file.js:42:15" or "/path/file.js:42".
func parseJSLocation(s string) (file string, line int, col int, hasCol bool, ok bool) {
	parts := rsplitN(s, ':', 3)
	switch len(parts) {
	case 3:
		lineNum, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, 0, false, false
		}
		if c, err := strconv.Atoi(parts[0]); err == nil {
			col, hasCol = c, true
		}
		return parts[2], lineNum, col, hasCol, true
	case 2:
		lineNum, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", 0, 0, false, false
		}
		return parts[1], lineNum, 0, false, true
	default:
		return "", 0, 0, false, false
	}
}

// rsplitN splits s on sep from the right, at most n pieces, in the same
// order rsplitn would yield in Rust: [last, ..., first-remainder].
func rsplitN(s string, sep byte, n int) []string {
	var out []string
	for len(out) < n-1 {
		idx := strings.LastIndexByte(s, sep)
		if idx < 0 {
			break
		}
		out = append(out, s[idx+1:])
		s = s[:idx]
	}
	out = append(out, s)
	return out
}

// tryParseRust matches a numbered frame ("N: module::function") or a
// location line ("at /path/file.rs:42:5").
func tryParseRust(line string) (Frame, bool) {
	if colonPos := strings.Index(line, ": "); colonPos >= 0 {
		beforeColon := strings.TrimSpace(line[:colonPos])
		if _, err := strconv.Atoi(beforeColon); err == nil {
			symbol := strings.TrimSpace(line[colonPos+2:])
			if !strings.Contains(symbol, "::") {
				return Frame{}, false
			}
			return Frame{
				Symbol: symbol, IsUserCode: !isFrameworkCode(symbol, "", LangRust),
				Language: LangRust,
			}, true
		}
	}

	trimmed := strings.TrimSpace(line)
	afterAt, ok := strings.CutPrefix(trimmed, "at ")
	if !ok || !strings.Contains(afterAt, ".rs:") {
		return Frame{}, false
	}
	file, lineNum, col, hasCol, ok := parseJSLocation(afterAt)
	if !ok {
		return Frame{}, false
	}
	return Frame{
		Symbol: "<location>", File: file, Line: lineNum, HasLine: true,
		Column: col, HasColumn: hasCol, IsUserCode: true, Language: LangRust,
	}, true
}

// tryParseGo matches a function frame ("main.handler(0x1234)") or a
// location line ("/path/file.go:42 +0x1a").
func tryParseGo(line string) (Frame, bool) {
	trimmed := strings.TrimSpace(line)

	if strings.Contains(trimmed, "(") && !strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, ".") {
		parenPos := strings.IndexByte(trimmed, '(')
		symbol := trimmed[:parenPos]
		if strings.Contains(symbol, "/") && !strings.Contains(symbol, ".") {
			return Frame{}, false
		}
		return Frame{
			Symbol: symbol, IsUserCode: !isFrameworkCode(symbol, "", LangGo), Language: LangGo,
		}, true
	}

	if strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, ".") {
		lineWithoutOffset := trimmed
		if plusPos := strings.LastIndex(trimmed, " +0x"); plusPos >= 0 {
			lineWithoutOffset = trimmed[:plusPos]
		}
		colonPos := strings.LastIndexByte(lineWithoutOffset, ':')
		if colonPos < 0 {
			return Frame{}, false
		}
		lineNum, err := strconv.Atoi(lineWithoutOffset[colonPos+1:])
		if err != nil {
			return Frame{}, false
		}
		return Frame{
			Symbol: "<location>", File: lineWithoutOffset[:colonPos], Line: lineNum, HasLine: true,
			IsUserCode: true, Language: LangGo,
		}, true
	}

	return Frame{}, false
}
