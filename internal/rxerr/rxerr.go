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

// Package rxerr is RocketIndex's typed error taxonomy (§7 of the design:
// Io, Parse, IndexNotFound, Schema, Serialization, SymbolNotFound,
// Database), each wrapping an underlying error via %w so errors.Is/As
// compose normally.
package rxerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is one of the logical error kinds the core distinguishes.
type Kind string

const (
	KindIo            Kind = "io"
	KindParse         Kind = "parse"
	KindIndexNotFound Kind = "index_not_found"
	KindSchema        Kind = "schema"
	KindSerialization Kind = "serialization"
	KindSymbolNotFound Kind = "symbol_not_found"
	KindDatabase      Kind = "database"
)

// Error is a typed, wrapped error carrying one of the Kind values above.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &rxerr.Error{Kind: rxerr.KindSchema}) match by Kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewIoError(message string, err error) *Error {
	return newError(KindIo, message, err)
}

func NewParseError(path string, err error) *Error {
	return newError(KindParse, fmt.Sprintf("failed to parse file: %s", path), err)
}

func NewIndexNotFoundError(path string) *Error {
	return newError(KindIndexNotFound, fmt.Sprintf("index not found at %s; run index first", path), nil)
}

// NewSchemaVersionMismatchError mirrors the original store's literal
// message text (see SPEC_FULL.md's supplemented-features section).
func NewSchemaVersionMismatchError(expected, found int) *Error {
	return newError(KindSchema, fmt.Sprintf("Schema version mismatch: expected %d, found %d", expected, found), nil)
}

func NewSerializationError(err error) *Error {
	return newError(KindSerialization, "failed to serialize/deserialize index data", err)
}

func NewSymbolNotFoundError(query string) *Error {
	return newError(KindSymbolNotFound, fmt.Sprintf("symbol not found: %s", query), nil)
}

func NewDatabaseError(err error) *Error {
	return newError(KindDatabase, "database error", err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// FatalResponse is the machine-readable shape printed for --json mode when
// a command aborts on an error, mirroring the teacher's CLI error envelope.
type FatalResponse struct {
	Error string `json:"error"`
	Kind  Kind   `json:"kind,omitempty"`
}

// FatalError renders err either as a one-line human message or, in JSON
// mode, as a FatalResponse object, and returns the text for the caller to
// print — the CLI's single place that decides how an unrecoverable error is
// surfaced to the user.
func FatalError(err error, jsonMode bool) string {
	if err == nil {
		return ""
	}
	var e *Error
	if jsonMode {
		resp := FatalResponse{Error: err.Error()}
		if errors.As(err, &e) {
			resp.Kind = e.Kind
		}
		out, marshalErr := json.Marshal(resp)
		if marshalErr != nil {
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		return string(out)
	}
	return "error: " + err.Error()
}
