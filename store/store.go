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

// Package store is RocketIndex's persisted index: a B-tree-indexed embedded
// SQL database (modernc.org/sqlite, pure Go, no cgo) holding symbols,
// references, opens, type members and metadata (§4.C). Every per-file
// mutation is wrapped in a single transaction so a crash mid-update never
// leaves a file half-indexed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rocket-tycoon/rocket-index-sub001/internal/model"
	"github.com/rocket-tycoon/rocket-index-sub001/internal/rxerr"
)

// SchemaVersion is the current on-disk schema version. A store opened
// against a database stamped with a different version fails fast rather
// than silently misreading rows.
const SchemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS symbols (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	name            TEXT NOT NULL,
	qualified       TEXT NOT NULL,
	kind            TEXT NOT NULL,
	type_signature  TEXT,
	file            TEXT NOT NULL,
	line            INTEGER NOT NULL,
	column          INTEGER NOT NULL,
	end_line        INTEGER NOT NULL,
	end_column      INTEGER NOT NULL,
	visibility      TEXT NOT NULL,
	language        TEXT NOT NULL,
	source          TEXT NOT NULL CHECK (source IN ('syntactic', 'semantic')),
	parent          TEXT,
	mixins          TEXT,
	attributes      TEXT,
	implements      TEXT,
	doc             TEXT,
	signature       TEXT
);
CREATE INDEX IF NOT EXISTS idx_symbols_qualified ON symbols(qualified);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file);
CREATE INDEX IF NOT EXISTS idx_symbols_parent ON symbols(parent);

CREATE TABLE IF NOT EXISTS refs (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL,
	file    TEXT NOT NULL,
	line    INTEGER NOT NULL,
	column  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refs_name ON refs(name);
CREATE INDEX IF NOT EXISTS idx_refs_file ON refs(file);

CREATE TABLE IF NOT EXISTS opens (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	file        TEXT NOT NULL,
	module_path TEXT NOT NULL,
	line        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_opens_file ON opens(file);

CREATE TABLE IF NOT EXISTS members (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	type_name   TEXT NOT NULL,
	member_name TEXT NOT NULL,
	member_type TEXT NOT NULL,
	kind        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_members_type_member ON members(type_name, member_name);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const metaSchemaVersionKey = "schema_version"

// Store is a handle on one index.db. All exported methods are safe for
// concurrent use; writers serialize through SQLite's own locking.
type Store struct {
	db *sql.DB
}

// Create makes a brand new index database at path. It fails if a file
// already exists there — callers that don't care use OpenOrCreate instead.
func Create(ctx context.Context, path string) (*Store, error) {
	if exists, _ := sqlFileExists(path); exists {
		return nil, rxerr.NewIoError(fmt.Sprintf("store: %s already exists", path), nil)
	}
	return openFile(ctx, path)
}

// Open opens an existing index database at path. It fails with an
// IndexNotFound error if the file is absent, or a Schema error if the file
// exists but carries an incompatible schema version — used by read-only
// commands (query, spider) run against a project that has never been
// indexed or was indexed by a stale binary.
func Open(ctx context.Context, path string) (*Store, error) {
	if exists, _ := sqlFileExists(path); !exists {
		return nil, rxerr.NewIndexNotFoundError(path)
	}
	return openFile(ctx, path)
}

// OpenOrCreate opens path if it exists, or creates it (and its parent
// directory, if missing) otherwise. This is what the indexing and watch
// commands use: they don't care whether this is the first run.
func OpenOrCreate(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, rxerr.NewIoError("failed to create store directory", err)
		}
	}
	return openFile(ctx, path)
}

// InMemory opens a throwaway in-memory store, used by tests.
func InMemory(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openFile(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func sqlFileExists(path string) (bool, error) {
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return true, nil
	}
	return statExists(path)
}

func (s *Store) initSchema(ctx context.Context) error {
	existing, err := s.getMetadata(ctx, metaSchemaVersionKey)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	if existing == "" {
		if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
			return rxerr.NewDatabaseError(err)
		}
		if err := s.setMetadata(ctx, metaSchemaVersionKey, strconv.Itoa(SchemaVersion)); err != nil {
			return err
		}
		return nil
	}
	found, err := strconv.Atoi(existing)
	if err != nil {
		return rxerr.NewSchemaVersionMismatchError(SchemaVersion, -1)
	}
	if found != SchemaVersion {
		return rxerr.NewSchemaVersionMismatchError(SchemaVersion, found)
	}
	// Ensure tables exist even for a pre-stamped but otherwise-empty db.
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return rxerr.NewDatabaseError(err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getMetadata(ctx context.Context, key string) (string, error) {
	var value string
	// metadata table may not exist yet on first-ever open.
	row := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		if strings.Contains(err.Error(), "no such table") {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *Store) setMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	return nil
}

// GetMetadata reads a metadata value, returning "" if absent.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	return s.getMetadata(ctx, key)
}

// SetMetadata writes a metadata key/value pair, upserting.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	return s.setMetadata(ctx, key, value)
}

// ApplyFileSnapshot atomically replaces every symbol, reference and open
// belonging to snap.File with the contents of snap — the store's one
// mutating entry point for (re)indexing a file (§8 property 2).
func (s *Store) ApplyFileSnapshot(ctx context.Context, snap model.FileSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer tx.Rollback()

	if err := deleteFileRows(ctx, tx, snap.File); err != nil {
		return err
	}
	if err := insertSymbols(ctx, tx, snap.Symbols); err != nil {
		return err
	}
	if err := insertReferences(ctx, tx, snap.References); err != nil {
		return err
	}
	if err := insertOpens(ctx, tx, snap.Opens); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return rxerr.NewDatabaseError(err)
	}
	return nil
}

// ClearFile deletes every symbol, reference and open recorded for file —
// used when a watched file is removed (§8 property 3).
func (s *Store) ClearFile(ctx context.Context, file string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer tx.Rollback()
	if err := deleteFileRows(ctx, tx, file); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return rxerr.NewDatabaseError(err)
	}
	return nil
}

func deleteFileRows(ctx context.Context, tx *sql.Tx, file string) error {
	for _, table := range []string{"symbols", "refs", "opens"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE file = ?`, table), file); err != nil {
			return rxerr.NewDatabaseError(err)
		}
	}
	return nil
}

func insertSymbols(ctx context.Context, tx *sql.Tx, symbols []model.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols(name, qualified, kind, type_signature, file, line, column,
			end_line, end_column, visibility, language, source, parent, mixins,
			attributes, implements, doc, signature)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer stmt.Close()
	for _, sym := range symbols {
		mixins, err := jsonStrings(sym.Mixins)
		if err != nil {
			return rxerr.NewDatabaseError(err)
		}
		attrs, err := jsonStrings(sym.Attributes)
		if err != nil {
			return rxerr.NewDatabaseError(err)
		}
		impls, err := jsonStrings(sym.Implements)
		if err != nil {
			return rxerr.NewDatabaseError(err)
		}
		if _, err := stmt.ExecContext(ctx,
			sym.Name, sym.Qualified, string(sym.Kind), sym.TypeSignature,
			sym.Location.File, sym.Location.Line, sym.Location.Column,
			sym.Location.EndLine, sym.Location.EndColumn,
			string(sym.Visibility), sym.Language, string(sym.Source),
			sym.Parent, mixins, attrs, impls, sym.Doc, sym.Signature,
		); err != nil {
			return rxerr.NewDatabaseError(err)
		}
	}
	return nil
}

// jsonStrings marshals a string slice to its JSON column encoding, leaving
// an absent/empty slice as a NULL column rather than a stored "null" or
// "[]" so the round-trip contract's "omitted when absent" rule holds.
func jsonStrings(ss []string) (any, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func insertReferences(ctx context.Context, tx *sql.Tx, refs []model.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO refs(name, file, line, column) VALUES (?,?,?,?)`)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer stmt.Close()
	for _, r := range refs {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Location.File, r.Location.Line, r.Location.Column); err != nil {
			return rxerr.NewDatabaseError(err)
		}
	}
	return nil
}

func insertOpens(ctx context.Context, tx *sql.Tx, opens []model.Open) error {
	if len(opens) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO opens(file, module_path, line) VALUES (?,?,?)`)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer stmt.Close()
	for _, o := range opens {
		if _, err := stmt.ExecContext(ctx, o.File, o.ModulePath, o.Line); err != nil {
			return rxerr.NewDatabaseError(err)
		}
	}
	return nil
}

// ReplaceMembers atomically replaces every TypeMember row for typeName,
// used when loading a type cache (§6.4).
func (s *Store) ReplaceMembers(ctx context.Context, typeName string, members []model.TypeMember) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE type_name = ?`, typeName); err != nil {
		return rxerr.NewDatabaseError(err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO members(type_name, member_name, member_type, kind) VALUES (?,?,?,?)`)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	defer stmt.Close()
	for _, m := range members {
		if _, err := stmt.ExecContext(ctx, m.TypeName, m.Member, m.MemberType, string(m.Kind)); err != nil {
			return rxerr.NewDatabaseError(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return rxerr.NewDatabaseError(err)
	}
	return nil
}

// FindByQualified returns one symbol with an exact qualified-name match
// (the first row found when several share it; see FindAllByQualified), or
// ok=false if none exists.
func (s *Store) FindByQualified(ctx context.Context, qualified string) (model.Symbol, bool, error) {
	row := s.db.QueryRowContext(ctx, symbolSelectBase+` WHERE qualified = ? LIMIT 1`, qualified)
	sym, err := scanSymbolRow(row)
	if err == sql.ErrNoRows {
		return model.Symbol{}, false, nil
	}
	if err != nil {
		return model.Symbol{}, false, rxerr.NewDatabaseError(err)
	}
	return sym, true, nil
}

// FindAllByQualified returns every symbol sharing an exact qualified name —
// legal when two languages or two partial files independently declare the
// same qualified path.
func (s *Store) FindAllByQualified(ctx context.Context, qualified string) ([]model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectBase+` WHERE qualified = ?`, qualified)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	return scanSymbolRows(rows)
}

// FindByName returns every symbol whose unqualified Name matches exactly.
func (s *Store) FindByName(ctx context.Context, name string) ([]model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectBase+` WHERE name = ?`, name)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	return scanSymbolRows(rows)
}

// Search glob-matches pattern ('*'/'?' mapped to SQL '%'/'_') against each
// symbol's name OR qualified name, optionally restricted to one language.
func (s *Store) Search(ctx context.Context, glob string, limit int, language string) ([]model.Symbol, error) {
	pattern := globToLike(glob)
	query := symbolSelectBase + ` WHERE (name LIKE ? ESCAPE '\' OR qualified LIKE ? ESCAPE '\')`
	args := []any{pattern, pattern}
	if language != "" {
		query += ` AND language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY qualified`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	return scanSymbolRows(rows)
}

func globToLike(glob string) string {
	var b strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SymbolsInFile returns every symbol declared in file, ordered by position.
func (s *Store) SymbolsInFile(ctx context.Context, file string) ([]model.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectBase+` WHERE file = ? ORDER BY line, column`, file)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	return scanSymbolRows(rows)
}

// ReferencesInFile returns every reference recorded in file, ordered by
// position.
func (s *Store) ReferencesInFile(ctx context.Context, file string) ([]model.Reference, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, file, line, column FROM refs WHERE file = ? ORDER BY line, column`, file)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	var out []model.Reference
	for rows.Next() {
		var r model.Reference
		if err := rows.Scan(&r.Name, &r.Location.File, &r.Location.Line, &r.Location.Column); err != nil {
			return nil, rxerr.NewDatabaseError(err)
		}
		r.Location.EndLine, r.Location.EndColumn = r.Location.Line, r.Location.Column
		out = append(out, r)
	}
	return out, rows.Err()
}

// OpensForFile returns every open/import statement recorded for file.
func (s *Store) OpensForFile(ctx context.Context, file string) ([]model.Open, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file, module_path, line FROM opens WHERE file = ? ORDER BY line`, file)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	var out []model.Open
	for rows.Next() {
		var o model.Open
		if err := rows.Scan(&o.File, &o.ModulePath, &o.Line); err != nil {
			return nil, rxerr.NewDatabaseError(err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// FindReferences returns every reference whose Name matches name exactly,
// or — when suffix is true — whose Name ends in "." followed by name, i.e. a
// dotted reference whose last segment is name (the suffix-match mode, §4.C).
func (s *Store) FindReferences(ctx context.Context, name string, suffix bool) ([]model.Reference, error) {
	var rows *sql.Rows
	var err error
	if suffix {
		rows, err = s.db.QueryContext(ctx, `SELECT name, file, line, column FROM refs WHERE name = ? OR name LIKE ?`,
			name, "%."+name)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT name, file, line, column FROM refs WHERE name = ?`, name)
	}
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	var out []model.Reference
	for rows.Next() {
		var r model.Reference
		if err := rows.Scan(&r.Name, &r.Location.File, &r.Location.Line, &r.Location.Column); err != nil {
			return nil, rxerr.NewDatabaseError(err)
		}
		r.Location.EndLine, r.Location.EndColumn = r.Location.Line, r.Location.Column
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSymbolType returns the stored type_signature for a qualified symbol.
func (s *Store) GetSymbolType(ctx context.Context, qualified string) (string, bool, error) {
	var sig sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT type_signature FROM symbols WHERE qualified = ? LIMIT 1`, qualified)
	if err := row.Scan(&sig); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, rxerr.NewDatabaseError(err)
	}
	return sig.String, sig.Valid, nil
}

// UpdateSymbolType stamps a type_signature onto every symbol row matching
// qualified and marks it semantic-sourced (the type-cache enrichment path).
func (s *Store) UpdateSymbolType(ctx context.Context, qualified, typeSignature string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE symbols SET type_signature = ?, source = ? WHERE qualified = ?`,
		typeSignature, string(model.SourceSemantic), qualified)
	if err != nil {
		return rxerr.NewDatabaseError(err)
	}
	return nil
}

// GetMember returns one named member of typeName, if present.
func (s *Store) GetMember(ctx context.Context, typeName, memberName string) (model.TypeMember, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT type_name, member_name, member_type, kind FROM members WHERE type_name = ? AND member_name = ? LIMIT 1`,
		typeName, memberName)
	var m model.TypeMember
	var kind string
	if err := row.Scan(&m.TypeName, &m.Member, &m.MemberType, &kind); err != nil {
		if err == sql.ErrNoRows {
			return model.TypeMember{}, false, nil
		}
		return model.TypeMember{}, false, rxerr.NewDatabaseError(err)
	}
	m.Kind = model.MemberKind(kind)
	return m, true, nil
}

// GetMembers returns every member recorded for typeName.
func (s *Store) GetMembers(ctx context.Context, typeName string) ([]model.TypeMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type_name, member_name, member_type, kind FROM members WHERE type_name = ?`, typeName)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	var out []model.TypeMember
	for rows.Next() {
		var m model.TypeMember
		var kind string
		if err := rows.Scan(&m.TypeName, &m.Member, &m.MemberType, &kind); err != nil {
			return nil, rxerr.NewDatabaseError(err)
		}
		m.Kind = model.MemberKind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListFiles returns every distinct file with at least one indexed symbol.
func (s *Store) ListFiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT file FROM symbols ORDER BY file`)
	if err != nil {
		return nil, rxerr.NewDatabaseError(err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, rxerr.NewDatabaseError(err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CountSymbols returns the total number of indexed symbol rows.
func (s *Store) CountSymbols(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM symbols`)
	if err := row.Scan(&n); err != nil {
		return 0, rxerr.NewDatabaseError(err)
	}
	return n, nil
}

const symbolSelectBase = `SELECT name, qualified, kind, type_signature, file, line, column,
	end_line, end_column, visibility, language, source, parent, mixins,
	attributes, implements, doc, signature FROM symbols`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSymbolRow(row rowScanner) (model.Symbol, error) {
	var sym model.Symbol
	var kind, vis, source string
	var typeSig, parent, mixins, attrs, impls, doc, sig sql.NullString
	err := row.Scan(&sym.Name, &sym.Qualified, &kind, &typeSig,
		&sym.Location.File, &sym.Location.Line, &sym.Location.Column,
		&sym.Location.EndLine, &sym.Location.EndColumn,
		&vis, &sym.Language, &source, &parent, &mixins, &attrs, &impls, &doc, &sig)
	if err != nil {
		return model.Symbol{}, err
	}
	sym.Kind = model.SymbolKind(kind)
	sym.Visibility = model.Visibility(vis)
	sym.Source = model.Source(source)
	if typeSig.Valid {
		sym.TypeSignature = &typeSig.String
	}
	if parent.Valid {
		sym.Parent = &parent.String
	}
	if mixins.Valid {
		if err := json.Unmarshal([]byte(mixins.String), &sym.Mixins); err != nil {
			return model.Symbol{}, err
		}
	}
	if attrs.Valid {
		if err := json.Unmarshal([]byte(attrs.String), &sym.Attributes); err != nil {
			return model.Symbol{}, err
		}
	}
	if impls.Valid {
		if err := json.Unmarshal([]byte(impls.String), &sym.Implements); err != nil {
			return model.Symbol{}, err
		}
	}
	if doc.Valid {
		sym.Doc = &doc.String
	}
	if sig.Valid {
		sym.Signature = &sig.String
	}
	return sym, nil
}

func scanSymbolRows(rows *sql.Rows) ([]model.Symbol, error) {
	var out []model.Symbol
	for rows.Next() {
		sym, err := scanSymbolRow(rows)
		if err != nil {
			return nil, rxerr.NewDatabaseError(err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}
