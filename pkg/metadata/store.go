// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metadata provides the cluster-library metadata store consumed by
// the option lookup helpers.
//
// The store is backed by SQLite and exposes the three lookups the rendering
// engine needs: resolving the owning package of a generation session, listing
// option values for a category, and fetching one option value by key. All
// lookups are read-only and idempotent, which makes them safe to memoize for
// the duration of a render pass.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OptionValue is one package option row.
type OptionValue struct {
	// Code is the numeric option code
	Code int64

	// Label is the human-readable option label
	Label string
}

// Store is a SQLite-backed metadata store scoped to one generation session.
type Store struct {
	db         *sql.DB
	dbPath     string
	sessionRef string
}

// Open initializes the SQLite database at the given path and binds the store
// to a generation session reference. The schema is created if absent.
func Open(path, sessionRef string) (*Store, error) {
	if sessionRef == "" {
		return nil, fmt.Errorf("session reference must not be empty")
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: path, sessionRef: sessionRef}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS packages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		package_type TEXT NOT NULL DEFAULT 'zcl-properties',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS session_packages (
		session_ref TEXT NOT NULL,
		package_id INTEGER NOT NULL REFERENCES packages(id),
		UNIQUE(session_ref, package_id)
	);
	CREATE INDEX IF NOT EXISTS idx_session_packages_ref ON session_packages(session_ref);
	CREATE TABLE IF NOT EXISTS option_values (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		package_id INTEGER NOT NULL REFERENCES packages(id),
		category TEXT NOT NULL,
		option_code INTEGER NOT NULL,
		option_label TEXT NOT NULL,
		UNIQUE(package_id, category, option_label)
	);
	CREATE INDEX IF NOT EXISTS idx_option_values_lookup ON option_values(package_id, category);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionRef returns the generation session reference this store is bound to.
func (s *Store) SessionRef() string {
	return s.sessionRef
}

// ResolveOwningPackage returns the package identifier owning the store's
// generation session. An unbound session is a lookup failure, not an empty
// result.
func (s *Store) ResolveOwningPackage(ctx context.Context) (int64, error) {
	var packageID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT package_id FROM session_packages WHERE session_ref = ? LIMIT 1`,
		s.sessionRef).Scan(&packageID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no package bound to session '%s'", s.sessionRef)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving package for session '%s': %w", s.sessionRef, err)
	}
	return packageID, nil
}

// FetchOptionValues returns all option values under a category, in insertion
// order. An unknown category rejects with an error describing the missing
// category rather than returning an empty list.
func (s *Store) FetchOptionValues(ctx context.Context, packageID int64, category string) ([]OptionValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT option_code, option_label FROM option_values
		 WHERE package_id = ? AND category = ? ORDER BY id`,
		packageID, category)
	if err != nil {
		return nil, fmt.Errorf("fetching options for category '%s': %w", category, err)
	}
	defer rows.Close()

	var values []OptionValue
	for rows.Next() {
		var v OptionValue
		if err := rows.Scan(&v.Code, &v.Label); err != nil {
			return nil, fmt.Errorf("scanning option row: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading option rows: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no option values for category '%s' in package %d", category, packageID)
	}
	return values, nil
}

// FetchSpecificOptionValue returns the option value for one key, or nil when
// the key is absent from the category.
func (s *Store) FetchSpecificOptionValue(ctx context.Context, packageID int64, category, key string) (*OptionValue, error) {
	var v OptionValue
	err := s.db.QueryRowContext(ctx,
		`SELECT option_code, option_label FROM option_values
		 WHERE package_id = ? AND category = ? AND option_label = ? LIMIT 1`,
		packageID, category, key).Scan(&v.Code, &v.Label)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching option '%s' in category '%s': %w", key, category, err)
	}
	return &v, nil
}

// InsertPackage registers a metadata package and returns its identifier.
// Used by session bootstrap and tests; generation itself never writes.
func (s *Store) InsertPackage(ctx context.Context, path, packageType string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO packages (path, package_type) VALUES (?, ?)`, path, packageType)
	if err != nil {
		return 0, fmt.Errorf("inserting package '%s': %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading package id: %w", err)
	}
	return id, nil
}

// BindSession associates the store's session reference with a package.
func (s *Store) BindSession(ctx context.Context, packageID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_packages (session_ref, package_id) VALUES (?, ?)`,
		s.sessionRef, packageID)
	if err != nil {
		return fmt.Errorf("binding session '%s' to package %d: %w", s.sessionRef, packageID, err)
	}
	return nil
}

// InsertOptionValue adds one option row under a package and category.
func (s *Store) InsertOptionValue(ctx context.Context, packageID int64, category string, code int64, label string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO option_values (package_id, category, option_code, option_label)
		 VALUES (?, ?, ?, ?)`,
		packageID, category, code, label)
	if err != nil {
		return fmt.Errorf("inserting option '%s' in category '%s': %w", label, category, err)
	}
	return nil
}
