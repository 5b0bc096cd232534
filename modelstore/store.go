// Package modelstore persists encoded parameter/model mapping pairs in
// SQLite, keyed by name, for callers that manage a catalogue of trained
// models outside the engine's own file format.
package modelstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get and Delete for an unknown model name.
var ErrNotFound = errors.New("modelstore: model not found")

const schema = `
CREATE TABLE IF NOT EXISTS models (
    name       TEXT PRIMARY KEY,
    params     TEXT NOT NULL,
    model      TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);`

// Store is a named catalogue of trained models.
type Store struct {
	db *sql.DB
}

// Entry describes one stored model.
type Entry struct {
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open opens (creating if necessary) the store at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores or replaces the mappings under name.
func (s *Store) Put(name string, params, model map[string]interface{}) error {
	if name == "" {
		return fmt.Errorf("modelstore: empty model name")
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("modelstore: encode params: %w", err)
	}
	modelJSON, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("modelstore: encode model: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(`
        INSERT INTO models (name, params, model, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            params = excluded.params,
            model = excluded.model,
            updated_at = excluded.updated_at`,
		name, string(paramsJSON), string(modelJSON), now, now)
	return err
}

// Get returns the mappings stored under name. Numeric values come back
// as float64 and nested arrays as []interface{}, which the svm codecs
// coerce.
func (s *Store) Get(name string) (params, model map[string]interface{}, err error) {
	var paramsJSON, modelJSON string
	row := s.db.QueryRow(`SELECT params, model FROM models WHERE name = ?`, name)
	if err := row.Scan(&paramsJSON, &modelJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, nil, err
	}
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return nil, nil, fmt.Errorf("modelstore: decode params for %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(modelJSON), &model); err != nil {
		return nil, nil, fmt.Errorf("modelstore: decode model for %q: %w", name, err)
	}
	return params, model, nil
}

// List returns all stored models ordered by name.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT name, created_at, updated_at FROM models ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the model stored under name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM models WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}
