// Package state persists per-term pipeline results between runs, so a
// re-run over an extended input reuses earlier translations and audio
// filenames instead of calling the external services again.
package state

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is the persisted outcome for one term.
type Entry struct {
	Term       string
	Translated string
	Romanized  string
	AudioFile  string
}

// Store is a SQLite-backed record store. Safe for concurrent use; the
// database serializes writers.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS records (
		term       TEXT PRIMARY KEY,
		translated TEXT NOT NULL,
		romanized  TEXT NOT NULL DEFAULT '',
		audio_file TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the persisted entry for term, if any.
func (s *Store) Get(term string) (Entry, bool, error) {
	var e Entry
	row := s.db.QueryRow(
		`SELECT term, translated, romanized, audio_file FROM records WHERE term = ?`, term)
	err := row.Scan(&e.Term, &e.Translated, &e.Romanized, &e.AudioFile)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read state for %q: %w", term, err)
	}
	return e, true, nil
}

// Put inserts or replaces the entry for e.Term.
func (s *Store) Put(e Entry) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO records (term, translated, romanized, audio_file) VALUES (?, ?, ?, ?)`,
		e.Term, e.Translated, e.Romanized, e.AudioFile)
	if err != nil {
		return fmt.Errorf("failed to persist state for %q: %w", e.Term, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
