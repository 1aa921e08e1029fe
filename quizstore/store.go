// Package quizstore persists parse runs in SQLite.
package quizstore

import (
	"database/sql"

	"github.com/hazyhaar/word2quiz/dbopen"
	"github.com/hazyhaar/word2quiz/idgen"
)

// Store is the run database handle.
type Store struct {
	DB    *sql.DB
	newID idgen.Generator
}

// Open opens (or creates) the run database at path and applies the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// New wraps an already opened database. The schema must be applied.
func New(db *sql.DB) *Store {
	return &Store{DB: db, newID: idgen.Default}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
