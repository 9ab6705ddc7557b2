// Package store resolves the record ids carried by document nodes.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"

	_ "modernc.org/sqlite"
)

// Type tags with records behind them.
const (
	TypeBook   = "Book"
	TypeAuthor = "Author"
)

// Book is one entry of the books table.
type Book struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Date  string `yaml:"date,omitempty"`
	URL   string `yaml:"url,omitempty"`
}

// Author is one entry of the authors table.
type Author struct {
	ID      string `yaml:"id"`
	PenName string `yaml:"pen_name"`
	URL     string `yaml:"url,omitempty"`
}

// Record is what renderers get back for a node: its display name (book title
// or pen name) and optional link.
type Record struct {
	Type string
	ID   string
	Name string
	Date string
	URL  string
}

// Resolver looks up the record behind a node's type tag and id.
type Resolver interface {
	Resolve(ctx context.Context, typeTag, id string) (Record, error)
}

// SQLiteStore keeps books and authors in SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the record database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func Open(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ErrDatabaseOpenFailed.WithCause(err).WithContext("dsn", dsn)
	}
	// Every pooled connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, ErrInitializeSchemaFailed.WithCause(err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS authors (
		id TEXT PRIMARY KEY,
		pen_name TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// PutBook inserts or replaces a book.
func (s *SQLiteStore) PutBook(ctx context.Context, b Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO books (id, title, date, url) VALUES (?, ?, ?, ?)",
		b.ID, b.Title, b.Date, b.URL,
	)
	if err != nil {
		return ErrWriteFailed.WithCause(err).WithContext("type", TypeBook).WithContext("id", b.ID)
	}
	return nil
}

// PutAuthor inserts or replaces an author.
func (s *SQLiteStore) PutAuthor(ctx context.Context, a Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO authors (id, pen_name, url) VALUES (?, ?, ?)",
		a.ID, a.PenName, a.URL,
	)
	if err != nil {
		return ErrWriteFailed.WithCause(err).WithContext("type", TypeAuthor).WithContext("id", a.ID)
	}
	return nil
}

// Resolve returns the record for typeTag and id, or ErrNotFound.
func (s *SQLiteStore) Resolve(ctx context.Context, typeTag, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := Record{Type: typeTag, ID: id}
	var row *sql.Row
	switch typeTag {
	case TypeBook:
		row = s.db.QueryRowContext(ctx, "SELECT title, date, url FROM books WHERE id = ?", id)
		err := row.Scan(&rec.Name, &rec.Date, &rec.URL)
		return rec, s.lookupErr(err, typeTag, id)
	case TypeAuthor:
		row = s.db.QueryRowContext(ctx, "SELECT pen_name, url FROM authors WHERE id = ?", id)
		err := row.Scan(&rec.Name, &rec.URL)
		return rec, s.lookupErr(err, typeTag, id)
	default:
		return Record{}, ErrNotFound.WithContext("type", typeTag).WithContext("id", id)
	}
}

func (s *SQLiteStore) lookupErr(err error, typeTag, id string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, sql.ErrNoRows):
		return ErrNotFound.WithContext("type", typeTag).WithContext("id", id)
	default:
		return ErrQueryFailed.WithCause(err).WithContext("type", typeTag).WithContext("id", id)
	}
}

// Count returns the number of books and authors stored.
func (s *SQLiteStore) Count(ctx context.Context) (books, authors int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&books); err != nil {
		return 0, 0, ErrQueryFailed.WithCause(err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&authors); err != nil {
		return 0, 0, ErrQueryFailed.WithCause(err)
	}
	return books, authors, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
