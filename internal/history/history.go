// Package history keeps a local ledger of generated migration files.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tordrt/kgschema/internal/db"
)

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		statements INTEGER NOT NULL,
		checksum TEXT NOT NULL
	)
`

// Entry is one recorded migration file
type Entry struct {
	ID         int64
	File       string
	CreatedAt  time.Time
	Statements int
	Checksum   string
}

// Store records migrations in a SQLite database
type Store struct {
	client *db.SQLiteClient
	now    func() time.Time
}

// Open opens or creates the ledger at path
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	client, err := db.NewSQLiteClient(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureSchema(ctx, createMigrationsTable); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Store{client: client, now: time.Now}, nil
}

// Close closes the ledger
func (s *Store) Close() error {
	return s.client.Close()
}

// Checksum returns the hex sha256 of content
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Record stores a written migration file
func (s *Store) Record(ctx context.Context, file string, statements int, content []byte) (Entry, error) {
	e := Entry{
		File:       file,
		CreatedAt:  s.now().UTC().Truncate(time.Second),
		Statements: statements,
		Checksum:   Checksum(content),
	}

	res, err := s.client.GetDB().ExecContext(ctx,
		"INSERT INTO migrations (file, created_at, statements, checksum) VALUES (?, ?, ?, ?)",
		e.File, e.CreatedAt, e.Statements, e.Checksum)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record migration: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record migration: %w", err)
	}
	return e, nil
}

// List returns all recorded migrations, oldest first
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.client.GetDB().QueryContext(ctx,
		"SELECT id, file, created_at, statements, checksum FROM migrations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.File, &e.CreatedAt, &e.Statements, &e.Checksum); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
