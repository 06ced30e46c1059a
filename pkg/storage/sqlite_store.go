package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	key TEXT NOT NULL,
	doc BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, key)
);
`

// SQLiteStore is a file-backed implementation of DocumentStore. Documents
// are stored as JSON blobs keyed by (collection, key).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path and
// applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open document db: %w", err)
	}

	if _, err := db.Exec(createDocumentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate document db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get retrieves a document by (collection, key).
func (s *SQLiteStore) Get(ctx context.Context, collection, key string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND key = ?`,
		collection, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, key)
	}
	if err != nil {
		return nil, fmt.Errorf("query document %s/%s: %w", collection, key, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

// Put stores a document under (collection, key), replacing any previous value.
func (s *SQLiteStore) Put(ctx context.Context, collection, key string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (collection, key, doc, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		collection, key, raw,
	)
	if err != nil {
		return fmt.Errorf("store document %s/%s: %w", collection, key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
