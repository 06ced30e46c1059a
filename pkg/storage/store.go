// Package storage provides the document store used by the gateway's CRUD
// handlers (user profiles, org forms, monitoring preferences).
package storage

import (
	"context"
	"errors"
)

// ErrDocumentNotFound indicates no document exists for the given key.
var ErrDocumentNotFound = errors.New("document not found")

// Document is an opaque JSON-compatible payload stored by caller id.
type Document map[string]any

// DocumentStore persists documents keyed by collection and caller id.
// The in-memory implementation backs offline/dev mode; the SQLite
// implementation persists across restarts.
type DocumentStore interface {
	// Get retrieves the document stored under (collection, key).
	// Returns ErrDocumentNotFound when absent.
	Get(ctx context.Context, collection, key string) (Document, error)

	// Put stores the document under (collection, key), replacing any
	// previous value.
	Put(ctx context.Context, collection, key string, doc Document) error

	// Close releases any held resources.
	Close() error
}
