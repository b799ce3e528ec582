// Package store defines the persistence contract for the book catalog.
//
// The catalog is small and single-user, so the contract is deliberately
// whole-collection: every mutation re-reads, mutates, and re-writes the full
// sequence. Concurrent writers race last-write-wins; that is a documented
// limitation of the system, not something a backend should try to fix.
package store

import (
	"context"

	"github.com/homeshelf/homeshelf-server/internal/domain"
)

// Catalog loads and persists the full ordered book collection.
type Catalog interface {
	// Load reads the durable collection. An absent or unreadable backing
	// location is treated as "no data yet" and yields an empty collection,
	// not an error.
	Load(ctx context.Context) ([]domain.Book, error)

	// Save replaces the entire collection, creating the backing location if
	// absent. A Load that follows a completed Save observes the whole write.
	Save(ctx context.Context, books []domain.Book) error

	// Close releases backend resources.
	Close() error
}
