// Package jsonfile persists the catalog as one pretty-printed JSON array on disk.
package jsonfile

import (
	"context"
	"fmt"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/homeshelf/homeshelf-server/internal/domain"
)

// Catalog is a flat-file catalog backend.
type Catalog struct {
	path   string
	logger *slog.Logger
}

// New creates a catalog backed by the JSON file at path.
// The file is created on first Save; it does not need to exist yet.
func New(path string, logger *slog.Logger) *Catalog {
	return &Catalog{path: path, logger: logger}
}

// Load reads the collection from disk. A missing or corrupt file yields an
// empty collection; corruption is logged but never fatal.
func (c *Catalog) Load(_ context.Context) ([]domain.Book, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("catalog file unreadable, starting empty", "path", c.path, "error", err)
		}
		return []domain.Book{}, nil
	}

	var books []domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		c.logger.Warn("catalog file corrupt, starting empty", "path", c.path, "error", err)
		return []domain.Book{}, nil
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// Save writes the whole collection. The write goes to a temp file in the same
// directory and is renamed into place, so a reader never observes a partial
// file.
func (c *Catalog) Save(_ context.Context, books []domain.Book) error {
	if books == nil {
		books = []domain.Book{}
	}

	data, err := json.Marshal(books, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp catalog: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open between operations.
func (c *Catalog) Close() error {
	return nil
}
