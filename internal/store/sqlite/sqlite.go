// Package sqlite persists the catalog in a SQLite database behind the same
// whole-collection load/save contract as the flat-file backend. It exists for
// catalogs that outgrow a single JSON file; callers cannot tell the two apart.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"github.com/go-json-experiment/json"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/homeshelf/homeshelf-server/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is a SQLite catalog backend.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a SQLite catalog at the given path, configuring WAL mode and
// running schema migration.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single logical writer; one connection avoids SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Catalog{db: db, logger: logger}, nil
}

// Load reads all books in their stored order. Row-level corruption in the
// JSON columns is treated like a corrupt flat file: log and start empty.
func (c *Catalog) Load(ctx context.Context) ([]domain.Book, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, isbn, title, authors, tags, is_live, is_gift,
		       gift_from, last_read_date, read_count, read_log
		FROM books ORDER BY position`)
	if err != nil {
		c.logger.Warn("catalog unreadable, starting empty", "error", err)
		return []domain.Book{}, nil
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		var b domain.Book
		var tagsJSON, readLogJSON string
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Authors, &tagsJSON,
			&b.IsLive, &b.IsGift, &b.GiftFrom, &b.LastReadDate, &b.ReadCount, &readLogJSON); err != nil {
			c.logger.Warn("catalog row unreadable, starting empty", "error", err)
			return []domain.Book{}, nil
		}
		if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
			c.logger.Warn("catalog tags corrupt, starting empty", "id", b.ID, "error", err)
			return []domain.Book{}, nil
		}
		if err := json.Unmarshal([]byte(readLogJSON), &b.ReadLog); err != nil {
			c.logger.Warn("catalog read log corrupt, starting empty", "id", b.ID, "error", err)
			return []domain.Book{}, nil
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		c.logger.Warn("catalog scan failed, starting empty", "error", err)
		return []domain.Book{}, nil
	}
	return books, nil
}

// Save replaces the whole collection in one transaction.
func (c *Catalog) Save(ctx context.Context, books []domain.Book) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM books"); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO books (id, isbn, title, authors, tags, is_live, is_gift,
		                   gift_from, last_read_date, read_count, read_log, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for pos := range books {
		b := &books[pos]
		tagsJSON, err := marshalJSONColumn(b.Tags, "[]")
		if err != nil {
			return fmt.Errorf("marshal tags for book %d: %w", b.ID, err)
		}
		readLogJSON, err := marshalJSONColumn(b.ReadLog, "{}")
		if err != nil {
			return fmt.Errorf("marshal read log for book %d: %w", b.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, b.ID, b.ISBN, b.Title, b.Authors, tagsJSON,
			b.IsLive, b.IsGift, b.GiftFrom, b.LastReadDate, b.ReadCount, readLogJSON, pos); err != nil {
			return fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// marshalJSONColumn serializes v, substituting empty for nil so the column
// never holds SQL-visible "null".
func marshalJSONColumn(v any, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}
