// Package service provides the business logic layer for the HomeShelf catalog.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/homeshelf/homeshelf-server/internal/domain"
	"github.com/homeshelf/homeshelf-server/internal/errors"
	"github.com/homeshelf/homeshelf-server/internal/metadata/openlibrary"
	"github.com/homeshelf/homeshelf-server/internal/store"
)

// Resolver looks up book metadata for an ISBN. The boolean is false when the
// lookup is unavailable for any reason; a resolver never returns an error.
type Resolver interface {
	Resolve(ctx context.Context, isbn string) (*openlibrary.Result, bool)
}

// LibraryService owns the book record lifecycle: every operation loads the
// whole collection, mutates it in memory, and persists it before returning.
// The service never holds records across a persist boundary.
type LibraryService struct {
	catalog  store.Catalog
	resolver Resolver // nil when automatic metadata lookup is disabled
	logger   *slog.Logger
	now      func() time.Time
}

// NewLibraryService creates a new library service.
func NewLibraryService(catalog store.Catalog, resolver Resolver, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// AddParams are the inputs for cataloguing a new book. Manual title, authors,
// and tags are the fallback when the ISBN is empty or the resolver comes back
// empty-handed.
type AddParams struct {
	ISBN     string
	Gift     bool
	GiftFrom string
	Title    string
	Authors  string
	Tags     string // comma-delimited
}

// ListEntry is a book plus its transient per-call read tally for today.
type ListEntry struct {
	domain.Book
	ReadsToday int `json:"reads_today"`
}

// Add catalogues a new book. When an ISBN is given, the resolver is tried
// exactly once; resolved metadata wins wholesale (resolved tags replace
// manual tags entirely). The new record is live, unread today, and gets the
// next monotonic id.
func (s *LibraryService) Add(ctx context.Context, p AddParams) (*domain.Book, error) {
	isbn := strings.TrimSpace(p.ISBN)

	var meta *openlibrary.Result
	if isbn != "" && s.resolver != nil {
		meta, _ = s.resolver.Resolve(ctx, isbn)
	}

	title := strings.TrimSpace(p.Title)
	authors := strings.TrimSpace(p.Authors)
	tags := domain.SplitTags(p.Tags)
	if meta != nil {
		title = meta.Title
		authors = meta.Authors
		tags = meta.Tags
	}
	if title == "" {
		title = domain.PlaceholderTitle
	}
	if tags == nil {
		tags = []string{}
	}

	books, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	book := domain.Book{
		ID:           domain.NextID(books),
		ISBN:         isbn,
		Title:        title,
		Authors:      authors,
		Tags:         tags,
		IsLive:       true,
		IsGift:       p.Gift,
		GiftFrom:     strings.TrimSpace(p.GiftFrom),
		LastReadDate: s.today(),
		ReadCount:    0,
		ReadLog:      map[string]int{},
	}

	books = append(books, book)
	if err := s.catalog.Save(ctx, books); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}

	s.logger.Info("book added",
		"id", book.ID,
		"title", book.Title,
		"isbn", book.ISBN,
		"resolved", meta != nil,
	)

	return &book, nil
}

// Update applies a sparse patch to the book with the given id. Fields absent
// from the patch are untouched; see domain.Patch for the presence policy.
func (s *LibraryService) Update(ctx context.Context, id int, patch domain.Patch) (*domain.Book, error) {
	books, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	idx := indexByID(books, id)
	if idx < 0 {
		return nil, errors.NotFoundf("book %d not found", id)
	}

	books[idx].Apply(patch)

	if err := s.catalog.Save(ctx, books); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}

	book := books[idx]
	s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	return &book, nil
}

// RecordRead marks the book as read today.
func (s *LibraryService) RecordRead(ctx context.Context, id int) (*domain.Book, error) {
	books, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	idx := indexByID(books, id)
	if idx < 0 {
		return nil, errors.NotFoundf("book %d not found", id)
	}

	return s.recordRead(ctx, books, idx)
}

// RecordReadByISBN marks a book as read today, located by its ISBN — the path
// a barcode scan takes. When the ISBN appears more than once, the first match
// in store order wins.
func (s *LibraryService) RecordReadByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, errors.MissingInput("no ISBN provided")
	}

	books, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	idx := slices.IndexFunc(books, func(b domain.Book) bool { return b.ISBN == isbn })
	if idx < 0 {
		return nil, errors.NotFoundf("no book with ISBN %s", isbn)
	}

	return s.recordRead(ctx, books, idx)
}

// recordRead applies the read event at idx and persists.
func (s *LibraryService) recordRead(ctx context.Context, books []domain.Book, idx int) (*domain.Book, error) {
	today := s.today()
	books[idx].RecordRead(today)

	if err := s.catalog.Save(ctx, books); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}

	book := books[idx]
	s.logger.Info("read recorded",
		"id", book.ID,
		"title", book.Title,
		"read_count", book.ReadCount,
		"reads_today", book.ReadsOn(today),
	)
	return &book, nil
}

// List returns every record sorted by title, case-insensitively ascending,
// with each book's transient reads-today tally. The tally is recomputed per
// call and never persisted.
func (s *LibraryService) List(ctx context.Context) ([]ListEntry, error) {
	books, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	today := s.today()
	entries := make([]ListEntry, 0, len(books))
	for _, b := range books {
		entries = append(entries, ListEntry{Book: b, ReadsToday: b.ReadsOn(today)})
	}

	slices.SortStableFunc(entries, func(a, b ListEntry) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})

	return entries, nil
}

// today returns the current date as an ISO calendar date.
func (s *LibraryService) today() string {
	return s.now().Format(time.DateOnly)
}

func indexByID(books []domain.Book, id int) int {
	return slices.IndexFunc(books, func(b domain.Book) bool { return b.ID == id })
}
