package api

import (
	"context"
	"github.com/go-json-experiment/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeshelf/homeshelf-server/internal/domain"
	"github.com/homeshelf/homeshelf-server/internal/export"
	"github.com/homeshelf/homeshelf-server/internal/export/pdfreport"
	"github.com/homeshelf/homeshelf-server/internal/metadata/openlibrary"
	"github.com/homeshelf/homeshelf-server/internal/service"
	"github.com/homeshelf/homeshelf-server/internal/store"
	"github.com/homeshelf/homeshelf-server/internal/store/jsonfile"
)

type stubResolver struct {
	result *openlibrary.Result
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (*openlibrary.Result, bool) {
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}

type testServer struct {
	srv     *Server
	catalog store.Catalog
	ctx     context.Context
}

func setupTestServer(t *testing.T, resolver service.Resolver, renderer export.ReportRenderer) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	catalog := jsonfile.New(filepath.Join(t.TempDir(), "books.json"), logger)

	library := service.NewLibraryService(catalog, resolver, logger)
	exporter := export.NewPipeline(catalog, renderer, logger)

	return &testServer{
		srv:     NewServer(library, exporter, logger),
		catalog: catalog,
		ctx:     context.Background(),
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

type bookEnvelope struct {
	Data    domain.Book `json:"data"`
	Error   string      `json:"error"`
	Success bool        `json:"success"`
}

func decodeBook(t *testing.T, rec *httptest.ResponseRecorder) domain.Book {
	t.Helper()

	var env bookEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	return env.Data
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAddBook_Manual(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books",
		`{"title": "The Hobbit", "authors": "J.R.R. Tolkien", "tags": "fantasy, classic", "gift": true, "gift_from": "Nana"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	book := decodeBook(t, rec)
	assert.Equal(t, 1, book.ID)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, []string{"fantasy", "classic"}, book.Tags)
	assert.True(t, book.IsLive)
	assert.True(t, book.IsGift)
	assert.Equal(t, "Nana", book.GiftFrom)
}

func TestAddBook_ResolvedMetadataWins(t *testing.T) {
	ts := setupTestServer(t, &stubResolver{result: &openlibrary.Result{
		Title:   "Goodnight Moon",
		Authors: "Margaret Wise Brown",
		Tags:    []string{"bedtime"},
	}}, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books",
		`{"isbn": "9780064430173", "title": "typed by hand", "tags": "manual"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	book := decodeBook(t, rec)
	assert.Equal(t, "Goodnight Moon", book.Title)
	assert.Equal(t, "Margaret Wise Brown", book.Authors)
	assert.Equal(t, []string{"bedtime"}, book.Tags)
}

func TestAddBook_EmptyBodyGetsPlaceholderTitle(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books", `{}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	book := decodeBook(t, rec)
	assert.Equal(t, domain.PlaceholderTitle, book.Title)
}

func TestAddBook_InvalidJSON(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books", `{"title": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddBook_FieldTooLong(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books",
		`{"gift_from": "`+strings.Repeat("x", 201)+`"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBooks_SortedByTitle(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Zorro"}`)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "abacus"}`)

	rec := ts.do(t, http.MethodGet, "/api/v1/books", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data    []service.ListEntry `json:"data"`
		Success bool                `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "abacus", env.Data[0].Title)
	assert.Equal(t, "Zorro", env.Data[1].Title)
	assert.Equal(t, 0, env.Data[0].ReadsToday)
}

func TestUpdateBook_SparsePatch(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Original", "tags": "keep"}`)

	rec := ts.do(t, http.MethodPatch, "/api/v1/books/1", `{"is_live": "false"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	book := decodeBook(t, rec)
	assert.False(t, book.IsLive)
	assert.Equal(t, "Original", book.Title)
	assert.Equal(t, []string{"keep"}, book.Tags)
}

func TestUpdateBook_NotFound(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPatch, "/api/v1/books/99", `{"title": "nope"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestUpdateBook_InvalidID(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPatch, "/api/v1/books/abc", `{"title": "nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordRead(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Corduroy"}`)

	rec := ts.do(t, http.MethodPost, "/api/v1/books/1/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	book := decodeBook(t, rec)
	assert.Equal(t, 1, book.ReadCount)

	rec = ts.do(t, http.MethodPost, "/api/v1/books/1/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	book = decodeBook(t, rec)
	assert.Equal(t, 2, book.ReadCount)
}

func TestRecordRead_NotFound(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books/7/read", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadByISBN(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"isbn": "9780140328721", "title": "Matilda"}`)

	rec := ts.do(t, http.MethodPost, "/api/v1/books/read-by-isbn", `{"isbn": "9780140328721"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"book_id"`)
}

func TestReadByISBN_EmptyISBN(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books/read-by-isbn", `{"isbn": "  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no ISBN provided")
}

func TestReadByISBN_UnknownISBN(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/v1/books/read-by-isbn", `{"isbn": "0000000000"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport_CSVIsDefault(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Live One"}`)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Retired"}`)
	ts.do(t, http.MethodPatch, "/api/v1/books/2", `{"is_live": "false"}`)

	rec := ts.do(t, http.MethodGet, "/api/v1/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "live_books.csv")
	assert.Contains(t, rec.Body.String(), "Live One")
	assert.NotContains(t, rec.Body.String(), "Retired")
}

func TestExport_UnknownFormatFallsBackToCSV(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/export?format=xml", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestExport_JSON(t *testing.T) {
	ts := setupTestServer(t, nil, nil)
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Live One", "tags": "a, b"}`)

	rec := ts.do(t, http.MethodGet, "/api/v1/export?format=json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var rows []export.Row
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Live One", rows[0].Title)
	assert.Equal(t, "a,b", rows[0].Tags)
}

func TestExport_Report(t *testing.T) {
	ts := setupTestServer(t, nil, pdfreport.New())
	ts.do(t, http.MethodPost, "/api/v1/books", `{"title": "Live One"}`)

	rec := ts.do(t, http.MethodGet, "/api/v1/export?format=report", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "live_books.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestRateLimitMiddleware_Blocks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	limiter := NewRateLimiter(1, time.Minute, 1)

	handler := RateLimitMiddleware(limiter, logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:55555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestExport_ReportUnavailable(t *testing.T) {
	ts := setupTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/export?format=report", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXPORT_REPORT_ENABLED")
}
