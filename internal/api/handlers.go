package api

import (
	"bytes"
	"github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/homeshelf/homeshelf-server/internal/domain"
	"github.com/homeshelf/homeshelf-server/internal/errors"
	"github.com/homeshelf/homeshelf-server/internal/export"
	"github.com/homeshelf/homeshelf-server/internal/http/response"
	"github.com/homeshelf/homeshelf-server/internal/service"
)

// AddBookRequest is the payload for cataloguing a new book. All fields are
// optional: an ISBN alone is enough when metadata lookup is enabled, and the
// manual fields stand in when it is not.
type AddBookRequest struct {
	ISBN     string `json:"isbn" validate:"max=32"`
	Gift     bool   `json:"gift"`
	GiftFrom string `json:"gift_from" validate:"max=200"`
	Title    string `json:"title" validate:"max=500"`
	Authors  string `json:"authors" validate:"max=500"`
	Tags     string `json:"tags" validate:"max=1000"`
}

// ReadByISBNRequest is the payload a barcode scan posts.
type ReadByISBNRequest struct {
	ISBN string `json:"isbn"`
}

// decodeJSON reads the request body into dst, mapping malformed input to a
// validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return errors.Validation("invalid JSON body")
	}
	return nil
}

// handleAddBook catalogues a new book from an ISBN and/or manual fields.
func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req AddBookRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.library.Add(r.Context(), service.AddParams{
		ISBN:     req.ISBN,
		Gift:     req.Gift,
		GiftFrom: req.GiftFrom,
		Title:    req.Title,
		Authors:  req.Authors,
		Tags:     req.Tags,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleListBooks returns the whole catalog sorted by title, each record
// carrying its reads-today tally.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	entries, err := s.library.List(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleUpdateBook applies a sparse patch to a single book.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	var patch domain.Patch
	if err := decodeJSON(r, &patch); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.library.Update(r.Context(), id, patch)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleRecordRead marks a book as read today by id.
func (s *Server) handleRecordRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	book, err := s.library.RecordRead(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleReadByISBN marks a book as read today, located by scanned ISBN.
func (s *Server) handleReadByISBN(w http.ResponseWriter, r *http.Request) {
	var req ReadByISBNRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.library.RecordReadByISBN(r.Context(), req.ISBN)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"book_id": book.ID}, s.logger)
}

// handleExport streams the live collection in the requested format. Unknown
// formats fall back to CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := export.ParseFormat(r.URL.Query().Get("format"))

	rows, err := s.exporter.Rows(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.MarshalWrite(w, rows); err != nil {
			s.logger.Error("Failed to write JSON export", "error", err)
		}

	case export.FormatReport:
		// Rendered into memory first so failures can still produce a
		// proper error response.
		var buf bytes.Buffer
		if err := s.exporter.RenderReport(&buf, rows); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="live_books.pdf"`)
		if _, err := buf.WriteTo(w); err != nil {
			s.logger.Error("Failed to write PDF export", "error", err)
		}

	default:
		var buf bytes.Buffer
		if err := s.exporter.WriteCSV(&buf, rows); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="live_books.csv"`)
		if _, err := buf.WriteTo(w); err != nil {
			s.logger.Error("Failed to write CSV export", "error", err)
		}
	}
}
