// Package export turns the live subset of the catalog into downloadable
// summaries: delimited text, structured JSON, or a paginated PDF report.
//
// All modes share one row projection; a format never re-derives its own view
// of a book.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/homeshelf/homeshelf-server/internal/errors"
	"github.com/homeshelf/homeshelf-server/internal/store"
)

// Format selects an export output mode.
type Format string

// Supported export formats.
const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatReport Format = "report"
)

// ParseFormat maps a user-supplied mode string to a Format. Anything
// unrecognized, including the empty string, falls back to CSV.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "report", "pdf":
		return FormatReport
	default:
		return FormatCSV
	}
}

// Row is the shared projection of one live book.
type Row struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Authors      string `json:"authors"`
	ISBN         string `json:"isbn"`
	Tags         string `json:"tags"`
	LastReadDate string `json:"last_read_date"`
	ReadCount    int    `json:"read_count"`
	ReadsToday   int    `json:"reads_today"`
}

// ReportRenderer renders rows into a paginated tabular report. It is an
// optional collaborator; the pipeline runs without one.
type ReportRenderer interface {
	Render(w io.Writer, rows []Row) error
}

// Pipeline reads the catalog and produces export output.
type Pipeline struct {
	catalog  store.Catalog
	renderer ReportRenderer // nil when report export is disabled
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline creates an export pipeline. renderer may be nil; the report
// format then reports unavailability instead of silently degrading.
func NewPipeline(catalog store.Catalog, renderer ReportRenderer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		catalog:  catalog,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// Rows loads the catalog and projects its live subset, preserving store
// order. Books with IsLive false never appear.
func (p *Pipeline) Rows(ctx context.Context) ([]Row, error) {
	books, err := p.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	today := p.now().Format(time.DateOnly)
	rows := make([]Row, 0, len(books))
	for _, b := range books {
		if !b.IsLive {
			continue
		}
		rows = append(rows, Row{
			ID:           b.ID,
			Title:        b.Title,
			Authors:      b.Authors,
			ISBN:         b.ISBN,
			Tags:         strings.Join(b.Tags, ","),
			LastReadDate: b.LastReadDate,
			ReadCount:    b.ReadCount,
			ReadsToday:   b.ReadsOn(today),
		})
	}

	p.logger.Debug("export rows projected", "live", len(rows), "total", len(books))
	return rows, nil
}

// csvHeader is the column order for delimited output, matching Row.
var csvHeader = []string{"id", "title", "authors", "isbn", "tags", "last_read_date", "read_count", "reads_today"}

// WriteCSV renders rows as header plus one record per row. Quoting of
// fields containing the delimiter, quotes, or newlines is handled by
// encoding/csv.
func (p *Pipeline) WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.ID),
			r.Title,
			r.Authors,
			r.ISBN,
			r.Tags,
			r.LastReadDate,
			strconv.Itoa(r.ReadCount),
			strconv.Itoa(r.ReadsToday),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderReport renders rows through the report collaborator. Without one, it
// returns a RendererUnavailable error carrying instructions rather than
// degrading to another format.
func (p *Pipeline) RenderReport(w io.Writer, rows []Row) error {
	if p.renderer == nil {
		return errors.RendererUnavailable(
			"PDF report export is disabled; start the server with EXPORT_REPORT_ENABLED=true to enable it")
	}
	if err := p.renderer.Render(w, rows); err != nil {
		return errors.Wrap(err, errors.CodeRendererUnavailable, "PDF report rendering failed")
	}
	return nil
}
