// Package pdfreport renders export rows into a paginated tabular PDF.
package pdfreport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/homeshelf/homeshelf-server/internal/export"
)

const reportTitle = "Live books summary"

// column describes one table column: header label, width in mm, and how to
// pull its value from a row.
type column struct {
	label string
	width float64
	value func(export.Row) string
}

var columns = []column{
	{"ID", 12, func(r export.Row) string { return strconv.Itoa(r.ID) }},
	{"Title", 75, func(r export.Row) string { return clip(r.Title, 60) }},
	{"Authors", 55, func(r export.Row) string { return clip(r.Authors, 40) }},
	{"ISBN", 30, func(r export.Row) string { return r.ISBN }},
	{"Tags", 50, func(r export.Row) string { return clip(r.Tags, 38) }},
	{"Last read", 25, func(r export.Row) string { return r.LastReadDate }},
	{"Reads", 15, func(r export.Row) string { return strconv.Itoa(r.ReadCount) }},
	{"Today", 15, func(r export.Row) string { return strconv.Itoa(r.ReadsToday) }},
}

// Renderer renders the tabular report with go-pdf/fpdf.
type Renderer struct{}

// New creates a report renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the paginated report for rows to w. The header row repeats on
// every page.
func (*Renderer) Render(w io.Writer, rows []export.Row) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(reportTitle, false)
	pdf.SetAutoPageBreak(true, 15)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, reportTitle, "", 1, "L", false, 0, "")
		pdf.Ln(2)
		writeHeaderRow(pdf)
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		for _, col := range columns {
			pdf.CellFormat(col.width, 6, col.value(r), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeHeaderRow(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 7, col.label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
}

// clip truncates s to at most n runes so a long value cannot push past its
// column.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
