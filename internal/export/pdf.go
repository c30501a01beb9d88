// Package export renders the daily schedule into printable documents.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/benvon/daily-agent/internal/timeutil"
	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "Helvetica"
	pageMargin = 20.0
	pageWidth  = 210.0
)

// SchedulePDF writes today's tasks, sorted by time, as an A4 PDF to w
func SchedulePDF(w io.Writer, tasks []*models.Task, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Lokha Daily Schedule", false)
	pdf.SetAuthor("Lokha", false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 10, "Today's Schedule", "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 12)
	pdf.CellFormat(0, 7, now.Format("Monday, January 2, 2006"), "", 1, "C", false, 0, "")
	hr(pdf)

	sorted := store.SortByTime(tasks)
	if len(sorted) == 0 {
		pdf.SetFont(fontFamily, "", 12)
		pdf.MultiCell(0, 7, "No tasks scheduled for today.", "", "L", false)
	}

	for _, task := range sorted {
		status := "[ ]"
		if task.Completed {
			status = "[x]"
		}
		pdf.SetFont(fontFamily, "B", 12)
		pdf.CellFormat(12, 7, status, "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 7, timeutil.FormatDisplay(task.Time), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 12)
		pdf.MultiCell(0, 7, tr(task.Title), "", "L", false)
		if task.Notes != "" {
			pdf.SetFont(fontFamily, "I", 10)
			pdf.SetX(pageMargin + 40)
			pdf.MultiCell(0, 5, tr(task.Notes), "", "L", false)
		}
	}

	pdf.Ln(2)
	hr(pdf)
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d of %d tasks pending", store.Pending(sorted), len(sorted)), "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render schedule pdf: %w", err)
	}
	return nil
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(pageMargin, y, pageWidth-pageMargin, y)
	pdf.SetY(y + 2)
}
