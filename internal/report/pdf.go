// Package report renders monthly stock reports to PDF.
package report

import (
	"bytes"
	"fmt"

	"stocktrack/internal/core"

	"github.com/go-pdf/fpdf"
)

// RenderMonthlyPDF renders a monthly report as an A4 PDF: header, per-product
// inflow/outflow summaries, then the full transaction listing.
func RenderMonthlyPDF(rep *core.MonthlyReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Stock Report %s %d", rep.Month, rep.Year))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated at "+rep.GeneratedAt.Format("2006-01-02 15:04 MST"))
	pdf.Ln(12)

	renderFlows(pdf, "Inflows", rep.Inflows, rep.TotalInflow)
	renderFlows(pdf, "Outflows", rep.Outflows, rep.TotalOutflow)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Transactions (%d)", len(rep.Transactions)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	widths := []float64{22, 28, 60, 16, 24, 40}
	headers := []string{"Date", "Type", "Product", "Qty", "User", "Notes"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, t := range rep.Transactions {
		direction := "-"
		if t.IsInflow {
			direction = "+"
		}
		cells := []string{
			t.CreatedAt.Format("2006-01-02"),
			t.TypeName,
			t.ProductName,
			direction + fmt.Sprint(t.Quantity),
			t.Username,
			t.Notes,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func renderFlows(pdf *fpdf.Fpdf, title string, flows []core.ProductFlow, total int) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("%s: %d units", title, total))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	if len(flows) == 0 {
		pdf.Cell(0, 6, "none")
		pdf.Ln(10)
		return
	}
	for _, f := range flows {
		pdf.Cell(120, 6, f.ProductName)
		pdf.CellFormat(20, 6, fmt.Sprint(f.Quantity), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.Ln(4)
}
