package report_test

import (
	"bytes"
	"testing"
	"time"

	"stocktrack/internal/core"
	"stocktrack/internal/report"
)

func TestRenderMonthlyPDF(t *testing.T) {
	rep := &core.MonthlyReport{
		Year:        2026,
		Month:       time.August,
		GeneratedAt: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Transactions: []core.Transaction{
			{
				ID: 1, TypeName: "Purchase", IsInflow: true, Username: "tester",
				ProductName: "USB Receipt Printer", Quantity: 10,
				CreatedAt: time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC),
			},
			{
				ID: 2, TypeName: "Sale", IsInflow: false, Username: "tester",
				ProductName: "USB Receipt Printer", Quantity: 4, Notes: "order #81",
				CreatedAt: time.Date(2026, 8, 15, 16, 30, 0, 0, time.UTC),
			},
		},
		Inflows:      []core.ProductFlow{{ProductID: 1, ProductName: "USB Receipt Printer", Quantity: 10}},
		Outflows:     []core.ProductFlow{{ProductID: 1, ProductName: "USB Receipt Printer", Quantity: 4}},
		TotalInflow:  10,
		TotalOutflow: 4,
	}

	out, err := report.RenderMonthlyPDF(rep)
	if err != nil {
		t.Fatalf("RenderMonthlyPDF failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestRenderMonthlyPDF_EmptyMonth(t *testing.T) {
	rep := &core.MonthlyReport{Year: 2026, Month: time.January, GeneratedAt: time.Now()}
	out, err := report.RenderMonthlyPDF(rep)
	if err != nil {
		t.Fatalf("RenderMonthlyPDF failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
