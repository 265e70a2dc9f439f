package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stocktrack/internal/core"
)

func TestReporting_MonthlyReportSums(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	txSvc := core.NewTransactionService(pool, core.NewUnitLedger(pool))
	reports := core.NewReportingService(pool)
	ctx := context.Background()

	inputs := []core.TransactionInput{
		{TypeID: inflowTypeID, ProductID: printerID, Quantity: 10, Lot: "LOT-R1", UserID: testerUserID},
		{TypeID: inflowTypeID, ProductID: scannerID, Quantity: 4, Lot: "LOT-R2", UserID: testerUserID},
		{TypeID: outflowTypeID, ProductID: printerID, Quantity: 3, UserID: testerUserID},
	}
	for _, in := range inputs {
		if _, err := txSvc.Create(ctx, in); err != nil {
			t.Fatalf("transaction failed: %v", err)
		}
	}

	now := time.Now().UTC()
	report, err := reports.MonthlyReport(ctx, now.Year(), now.Month())
	if err != nil {
		t.Fatalf("MonthlyReport failed: %v", err)
	}

	if len(report.Transactions) != 3 {
		t.Errorf("expected 3 transactions, got %d", len(report.Transactions))
	}
	if report.TotalInflow != 14 {
		t.Errorf("expected total inflow 14, got %d", report.TotalInflow)
	}
	if report.TotalOutflow != 3 {
		t.Errorf("expected total outflow 3, got %d", report.TotalOutflow)
	}
	if len(report.Inflows) != 2 || report.Inflows[0].Quantity != 10 {
		t.Errorf("inflow aggregation wrong: %+v", report.Inflows)
	}
	if len(report.Outflows) != 1 || report.Outflows[0].ProductID != printerID {
		t.Errorf("outflow aggregation wrong: %+v", report.Outflows)
	}
}

func TestReporting_EmptyMonth(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reports := core.NewReportingService(pool)
	report, err := reports.MonthlyReport(context.Background(), 2020, time.February)
	if err != nil {
		t.Fatalf("MonthlyReport failed: %v", err)
	}
	if len(report.Transactions) != 0 || report.TotalInflow != 0 || report.TotalOutflow != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func TestReporting_RejectsBadPeriod(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reports := core.NewReportingService(pool)
	_, err := reports.MonthlyReport(context.Background(), 2026, time.Month(13))

	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
