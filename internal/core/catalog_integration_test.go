package core_test

import (
	"context"
	"errors"
	"testing"

	"stocktrack/internal/core"
)

func TestCatalog_CategoryDeletePreCheck(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewCatalogService(pool)
	ctx := context.Background()

	// Category 1 has the two seeded products linked.
	err := svc.DeleteCategory(ctx, 1)
	if !errors.Is(err, core.ErrCategoryHasProducts) {
		t.Fatalf("expected ErrCategoryHasProducts, got %v", err)
	}

	empty, err := svc.CreateCategory(ctx, "Cables", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if err := svc.DeleteCategory(ctx, empty.ID); err != nil {
		t.Fatalf("deleting empty category failed: %v", err)
	}
	if err := svc.DeleteCategory(ctx, empty.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCatalog_ProductDeleteLadder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ledger := core.NewUnitLedger(pool)
	txSvc := core.NewTransactionService(pool, ledger)
	ctx := context.Background()

	// No stock, no history: hard delete.
	fresh, err := catalog.CreateProduct(ctx, "Label Roll", "", nil, testerUserID)
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	outcome, err := catalog.DeleteProduct(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if outcome != core.ProductDeleted {
		t.Errorf("expected hard delete, got %s", outcome)
	}
	if _, err := catalog.GetProduct(ctx, fresh.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Available stock: rejected outright.
	if _, err := txSvc.Create(ctx, core.TransactionInput{
		TypeID: inflowTypeID, ProductID: printerID, Quantity: 2,
		Lot: "LOT-DEL", UserID: testerUserID,
	}); err != nil {
		t.Fatalf("inflow failed: %v", err)
	}
	if _, err := catalog.DeleteProduct(ctx, printerID); !errors.Is(err, core.ErrProductHasStock) {
		t.Fatalf("expected ErrProductHasStock, got %v", err)
	}

	// Zero stock but history: deactivate, keep the audit trail.
	if _, err := txSvc.Create(ctx, core.TransactionInput{
		TypeID: outflowTypeID, ProductID: printerID, Quantity: 2,
		UserID: testerUserID,
	}); err != nil {
		t.Fatalf("outflow failed: %v", err)
	}
	outcome, err = catalog.DeleteProduct(ctx, printerID)
	if err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if outcome != core.ProductDeactivated {
		t.Errorf("expected deactivation, got %s", outcome)
	}

	p, err := catalog.GetProduct(ctx, printerID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.IsActive {
		t.Error("expected product to be inactive")
	}

	// History survives the deactivation.
	_, total, err := txSvc.List(ctx, core.TransactionFilters{ProductID: printerID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 history rows, got %d", total)
	}
}

func TestCatalog_ProductStockTotalIsDerived(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	txSvc := core.NewTransactionService(pool, core.NewUnitLedger(pool))
	ctx := context.Background()

	p, err := catalog.GetProduct(ctx, scannerID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.StockTotal != 0 {
		t.Errorf("expected zero stock, got %d", p.StockTotal)
	}

	if _, err := txSvc.Create(ctx, core.TransactionInput{
		TypeID: inflowTypeID, ProductID: scannerID, Quantity: 7,
		Lot: "LOT-C", UserID: testerUserID,
	}); err != nil {
		t.Fatalf("inflow failed: %v", err)
	}

	p, err = catalog.GetProduct(ctx, scannerID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.StockTotal != 7 {
		t.Errorf("expected stock 7, got %d", p.StockTotal)
	}
}

func TestCatalog_ListProductsFilters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	products, total, err := catalog.ListProducts(ctx, core.ProductFilters{Search: "printer"})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if total != 1 || len(products) != 1 || products[0].ID != printerID {
		t.Errorf("search filter wrong: total=%d %+v", total, products)
	}

	_, total, err = catalog.ListProducts(ctx, core.ProductFilters{CategoryID: 1})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 products in category, got %d", total)
	}
}

func TestCatalog_TransactionTypes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	created, err := catalog.CreateTransactionType(ctx, "Return", "customer returns", true)
	if err != nil {
		t.Fatalf("CreateTransactionType failed: %v", err)
	}
	if !created.IsInflow {
		t.Error("expected inflow type")
	}

	types, err := catalog.ListTransactionTypes(ctx)
	if err != nil {
		t.Fatalf("ListTransactionTypes failed: %v", err)
	}
	if len(types) != 3 {
		t.Errorf("expected 3 types, got %d", len(types))
	}
}
