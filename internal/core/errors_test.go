package core_test

import (
	"errors"
	"strings"
	"testing"

	"stocktrack/internal/core"
)

func TestInsufficientStockError_Messages(t *testing.T) {
	validation := &core.InsufficientStockError{
		ProductID:  1,
		Available:  3,
		Required:   5,
		DetectedAt: core.DetectedAtValidation,
	}
	if got := validation.Error(); got != "insufficient stock: available=3, required=5" {
		t.Errorf("unexpected validation message: %q", got)
	}

	apply := &core.InsufficientStockError{
		ProductID:  1,
		Available:  2,
		Required:   5,
		DetectedAt: core.DetectedAtApply,
	}
	if got := apply.Error(); got != "insufficient stock to complete transaction" {
		t.Errorf("unexpected apply message: %q", got)
	}
}

func TestInsufficientStockError_As(t *testing.T) {
	var wrapped error = &core.InsufficientStockError{ProductID: 7, DetectedAt: core.DetectedAtValidation}

	var ise *core.InsufficientStockError
	if !errors.As(wrapped, &ise) {
		t.Fatal("errors.As failed to match InsufficientStockError")
	}
	if ise.ProductID != 7 {
		t.Errorf("expected product 7, got %d", ise.ProductID)
	}
}

func TestValidationError_SortedFields(t *testing.T) {
	ve := &core.ValidationError{Fields: map[string]string{
		"quantity": "quantity must be positive",
		"lot":      "lot required for inflow",
	}}
	msg := ve.Error()
	if !strings.Contains(msg, "lot") || !strings.Contains(msg, "quantity") {
		t.Fatalf("message missing fields: %q", msg)
	}
	if strings.Index(msg, "lot") > strings.Index(msg, "quantity") {
		t.Errorf("fields not sorted: %q", msg)
	}
}
