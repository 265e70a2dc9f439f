package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrCategoryHasProducts rejects deletion of a category that products still
// reference. Checked before any delete is attempted.
var ErrCategoryHasProducts = errors.New("category has linked products and cannot be deleted")

// ErrProductHasStock rejects deletion of a product with available items.
var ErrProductHasStock = errors.New("product has available stock and cannot be deleted")

// ErrUserProtected rejects deletion of a user that transactions reference, and
// self-targeting admin actions.
var ErrUserProtected = errors.New("user cannot be modified or deleted")

// ErrAppointmentClosed rejects a second close of an appointment: the
// SCHEDULED → COMPLETED/CANCELLED transition is one-way.
var ErrAppointmentClosed = errors.New("appointment is already closed")

// ValidationError carries field-scoped messages for malformed or
// business-rule-violating input. It is produced before any storage mutation.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// DetectedAt tags where an insufficient-stock condition was caught.
type DetectedAt string

const (
	// DetectedAtValidation: the pre-check saw too little stock. No storage
	// mutation happened; the caller can correct the quantity and resubmit.
	DetectedAtValidation DetectedAt = "validation"
	// DetectedAtApply: the in-transaction recount came up short after the
	// pre-check passed (a concurrent outflow won the race). The whole
	// operation was rolled back and must be retried from scratch.
	DetectedAtApply DetectedAt = "apply"
)

// InsufficientStockError is the single error kind for both the validation
// pre-check and the apply-time recount; DetectedAt preserves the distinction.
type InsufficientStockError struct {
	ProductID  int64
	Available  int
	Required   int
	DetectedAt DetectedAt
}

func (e *InsufficientStockError) Error() string {
	if e.DetectedAt == DetectedAtApply {
		return "insufficient stock to complete transaction"
	}
	return fmt.Sprintf("insufficient stock: available=%d, required=%d", e.Available, e.Required)
}
