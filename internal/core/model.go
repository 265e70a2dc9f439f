package core

import "time"

// Category groups products. Pure reference data: a category cannot be deleted
// while any product references it (checked in CatalogService, not left to the
// storage layer).
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TransactionType is reference data whose IsInflow flag drives the transaction
// engine's branching: true adds stock, false removes it.
type TransactionType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsInflow    bool   `json:"is_inflow"`
}

// Product is a catalogue entry. StockTotal is never stored: it is always the
// live count of available items and is populated by queries at read time.
type Product struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	CategoryID        *int64    `json:"category_id"`
	CategoryName      *string   `json:"category_name,omitempty"`
	ResponsibleUserID *int64    `json:"responsible_user_id"`
	IsActive          bool      `json:"is_active"`
	StockTotal        int       `json:"stock_total"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Transaction records one stock movement. Immutable once created.
// Quantity is always positive; IsInflow (joined from the type) gives the
// direction. The invariant the whole system hangs on: an inflow transaction
// creates exactly Quantity items, an outflow flips exactly Quantity items.
type Transaction struct {
	ID          int64     `json:"id"`
	TypeID      int64     `json:"type_id"`
	TypeName    string    `json:"type_name"`
	IsInflow    bool      `json:"is_inflow"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item is a single trackable physical unit. Available transitions exactly once,
// true → false, when an outflow consumes the item; TransactionID then points at
// the consuming transaction instead of the creating one.
type Item struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	TransactionID int64     `json:"transaction_id"`
	Lot           string    `json:"lot"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
}
