package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitLedger maintains the per-product set of items and exposes the derived
// stock count. Stock is never cached: StockTotal is always a live count so it
// cannot go stale against item state.
//
// The *Tx operations work within a caller-provided transaction. The
// transaction engine uses them to keep the transaction row and the item
// mutations atomic: they land together or not at all.
type UnitLedger struct {
	pool *pgxpool.Pool
}

func NewUnitLedger(pool *pgxpool.Pool) *UnitLedger {
	return &UnitLedger{pool: pool}
}

// StockTotal returns the number of available items for a product.
func (l *UnitLedger) StockTotal(ctx context.Context, productID int64) (int, error) {
	var total int
	err := l.pool.QueryRow(ctx,
		"SELECT count(*) FROM items WHERE product_id = $1 AND available",
		productID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count stock for product %d: %w", productID, err)
	}
	return total, nil
}

// ItemsByLot returns the available stock of a product broken down by lot,
// oldest lot first. Read-only; used by product detail views.
func (l *UnitLedger) ItemsByLot(ctx context.Context, productID int64) ([]LotSummary, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT lot, count(*), min(created_at)
		FROM items
		WHERE product_id = $1 AND available
		GROUP BY lot
		ORDER BY min(created_at), lot
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots for product %d: %w", productID, err)
	}
	defer rows.Close()

	var lots []LotSummary
	for rows.Next() {
		var ls LotSummary
		if err := rows.Scan(&ls.Lot, &ls.Quantity, &ls.OldestItemAt); err != nil {
			return nil, fmt.Errorf("failed to scan lot summary: %w", err)
		}
		lots = append(lots, ls)
	}
	return lots, rows.Err()
}

// OldestAvailableTx selects up to limit available items for a product, oldest
// first, and locks them for the duration of tx. Ordering is (created_at, id):
// items materialized by one inflow share a creation timestamp, so the id
// tie-break makes insertion order explicit rather than relying on incidental
// storage order.
//
// The FOR UPDATE lock is what makes concurrent outflows safe under read
// committed: a second transaction selecting the same rows blocks here, and on
// wake-up re-evaluates `available` and drops rows the winner consumed. The
// caller sees a short result and must abort (see TransactionService.Create).
func (l *UnitLedger) OldestAvailableTx(ctx context.Context, tx pgx.Tx, productID int64, limit int) ([]int64, error) {
	rows, err := tx.Query(ctx, `
		SELECT id
		FROM items
		WHERE product_id = $1 AND available
		ORDER BY created_at, id
		LIMIT $2
		FOR UPDATE
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to lock oldest items for product %d: %w", productID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MaterializeTx creates count discrete item rows for one inbound delivery
// batch, all tagged with the same lot and creating transaction and all
// available. Units are never merged: count rows are always created.
func (l *UnitLedger) MaterializeTx(ctx context.Context, tx pgx.Tx, productID, transactionID int64, lot string, count int) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO items (product_id, transaction_id, lot, available)
		SELECT $1, $2, $3, true
		FROM generate_series(1, $4)
	`, productID, transactionID, lot, count)
	if err != nil {
		return fmt.Errorf("failed to materialize %d items for product %d: %w", count, productID, err)
	}
	if int(tag.RowsAffected()) != count {
		return fmt.Errorf("materialized %d items for product %d, expected %d", tag.RowsAffected(), productID, count)
	}
	return nil
}

// ConsumeTx flips the given items to unavailable and records the consuming
// transaction. The availability flip is one-way and terminal; rows must have
// been locked by OldestAvailableTx in the same tx.
func (l *UnitLedger) ConsumeTx(ctx context.Context, tx pgx.Tx, itemIDs []int64, transactionID int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE items
		SET available = false, transaction_id = $2
		WHERE id = ANY($1) AND available
	`, itemIDs, transactionID)
	if err != nil {
		return fmt.Errorf("failed to consume items: %w", err)
	}
	if int(tag.RowsAffected()) != len(itemIDs) {
		return fmt.Errorf("consumed %d items, expected %d", tag.RowsAffected(), len(itemIDs))
	}
	return nil
}

// LotSummary is a read view of a product's available stock grouped by lot.
type LotSummary struct {
	Lot          string    `json:"lot"`
	Quantity     int       `json:"quantity"`
	OldestItemAt time.Time `json:"oldest_item_at"`
}
