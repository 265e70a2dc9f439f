package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionInput is a stock transaction request. UserID is the acting user,
// passed explicitly by the caller; the engine never reads ambient session
// state.
type TransactionInput struct {
	TypeID    int64
	ProductID int64
	Quantity  int
	Lot       string
	UserID    int64
	Notes     string
}

// TransactionFilters narrows and pages transaction listings.
type TransactionFilters struct {
	ProductID int64
	TypeID    int64
	Page      int
	PageSize  int
}

// TransactionService validates stock transaction requests against current
// ledger state and applies them atomically. Create is the sole write entry
// point for stock movements: nothing else may mutate item or transaction rows.
type TransactionService interface {
	// Create validates the request and, if valid, applies it as one atomic
	// unit: the transaction row plus the item materialization (inflow) or
	// consumption (outflow) commit together or not at all.
	//
	// Failure modes: *ValidationError for malformed input and missing lot,
	// *InsufficientStockError for stock shortfalls: DetectedAtValidation when
	// the pre-check catches it (nothing persisted), DetectedAtApply when a
	// concurrent outflow raced past the pre-check (everything rolled back,
	// resubmit required).
	Create(ctx context.Context, input TransactionInput) (*Transaction, error)
	List(ctx context.Context, filters TransactionFilters) ([]Transaction, int, error)
	Get(ctx context.Context, id int64) (*Transaction, error)
}

type transactionService struct {
	pool   *pgxpool.Pool
	ledger *UnitLedger
}

func NewTransactionService(pool *pgxpool.Pool, ledger *UnitLedger) TransactionService {
	return &transactionService{pool: pool, ledger: ledger}
}

func (s *transactionService) Create(ctx context.Context, in TransactionInput) (*Transaction, error) {
	// Malformed input is rejected before any storage interaction.
	if in.Quantity < 1 {
		return nil, fieldError("quantity", "quantity must be a positive integer")
	}

	var tt TransactionType
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, is_inflow FROM transaction_types WHERE id = $1", in.TypeID,
	).Scan(&tt.ID, &tt.Name, &tt.IsInflow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fieldError("type_id", "unknown transaction type")
		}
		return nil, fmt.Errorf("failed to resolve transaction type: %w", err)
	}

	var productName string
	err = s.pool.QueryRow(ctx,
		"SELECT name FROM products WHERE id = $1", in.ProductID,
	).Scan(&productName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fieldError("product_id", "unknown product")
		}
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	if tt.IsInflow {
		if strings.TrimSpace(in.Lot) == "" {
			return nil, fieldError("lot", "lot required for inflow")
		}
	} else {
		// Pre-check. Not relied on for correctness: stock can change between
		// here and the apply step, so the in-transaction recount below is the
		// actual safety net.
		available, err := s.ledger.StockTotal(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if available < in.Quantity {
			return nil, &InsufficientStockError{
				ProductID:  in.ProductID,
				Available:  available,
				Required:   in.Quantity,
				DetectedAt: DetectedAtValidation,
			}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &Transaction{
		TypeID:      tt.ID,
		TypeName:    tt.Name,
		IsInflow:    tt.IsInflow,
		UserID:      in.UserID,
		ProductID:   in.ProductID,
		ProductName: productName,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (type_id, user_id, product_id, quantity, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, in.TypeID, in.UserID, in.ProductID, in.Quantity, in.Notes).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if tt.IsInflow {
		if err := s.ledger.MaterializeTx(ctx, tx, in.ProductID, result.ID, in.Lot, in.Quantity); err != nil {
			return nil, err
		}
	} else {
		itemIDs, err := s.ledger.OldestAvailableTx(ctx, tx, in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}
		if len(itemIDs) < in.Quantity {
			// A concurrent outflow consumed stock between the pre-check and
			// here. The deferred rollback discards the transaction row too:
			// no partial state is ever persisted.
			return nil, &InsufficientStockError{
				ProductID:  in.ProductID,
				Available:  len(itemIDs),
				Required:   in.Quantity,
				DetectedAt: DetectedAtApply,
			}
		}
		if err := s.ledger.ConsumeTx(ctx, tx, itemIDs, result.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock transaction: %w", err)
	}
	return result, nil
}

func (s *transactionService) List(ctx context.Context, f TransactionFilters) ([]Transaction, int, error) {
	where := "WHERE true"
	args := []any{}
	if f.ProductID != 0 {
		args = append(args, f.ProductID)
		where += fmt.Sprintf(" AND t.product_id = $%d", len(args))
	}
	if f.TypeID != 0 {
		args = append(args, f.TypeID)
		where += fmt.Sprintf(" AND t.type_id = $%d", len(args))
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM transactions t "+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT t.id, t.type_id, tt.name, tt.is_inflow, t.user_id, u.username,
		       t.product_id, p.name, t.quantity, t.notes, t.created_at
		FROM transactions t
		JOIN transaction_types tt ON tt.id = t.type_id
		JOIN users u              ON u.id = t.user_id
		JOIN products p           ON p.id = t.product_id
		` + where + `
		ORDER BY t.created_at DESC, t.id DESC`
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var list []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.TypeID, &t.TypeName, &t.IsInflow, &t.UserID, &t.Username,
			&t.ProductID, &t.ProductName, &t.Quantity, &t.Notes, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, count, rows.Err()
}

func (s *transactionService) Get(ctx context.Context, id int64) (*Transaction, error) {
	var t Transaction
	err := s.pool.QueryRow(ctx, `
		SELECT t.id, t.type_id, tt.name, tt.is_inflow, t.user_id, u.username,
		       t.product_id, p.name, t.quantity, t.notes, t.created_at
		FROM transactions t
		JOIN transaction_types tt ON tt.id = t.type_id
		JOIN users u              ON u.id = t.user_id
		JOIN products p           ON p.id = t.product_id
		WHERE t.id = $1
	`, id).Scan(&t.ID, &t.TypeID, &t.TypeName, &t.IsInflow, &t.UserID, &t.Username,
		&t.ProductID, &t.ProductName, &t.Quantity, &t.Notes, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction %d: %w", id, err)
	}
	return &t, nil
}
