package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductFlow is an aggregated quantity for one product within a report
// period, on one side (inflow or outflow) of the ledger.
type ProductFlow struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// MonthlyReport aggregates one calendar month of stock transactions:
// the full listing plus per-product sums split by direction. Unit counts
// only, no monetary valuation.
type MonthlyReport struct {
	Year         int           `json:"year"`
	Month        time.Month    `json:"month"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Transactions []Transaction `json:"transactions"`
	Inflows      []ProductFlow `json:"inflows"`
	Outflows     []ProductFlow `json:"outflows"`
	TotalInflow  int           `json:"total_inflow"`
	TotalOutflow int           `json:"total_outflow"`
}

// ReportingService is the read-only adapter over transaction history. It has
// no write path into the ledger.
type ReportingService interface {
	MonthlyReport(ctx context.Context, year int, month time.Month) (*MonthlyReport, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) MonthlyReport(ctx context.Context, year int, month time.Month) (*MonthlyReport, error) {
	if month < time.January || month > time.December {
		return nil, fieldError("month", "month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return nil, fieldError("year", "year out of range")
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	report := &MonthlyReport{
		Year:        year,
		Month:       month,
		GeneratedAt: time.Now(),
	}

	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.type_id, tt.name, tt.is_inflow, t.user_id, u.username,
		       t.product_id, p.name, t.quantity, t.notes, t.created_at
		FROM transactions t
		JOIN transaction_types tt ON tt.id = t.type_id
		JOIN users u              ON u.id = t.user_id
		JOIN products p           ON p.id = t.product_id
		WHERE t.created_at >= $1 AND t.created_at < $2
		ORDER BY t.created_at, t.id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query report transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.TypeID, &t.TypeName, &t.IsInflow, &t.UserID, &t.Username,
			&t.ProductID, &t.ProductName, &t.Quantity, &t.Notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report transaction: %w", err)
		}
		report.Transactions = append(report.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report transactions: %w", err)
	}

	for _, inflow := range []bool{true, false} {
		flows, total, err := s.aggregateFlows(ctx, start, end, inflow)
		if err != nil {
			return nil, err
		}
		if inflow {
			report.Inflows, report.TotalInflow = flows, total
		} else {
			report.Outflows, report.TotalOutflow = flows, total
		}
	}
	return report, nil
}

func (s *reportingService) aggregateFlows(ctx context.Context, start, end time.Time, inflow bool) ([]ProductFlow, int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.product_id, p.name, SUM(t.quantity)::int
		FROM transactions t
		JOIN transaction_types tt ON tt.id = t.type_id
		JOIN products p           ON p.id = t.product_id
		WHERE tt.is_inflow = $1 AND t.created_at >= $2 AND t.created_at < $3
		GROUP BY t.product_id, p.name
		ORDER BY SUM(t.quantity) DESC, p.name
	`, inflow, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate flows: %w", err)
	}
	defer rows.Close()

	var flows []ProductFlow
	total := 0
	for rows.Next() {
		var f ProductFlow
		if err := rows.Scan(&f.ProductID, &f.ProductName, &f.Quantity); err != nil {
			return nil, 0, fmt.Errorf("failed to scan flow aggregate: %w", err)
		}
		flows = append(flows, f)
		total += f.Quantity
	}
	return flows, total, rows.Err()
}
