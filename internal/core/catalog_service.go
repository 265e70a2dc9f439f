package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductDeleteOutcome reports what DeleteProduct actually did. A product with
// historical transactions cannot be hard-deleted without orphaning the audit
// trail, so it is deactivated instead.
type ProductDeleteOutcome string

const (
	ProductDeleted     ProductDeleteOutcome = "deleted"
	ProductDeactivated ProductDeleteOutcome = "deactivated"
)

// ProductFilters narrows product listings.
type ProductFilters struct {
	CategoryID int64
	Search     string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// CatalogService manages the reference data the transaction engine reads:
// categories, products, and transaction types. Referential constraints are
// enforced here with pre-checks and descriptive errors rather than surfacing
// raw storage failures.
type CatalogService interface {
	ListCategories(ctx context.Context, search string) ([]Category, error)
	CreateCategory(ctx context.Context, name, description string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*Category, error)
	// DeleteCategory rejects with ErrCategoryHasProducts while any product
	// references the category.
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, filters ProductFilters) ([]Product, int, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, name, description string, categoryID *int64, userID int64) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, name, description string, categoryID *int64, userID int64) (*Product, error)
	// DeleteProduct applies the delete ladder: available stock fails with
	// ErrProductHasStock, historical transactions downgrade the delete to a
	// deactivation, otherwise the row is hard-deleted (items cascade).
	DeleteProduct(ctx context.Context, id int64) (ProductDeleteOutcome, error)

	ListTransactionTypes(ctx context.Context) ([]TransactionType, error)
	CreateTransactionType(ctx context.Context, name, description string, isInflow bool) (*TransactionType, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func (s *catalogService) ListCategories(ctx context.Context, search string) ([]Category, error) {
	query := "SELECT id, name, description FROM categories"
	args := []any{}
	if search != "" {
		query += " WHERE name ILIKE '%' || $1 || '%'"
		args = append(args, search)
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	c := &Category{Name: name, Description: description}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id",
		name, description,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, name, description string) (*Category, error) {
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE categories SET name = $1, description = $2 WHERE id = $3",
		name, description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return &Category{ID: id, Name: name, Description: description}, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	var name string
	err := s.pool.QueryRow(ctx, "SELECT name FROM categories WHERE id = $1", id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch category %d: %w", id, err)
	}

	var linked int
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM products WHERE category_id = $1", id,
	).Scan(&linked); err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if linked > 0 {
		return fmt.Errorf("category %q is referenced by %d product(s): %w", name, linked, ErrCategoryHasProducts)
	}

	if _, err := s.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

const productColumns = `
	p.id, p.name, p.description, p.category_id, c.name, p.responsible_user_id,
	p.is_active, p.created_at, p.updated_at,
	(SELECT count(*) FROM items i WHERE i.product_id = p.id AND i.available) AS stock_total`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.CategoryName,
		&p.ResponsibleUserID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.StockTotal)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, f ProductFilters) ([]Product, int, error) {
	where := "WHERE true"
	args := []any{}
	if f.ActiveOnly {
		where += " AND p.is_active"
	}
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		where += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, f.Search)
		where += fmt.Sprintf(" AND p.name ILIKE '%%' || $%d || '%%'", len(args))
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM products p "+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := "SELECT " + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		` + where + " ORDER BY p.name"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, count, rows.Err()
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, "SELECT "+productColumns+`
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, name, description string, categoryID *int64, userID int64) (*Product, error) {
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, category_id, responsible_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, description, categoryID, userID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, name, description string, categoryID *int64, userID int64) (*Product, error) {
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, category_id = $3, responsible_user_id = $4, updated_at = NOW()
		WHERE id = $5
	`, name, description, categoryID, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) (ProductDeleteOutcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var name string
	err = tx.QueryRow(ctx, "SELECT name FROM products WHERE id = $1 FOR UPDATE", id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	var available int
	if err := tx.QueryRow(ctx,
		"SELECT count(*) FROM items WHERE product_id = $1 AND available", id,
	).Scan(&available); err != nil {
		return "", fmt.Errorf("failed to check product stock: %w", err)
	}
	if available > 0 {
		return "", fmt.Errorf("product %q has %d unit(s) in stock: %w", name, available, ErrProductHasStock)
	}

	var history int
	if err := tx.QueryRow(ctx,
		"SELECT count(*) FROM transactions WHERE product_id = $1", id,
	).Scan(&history); err != nil {
		return "", fmt.Errorf("failed to check product history: %w", err)
	}

	outcome := ProductDeleted
	if history > 0 {
		if _, err := tx.Exec(ctx,
			"UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1", id,
		); err != nil {
			return "", fmt.Errorf("failed to deactivate product %d: %w", id, err)
		}
		outcome = ProductDeactivated
	} else {
		if _, err := tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
			return "", fmt.Errorf("failed to delete product %d: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit product delete: %w", err)
	}
	return outcome, nil
}

func (s *catalogService) ListTransactionTypes(ctx context.Context) ([]TransactionType, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, description, is_inflow FROM transaction_types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction types: %w", err)
	}
	defer rows.Close()

	var types []TransactionType
	for rows.Next() {
		var t TransactionType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsInflow); err != nil {
			return nil, fmt.Errorf("failed to scan transaction type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *catalogService) CreateTransactionType(ctx context.Context, name, description string, isInflow bool) (*TransactionType, error) {
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	t := &TransactionType{Name: name, Description: description, IsInflow: isInflow}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO transaction_types (name, description, is_inflow) VALUES ($1, $2, $3) RETURNING id",
		name, description, isInflow,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction type: %w", err)
	}
	return t, nil
}
