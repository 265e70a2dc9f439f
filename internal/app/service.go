package app

import (
	"context"
	"time"

	"stocktrack/internal/core"
)

// ApplicationService is the single interface UI adapters call. It decouples
// presentation from business logic: implementations contain no display logic
// of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns the user on success.
	AuthenticateUser(ctx context.Context, username, password string) (*core.User, error)
	GetUser(ctx context.Context, id int64) (*core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	RegisterUser(ctx context.Context, in core.NewUserInput) (*core.User, error)
	ChangePassword(ctx context.Context, userID int64, newPassword string) error
	SetUserRole(ctx context.Context, actingUserID, targetID int64, role string) error
	SetUserActive(ctx context.Context, actingUserID, targetID int64, active bool) error
	DeleteUser(ctx context.Context, actingUserID, targetID int64) error

	ListCategories(ctx context.Context, search string) ([]core.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*core.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, filters core.ProductFilters) ([]core.Product, int, error)
	// GetProduct returns the product with its per-lot stock breakdown.
	GetProduct(ctx context.Context, id int64) (*ProductDetail, error)
	CreateProduct(ctx context.Context, name, description string, categoryID *int64, userID int64) (*core.Product, error)
	UpdateProduct(ctx context.Context, id int64, name, description string, categoryID *int64, userID int64) (*core.Product, error)
	DeleteProduct(ctx context.Context, id int64) (core.ProductDeleteOutcome, error)

	ListTransactionTypes(ctx context.Context) ([]core.TransactionType, error)
	CreateTransactionType(ctx context.Context, name, description string, isInflow bool) (*core.TransactionType, error)

	// RegisterTransaction validates and applies a stock movement, then
	// publishes a stock.movement event best-effort after commit.
	RegisterTransaction(ctx context.Context, in core.TransactionInput) (*core.Transaction, error)
	ListTransactions(ctx context.Context, filters core.TransactionFilters) ([]core.Transaction, int, error)
	GetTransaction(ctx context.Context, id int64) (*core.Transaction, error)

	MonthlyReport(ctx context.Context, year int, month time.Month) (*core.MonthlyReport, error)
	// MonthlyReportPDF renders the same report as a PDF document.
	MonthlyReportPDF(ctx context.Context, year int, month time.Month) ([]byte, error)

	ListSystems(ctx context.Context) ([]core.System, error)
	CreateSystem(ctx context.Context, name, description string) (*core.System, error)
	UpdateSystem(ctx context.Context, id int64, name, description string) (*core.System, error)
	DeleteSystem(ctx context.Context, id int64) error

	ListTechnicians(ctx context.Context) ([]core.Technician, error)
	CreateTechnician(ctx context.Context, name string) (*core.Technician, error)
	DeleteTechnician(ctx context.Context, id int64) error

	ListClients(ctx context.Context, filters core.ClientFilters) ([]core.Client, int, error)
	GetClient(ctx context.Context, id int64) (*core.ClientDetail, error)
	CreateClient(ctx context.Context, in core.ClientInput) (*core.Client, error)
	UpdateClient(ctx context.Context, id int64, in core.ClientInput) (*core.Client, error)
	DeleteClient(ctx context.Context, id int64) error

	CreateAppointment(ctx context.Context, in core.AppointmentInput) (*core.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*core.Appointment, error)
	ListOpenAppointments(ctx context.Context) ([]core.Appointment, error)
	CloseAppointment(ctx context.Context, id int64, in core.CloseAppointmentInput) (*core.Appointment, error)
}

// ProductDetail is a product plus its available stock broken down by lot.
type ProductDetail struct {
	Product core.Product      `json:"product"`
	Lots    []core.LotSummary `json:"lots"`
}
