package app

import (
	"context"
	"time"

	"stocktrack/internal/core"
	"stocktrack/internal/eventbus"
	"stocktrack/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type appService struct {
	ledger       *core.UnitLedger
	transactions core.TransactionService
	catalog      core.CatalogService
	reporting    core.ReportingService
	users        core.UserService
	clients      core.ClientService
	schedule     core.ScheduleService
	publisher    *eventbus.Publisher
}

// NewAppService constructs an appService that satisfies ApplicationService.
// publisher may be nil when no broker is configured.
func NewAppService(
	ledger *core.UnitLedger,
	transactions core.TransactionService,
	catalog core.CatalogService,
	reporting core.ReportingService,
	users core.UserService,
	clients core.ClientService,
	schedule core.ScheduleService,
	publisher *eventbus.Publisher,
) ApplicationService {
	return &appService{
		ledger:       ledger,
		transactions: transactions,
		catalog:      catalog,
		reporting:    reporting,
		users:        users,
		clients:      clients,
		schedule:     schedule,
		publisher:    publisher,
	}
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*core.User, error) {
	return s.users.Authenticate(ctx, username, password)
}

func (s *appService) GetUser(ctx context.Context, id int64) (*core.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *appService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.users.List(ctx)
}

func (s *appService) RegisterUser(ctx context.Context, in core.NewUserInput) (*core.User, error) {
	return s.users.Create(ctx, in)
}

func (s *appService) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	return s.users.ChangePassword(ctx, userID, newPassword)
}

func (s *appService) SetUserRole(ctx context.Context, actingUserID, targetID int64, role string) error {
	return s.users.SetRole(ctx, actingUserID, targetID, role)
}

func (s *appService) SetUserActive(ctx context.Context, actingUserID, targetID int64, active bool) error {
	return s.users.SetActive(ctx, actingUserID, targetID, active)
}

func (s *appService) DeleteUser(ctx context.Context, actingUserID, targetID int64) error {
	return s.users.Delete(ctx, actingUserID, targetID)
}

func (s *appService) ListCategories(ctx context.Context, search string) ([]core.Category, error) {
	return s.catalog.ListCategories(ctx, search)
}

func (s *appService) CreateCategory(ctx context.Context, name, description string) (*core.Category, error) {
	return s.catalog.CreateCategory(ctx, name, description)
}

func (s *appService) UpdateCategory(ctx context.Context, id int64, name, description string) (*core.Category, error) {
	return s.catalog.UpdateCategory(ctx, id, name, description)
}

func (s *appService) DeleteCategory(ctx context.Context, id int64) error {
	return s.catalog.DeleteCategory(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context, filters core.ProductFilters) ([]core.Product, int, error) {
	return s.catalog.ListProducts(ctx, filters)
}

func (s *appService) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	lots, err := s.ledger.ItemsByLot(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: *p, Lots: lots}, nil
}

func (s *appService) CreateProduct(ctx context.Context, name, description string, categoryID *int64, userID int64) (*core.Product, error) {
	return s.catalog.CreateProduct(ctx, name, description, categoryID, userID)
}

func (s *appService) UpdateProduct(ctx context.Context, id int64, name, description string, categoryID *int64, userID int64) (*core.Product, error) {
	return s.catalog.UpdateProduct(ctx, id, name, description, categoryID, userID)
}

func (s *appService) DeleteProduct(ctx context.Context, id int64) (core.ProductDeleteOutcome, error) {
	return s.catalog.DeleteProduct(ctx, id)
}

func (s *appService) ListTransactionTypes(ctx context.Context) ([]core.TransactionType, error) {
	return s.catalog.ListTransactionTypes(ctx)
}

func (s *appService) CreateTransactionType(ctx context.Context, name, description string, isInflow bool) (*core.TransactionType, error) {
	return s.catalog.CreateTransactionType(ctx, name, description, isInflow)
}

func (s *appService) RegisterTransaction(ctx context.Context, in core.TransactionInput) (*core.Transaction, error) {
	tx, err := s.transactions.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	// Best-effort: the movement is already committed, so a publish failure is
	// logged and never surfaced to the caller. StockAfter is a post-commit
	// count and may already include later movements; consumers treat it as
	// informational.
	stockAfter, err := s.ledger.StockTotal(ctx, tx.ProductID)
	if err != nil {
		log.Warn().Err(err).Int64("transaction_id", tx.ID).Msg("Failed to count stock for event")
	}
	event := eventbus.StockMovementEvent{
		EventID:       uuid.NewString(),
		TransactionID: tx.ID,
		ProductID:     tx.ProductID,
		ProductName:   tx.ProductName,
		IsInflow:      tx.IsInflow,
		Quantity:      tx.Quantity,
		Lot:           in.Lot,
		UserID:        tx.UserID,
		StockAfter:    stockAfter,
		OccurredAt:    tx.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Int64("transaction_id", tx.ID).Msg("Failed to publish stock movement event")
	}
	return tx, nil
}

func (s *appService) ListTransactions(ctx context.Context, filters core.TransactionFilters) ([]core.Transaction, int, error) {
	return s.transactions.List(ctx, filters)
}

func (s *appService) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	return s.transactions.Get(ctx, id)
}

func (s *appService) MonthlyReport(ctx context.Context, year int, month time.Month) (*core.MonthlyReport, error) {
	return s.reporting.MonthlyReport(ctx, year, month)
}

func (s *appService) MonthlyReportPDF(ctx context.Context, year int, month time.Month) ([]byte, error) {
	rep, err := s.reporting.MonthlyReport(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return report.RenderMonthlyPDF(rep)
}

func (s *appService) ListSystems(ctx context.Context) ([]core.System, error) {
	return s.clients.ListSystems(ctx)
}

func (s *appService) CreateSystem(ctx context.Context, name, description string) (*core.System, error) {
	return s.clients.CreateSystem(ctx, name, description)
}

func (s *appService) UpdateSystem(ctx context.Context, id int64, name, description string) (*core.System, error) {
	return s.clients.UpdateSystem(ctx, id, name, description)
}

func (s *appService) DeleteSystem(ctx context.Context, id int64) error {
	return s.clients.DeleteSystem(ctx, id)
}

func (s *appService) ListTechnicians(ctx context.Context) ([]core.Technician, error) {
	return s.clients.ListTechnicians(ctx)
}

func (s *appService) CreateTechnician(ctx context.Context, name string) (*core.Technician, error) {
	return s.clients.CreateTechnician(ctx, name)
}

func (s *appService) DeleteTechnician(ctx context.Context, id int64) error {
	return s.clients.DeleteTechnician(ctx, id)
}

func (s *appService) ListClients(ctx context.Context, filters core.ClientFilters) ([]core.Client, int, error) {
	return s.clients.ListClients(ctx, filters)
}

func (s *appService) GetClient(ctx context.Context, id int64) (*core.ClientDetail, error) {
	return s.clients.GetClient(ctx, id)
}

func (s *appService) CreateClient(ctx context.Context, in core.ClientInput) (*core.Client, error) {
	return s.clients.CreateClient(ctx, in)
}

func (s *appService) UpdateClient(ctx context.Context, id int64, in core.ClientInput) (*core.Client, error) {
	return s.clients.UpdateClient(ctx, id, in)
}

func (s *appService) DeleteClient(ctx context.Context, id int64) error {
	return s.clients.DeleteClient(ctx, id)
}

func (s *appService) CreateAppointment(ctx context.Context, in core.AppointmentInput) (*core.Appointment, error) {
	return s.schedule.Create(ctx, in)
}

func (s *appService) GetAppointment(ctx context.Context, id int64) (*core.Appointment, error) {
	return s.schedule.Get(ctx, id)
}

func (s *appService) ListOpenAppointments(ctx context.Context) ([]core.Appointment, error) {
	return s.schedule.ListOpen(ctx)
}

func (s *appService) CloseAppointment(ctx context.Context, id int64, in core.CloseAppointmentInput) (*core.Appointment, error) {
	return s.schedule.Close(ctx, id, in)
}
