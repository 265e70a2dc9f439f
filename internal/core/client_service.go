package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientInput is the payload for creating or updating a client record.
type ClientInput struct {
	CompanyName        string
	TradeName          string
	RegistrationNumber string
	Address            string
	Phone              string
	PostalCode         string
	City               string
	State              string
	ContactName        string
	Email              string
	Notes              string
	SystemID           *int64
}

// ClientFilters narrows client listings.
type ClientFilters struct {
	Search   string
	SystemID *int64
	Limit    int
	Offset   int
}

// ClientDetail bundles a client with its full appointment history, newest
// first.
type ClientDetail struct {
	Client       Client        `json:"client"`
	Appointments []Appointment `json:"appointments"`
}

// ClientService manages clients and the reference data they point at
// (systems and technicians).
type ClientService interface {
	ListSystems(ctx context.Context) ([]System, error)
	CreateSystem(ctx context.Context, name, description string) (*System, error)
	UpdateSystem(ctx context.Context, id int64, name, description string) (*System, error)
	DeleteSystem(ctx context.Context, id int64) error

	ListTechnicians(ctx context.Context) ([]Technician, error)
	CreateTechnician(ctx context.Context, name string) (*Technician, error)
	DeleteTechnician(ctx context.Context, id int64) error

	ListClients(ctx context.Context, f ClientFilters) ([]Client, int, error)
	GetClient(ctx context.Context, id int64) (*ClientDetail, error)
	CreateClient(ctx context.Context, in ClientInput) (*Client, error)
	UpdateClient(ctx context.Context, id int64, in ClientInput) (*Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

type clientService struct {
	pool *pgxpool.Pool
}

// NewClientService constructs a ClientService backed by PostgreSQL.
func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

func (s *clientService) ListSystems(ctx context.Context) ([]System, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, description FROM systems ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	defer rows.Close()

	var systems []System
	for rows.Next() {
		var sys System
		if err := rows.Scan(&sys.ID, &sys.Name, &sys.Description); err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, sys)
	}
	return systems, rows.Err()
}

func (s *clientService) CreateSystem(ctx context.Context, name, description string) (*System, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	sys := &System{Name: name, Description: description}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO systems (name, description) VALUES ($1, $2) RETURNING id",
		name, description).Scan(&sys.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create system %q: %w", name, err)
	}
	return sys, nil
}

func (s *clientService) UpdateSystem(ctx context.Context, id int64, name, description string) (*System, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE systems SET name = $1, description = $2 WHERE id = $3",
		name, description, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update system %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("system %d: %w", id, ErrNotFound)
	}
	return &System{ID: id, Name: name, Description: description}, nil
}

func (s *clientService) DeleteSystem(ctx context.Context, id int64) error {
	// Clients referencing the system keep their rows; the FK sets system_id
	// to NULL.
	tag, err := s.pool.Exec(ctx, "DELETE FROM systems WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete system %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("system %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *clientService) ListTechnicians(ctx context.Context) ([]Technician, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name FROM technicians ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query technicians: %w", err)
	}
	defer rows.Close()

	var techs []Technician
	for rows.Next() {
		var t Technician
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

func (s *clientService) CreateTechnician(ctx context.Context, name string) (*Technician, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError("name", "name is required")
	}
	t := &Technician{Name: name}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO technicians (name) VALUES ($1) RETURNING id", name).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create technician %q: %w", name, err)
	}
	return t, nil
}

func (s *clientService) DeleteTechnician(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM technicians WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete technician %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("technician %d: %w", id, ErrNotFound)
	}
	return nil
}

const clientColumns = `c.id, c.company_name, c.trade_name, c.registration_number,
	c.address, c.phone, c.postal_code, c.city, c.state, c.contact_name,
	c.email, c.notes, c.system_id, s.name, c.created_at`

func scanClient(row pgx.Row) (*Client, error) {
	c := &Client{}
	err := row.Scan(&c.ID, &c.CompanyName, &c.TradeName, &c.RegistrationNumber,
		&c.Address, &c.Phone, &c.PostalCode, &c.City, &c.State, &c.ContactName,
		&c.Email, &c.Notes, &c.SystemID, &c.SystemName, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) ListClients(ctx context.Context, f ClientFilters) ([]Client, int, error) {
	where := []string{}
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := fmt.Sprintf("$%d", len(args))
		where = append(where, fmt.Sprintf(
			"(c.company_name ILIKE %s OR c.trade_name ILIKE %s OR c.registration_number ILIKE %s)", n, n, n))
	}
	if f.SystemID != nil {
		args = append(args, *f.SystemID)
		where = append(where, fmt.Sprintf("c.system_id = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM clients c"+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	query := "SELECT " + clientColumns +
		" FROM clients c LEFT JOIN systems s ON s.id = c.system_id" + cond +
		" ORDER BY c.company_name"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}

func (s *clientService) GetClient(ctx context.Context, id int64) (*ClientDetail, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+" FROM clients c LEFT JOIN systems s ON s.id = c.system_id WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch client %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		JOIN clients c       ON c.id = a.client_id
		LEFT JOIN technicians t ON t.id = a.technician_id
		LEFT JOIN technicians b ON b.id = a.attended_by_id
		WHERE a.client_id = $1
		ORDER BY a.scheduled_date DESC, a.id DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query client appointments: %w", err)
	}
	defer rows.Close()

	detail := &ClientDetail{Client: *c}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		detail.Appointments = append(detail.Appointments, *a)
	}
	return detail, rows.Err()
}

func (s *clientService) validateClient(in ClientInput) error {
	ve := map[string]string{}
	if strings.TrimSpace(in.CompanyName) == "" {
		ve["company_name"] = "company name is required"
	}
	if strings.TrimSpace(in.RegistrationNumber) == "" {
		ve["registration_number"] = "registration number is required"
	}
	if len(ve) > 0 {
		return &ValidationError{Fields: ve}
	}
	return nil
}

func (s *clientService) CreateClient(ctx context.Context, in ClientInput) (*Client, error) {
	if err := s.validateClient(in); err != nil {
		return nil, err
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO clients (company_name, trade_name, registration_number, address,
			phone, postal_code, city, state, contact_name, email, notes, system_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, in.CompanyName, in.TradeName, in.RegistrationNumber, in.Address,
		in.Phone, in.PostalCode, in.City, in.State, in.ContactName,
		in.Email, in.Notes, in.SystemID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create client %q: %w", in.CompanyName, err)
	}
	detail, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &detail.Client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id int64, in ClientInput) (*Client, error) {
	if err := s.validateClient(in); err != nil {
		return nil, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE clients SET company_name = $1, trade_name = $2, registration_number = $3,
			address = $4, phone = $5, postal_code = $6, city = $7, state = $8,
			contact_name = $9, email = $10, notes = $11, system_id = $12
		WHERE id = $13
	`, in.CompanyName, in.TradeName, in.RegistrationNumber, in.Address,
		in.Phone, in.PostalCode, in.City, in.State, in.ContactName,
		in.Email, in.Notes, in.SystemID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update client %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	detail, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &detail.Client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id int64) error {
	// Appointments cascade with the client.
	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete client %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	return nil
}
