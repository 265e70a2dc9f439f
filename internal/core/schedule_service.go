package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AppointmentInput is the payload for scheduling a service visit.
type AppointmentInput struct {
	ClientID      int64
	TechnicianID  *int64
	Description   string
	ScheduledDate string // YYYY-MM-DD
	ScheduledTime string // HH:MM, free-form
	ServicePrice  *decimal.Decimal
}

// CloseAppointmentInput records the outcome of a visit. Status must be
// COMPLETED or CANCELLED.
type CloseAppointmentInput struct {
	Status          string
	TechnicalReport string
	AttendedByID    *int64
	ServicePrice    *decimal.Decimal
}

// ScheduleService manages the appointment workflow. The state machine is
// one-way: SCHEDULED to COMPLETED or CANCELLED, never back.
type ScheduleService interface {
	Create(ctx context.Context, in AppointmentInput) (*Appointment, error)
	Get(ctx context.Context, id int64) (*Appointment, error)
	// ListOpen returns SCHEDULED appointments ordered by scheduled date.
	ListOpen(ctx context.Context) ([]Appointment, error)
	ListByClient(ctx context.Context, clientID int64) ([]Appointment, error)
	Close(ctx context.Context, id int64, in CloseAppointmentInput) (*Appointment, error)
}

type scheduleService struct {
	pool *pgxpool.Pool
}

// NewScheduleService constructs a ScheduleService backed by PostgreSQL.
func NewScheduleService(pool *pgxpool.Pool) ScheduleService {
	return &scheduleService{pool: pool}
}

const appointmentColumns = `a.id, a.client_id, c.company_name, a.technician_id, t.name,
	a.description, a.scheduled_date, a.scheduled_time, a.status, a.service_price,
	a.technical_report, a.resolved_at, a.attended_by_id, b.name, a.created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	a := &Appointment{}
	err := row.Scan(&a.ID, &a.ClientID, &a.ClientName, &a.TechnicianID, &a.TechnicianName,
		&a.Description, &a.ScheduledDate, &a.ScheduledTime, &a.Status, &a.ServicePrice,
		&a.TechnicalReport, &a.ResolvedAt, &a.AttendedByID, &a.AttendedByName, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *scheduleService) Create(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	ve := map[string]string{}
	if in.ClientID == 0 {
		ve["client_id"] = "client is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		ve["description"] = "description is required"
	}
	var date time.Time
	if in.ScheduledDate == "" {
		ve["scheduled_date"] = "scheduled date is required"
	} else {
		var err error
		if date, err = time.Parse("2006-01-02", in.ScheduledDate); err != nil {
			ve["scheduled_date"] = "scheduled date must be YYYY-MM-DD"
		}
	}
	if len(ve) > 0 {
		return nil, &ValidationError{Fields: ve}
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (client_id, technician_id, description,
			scheduled_date, scheduled_time, status, service_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, in.ClientID, in.TechnicianID, in.Description,
		date, in.ScheduledTime, AppointmentScheduled, in.ServicePrice).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment for client %d: %w", in.ClientID, err)
	}
	return s.Get(ctx, id)
}

func (s *scheduleService) Get(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		JOIN clients c          ON c.id = a.client_id
		LEFT JOIN technicians t ON t.id = a.technician_id
		LEFT JOIN technicians b ON b.id = a.attended_by_id
		WHERE a.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch appointment %d: %w", id, err)
	}
	return a, nil
}

func (s *scheduleService) ListOpen(ctx context.Context) ([]Appointment, error) {
	return s.list(ctx, "a.status = $1", AppointmentScheduled)
}

func (s *scheduleService) ListByClient(ctx context.Context, clientID int64) ([]Appointment, error) {
	return s.list(ctx, "a.client_id = $1", clientID)
}

func (s *scheduleService) list(ctx context.Context, cond string, arg any) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		JOIN clients c          ON c.id = a.client_id
		LEFT JOIN technicians t ON t.id = a.technician_id
		LEFT JOIN technicians b ON b.id = a.attended_by_id
		WHERE `+cond+`
		ORDER BY a.scheduled_date, a.scheduled_time, a.id
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

func (s *scheduleService) Close(ctx context.Context, id int64, in CloseAppointmentInput) (*Appointment, error) {
	if in.Status != AppointmentCompleted && in.Status != AppointmentCancelled {
		return nil, fieldError("status", "status must be COMPLETED or CANCELLED")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM appointments WHERE id = $1 FOR UPDATE", id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock appointment %d: %w", id, err)
	}
	if status != AppointmentScheduled {
		return nil, fmt.Errorf("appointment %d is %s: %w", id, status, ErrAppointmentClosed)
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET status = $1, technical_report = $2, attended_by_id = $3,
		    service_price = COALESCE($4, service_price), resolved_at = now()
		WHERE id = $5
	`, in.Status, in.TechnicalReport, in.AttendedByID, in.ServicePrice, id)
	if err != nil {
		return nil, fmt.Errorf("failed to close appointment %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit appointment close: %w", err)
	}
	return s.Get(ctx, id)
}
