package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// System is a software system a client runs; reference data for filtering.
type System struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Technician performs service appointments.
type Technician struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client is a serviced customer. RegistrationNumber is the company's legal
// registration id and is unique.
type Client struct {
	ID                 int64     `json:"id"`
	CompanyName        string    `json:"company_name"`
	TradeName          string    `json:"trade_name"`
	RegistrationNumber string    `json:"registration_number"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	PostalCode         string    `json:"postal_code"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	ContactName        string    `json:"contact_name"`
	Email              string    `json:"email"`
	Notes              string    `json:"notes"`
	SystemID           *int64    `json:"system_id"`
	SystemName         *string   `json:"system_name,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Appointment statuses. SCHEDULED is the only open state; the transition to
// COMPLETED or CANCELLED is one-way.
const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

// Appointment is a scheduled service visit. ServicePrice is a free
// administrative field; nothing is computed from it.
type Appointment struct {
	ID              int64            `json:"id"`
	ClientID        int64            `json:"client_id"`
	ClientName      string           `json:"client_name,omitempty"`
	TechnicianID    *int64           `json:"technician_id"`
	TechnicianName  *string          `json:"technician_name,omitempty"`
	Description     string           `json:"description"`
	ScheduledDate   time.Time        `json:"scheduled_date"`
	ScheduledTime   string           `json:"scheduled_time"`
	Status          string           `json:"status"`
	ServicePrice    *decimal.Decimal `json:"service_price"`
	TechnicalReport string           `json:"technical_report"`
	ResolvedAt      *time.Time       `json:"resolved_at"`
	AttendedByID    *int64           `json:"attended_by_id"`
	AttendedByName  *string          `json:"attended_by_name,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
