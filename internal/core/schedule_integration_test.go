package core_test

import (
	"context"
	"errors"
	"testing"

	"stocktrack/internal/core"

	"github.com/shopspring/decimal"
)

func seedClient(t *testing.T, clients core.ClientService) *core.Client {
	t.Helper()
	c, err := clients.CreateClient(context.Background(), core.ClientInput{
		CompanyName:        "Mercado Central Ltda",
		TradeName:          "Mercado Central",
		RegistrationNumber: "12.345.678/0001-90",
		City:               "Campinas",
		State:              "SP",
	})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return c
}

func TestClient_CRUDAndSearch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	clients := core.NewClientService(pool)
	ctx := context.Background()

	sys, err := clients.CreateSystem(ctx, "RetailPOS", "point of sale")
	if err != nil {
		t.Fatalf("CreateSystem failed: %v", err)
	}

	c := seedClient(t, clients)
	updated, err := clients.UpdateClient(ctx, c.ID, core.ClientInput{
		CompanyName:        c.CompanyName,
		TradeName:          c.TradeName,
		RegistrationNumber: c.RegistrationNumber,
		SystemID:           &sys.ID,
	})
	if err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	if updated.SystemName == nil || *updated.SystemName != "RetailPOS" {
		t.Errorf("expected joined system name, got %+v", updated.SystemName)
	}

	list, total, err := clients.ListClients(ctx, core.ClientFilters{Search: "central"})
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Errorf("search failed: total=%d len=%d", total, len(list))
	}

	_, total, err = clients.ListClients(ctx, core.ClientFilters{SystemID: &sys.ID})
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if total != 1 {
		t.Errorf("system filter failed: total=%d", total)
	}

	// Deleting the system detaches, never deletes, its clients.
	if err := clients.DeleteSystem(ctx, sys.ID); err != nil {
		t.Fatalf("DeleteSystem failed: %v", err)
	}
	detail, err := clients.GetClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if detail.Client.SystemID != nil {
		t.Error("expected system_id cleared after system delete")
	}
}

func TestClient_MissingRequiredFields(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	clients := core.NewClientService(pool)
	_, err := clients.CreateClient(context.Background(), core.ClientInput{TradeName: "No Docs"})

	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["company_name"] == "" || ve.Fields["registration_number"] == "" {
		t.Errorf("expected both required-field errors, got %v", ve.Fields)
	}
}

func TestSchedule_AppointmentWorkflow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	clients := core.NewClientService(pool)
	schedule := core.NewScheduleService(pool)
	ctx := context.Background()

	c := seedClient(t, clients)
	tech, err := clients.CreateTechnician(ctx, "Paulo")
	if err != nil {
		t.Fatalf("CreateTechnician failed: %v", err)
	}

	price := decimal.NewFromFloat(250.00)
	appt, err := schedule.Create(ctx, core.AppointmentInput{
		ClientID:      c.ID,
		TechnicianID:  &tech.ID,
		Description:   "printer jam on checkout 3",
		ScheduledDate: "2026-09-02",
		ScheduledTime: "14:30",
		ServicePrice:  &price,
	})
	if err != nil {
		t.Fatalf("Create appointment failed: %v", err)
	}
	if appt.Status != core.AppointmentScheduled {
		t.Errorf("expected SCHEDULED, got %s", appt.Status)
	}

	open, err := schedule.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected one open appointment, got %d", len(open))
	}

	closed, err := schedule.Close(ctx, appt.ID, core.CloseAppointmentInput{
		Status:          core.AppointmentCompleted,
		TechnicalReport: "replaced feed roller",
		AttendedByID:    &tech.ID,
	})
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed.Status != core.AppointmentCompleted || closed.ResolvedAt == nil {
		t.Errorf("close did not finalize: %+v", closed)
	}
	if closed.ServicePrice == nil || !closed.ServicePrice.Equal(price) {
		t.Errorf("service price lost on close: %+v", closed.ServicePrice)
	}

	// One-way state machine: a closed appointment stays closed.
	_, err = schedule.Close(ctx, appt.ID, core.CloseAppointmentInput{Status: core.AppointmentCancelled})
	if !errors.Is(err, core.ErrAppointmentClosed) {
		t.Errorf("expected ErrAppointmentClosed, got %v", err)
	}

	open, err = schedule.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("expected no open appointments, got %d", len(open))
	}

	// History shows up on the client detail, newest first.
	detail, err := clients.GetClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if len(detail.Appointments) != 1 || detail.Appointments[0].ID != appt.ID {
		t.Errorf("expected appointment in client history, got %+v", detail.Appointments)
	}
}

func TestSchedule_RejectsBadInput(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	schedule := core.NewScheduleService(pool)
	ctx := context.Background()

	_, err := schedule.Create(ctx, core.AppointmentInput{ScheduledDate: "02/09/2026"})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"client_id", "description", "scheduled_date"} {
		if ve.Fields[field] == "" {
			t.Errorf("expected error for %s, got %v", field, ve.Fields)
		}
	}

	_, err = schedule.Close(ctx, 1, core.CloseAppointmentInput{Status: "DONE"})
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for bad status, got %v", err)
	}
}
