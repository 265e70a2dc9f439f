package web

import (
	"net/http"

	"stocktrack/internal/core"

	"github.com/shopspring/decimal"
)

type systemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) listSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := h.svc.ListSystems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"systems": systems})
}

func (h *Handler) createSystem(w http.ResponseWriter, r *http.Request) {
	var req systemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sys, err := h.svc.CreateSystem(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, sys)
}

func (h *Handler) updateSystem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req systemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sys, err := h.svc.UpdateSystem(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sys)
}

func (h *Handler) deleteSystem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSystem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTechnicians(w http.ResponseWriter, r *http.Request) {
	techs, err := h.svc.ListTechnicians(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"technicians": techs})
}

func (h *Handler) createTechnician(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	tech, err := h.svc.CreateTechnician(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, tech)
}

func (h *Handler) deleteTechnician(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTechnician(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clientRequest struct {
	CompanyName        string `json:"company_name"`
	TradeName          string `json:"trade_name"`
	RegistrationNumber string `json:"registration_number"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	PostalCode         string `json:"postal_code"`
	City               string `json:"city"`
	State              string `json:"state"`
	ContactName        string `json:"contact_name"`
	Email              string `json:"email"`
	Notes              string `json:"notes"`
	SystemID           *int64 `json:"system_id"`
}

func (r clientRequest) toInput() core.ClientInput {
	return core.ClientInput{
		CompanyName:        r.CompanyName,
		TradeName:          r.TradeName,
		RegistrationNumber: r.RegistrationNumber,
		Address:            r.Address,
		Phone:              r.Phone,
		PostalCode:         r.PostalCode,
		City:               r.City,
		State:              r.State,
		ContactName:        r.ContactName,
		Email:              r.Email,
		Notes:              r.Notes,
		SystemID:           r.SystemID,
	}
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	filters := core.ClientFilters{
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "page_size"),
		Offset: queryInt(r, "offset"),
	}
	if sysID := queryInt64(r, "system_id"); sysID != 0 {
		filters.SystemID = &sysID
	}
	clients, total, err := h.svc.ListClients(r.Context(), filters)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"clients": clients, "total": total})
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, detail)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.CreateClient(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateClient(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOpenAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.svc.ListOpenAppointments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"appointments": appointments})
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	appt, err := h.svc.GetAppointment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, appt)
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID      int64            `json:"client_id"`
		TechnicianID  *int64           `json:"technician_id"`
		Description   string           `json:"description"`
		ScheduledDate string           `json:"scheduled_date"`
		ScheduledTime string           `json:"scheduled_time"`
		ServicePrice  *decimal.Decimal `json:"service_price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := h.svc.CreateAppointment(r.Context(), core.AppointmentInput{
		ClientID:      req.ClientID,
		TechnicianID:  req.TechnicianID,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		ServicePrice:  req.ServicePrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, appt)
}

func (h *Handler) closeAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status          string           `json:"status"`
		TechnicalReport string           `json:"technical_report"`
		AttendedByID    *int64           `json:"attended_by_id"`
		ServicePrice    *decimal.Decimal `json:"service_price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	appt, err := h.svc.CloseAppointment(r.Context(), id, core.CloseAppointmentInput{
		Status:          req.Status,
		TechnicalReport: req.TechnicalReport,
		AttendedByID:    req.AttendedByID,
		ServicePrice:    req.ServicePrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, appt)
}
