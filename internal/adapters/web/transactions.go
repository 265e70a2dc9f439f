package web

import (
	"net/http"

	"stocktrack/internal/core"
)

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TypeID    int64  `json:"type_id"`
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Lot       string `json:"lot"`
		Notes     string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	claims := authFromContext(r.Context())
	tx, err := h.svc.RegisterTransaction(r.Context(), core.TransactionInput{
		TypeID:    req.TypeID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Lot:       req.Lot,
		UserID:    claims.UserID,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, tx)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	filters := core.TransactionFilters{
		ProductID: queryInt64(r, "product_id"),
		TypeID:    queryInt64(r, "type_id"),
		Page:      queryInt(r, "page"),
		PageSize:  queryInt(r, "page_size"),
	}
	if filters.PageSize == 0 {
		filters.PageSize = 50
	}
	transactions, total, err := h.svc.ListTransactions(r.Context(), filters)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"transactions": transactions, "total": total})
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, err := h.svc.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, tx)
}
