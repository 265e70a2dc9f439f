package web

import (
	"fmt"
	"net/http"
	"time"
)

// monthlyReport handles GET /api/reports/monthly?year=&month=&format=.
// format=pdf streams the rendered document; anything else returns JSON.
func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year")
	month := time.Month(queryInt(r, "month"))
	if year == 0 && month == 0 {
		now := time.Now().UTC()
		year, month = now.Year(), now.Month()
	}

	if r.URL.Query().Get("format") == "pdf" {
		out, err := h.svc.MonthlyReportPDF(r.Context(), year, month)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="stock-report-%04d-%02d.pdf"`, year, int(month)))
		_, _ = w.Write(out)
		return
	}

	rep, err := h.svc.MonthlyReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rep)
}
