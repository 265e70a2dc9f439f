// Package web is the HTTP adapter: chi routing, JWT cookie auth, and JSON
// encoding over the ApplicationService.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stocktrack/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the JWT signing secret.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// Public
	r.Get("/api/health", h.health)
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 16)) // 64 KB for credentials
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
	})

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		r.Get("/api/categories", h.listCategories)
		r.Get("/api/products", h.listProducts)
		r.Get("/api/products/{id}", h.getProduct)
		r.Get("/api/transaction-types", h.listTransactionTypes)

		r.Get("/api/transactions", h.listTransactions)
		r.Get("/api/transactions/{id}", h.getTransaction)
		r.Post("/api/transactions", h.createTransaction)

		r.Get("/api/reports/monthly", h.monthlyReport)

		r.Get("/api/systems", h.listSystems)
		r.Get("/api/technicians", h.listTechnicians)
		r.Get("/api/clients", h.listClients)
		r.Get("/api/clients/{id}", h.getClient)
		r.Post("/api/clients", h.createClient)
		r.Put("/api/clients/{id}", h.updateClient)

		r.Get("/api/appointments", h.listOpenAppointments)
		r.Get("/api/appointments/{id}", h.getAppointment)
		r.Post("/api/appointments", h.createAppointment)
		r.Post("/api/appointments/{id}/close", h.closeAppointment)

		// Admin-only writes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)

			r.Post("/api/categories", h.createCategory)
			r.Put("/api/categories/{id}", h.updateCategory)
			r.Delete("/api/categories/{id}", h.deleteCategory)

			r.Post("/api/products", h.createProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deleteProduct)

			r.Post("/api/transaction-types", h.createTransactionType)

			r.Post("/api/systems", h.createSystem)
			r.Put("/api/systems/{id}", h.updateSystem)
			r.Delete("/api/systems/{id}", h.deleteSystem)
			r.Post("/api/technicians", h.createTechnician)
			r.Delete("/api/technicians/{id}", h.deleteTechnician)
			r.Delete("/api/clients/{id}", h.deleteClient)

			r.Get("/api/users", h.listUsers)
			r.Post("/api/users", h.createUser)
			r.Put("/api/users/{id}/role", h.setUserRole)
			r.Put("/api/users/{id}/active", h.setUserActive)
			r.Delete("/api/users/{id}", h.deleteUser)
		})

		r.Put("/api/users/me/password", h.changeOwnPassword)
	})

	return r
}

// health handles GET /api/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v, writing a 400/413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func queryInt64(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n
}
