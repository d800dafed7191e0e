package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"bomboniere/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes. When reg is
// non-nil, requests are instrumented and /metrics serves its collectors.
func NewHandler(svc app.ApplicationService, allowedOrigins string, reg *prometheus.Registry) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	if reg != nil {
		r.Use(Instrument(reg))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// All API endpoints: 1 MB body limit to prevent unbounded request abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Clients ───────────────────────────────────────────────────────────
		r.Get("/api/clients", h.apiListClients)
		r.Post("/api/clients", h.apiRegisterClient)
		r.Delete("/api/clients/{id}", h.apiDeleteClient)
		r.Post("/api/clients/{id}/settle", h.apiSettleDebt)
		r.Get("/api/clients/{id}/billing", h.apiBillClient)

		// ── Point of sale ─────────────────────────────────────────────────────
		r.Post("/api/sales", h.apiRecordSale)
		r.Get("/api/transactions", h.apiListTransactions)
		r.Get("/api/transactions.csv", h.apiExportTransactions)

		// ── Catalog ───────────────────────────────────────────────────────────
		r.Get("/api/products", h.apiListProducts)
		r.Post("/api/products", h.apiSaveProduct)
		r.Delete("/api/products/{id}", h.apiDeleteProduct)

		// ── Settings & reports ────────────────────────────────────────────────
		r.Get("/api/settings", h.apiGetSettings)
		r.Put("/api/settings", h.apiSaveSettings)
		r.Get("/api/summary", h.apiSummary)
		r.Get("/api/due-date", h.apiDueDate)
	})

	h.router = r
	return r
}

// health returns service status and the current billing cycle.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Cycle  string `json:"cycle,omitempty"`
	}

	resp := response{Status: "ok"}
	if due, err := h.svc.ComputeDueDate(r.Context(), ""); err == nil {
		resp.Cycle = due.CycleLabel
	}
	writeJSON(w, resp)
}

// idParam extracts the {id} URL parameter.
func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
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
