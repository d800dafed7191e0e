package web

import (
	"encoding/json"
	"net/http"

	"bomboniere/internal/app"
)

// apiListProducts handles GET /api/products.
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSaveProduct handles POST /api/products.
// Body: { id?, name, price, icon? } where price is "12,50", "12.50" or a JSON number.
func (h *Handler) apiSaveProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Price json.RawMessage `json:"price"`
		Icon  string          `json:"icon"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.SaveProduct(r.Context(), app.SaveProductRequest{
		ID:    body.ID,
		Name:  body.Name,
		Price: rawAmount(body.Price),
		Icon:  body.Icon,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDeleteProduct handles DELETE /api/products/{id}.
func (h *Handler) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), idParam(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rawAmount turns a JSON string or number into the text core.ParseAmount reads.
func rawAmount(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ── Settings & reports ────────────────────────────────────────────────────────

// apiGetSettings handles GET /api/settings.
func (h *Handler) apiGetSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSaveSettings handles PUT /api/settings.
// Body: { pixKey?, ownerName?, instantMessage?, customGreeting? }
// The body is decoded over the stored settings, so omitted fields keep their value.
func (h *Handler) apiSaveSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	body := *current
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.SaveSettings(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSummary handles GET /api/summary.
func (h *Handler) apiSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetSummary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDueDate handles GET /api/due-date?date=YYYY-MM-DD.
func (h *Handler) apiDueDate(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ComputeDueDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
