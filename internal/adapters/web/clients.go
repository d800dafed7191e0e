package web

import (
	"net/http"
	"strconv"

	"bomboniere/internal/app"
)

// apiListClients handles GET /api/clients?search=&debt=true.
func (h *Handler) apiListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	debtOnly, _ := strconv.ParseBool(q.Get("debt"))

	result, err := h.svc.ListClients(r.Context(), app.ClientFilter{
		Search:   q.Get("search"),
		DebtOnly: debtOnly,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiRegisterClient handles POST /api/clients.
// Body: { name, phone }
func (h *Handler) apiRegisterClient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.RegisterClient(r.Context(), app.RegisterClientRequest{Name: body.Name, Phone: body.Phone})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiDeleteClient handles DELETE /api/clients/{id}. Ledger entries are kept.
func (h *Handler) apiDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteClient(r.Context(), idParam(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiSettleDebt handles POST /api/clients/{id}/settle.
func (h *Handler) apiSettleDebt(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SettleDebt(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiBillClient handles GET /api/clients/{id}/billing.
func (h *Handler) apiBillClient(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.BillClient(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
