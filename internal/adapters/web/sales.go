package web

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"bomboniere/internal/app"
)

// apiRecordSale handles POST /api/sales.
// Body: { clientId, items: [{productId, qty}] }
func (h *Handler) apiRecordSale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID string `json:"clientId"`
		Items    []struct {
			ProductID string `json:"productId"`
			Qty       int    `json:"qty"`
		} `json:"items"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ClientID == "" {
		writeError(w, r, "clientId is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.SaleRequest{ClientID: body.ClientID}
	for _, item := range body.Items {
		req.Items = append(req.Items, app.SaleItemInput{ProductID: item.ProductID, Qty: item.Qty})
	}

	result, err := h.svc.RecordSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiListTransactions handles GET /api/transactions?clientId=.
func (h *Handler) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListTransactions(r.Context(), r.URL.Query().Get("clientId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiExportTransactions handles GET /api/transactions.csv?clientId=.
func (h *Handler) apiExportTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListTransactions(r.Context(), r.URL.Query().Get("clientId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Date", "Client", "Product", "Amount", "Due Date", "Paid"})
	for _, tx := range result.Transactions {
		_ = cw.Write([]string{
			tx.Date.Format("2006-01-02 15:04"),
			csvSafe(tx.ClientName),
			csvSafe(tx.ProductName),
			tx.Amount.StringFixed(2),
			tx.DueDate.Format("2006-01-02"),
			strconv.FormatBool(tx.IsPaid),
		})
	}
	cw.Flush()
}

// csvSafe prevents CSV formula injection by prefixing cells that begin with a
// formula-triggering character with a single quote.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
