package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/retention/internal/pkg/httputil"
)

// ListCustomers returns a page of the roster.
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "limit", 50, 500)
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}

	customers, err := h.store.LoadCustomers(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	total := len(customers)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	httputil.OK(w, map[string]interface{}{
		"total":     total,
		"offset":    offset,
		"customers": customers[offset:end],
	})
}

// GetCustomer returns a single roster entry or 404.
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	customers, err := h.store.LoadCustomers(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	for _, c := range customers {
		if c.CustomerID == customerID {
			httputil.OK(w, c)
			return
		}
	}
	httputil.NotFound(w, "customer "+customerID+" not found")
}
