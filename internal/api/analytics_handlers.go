package api

import (
	"net/http"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/httputil"
	"github.com/freshmart/retention/internal/risk"
)

// GetAnalyticsSummary aggregates roster size, ledger revenue and the current
// risk distribution in one call. Scoring failures degrade to an empty
// distribution rather than failing the whole summary.
func (h *Handlers) GetAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.LoadCustomers(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	transactions, err := h.store.LoadTransactions(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	revenue := 0.0
	for _, t := range transactions {
		revenue += t.Amount
	}

	reachable := 0
	for _, c := range customers {
		if c.HasPhone() {
			reachable++
		}
	}

	distribution := map[domain.RiskTier]int{}
	if assessments, err := h.scorePass(r.Context()); err == nil {
		distribution = risk.Distribution(assessments)
	}

	httputil.OK(w, map[string]interface{}{
		"customers":         len(customers),
		"reachable_by_sms":  reachable,
		"transactions":      len(transactions),
		"total_revenue":     revenue,
		"risk_distribution": distribution,
	})
}
