package api

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/features"
	"github.com/freshmart/retention/internal/pkg/httputil"
	"github.com/freshmart/retention/internal/risk"
)

// GetChurnPredictions runs a full scoring pass and returns tier counts plus
// the first page of per-customer assessments.
func (h *Handlers) GetChurnPredictions(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "limit", 100, 1000)

	assessments, err := h.scorePass(r.Context())
	if err != nil {
		writeScoringError(w, err)
		return
	}

	sort.Slice(assessments, func(i, j int) bool {
		return assessments[i].CustomerID < assessments[j].CustomerID
	})

	page := assessments
	if len(page) > limit {
		page = page[:limit]
	}

	httputil.OK(w, map[string]interface{}{
		"total":        len(assessments),
		"distribution": risk.Distribution(assessments),
		"predictions":  page,
	})
}

// GetChurnPrediction returns the assessment for a single customer, or 404
// when the customer has no transaction history to score.
func (h *Handlers) GetChurnPrediction(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	assessments, err := h.scorePass(r.Context())
	if err != nil {
		writeScoringError(w, err)
		return
	}

	for _, a := range assessments {
		if a.CustomerID == customerID {
			httputil.OK(w, a)
			return
		}
	}
	httputil.NotFound(w, "no assessment for customer "+customerID)
}

// GetHighRiskCustomers returns the High tier sorted by score, highest first.
func (h *Handlers) GetHighRiskCustomers(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "limit", 50, 500)

	assessments, err := h.scorePass(r.Context())
	if err != nil {
		writeScoringError(w, err)
		return
	}

	var high []domain.RiskAssessment
	for _, a := range assessments {
		if a.RiskTier == domain.RiskHigh {
			high = append(high, a)
		}
	}
	risk.SortByScoreDesc(high)
	if len(high) > limit {
		high = high[:limit]
	}

	httputil.OK(w, map[string]interface{}{
		"total":     len(high),
		"customers": high,
	})
}

// GetRiskDistribution returns tier counts and score summary statistics.
func (h *Handlers) GetRiskDistribution(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.scorePass(r.Context())
	if err != nil {
		writeScoringError(w, err)
		return
	}

	minScore, maxScore, sum := 1.0, 0.0, 0.0
	for _, a := range assessments {
		if a.RiskScore < minScore {
			minScore = a.RiskScore
		}
		if a.RiskScore > maxScore {
			maxScore = a.RiskScore
		}
		sum += a.RiskScore
	}
	mean := 0.0
	if len(assessments) > 0 {
		mean = sum / float64(len(assessments))
	} else {
		minScore = 0
	}

	httputil.OK(w, map[string]interface{}{
		"total":        len(assessments),
		"distribution": risk.Distribution(assessments),
		"score_stats": map[string]float64{
			"min":  minScore,
			"max":  maxScore,
			"mean": mean,
		},
	})
}

// writeScoringError maps ledger problems to 422 and everything else to 500.
func writeScoringError(w http.ResponseWriter, err error) {
	var dataErr *features.DataError
	if errors.As(err, &dataErr) {
		httputil.Error(w, http.StatusUnprocessableEntity, dataErr.Error())
		return
	}
	httputil.InternalError(w, err)
}
