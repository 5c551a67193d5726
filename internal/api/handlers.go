package api

import (
	"context"
	"net/http"
	"time"

	"github.com/freshmart/retention/internal/campaign"
	"github.com/freshmart/retention/internal/config"
	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/features"
	"github.com/freshmart/retention/internal/pkg/httputil"
	"github.com/freshmart/retention/internal/risk"
	"github.com/freshmart/retention/internal/store"
	"github.com/freshmart/retention/internal/twilio"
)

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	store    store.Store
	scoring  config.ScoringConfig
	campaign *campaign.Service
	sms      *twilio.Client
}

// NewHandlers creates the handler set.
func NewHandlers(st store.Store, scoring config.ScoringConfig, svc *campaign.Service, sms *twilio.Client) *Handlers {
	return &Handlers{
		store:    st,
		scoring:  scoring,
		campaign: svc,
		sms:      sms,
	}
}

// HealthCheck reports service liveness and collaborator readiness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status":    "healthy",
		"service":   "freshmart-retention",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  h.campaign.Status(),
	})
}

// scorePass loads the ledger and produces a fresh assessment per customer.
func (h *Handlers) scorePass(ctx context.Context) ([]domain.RiskAssessment, error) {
	transactions, err := h.store.LoadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	rfm, err := features.DeriveRFM(transactions, time.Time{})
	if err != nil {
		return nil, err
	}
	return risk.Classify(rfm, h.scoring.LowThreshold, h.scoring.MediumThreshold)
}
