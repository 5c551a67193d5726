package api

import (
	"net/http"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/httputil"
)

const testMessageBody = "FreshMart here! This is a test of our SMS service. " +
	"If you can read this, everything is working."

// SendRetentionCampaign prepares and immediately executes an SMS retention
// campaign against the requested risk tier.
func (h *Handlers) SendRetentionCampaign(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryInt(r, "customer_limit", 10, 100)

	tier := domain.RiskTier(r.URL.Query().Get("churn_risk"))
	if tier == "" {
		tier = domain.RiskHigh
	}
	if tier.Rank() == 0 {
		httputil.BadRequest(w, "churn_risk must be one of Low, Medium, High")
		return
	}

	targets, err := h.campaign.Prepare(r.Context(), limit, tier)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	summary := h.campaign.Execute(r.Context(), targets)

	sample := targets
	if len(sample) > 3 {
		sample = sample[:3]
	}

	httputil.OK(w, map[string]interface{}{
		"campaign": map[string]interface{}{
			"churn_risk":     tier,
			"customer_limit": limit,
			"targeted":       len(targets),
		},
		"summary":        summary,
		"sample_targets": sample,
	})
}

// SendTestSMS sends a fixed test message to the given number. Transport
// problems come back in the body, not as HTTP errors.
func (h *Handlers) SendTestSMS(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone_number")
	if phone == "" {
		httputil.BadRequest(w, "phone_number is required")
		return
	}

	if !h.sms.IsConfigured() {
		httputil.OK(w, map[string]interface{}{
			"success": false,
			"error":   "sms service not configured",
		})
		return
	}

	result, err := h.sms.SendSMS(r.Context(), phone, testMessageBody)
	if err != nil {
		httputil.OK(w, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	httputil.OK(w, map[string]interface{}{
		"success":     true,
		"message_sid": result.SID,
		"status":      result.Status,
	})
}

// GetCampaignStatus reports readiness of the campaign collaborators.
func (h *Handlers) GetCampaignStatus(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"services": h.campaign.Status(),
	})
}
