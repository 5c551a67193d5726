package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freshmart/retention/internal/compose"
	"github.com/freshmart/retention/internal/config"
	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/features"
	"github.com/freshmart/retention/internal/pkg/logger"
	"github.com/freshmart/retention/internal/risk"
	"github.com/freshmart/retention/internal/store"
)

// Defaults used when a target has no purchase history.
const (
	defaultDaysSince   = 60
	defaultLastProduct = "groceries"
	defaultCategory    = "items you love"
)

// fallbackOfferSuffix is used when a customer ID is too short to derive an
// offer code from.
const fallbackOfferSuffix = "1234"

// Service orchestrates retention campaigns: target selection, message
// composition, dispatch, and result recording. Each campaign run reads an
// immutable snapshot of the data and owns its own target list, so concurrent
// runs don't share state; single-flight execution against the transport is
// the caller's responsibility.
type Service struct {
	store      store.Store
	composer   Composer
	recorder   Recorder
	dispatcher *Dispatcher
	scoring    config.ScoringConfig

	// now is swappable in tests for stable days-since arithmetic.
	now func() time.Time
}

// NewService creates a campaign service.
func NewService(st store.Store, composer Composer, recorder Recorder, dispatcher *Dispatcher, scoring config.ScoringConfig) *Service {
	return &Service{
		store:      st,
		composer:   composer,
		recorder:   recorder,
		dispatcher: dispatcher,
		scoring:    scoring,
		now:        time.Now,
	}
}

// Prepare selects up to limit customers in the given risk tier and composes
// a message for each. The prepared list is persisted before returning, so a
// crash after Prepare cannot lose the campaign.
//
// Tier filtering uses freshly computed risk assessments when the ledger
// supports scoring; otherwise it falls back to the roster's own churn_risk
// field, and when neither is available it degrades to filtering on phone
// presence alone. An empty result is not an error.
func (s *Service) Prepare(ctx context.Context, limit int, tier domain.RiskTier) ([]domain.CampaignTarget, error) {
	if limit <= 0 {
		return []domain.CampaignTarget{}, nil
	}

	customers, err := s.store.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaign: loading customers: %w", err)
	}
	transactions, err := s.store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaign: loading transactions: %w", err)
	}

	tiers := s.materializeTiers(customers, transactions)

	selected := make([]domain.Customer, 0, limit)
	for _, c := range customers {
		if !c.HasPhone() {
			continue
		}
		if len(tiers) > 0 && tier != "" && tiers[c.CustomerID] != tier {
			continue
		}
		selected = append(selected, c)
		if len(selected) == limit {
			break
		}
	}

	if len(selected) == 0 {
		logger.Warn("no customers matched campaign filter", "tier", string(tier))
		return []domain.CampaignTarget{}, nil
	}

	logger.Info("preparing campaign", "customers", len(selected), "tier", string(tier))

	targets := make([]domain.CampaignTarget, 0, len(selected))
	for _, c := range selected {
		cc := s.buildContext(c, transactions)

		targetTier := tiers[c.CustomerID]
		if targetTier == "" {
			targetTier = tier
		}

		targets = append(targets, domain.CampaignTarget{
			CustomerID: c.CustomerID,
			Name:       c.FullName(),
			Phone:      c.Phone,
			Email:      c.Email,
			RiskTier:   targetTier,
			Message:    s.composer.Compose(ctx, cc),
			OfferCode:  offerCode(c.CustomerID),
			DaysSince:  cc.DaysSince,
		})
	}

	runID := uuid.New().String()
	if err := s.recorder.SaveTargets(ctx, runID, targets); err != nil {
		return nil, fmt.Errorf("campaign: persisting targets: %w", err)
	}

	return targets, nil
}

// Execute dispatches the prepared targets and records one delivery outcome
// per target. An empty target list is a caller error reported in the
// summary, not a dispatcher failure.
func (s *Service) Execute(ctx context.Context, targets []domain.CampaignTarget) domain.CampaignSummary {
	if len(targets) == 0 {
		return domain.CampaignSummary{Success: false, Error: ErrNoTargets.Error()}
	}

	logger.Info("executing campaign", "targets", len(targets))

	outcomes := s.dispatcher.Dispatch(ctx, targets)

	successful := 0
	for _, o := range outcomes {
		if o.Delivered {
			successful++
		}
	}

	runID := uuid.New().String()
	if err := s.recorder.AppendOutcomes(ctx, runID, outcomes); err != nil {
		// Outcomes are already final; losing the log row is worth
		// surfacing but not worth failing the completed campaign.
		logger.Error("failed to record campaign outcomes", "error", err.Error())
	}

	return domain.CampaignSummary{
		Success:    true,
		Total:      len(targets),
		Successful: successful,
		Failed:     len(targets) - successful,
	}
}

// Status reports readiness of the campaign collaborators.
func (s *Service) Status() map[string]string {
	status := map[string]string{
		"sms_service": "Not configured",
		"ai_service":  "Not configured",
	}
	if s.dispatcher.transport.IsConfigured() {
		status["sms_service"] = "Ready"
	}
	if s.composer.IsConfigured() {
		status["ai_service"] = "Ready"
	}
	return status
}

// materializeTiers computes fresh risk tiers from the ledger. When scoring
// isn't possible (empty or undated ledger) it falls back to the roster's own
// churn_risk values; an empty map means degraded phone-only filtering.
func (s *Service) materializeTiers(customers []domain.Customer, transactions []domain.Transaction) map[string]domain.RiskTier {
	tiers := make(map[string]domain.RiskTier)

	rfm, err := features.DeriveRFM(transactions, time.Time{})
	if err == nil {
		assessments, classifyErr := risk.Classify(rfm, s.scoring.LowThreshold, s.scoring.MediumThreshold)
		if classifyErr == nil {
			for _, a := range assessments {
				tiers[a.CustomerID] = a.RiskTier
			}
			return tiers
		}
		err = classifyErr
	}

	logger.Warn("risk scoring unavailable, using roster churn_risk", "error", err.Error())
	for _, c := range customers {
		if c.ChurnRisk != "" {
			tiers[c.CustomerID] = domain.RiskTier(c.ChurnRisk)
		}
	}
	return tiers
}

// buildContext derives per-customer personalization facts from the most
// recent transaction, with fixed defaults for customers without history.
func (s *Service) buildContext(c domain.Customer, transactions []domain.Transaction) compose.CampaignContext {
	cc := compose.CampaignContext{
		Name:             c.FullName(),
		DaysSince:        defaultDaysSince,
		LastProduct:      defaultLastProduct,
		FavoriteCategory: c.FavoriteCategory,
	}
	if cc.FavoriteCategory == "" {
		cc.FavoriteCategory = defaultCategory
	}

	if last, ok := features.LastPurchase(transactions, c.CustomerID); ok {
		cc.DaysSince = int(s.now().Sub(last.Date).Hours() / 24)
		if cc.DaysSince < 0 {
			cc.DaysSince = 0
		}
		if last.ProductID != "" {
			cc.LastProduct = last.ProductID
		}
	}
	return cc
}

// offerCode derives a deterministic per-customer code from the ID tail.
func offerCode(customerID string) string {
	suffix := fallbackOfferSuffix
	if len(customerID) >= 4 {
		suffix = customerID[len(customerID)-4:]
	}
	return "FRESH" + suffix
}
