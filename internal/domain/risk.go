package domain

// RiskTier is the ordinal churn-risk bucket assigned from a normalized score.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// Rank returns the ordinal position of the tier (Low < Medium < High).
// Unknown tiers rank below Low.
func (t RiskTier) Rank() int {
	switch t {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// RFMFeatures holds the recency/frequency/monetary aggregates for one
// customer, derived from the transaction ledger. Recomputed on every scoring
// pass; never persisted as canonical state.
type RFMFeatures struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
}

// RiskAssessment is the scored output for one customer in one scoring run.
// RiskScore is min-max normalized across the run's customer set, so scores
// from runs over different customer sets are not comparable.
type RiskAssessment struct {
	CustomerID string   `json:"customer_id"`
	RiskScore  float64  `json:"risk_score"`
	RiskTier   RiskTier `json:"risk_tier"`
	Recency    int      `json:"recency"`
	Frequency  int      `json:"frequency"`
	Monetary   float64  `json:"monetary"`
}
