// Package risk classifies customers into churn risk tiers from their RFM
// features.
//
// The score is an explicit heuristic over recency and frequency, not a
// trained model: more days since the last purchase raises risk, more
// purchases lower it. Scores are min-max normalized across the batch being
// classified, so a score is only comparable to scores from the same run.
package risk

import (
	"fmt"
	"sort"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
)

// Default tier thresholds applied when the caller passes zero values.
const (
	DefaultLowThreshold    = 0.3
	DefaultMediumThreshold = 0.7
)

// degenerateScore is emitted for every customer when the batch has no score
// spread (single customer, or uniform recency and frequency). 0.5 keeps such
// batches in the Medium tier under the default thresholds instead of
// producing NaN or an arbitrary extreme.
const degenerateScore = 0.5

// Classify scores every customer in the feature map and assigns a risk tier.
//
// Raw score = recency/100 + (1 − frequency/maxFrequency), then min-max
// normalized to [0,1] across the batch. Tiering: score ≤ low → Low,
// score ≤ medium → Medium, else High.
//
// Thresholds must satisfy 0 < low < medium < 1; violating that is a caller
// contract error. Output order is unspecified: callers needing deterministic
// ordering should use SortByScoreDesc.
func Classify(features map[string]domain.RFMFeatures, lowThreshold, mediumThreshold float64) ([]domain.RiskAssessment, error) {
	if lowThreshold == 0 && mediumThreshold == 0 {
		lowThreshold = DefaultLowThreshold
		mediumThreshold = DefaultMediumThreshold
	}
	if lowThreshold <= 0 || mediumThreshold >= 1 || lowThreshold >= mediumThreshold {
		return nil, fmt.Errorf("risk: thresholds must satisfy 0 < low (%v) < medium (%v) < 1",
			lowThreshold, mediumThreshold)
	}
	if len(features) == 0 {
		return nil, nil
	}

	maxFrequency := 0
	for _, f := range features {
		if f.Frequency > maxFrequency {
			maxFrequency = f.Frequency
		}
	}

	assessments := make([]domain.RiskAssessment, 0, len(features))
	raw := make([]float64, 0, len(features))
	minRaw, maxRaw := 0.0, 0.0
	first := true

	for _, f := range features {
		score := float64(f.Recency)/100 + (1 - float64(f.Frequency)/float64(maxFrequency))
		raw = append(raw, score)
		if first || score < minRaw {
			minRaw = score
		}
		if first || score > maxRaw {
			maxRaw = score
		}
		first = false

		assessments = append(assessments, domain.RiskAssessment{
			CustomerID: f.CustomerID,
			Recency:    f.Recency,
			Frequency:  f.Frequency,
			Monetary:   f.Monetary,
		})
	}

	spread := maxRaw - minRaw
	for i := range assessments {
		var score float64
		if spread == 0 {
			score = degenerateScore
		} else {
			score = (raw[i] - minRaw) / spread
		}
		assessments[i].RiskScore = score
		assessments[i].RiskTier = tierFor(score, lowThreshold, mediumThreshold)
	}

	dist := Distribution(assessments)
	logger.Info("churn risk classified",
		"customers", len(assessments),
		"high", dist[domain.RiskHigh],
		"medium", dist[domain.RiskMedium],
		"low", dist[domain.RiskLow])

	return assessments, nil
}

func tierFor(score, low, medium float64) domain.RiskTier {
	switch {
	case score <= low:
		return domain.RiskLow
	case score <= medium:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// SortByScoreDesc orders assessments by risk score descending, breaking ties
// by customer ID so the order is fully deterministic.
func SortByScoreDesc(assessments []domain.RiskAssessment) {
	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].RiskScore != assessments[j].RiskScore {
			return assessments[i].RiskScore > assessments[j].RiskScore
		}
		return assessments[i].CustomerID < assessments[j].CustomerID
	})
}

// Distribution counts assessments per tier.
func Distribution(assessments []domain.RiskAssessment) map[domain.RiskTier]int {
	dist := make(map[domain.RiskTier]int, 3)
	for _, a := range assessments {
		dist[a.RiskTier]++
	}
	return dist
}
