package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freshmart/retention/internal/domain"
)

// CampaignRecorder implements campaign.Recorder against PostgreSQL. Targets
// are replaced per run; outcomes are append-only.
type CampaignRecorder struct{ db *sql.DB }

// NewCampaignRecorder creates a Postgres-backed campaign recorder.
func NewCampaignRecorder(db *sql.DB) *CampaignRecorder { return &CampaignRecorder{db: db} }

func (r *CampaignRecorder) SaveTargets(ctx context.Context, runID string, targets []domain.CampaignTarget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	defer tx.Rollback()

	for _, t := range targets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO campaign_targets
				(run_id, customer_id, name, phone, email, churn_risk,
				 message, offer_code, days_since, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		`, runID, t.CustomerID, t.Name, t.Phone, t.Email, string(t.RiskTier),
			t.Message, t.OfferCode, t.DaysSince); err != nil {
			return fmt.Errorf("insert target %s: %w", t.CustomerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	return nil
}

func (r *CampaignRecorder) AppendOutcomes(ctx context.Context, runID string, outcomes []domain.DeliveryOutcome) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append outcomes: %w", err)
	}
	defer tx.Rollback()

	for _, o := range outcomes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO campaign_results
				(run_id, campaign_seq, customer_id, customer_name, phone,
				 churn_risk, message_sent, offer_code, sms_success,
				 message_sid, error, sent_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, runID, o.CampaignSeq, o.CustomerID, o.CustomerName, o.Phone,
			string(o.RiskTier), o.MessageSent, o.OfferCode, o.Delivered,
			o.MessageSID, o.Error, o.Timestamp); err != nil {
			return fmt.Errorf("insert outcome %d: %w", o.CampaignSeq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append outcomes: %w", err)
	}
	return nil
}

// LoadTargets returns the targets saved for the most recent run, or the given
// run when runID is non-empty.
func (r *CampaignRecorder) LoadTargets(ctx context.Context, runID string) ([]domain.CampaignTarget, error) {
	if runID == "" {
		err := r.db.QueryRowContext(ctx, `
			SELECT run_id FROM campaign_targets ORDER BY created_at DESC LIMIT 1
		`).Scan(&runID)
		if err == sql.ErrNoRows {
			return []domain.CampaignTarget{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve latest run: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, name, phone, COALESCE(email,''), churn_risk,
		       message, offer_code, days_since
		FROM campaign_targets
		WHERE run_id = $1
		ORDER BY created_at
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	defer rows.Close()

	var out []domain.CampaignTarget
	for rows.Next() {
		var t domain.CampaignTarget
		var tier string
		if err := rows.Scan(&t.CustomerID, &t.Name, &t.Phone, &t.Email, &tier,
			&t.Message, &t.OfferCode, &t.DaysSince); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		t.RiskTier = domain.RiskTier(tier)
		out = append(out, t)
	}
	return out, rows.Err()
}
