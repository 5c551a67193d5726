package campaign

import (
	"context"

	"github.com/freshmart/retention/internal/compose"
	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/twilio"
)

// Composer produces a retention message for one customer. Implementations
// must always return a non-empty message of at most domain.MaxSMSLength
// characters; backend failures are absorbed internally.
type Composer interface {
	Compose(ctx context.Context, cc compose.CampaignContext) string
	IsConfigured() bool
}

// Transport delivers a single SMS. Implementations must not retry: a failed
// send is recorded as failed by the dispatcher, never re-attempted.
type Transport interface {
	SendSMS(ctx context.Context, toNumber, body string) (*twilio.SendResult, error)
	IsConfigured() bool
}

// Recorder persists campaign artifacts: the prepared target list (before
// dispatch, so a crash cannot lose it) and the per-target delivery outcomes.
type Recorder interface {
	SaveTargets(ctx context.Context, runID string, targets []domain.CampaignTarget) error
	AppendOutcomes(ctx context.Context, runID string, outcomes []domain.DeliveryOutcome) error
}
