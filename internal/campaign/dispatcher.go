package campaign

import (
	"context"
	"time"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
)

// Dispatcher sends a batch of campaign targets over the SMS transport,
// sequentially and rate-limited. Sequential dispatch is a deliberate
// throttling policy: parallel sends would violate the transport's
// per-number rate limit.
type Dispatcher struct {
	transport Transport
	sendDelay time.Duration

	// sleep is swappable in tests so rate-limit behavior can be asserted
	// without real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher with the given inter-send delay.
func NewDispatcher(transport Transport, sendDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		sendDelay: sendDelay,
		sleep:     sleepContext,
	}
}

// Dispatch processes targets one at a time and returns exactly one outcome
// per input target, in input order. A single failure never aborts the batch:
// per-target errors are captured in the outcome and the loop continues.
//
// Between consecutive sends (not after the last) the dispatcher pauses for
// the configured delay. That pause doubles as the cooperative cancellation
// point: when ctx is canceled, every remaining target gets a failed outcome
// so the one-outcome-per-target invariant holds.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []domain.CampaignTarget) []domain.DeliveryOutcome {
	outcomes := make([]domain.DeliveryOutcome, 0, len(targets))
	if len(targets) == 0 {
		return outcomes
	}

	logger.Info("starting batch SMS dispatch", "targets", len(targets))

	canceled := false
	for i, target := range targets {
		outcome := domain.DeliveryOutcome{
			CampaignSeq:  i + 1,
			CustomerID:   target.CustomerID,
			CustomerName: target.Name,
			Phone:        target.Phone,
			RiskTier:     target.RiskTier,
			MessageSent:  truncateForLog(target.Message, 100),
			OfferCode:    target.OfferCode,
			Timestamp:    time.Now().UTC(),
		}

		switch {
		case canceled:
			outcome.Error = context.Canceled.Error()
		case target.Phone == "" || target.Message == "":
			outcome.Error = ErrMissingContact.Error()
		case !d.transport.IsConfigured():
			outcome.Error = ErrNotConfigured.Error()
		default:
			result, err := d.transport.SendSMS(ctx, target.Phone, target.Message)
			if err != nil {
				outcome.Error = err.Error()
				logger.Error("SMS send failed", "customer_id", target.CustomerID, "phone", target.Phone, "error", err.Error())
			} else {
				outcome.Delivered = true
				outcome.MessageSID = result.SID
			}

			// Rate limit between sends, skipped after the last target.
			if i < len(targets)-1 {
				if err := d.sleep(ctx, d.sendDelay); err != nil {
					canceled = true
				}
			}
		}

		outcomes = append(outcomes, outcome)

		if (i+1)%10 == 0 {
			logger.Info("dispatch progress", "sent", i+1, "total", len(targets))
		}
	}

	successful := 0
	for _, o := range outcomes {
		if o.Delivered {
			successful++
		}
	}
	logger.Info("batch dispatch complete", "successful", successful, "total", len(targets))

	return outcomes
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
