// Package outputs persists campaign artifacts to the outputs directory: the
// prepared target list as a JSON document and delivery outcomes as an
// append-only CSV log.
package outputs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
)

const (
	targetsFile  = "campaign_data.json"
	outcomesFile = "campaign_results.csv"
)

var outcomeHeader = []string{
	"campaign_id", "customer_id", "customer_name", "phone", "churn_risk",
	"message_sent", "offer_code", "sms_success", "message_sid", "error", "timestamp",
}

// FileRecorder writes campaign artifacts under a single directory.
type FileRecorder struct {
	dir string
}

// NewFileRecorder creates the outputs directory if needed.
func NewFileRecorder(dir string) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("outputs: creating %s: %w", dir, err)
	}
	return &FileRecorder{dir: dir}, nil
}

// Dir returns the outputs directory path.
func (r *FileRecorder) Dir() string { return r.dir }

// SaveTargets persists the prepared target list before dispatch, so a crash
// mid-campaign cannot lose the prepared work. The write goes through a temp
// file and rename so a crash cannot leave a half-written document either.
func (r *FileRecorder) SaveTargets(ctx context.Context, runID string, targets []domain.CampaignTarget) error {
	doc := struct {
		RunID     string                  `json:"run_id"`
		CreatedAt time.Time               `json:"created_at"`
		Targets   []domain.CampaignTarget `json:"targets"`
	}{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Targets:   targets,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("outputs: marshaling targets: %w", err)
	}

	path := filepath.Join(r.dir, targetsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("outputs: writing targets: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("outputs: committing targets: %w", err)
	}

	logger.Info("campaign targets saved", "path", path, "targets", len(targets), "run_id", runID)
	return nil
}

// AppendOutcomes appends one CSV row per delivery outcome. The header is
// written once, when the log file doesn't exist yet.
func (r *FileRecorder) AppendOutcomes(ctx context.Context, runID string, outcomes []domain.DeliveryOutcome) error {
	path := filepath.Join(r.dir, outcomesFile)

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("outputs: opening results log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(outcomeHeader); err != nil {
			return fmt.Errorf("outputs: writing header: %w", err)
		}
	}

	for _, o := range outcomes {
		row := []string{
			strconv.Itoa(o.CampaignSeq),
			o.CustomerID,
			o.CustomerName,
			o.Phone,
			string(o.RiskTier),
			o.MessageSent,
			o.OfferCode,
			strconv.FormatBool(o.Delivered),
			o.MessageSID,
			o.Error,
			o.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("outputs: writing outcome row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("outputs: flushing results log: %w", err)
	}

	logger.Info("campaign results saved", "path", path, "outcomes", len(outcomes), "run_id", runID)
	return nil
}

// LoadTargets reads back the last persisted target list, for the audit and
// status endpoints.
func (r *FileRecorder) LoadTargets(ctx context.Context) ([]domain.CampaignTarget, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, targetsFile))
	if err != nil {
		return nil, err
	}
	var doc struct {
		Targets []domain.CampaignTarget `json:"targets"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("outputs: parsing targets document: %w", err)
	}
	return doc.Targets, nil
}
