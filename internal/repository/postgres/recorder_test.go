package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/freshmart/retention/internal/domain"
)

var errConstraint = errors.New("unique constraint violation")

func TestCampaignRecorder_SaveTargets(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	targets := []domain.CampaignTarget{
		{CustomerID: "CUST100001", Name: "Ana Diaz", Phone: "+15551230001",
			RiskTier: domain.RiskHigh, Message: "Hi Ana!", OfferCode: "FRESH0001", DaysSince: 90},
		{CustomerID: "CUST100002", Name: "Ben Okafor", Phone: "+15551230002",
			RiskTier: domain.RiskHigh, Message: "Hi Ben!", OfferCode: "FRESH0002", DaysSince: 45},
	}

	mock.ExpectBegin()
	for _, target := range targets {
		mock.ExpectExec("INSERT INTO campaign_targets").
			WithArgs("run-1", target.CustomerID, target.Name, target.Phone, target.Email,
				string(target.RiskTier), target.Message, target.OfferCode, target.DaysSince).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	recorder := NewCampaignRecorder(db)
	if err := recorder.SaveTargets(context.Background(), "run-1", targets); err != nil {
		t.Fatalf("SaveTargets() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCampaignRecorder_SaveTargetsRollsBackOnError(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_targets").WillReturnError(errConstraint)
	mock.ExpectRollback()

	recorder := NewCampaignRecorder(db)
	err := recorder.SaveTargets(context.Background(), "run-1", []domain.CampaignTarget{
		{CustomerID: "CUST100001", Name: "Ana Diaz"},
	})
	if err == nil {
		t.Fatal("SaveTargets() should surface insert errors")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCampaignRecorder_AppendOutcomes(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	sentAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	outcomes := []domain.DeliveryOutcome{
		{CampaignSeq: 1, CustomerID: "CUST100001", CustomerName: "Ana Diaz",
			Phone: "+15551230001", RiskTier: domain.RiskHigh, MessageSent: "Hi Ana!",
			OfferCode: "FRESH0001", Delivered: true, MessageSID: "SM123", Timestamp: sentAt},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_results").
		WithArgs("run-1", 1, "CUST100001", "Ana Diaz", "+15551230001",
			"High", "Hi Ana!", "FRESH0001", true, "SM123", "", sentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	recorder := NewCampaignRecorder(db)
	if err := recorder.AppendOutcomes(context.Background(), "run-1", outcomes); err != nil {
		t.Fatalf("AppendOutcomes() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCampaignRecorder_LoadTargetsLatestRun(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT run_id FROM campaign_targets").
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}).AddRow("run-9"))
	mock.ExpectQuery("SELECT customer_id").
		WithArgs("run-9").
		WillReturnRows(sqlmock.NewRows([]string{
			"customer_id", "name", "phone", "email", "churn_risk",
			"message", "offer_code", "days_since",
		}).AddRow("CUST100001", "Ana Diaz", "+15551230001", "", "High", "Hi Ana!", "FRESH0001", 90))

	recorder := NewCampaignRecorder(db)
	targets, err := recorder.LoadTargets(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadTargets() error: %v", err)
	}
	if len(targets) != 1 || targets[0].RiskTier != domain.RiskHigh {
		t.Errorf("targets = %+v", targets)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCampaignRecorder_LoadTargetsNoRuns(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT run_id FROM campaign_targets").
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}))

	recorder := NewCampaignRecorder(db)
	targets, err := recorder.LoadTargets(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadTargets() error: %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("targets = %d, want 0", len(targets))
	}
}
