package domain

import "time"

// MaxSMSLength is the hard cap for a single composed retention message.
const MaxSMSLength = 160

// CampaignTarget is one customer selected for a retention campaign, with the
// message already composed. Immutable once handed to the dispatcher.
type CampaignTarget struct {
	CustomerID string   `json:"customer_id"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	Email      string   `json:"email,omitempty"`
	RiskTier   RiskTier `json:"churn_risk"`
	Message    string   `json:"message"`
	OfferCode  string   `json:"offer_code"`
	DaysSince  int      `json:"days_since"`
}

// DeliveryOutcome is the per-target result of one dispatch attempt.
// Append-only; one row per target per campaign.
type DeliveryOutcome struct {
	CampaignSeq  int       `json:"campaign_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	RiskTier     RiskTier  `json:"churn_risk"`
	MessageSent  string    `json:"message_sent"`
	OfferCode    string    `json:"offer_code"`
	Delivered    bool      `json:"sms_success"`
	MessageSID   string    `json:"message_sid,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// CampaignSummary aggregates the outcomes of one campaign execution.
type CampaignSummary struct {
	Success    bool   `json:"success"`
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}
