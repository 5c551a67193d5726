// Package twilio is a minimal Twilio Messages API client for outbound SMS.
//
// Sends are single-attempt: a failed send is recorded by the caller, never
// retried here. Only the read-only connection check goes through the
// retrying client.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/freshmart/retention/internal/config"
	"github.com/freshmart/retention/internal/pkg/httpretry"
	"github.com/freshmart/retention/internal/pkg/logger"
)

// optOutSuffix is appended to every outbound body that doesn't already carry
// an opt-out instruction. Carrier compliance, not a courtesy.
const optOutSuffix = "\n\nReply STOP to opt-out."

// Client is a Twilio API client. A client with incomplete credentials is
// valid but reports IsConfigured() == false and refuses to send.
type Client struct {
	baseURL     string
	accountSID  string
	authToken   string
	fromNumber  string
	maxLength   int
	httpClient  httpretry.HTTPDoer
	probeClient httpretry.HTTPDoer
}

// NewClient creates a Twilio client from configuration. All three of account
// SID, auth token, and from-number must be present for the client to be
// configured.
func NewClient(cfg config.TwilioConfig, maxLength int) *Client {
	plain := &http.Client{Timeout: cfg.Timeout()}
	c := &Client{
		baseURL:    cfg.BaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		maxLength:  maxLength,
		// Sends are never retried; duplicated SMS annoy customers more
		// than missed ones.
		httpClient:  plain,
		probeClient: httpretry.NewRetryClient(plain, 3),
	}
	if c.IsConfigured() {
		logger.Info("twilio SMS transport initialized", "from", cfg.FromNumber)
	} else {
		logger.Warn("twilio credentials not fully configured, sends will be skipped")
	}
	return c
}

// IsConfigured reports whether the transport has a complete credential set.
func (c *Client) IsConfigured() bool {
	return c.accountSID != "" && c.authToken != "" && c.fromNumber != ""
}

// FromNumber returns the configured sender number.
func (c *Client) FromNumber() string { return c.fromNumber }

// SendSMS sends a single message. The body is formatted to transport
// constraints (length cap, opt-out suffix) before sending.
func (c *Client) SendSMS(ctx context.Context, toNumber, body string) (*SendResult, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("twilio: transport not configured")
	}

	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", c.fromNumber)
	form.Set("Body", c.FormatMessage(body))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: creating request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twilio: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("twilio: API error %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("twilio: API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var msg messageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, fmt.Errorf("twilio: parsing response: %w", err)
	}
	if msg.ErrorCode != nil {
		return nil, fmt.Errorf("twilio: message rejected (code %d): %s", *msg.ErrorCode, msg.ErrorMessage)
	}

	logger.Info("SMS sent", "to_number", toNumber, "sid", msg.SID)
	return &SendResult{SID: msg.SID, To: msg.To, Status: msg.Status}, nil
}

// FormatMessage applies transport constraints: hard length cap with ellipsis
// and an opt-out suffix when one is missing.
func (c *Client) FormatMessage(body string) string {
	max := c.maxLength
	if max <= 0 {
		max = 300
	}
	if len(body) > max {
		body = body[:max-3] + "..."
	}
	if !strings.Contains(strings.ToUpper(body), "STOP") {
		body += optOutSuffix
	}
	return body
}

// TestConnection fetches the account resource to verify credentials.
// Read-only and idempotent, so it uses the retrying client.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	if !c.IsConfigured() {
		return ConnectionStatus{Success: false, Error: "SMS transport not configured"}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ConnectionStatus{Success: false, Error: err.Error()}
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return ConnectionStatus{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ConnectionStatus{Success: false, Error: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return ConnectionStatus{Success: false, Error: fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))}
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return ConnectionStatus{Success: false, Error: err.Error()}
	}

	return ConnectionStatus{
		Success:       true,
		AccountStatus: account.Status,
		FromNumber:    c.fromNumber,
	}
}
