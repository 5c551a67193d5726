package twilio

// messageResponse is the Twilio Messages API response body.
type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	To           string `json:"to"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// errorResponse is the Twilio error envelope for non-2xx responses.
type errorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// accountResponse is the subset of the account resource used by the
// connection check.
type accountResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// SendResult is the outcome of a single SMS send.
type SendResult struct {
	SID    string `json:"message_sid"`
	To     string `json:"to"`
	Status string `json:"status"`
}

// ConnectionStatus reports the result of a transport connectivity check.
type ConnectionStatus struct {
	Success       bool   `json:"success"`
	AccountStatus string `json:"account_status,omitempty"`
	FromNumber    string `json:"from_number,omitempty"`
	Error         string `json:"error,omitempty"`
}
