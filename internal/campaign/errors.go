package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNoTargets      = errors.New("campaign has no targets")
	ErrNotConfigured  = errors.New("SMS transport not configured")
	ErrMissingContact = errors.New("missing phone or message")
)
