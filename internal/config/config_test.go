package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  cors_origins:
    - "http://localhost:3000"
    - "https://retention.freshmart.io"

twilio:
  account_sid: "ACtest"
  auth_token: "secret"
  from_number: "+15550001111"
  timeout_seconds: 45

huggingface:
  token: "hf-test-token"
  model: "google/flan-t5-base"

data:
  driver: "csv"
  dir: "./test-data"
  allow_sample: true

scoring:
  low_threshold: 0.25
  medium_threshold: 0.65

dispatch:
  send_delay_seconds: 1
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Test server config
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Len(t, cfg.Server.CORSOrigins, 2)

	// Test Twilio config
	assert.Equal(t, "ACtest", cfg.Twilio.AccountSID)
	assert.Equal(t, "+15550001111", cfg.Twilio.FromNumber)
	assert.Equal(t, 45, cfg.Twilio.TimeoutSeconds)

	// Test HuggingFace config with partial override
	assert.Equal(t, "hf-test-token", cfg.HuggingFace.Token)
	assert.Equal(t, "google/flan-t5-base", cfg.HuggingFace.Model)
	assert.Equal(t, 20, cfg.HuggingFace.TimeoutSeconds, "default timeout should apply")

	// Test data config
	assert.Equal(t, "csv", cfg.Data.Driver)
	assert.True(t, cfg.Data.AllowSample)

	// Test scoring config
	assert.Equal(t, 0.25, cfg.Scoring.LowThreshold)
	assert.Equal(t, 0.65, cfg.Scoring.MediumThreshold)

	// Test dispatch config
	assert.Equal(t, 1, cfg.Dispatch.SendDelaySeconds)
	assert.Equal(t, 300, cfg.Dispatch.MaxSMSLength, "default cap should apply")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "https://api.twilio.com", cfg.Twilio.BaseURL)
	assert.Equal(t, "https://api-inference.huggingface.co", cfg.HuggingFace.BaseURL)
	assert.Equal(t, "google/flan-t5-small", cfg.HuggingFace.Model)
	assert.Equal(t, "csv", cfg.Data.Driver)
	assert.False(t, cfg.Data.AllowSample, "sample data must be opt-in")
	assert.Equal(t, 0.3, cfg.Scoring.LowThreshold)
	assert.Equal(t, 0.7, cfg.Scoring.MediumThreshold)
	assert.Equal(t, 2, cfg.Dispatch.SendDelaySeconds)
	require.NoError(t, cfg.Scoring.Validate())
}

func TestScoringConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		low     float64
		medium  float64
		wantErr bool
	}{
		{"valid defaults", 0.3, 0.7, false},
		{"valid narrow", 0.1, 0.2, false},
		{"low zero", 0, 0.7, true},
		{"medium one", 0.3, 1.0, true},
		{"inverted", 0.7, 0.3, true},
		{"equal", 0.5, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ScoringConfig{LowThreshold: tt.low, MediumThreshold: tt.medium}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "ACenv")
	t.Setenv("TWILIO_AUTH_TOKEN", "env-token")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15559998888")
	t.Setenv("HUGGINGFACE_TOKEN", "hf-env")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("ALLOW_SAMPLE_DATA", "true")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ACenv", cfg.Twilio.AccountSID)
	assert.Equal(t, "env-token", cfg.Twilio.AuthToken)
	assert.Equal(t, "+15559998888", cfg.Twilio.FromNumber)
	assert.Equal(t, "hf-env", cfg.HuggingFace.Token)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.True(t, cfg.Data.AllowSample)
}

func TestLoadFromEnvDatabaseURLSelectsPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:pw@localhost/freshmart?sslmode=disable")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Data.Driver)
	assert.Equal(t, "postgres://app:pw@localhost/freshmart?sslmode=disable", cfg.Data.DatabaseURL)
}
