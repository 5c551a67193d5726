package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Twilio      TwilioConfig      `yaml:"twilio"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Data        DataConfig        `yaml:"data"`
	Outputs     OutputsConfig     `yaml:"outputs"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Dispatch    DispatchConfig    `yaml:"dispatch"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GetHost returns the server host, honoring a SERVER_HOST override and
// listening on all interfaces when running in a container.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// TwilioConfig holds Twilio SMS API configuration. All three credentials must
// be set together for the transport to be considered configured.
type TwilioConfig struct {
	AccountSID     string `yaml:"account_sid"`
	AuthToken      string `yaml:"auth_token"`
	FromNumber     string `yaml:"from_number"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c TwilioConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HuggingFaceConfig holds the generative text backend configuration.
// An empty token means "not configured", which is a valid state: the
// composer degrades to its deterministic fallback.
type HuggingFaceConfig struct {
	Token          string `yaml:"token"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c HuggingFaceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DataConfig selects and configures the customer/transaction data source.
type DataConfig struct {
	// Driver is "csv" or "postgres".
	Driver string `yaml:"driver"`
	// Dir is the directory holding customers.csv, transactions.csv,
	// products.csv and churn_predictions.csv for the csv driver.
	Dir string `yaml:"dir"`
	// DatabaseURL is the postgres DSN for the postgres driver.
	DatabaseURL string `yaml:"database_url"`
	// AllowSample enables the deterministic synthetic data fallback when
	// backing files are absent. Off by default so missing data fails loudly
	// outside demo deployments.
	AllowSample bool `yaml:"allow_sample"`
	// SampleSeed seeds the synthetic generator so demo runs are repeatable.
	SampleSeed int64 `yaml:"sample_seed"`
}

// OutputsConfig holds the campaign artifact directory.
type OutputsConfig struct {
	Dir string `yaml:"dir"`
}

// ScoringConfig holds the churn risk tier thresholds.
type ScoringConfig struct {
	LowThreshold    float64 `yaml:"low_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold"`
}

// Validate checks the threshold contract 0 < low < medium < 1.
func (c ScoringConfig) Validate() error {
	if c.LowThreshold <= 0 || c.MediumThreshold >= 1 || c.LowThreshold >= c.MediumThreshold {
		return fmt.Errorf("scoring thresholds must satisfy 0 < low (%v) < medium (%v) < 1",
			c.LowThreshold, c.MediumThreshold)
	}
	return nil
}

// DispatchConfig holds batch SMS dispatch tuning.
type DispatchConfig struct {
	// SendDelaySeconds is the fixed pause between consecutive sends,
	// required by the transport's per-number rate limit.
	SendDelaySeconds int `yaml:"send_delay_seconds"`
	// MaxSMSLength is the hard cap applied before handing a body to the
	// transport. Longer bodies are truncated with an ellipsis.
	MaxSMSLength int `yaml:"max_sms_length"`
}

// SendDelay returns the inter-send pause as a duration
func (c DispatchConfig) SendDelay() time.Duration {
	return time.Duration(c.SendDelaySeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Twilio.BaseURL == "" {
		cfg.Twilio.BaseURL = "https://api.twilio.com"
	}
	if cfg.Twilio.TimeoutSeconds == 0 {
		cfg.Twilio.TimeoutSeconds = 30
	}
	if cfg.HuggingFace.BaseURL == "" {
		cfg.HuggingFace.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.HuggingFace.Model == "" {
		cfg.HuggingFace.Model = "google/flan-t5-small"
	}
	if cfg.HuggingFace.TimeoutSeconds == 0 {
		cfg.HuggingFace.TimeoutSeconds = 20
	}
	if cfg.Data.Driver == "" {
		cfg.Data.Driver = "csv"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.SampleSeed == 0 {
		cfg.Data.SampleSeed = 42
	}
	if cfg.Outputs.Dir == "" {
		cfg.Outputs.Dir = "outputs"
	}
	if cfg.Scoring.LowThreshold == 0 {
		cfg.Scoring.LowThreshold = 0.3
	}
	if cfg.Scoring.MediumThreshold == 0 {
		cfg.Scoring.MediumThreshold = 0.7
	}
	if cfg.Dispatch.SendDelaySeconds == 0 {
		cfg.Dispatch.SendDelaySeconds = 2
	}
	if cfg.Dispatch.MaxSMSLength == 0 {
		cfg.Dispatch.MaxSMSLength = 300
	}
}

// Default returns a configuration with all defaults applied and no file read.
// Useful for tests and for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
// A missing config file is not an error: defaults are used instead.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		cfg.Twilio.AccountSID = sid
	}
	if token := os.Getenv("TWILIO_AUTH_TOKEN"); token != "" {
		cfg.Twilio.AuthToken = token
	}
	if from := os.Getenv("TWILIO_PHONE_NUMBER"); from != "" {
		cfg.Twilio.FromNumber = from
	}
	if token := os.Getenv("HUGGINGFACE_TOKEN"); token != "" {
		cfg.HuggingFace.Token = token
	}
	if model := os.Getenv("HUGGINGFACE_MODEL"); model != "" {
		cfg.HuggingFace.Model = model
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Data.Driver = "postgres"
		cfg.Data.DatabaseURL = dsn
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}
	if dir := os.Getenv("OUTPUTS_DIR"); dir != "" {
		cfg.Outputs.Dir = dir
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("ALLOW_SAMPLE_DATA"); v != "" {
		cfg.Data.AllowSample = v == "true" || v == "1"
	}

	if err := cfg.Scoring.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
