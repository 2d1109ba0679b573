// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "guireplay-auth"); required when auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "guireplay-api"); required when auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m"). Used when auth is enabled.
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "7d"). Used when auth is enabled.
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OpenAIAPIKey is the API key for the vision model. Required for /v1/locate and LLM transposition.
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	// OpenAIModel is the vision model name (default gpt-4o).
	OpenAIModel string `mapstructure:"OPENAI_MODEL"`
	// OpenAIBaseURL overrides the OpenAI API base URL (e.g. a local proxy). Empty uses the default.
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`

	// Locator tuning. Zero values use the calibrated defaults; per-request
	// params override these per field.
	LocateNumCursors          int     `mapstructure:"LOCATE_NUM_CURSORS"`
	LocateSpreadReduction     float64 `mapstructure:"LOCATE_SPREAD_REDUCTION"`
	LocateConsensusThreshold  int     `mapstructure:"LOCATE_CONSENSUS_THRESHOLD"`
	LocateRetriesPerIteration int     `mapstructure:"LOCATE_RETRIES_PER_ITERATION"`
	LocateMaxIterations       int     `mapstructure:"LOCATE_MAX_ITERATIONS"`
	LocateMaxOverlapRatio     float64 `mapstructure:"LOCATE_MAX_OVERLAP_RATIO"`
	LocateDownsampleFactor    int     `mapstructure:"LOCATE_DOWNSAMPLE_FACTOR"`
	LocateLabelSizeRatio      float64 `mapstructure:"LOCATE_LABEL_SIZE_RATIO"`
	LocateGridSize            int     `mapstructure:"LOCATE_GRID_SIZE"`
	LocateGridMaxRounds       int     `mapstructure:"LOCATE_GRID_MAX_ROUNDS"`

	// PrivateAIAPIKey is the API key for the Private AI deidentification service. Required for scrubbing.
	PrivateAIAPIKey string `mapstructure:"PRIVATE_AI_API_KEY"`
	// PrivateAIURL overrides the Private AI endpoint. Empty uses the hosted service.
	PrivateAIURL string `mapstructure:"PRIVATE_AI_URL"`

	// PrivacyPolicyPath is the path to a Rego policy file for scrub/export decisions.
	// Empty uses the built-in default policy.
	PrivacyPolicyPath string `mapstructure:"PRIVACY_POLICY_PATH"`
	// RetentionDays is the default recording retention period used by the privacy policy.
	RetentionDays int `mapstructure:"RETENTION_DAYS"`

	// OTLPEndpoint is the OTLP gRPC endpoint for traces/metrics/logs (e.g. http://localhost:4317).
	// Empty disables OTel export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, the server emits capture events to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for capture events (default guireplay-capture).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "guireplay-auth")
	v.SetDefault("JWT_AUDIENCE", "guireplay-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("LOCATE_NUM_CURSORS", 0)
	v.SetDefault("LOCATE_SPREAD_REDUCTION", 0.0)
	v.SetDefault("LOCATE_CONSENSUS_THRESHOLD", 0)
	v.SetDefault("LOCATE_RETRIES_PER_ITERATION", 0)
	v.SetDefault("LOCATE_MAX_ITERATIONS", 0)
	v.SetDefault("LOCATE_MAX_OVERLAP_RATIO", 0.0)
	v.SetDefault("LOCATE_DOWNSAMPLE_FACTOR", 0)
	v.SetDefault("LOCATE_LABEL_SIZE_RATIO", 0.0)
	v.SetDefault("LOCATE_GRID_SIZE", 0)
	v.SetDefault("LOCATE_GRID_MAX_ROUNDS", 0)
	v.SetDefault("PRIVATE_AI_API_KEY", "")
	v.SetDefault("PRIVATE_AI_URL", "")
	v.SetDefault("PRIVACY_POLICY_PATH", "")
	v.SetDefault("RETENTION_DAYS", 90)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "guireplay-capture")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "guireplay-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
