package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultModel = "google/gemini-2.5-flash-image-preview"

var (
	invalidModelRe = regexp.MustCompile(`(?i)gemini-flash-1.5-8b`)
	truthyRe       = regexp.MustCompile(`(?i)^(1|true|yes)$`)
)

type (
	Config struct {
		HTTP        HTTP
		Log         Log
		Transform   Transform
		Provider    Provider
		Retention   Retention
		Kafka       Kafka
		OutboxRelay OutboxRelay
		Swagger     Swagger
	}

	HTTP struct {
		Host            string        `env:"HOST" envDefault:"127.0.0.1" yaml:"host"`
		Port            string        `env:"PORT" envDefault:"3000" yaml:"port"`
		UsePreforkMode  bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false" yaml:"use_prefork_mode"`
		BodyLimit       int           `env:"HTTP_BODY_LIMIT" envDefault:"12582912" yaml:"body_limit"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s" yaml:"shutdown_timeout"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info" yaml:"level"`
		File  string `env:"LOG_FILE" envDefault:"logs/server.log" yaml:"file"`
	}

	Transform struct {
		// Three spellings are accepted for the mock toggle.
		MockAI        string        `env:"MOCK_AI" yaml:"-"`
		UseMock       string        `env:"USE_MOCK" yaml:"-"`
		Mock          string        `env:"MOCK" yaml:"-"`
		MockStepDelay time.Duration `env:"MOCK_STEP_DELAY" envDefault:"600ms" yaml:"mock_step_delay"`

		AllowFallbackOriginal string `env:"ALLOW_FALLBACK_ORIGINAL" yaml:"-"`
		PromptFile            string `env:"PROVIDER_PROMPT_FILE" yaml:"prompt_file,omitempty"`

		MockEnabled     bool `yaml:"mock"`
		FallbackEnabled bool `yaml:"allow_fallback_original"`
	}

	Provider struct {
		APIKey    string `env:"OPENROUTER_API_KEY" yaml:"-"`
		RawModel  string `env:"OPENROUTER_MODEL" yaml:"raw_model,omitempty"`
		BaseURL   string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1" yaml:"base_url"`
		Referer   string `env:"OPENROUTER_REFERER" envDefault:"https://less-fat.app" yaml:"referer"`
		Title     string `env:"OPENROUTER_TITLE" envDefault:"GLP-1 Weight Loss Visualizer" yaml:"title"`
		UserAgent string `env:"OPENROUTER_USER_AGENT" envDefault:"less-fat-app/1.0 (+https://less-fat.app)" yaml:"user_agent"`

		AttemptTimeout     time.Duration `env:"PROVIDER_ATTEMPT_TIMEOUT" envDefault:"120s" yaml:"attempt_timeout"`
		MaxTokens          int           `env:"PROVIDER_MAX_TOKENS" envDefault:"2000" yaml:"max_tokens"`
		Temperature        float64       `env:"PROVIDER_TEMPERATURE" envDefault:"0.7" yaml:"temperature"`
		MaxImageDimension  int           `env:"PROVIDER_MAX_IMAGE_DIMENSION" envDefault:"0" yaml:"max_image_dimension"`
		RemoteFetchTimeout time.Duration `env:"REMOTE_FETCH_TIMEOUT" envDefault:"30s" yaml:"remote_fetch_timeout"`

		// Model is RawModel with the known-invalid identifier remapped.
		Model         string `yaml:"model"`
		ModelRemapped bool   `yaml:"model_remapped"`
		HasAPIKey     bool   `yaml:"api_key_set"`
	}

	Retention struct {
		JobTTLMillis    int64         `env:"JOB_TTL_MS" envDefault:"600000" yaml:"job_ttl_ms"`
		JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m" yaml:"janitor_interval"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," yaml:"brokers,omitempty"`
		Topic   string   `env:"KAFKA_TOPIC" envDefault:"photo-transform.job-events" yaml:"topic"`

		ConnAttempts int           `env:"KAFKA_CONN_ATTEMPTS" envDefault:"10" yaml:"conn_attempts"`
		ConnTimeout  time.Duration `env:"KAFKA_CONN_TIMEOUT" envDefault:"1s" yaml:"conn_timeout"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s" yaml:"poll_interval"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"1m" yaml:"cleanup_interval"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s" yaml:"process_batch_timeout"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s" yaml:"shutdown_timeout"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100" yaml:"batch_size"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3" yaml:"max_retries"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false" yaml:"enabled"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg.resolve()

	if cfg.Retention.JobTTLMillis <= 0 {
		return nil, fmt.Errorf("config error: JOB_TTL_MS must be positive, got %d", cfg.Retention.JobTTLMillis)
	}

	return cfg, nil
}

func (c *Config) resolve() {
	c.Transform.MockEnabled = IsTruthy(c.Transform.MockAI) || IsTruthy(c.Transform.UseMock) || IsTruthy(c.Transform.Mock)
	c.Transform.FallbackEnabled = IsTruthy(c.Transform.AllowFallbackOriginal)

	c.Provider.RawModel = strings.TrimSpace(c.Provider.RawModel)
	c.Provider.Model, c.Provider.ModelRemapped = ResolveModel(c.Provider.RawModel)
	c.Provider.HasAPIKey = c.Provider.APIKey != ""
}

func (c *Config) JobTTL() time.Duration {
	return time.Duration(c.Retention.JobTTLMillis) * time.Millisecond
}

// IsTruthy accepts 1, true and yes in any case.
func IsTruthy(v string) bool {
	return truthyRe.MatchString(strings.TrimSpace(v))
}

// IsInvalidModel reports identifiers the provider is known to reject.
func IsInvalidModel(model string) bool {
	return invalidModelRe.MatchString(model)
}

// ResolveModel returns the model to use and whether raw was remapped.
func ResolveModel(raw string) (string, bool) {
	switch {
	case raw == "":
		return DefaultModel, false
	case IsInvalidModel(raw):
		return DefaultModel, true
	default:
		return raw, false
	}
}
