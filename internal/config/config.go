// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// RedisConfig selects the shared storage backend. An empty Addr keeps
// everything in process memory.
type RedisConfig struct {
	Addr            string        `envconfig:"NEXI_REDIS_ADDR"`
	Password        string        `envconfig:"NEXI_REDIS_PASSWORD"`
	DB              int           `envconfig:"NEXI_REDIS_DB" default:"0"`
	ConversationTTL time.Duration `envconfig:"NEXI_CONVERSATION_TTL" default:"24h"`
	ResultTTL       time.Duration `envconfig:"NEXI_RESULT_TTL" default:"720h"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// GeminiConfig configures the estimation service client.
type GeminiConfig struct {
	APIKey  string        `envconfig:"GEMINI_API_KEY"`
	BaseURL string        `envconfig:"GEMINI_BASE_URL"`
	Model   string        `envconfig:"NEXI_GEMINI_MODEL" default:"gemini-2.5-pro"`
	Timeout time.Duration `envconfig:"NEXI_ESTIMATE_TIMEOUT" default:"90s"`
}

// QuotaConfig holds the daily analysis limits. Zero disables a limit.
type QuotaConfig struct {
	UserDaily      int `envconfig:"NEXI_QUOTA_USER_DAILY" default:"20"`
	AnonymousDaily int `envconfig:"NEXI_QUOTA_ANONYMOUS_DAILY" default:"3"`
}

// StoreConfig selects where conversations live when Redis is off, and
// how they are protected at rest.
type StoreConfig struct {
	// Dir keeps conversations as files; empty keeps them in memory.
	Dir string `envconfig:"NEXI_STORE_DIR"`
	// EncryptionKey is a base64 AES-256 key; empty stores plain JSON.
	EncryptionKey string `envconfig:"NEXI_ENCRYPTION_KEY"`
	// FallbackKeys still decrypt conversations sealed before a rotation.
	FallbackKeys []string `envconfig:"NEXI_ENCRYPTION_FALLBACK_KEYS"`
	// PIINodes are regular expressions over node ids whose answers are
	// masked before they are stored.
	PIINodes []string `envconfig:"NEXI_PII_NODES"`
}

// Config is the full service configuration.
type Config struct {
	Addr      string `envconfig:"NEXI_ADDR" default:":8080"`
	LogLevel  string `envconfig:"NEXI_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"NEXI_LOG_FORMAT" default:"text"`

	// FlowPath replaces the embedded question graph when set.
	FlowPath string `envconfig:"NEXI_FLOW_PATH"`
	// BlacklistPaths are tried in order; the first existing file wins.
	BlacklistPaths []string `envconfig:"NEXI_BLACKLIST_PATHS" default:"data/blacklist.json,data/blacklist.csv"`
	DefaultOrigin  string   `envconfig:"NEXI_DEFAULT_ORIGIN" default:"China"`
	MaxInputSize   int      `envconfig:"NEXI_MAX_INPUT_SIZE" default:"4096"`

	Redis  RedisConfig
	Store  StoreConfig
	Gemini GeminiConfig
	Quota  QuotaConfig
}

// Load reads envFile when it exists and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max input size must be positive, got %d", c.MaxInputSize)
	}
	if c.Quota.UserDaily < 0 || c.Quota.AnonymousDaily < 0 {
		return errors.New("quota limits must not be negative")
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
