// Package config loads service settings from the environment, after
// applying a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	APISecret string

	DatabaseURL string

	// CORSAllowedOrigins is the origin allow-list; the first entry is
	// echoed to unknown origins.
	CORSAllowedOrigins []string

	RateLimit RateLimitConfig
	Redis     RedisConfig
	LLM       LLMConfig

	MaxTextLength int
	// LegacyValidationStatus answers validation failures with 500 instead of 400.
	LegacyValidationStatus bool
}

type RateLimitConfig struct {
	Store         string
	MaxRequests   int
	Window        time.Duration
	BlockDuration time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LLMConfig struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	MaxRetries      int
	RetryDelay      time.Duration
	ClassifyTimeout time.Duration
}

// Bounds accepted for the rate limiter.
const (
	maxRateLimitRequests = 10000
	maxRateLimitWindow   = 24 * time.Hour
)

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv without touching .env files.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	cfg := &Config{
		Port:        r.str("PORT", "8080"),
		GinMode:     r.str("GIN_MODE", "release"),
		LogLevel:    r.str("LOG_LEVEL", "info"),
		APISecret:   r.str("API_SECRET", ""),
		DatabaseURL: r.str("DATABASE_URL", "host=localhost user=postgres password=password dbname=vacancies port=5432 sslmode=disable"),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS",
			[]string{"http://localhost:3000", "http://localhost:5173"}),
		RateLimit: RateLimitConfig{
			Store:         strings.ToLower(r.str("RATE_LIMIT_STORE", StoreMemory)),
			MaxRequests:   r.int("RATE_LIMIT_MAX_REQUESTS", 100),
			Window:        r.duration("RATE_LIMIT_WINDOW", time.Minute),
			BlockDuration: r.duration("RATE_LIMIT_BLOCK_DURATION", time.Minute),
			SweepInterval: r.duration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Address:  r.str("REDIS_ADDRESS", "localhost:6379"),
			Password: r.str("REDIS_PASSWORD", ""),
			DB:       r.int("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(r.str("LLM_PROVIDER", "openai")),
			APIKey:          r.str("LLM_API_KEY", ""),
			Model:           r.str("LLM_MODEL", ""),
			BaseURL:         r.str("LLM_BASE_URL", ""),
			MaxRetries:      r.int("LLM_MAX_RETRIES", 2),
			RetryDelay:      r.duration("LLM_RETRY_DELAY", time.Second),
			ClassifyTimeout: r.duration("CLASSIFY_TIMEOUT", 60*time.Second),
		},
		MaxTextLength:          r.int("MAX_TEXT_LENGTH", 4000),
		LegacyValidationStatus: r.bool("LEGACY_VALIDATION_STATUS", false),
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parse but make no sense.
func (c *Config) Validate() error {
	var errs []error
	rl := c.RateLimit
	if rl.MaxRequests <= 0 || rl.MaxRequests > maxRateLimitRequests {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be in 1..%d", maxRateLimitRequests))
	}
	if rl.Window <= 0 || rl.Window > maxRateLimitWindow {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive and at most 24h"))
	}
	if rl.BlockDuration <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BLOCK_DURATION must be positive"))
	}
	if rl.Store != StoreMemory && rl.Store != StoreRedis {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_STORE must be %q or %q", StoreMemory, StoreRedis))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("LLM_MAX_RETRIES must not be negative"))
	}
	if c.MaxTextLength <= 0 {
		errs = append(errs, errors.New("MAX_TEXT_LENGTH must be positive"))
	}
	return errors.Join(errs...)
}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
