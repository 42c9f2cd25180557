// Package config loads the billingview server settings from the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Defaults applied when the variable is unset.
const (
	DefaultReturnURL        = "https://localhost:5173"
	DefaultHTTPAddr         = ":8080"
	DefaultLogLevel         = "info"
	DefaultMetricsNamespace = "billingview"
	DefaultUserIDHeader     = "X-User-ID"
	DefaultPortalRateLimit  = 30
)

// Config is the server configuration. Secrets may be empty: the billing layer
// reports them as configuration errors per call rather than at startup.
type Config struct {
	StripeSecretKey   string
	DefaultCustomerID string
	ReturnURL         string `validate:"omitempty,url"`
	StripeAPIBaseURL  string `validate:"omitempty,url"`

	HTTPAddr         string `validate:"required"`
	LogLevel         string `validate:"required,oneof=trace debug info warn error fatal panic disabled"`
	MetricsNamespace string `validate:"required"`
	UserIDHeader     string `validate:"required"`
	PortalRateLimit  int    `validate:"gte=0"`

	RedisURL           string `validate:"omitempty,url"`
	DatabaseURL        string `validate:"omitempty,url"`
	FirestoreProjectID string
}

// Load reads envFiles (missing files are skipped) into the process environment
// without overriding variables that are already set, then builds and validates
// a Config.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	rateLimit, err := intEnv("PORTAL_RATE_LIMIT", DefaultPortalRateLimit)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
		DefaultCustomerID:  getEnv("DEFAULT_STRIPE_CUSTOMER_ID", ""),
		ReturnURL:          getEnv("STRIPE_BILLING_PORTAL_RETURN_URL", DefaultReturnURL),
		StripeAPIBaseURL:   getEnv("STRIPE_API_BASE_URL", ""),
		HTTPAddr:           getEnv("BILLING_HTTP_ADDR", DefaultHTTPAddr),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", DefaultMetricsNamespace),
		UserIDHeader:       getEnv("USER_ID_HEADER", DefaultUserIDHeader),
		PortalRateLimit:    rateLimit,
		RedisURL:           getEnv("REDIS_URL", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the shape of the configured values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Level returns the zerolog level for LogLevel.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// MissingSecrets lists the unset settings that will make billing calls fail.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.DefaultCustomerID == "" && c.RedisURL == "" && c.DatabaseURL == "" && c.FirestoreProjectID == "" {
		missing = append(missing, "DEFAULT_STRIPE_CUSTOMER_ID")
	}
	return missing
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
