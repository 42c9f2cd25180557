package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"STRIPE_SECRET_KEY", "DEFAULT_STRIPE_CUSTOMER_ID", "STRIPE_BILLING_PORTAL_RETURN_URL",
	"STRIPE_API_BASE_URL", "BILLING_HTTP_ADDR", "LOG_LEVEL", "METRICS_NAMESPACE",
	"USER_ID_HEADER", "PORTAL_RATE_LIMIT", "REDIS_URL", "DATABASE_URL", "FIRESTORE_PROJECT_ID",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultReturnURL, cfg.ReturnURL)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultMetricsNamespace, cfg.MetricsNamespace)
	assert.Equal(t, DefaultUserIDHeader, cfg.UserIDHeader)
	assert.Equal(t, DefaultPortalRateLimit, cfg.PortalRateLimit)
	assert.Empty(t, cfg.StripeSecretKey)
	assert.Equal(t, []string{"STRIPE_SECRET_KEY", "DEFAULT_STRIPE_CUSTOMER_ID"}, cfg.MissingSecrets())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("DEFAULT_STRIPE_CUSTOMER_ID", "cus_123")
	t.Setenv("STRIPE_BILLING_PORTAL_RETURN_URL", "https://app.example.com/")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PORTAL_RATE_LIMIT", "5")

	cfg, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
	assert.Equal(t, "cus_123", cfg.DefaultCustomerID)
	assert.Equal(t, "https://app.example.com/", cfg.ReturnURL)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 5, cfg.PortalRateLimit)
	assert.Empty(t, cfg.MissingSecrets())
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"STRIPE_SECRET_KEY=sk_from_file\nBILLING_HTTP_ADDR=:9090\nREDIS_URL=redis://localhost:6379/0\n"), 0o600))
	t.Cleanup(func() {
		for _, k := range allKeys {
			_ = os.Unsetenv(k)
		}
	})

	t.Setenv("BILLING_HTTP_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk_from_file", cfg.StripeSecretKey)
	assert.Equal(t, ":7070", cfg.HTTPAddr, "process environment wins over the file")
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Empty(t, cfg.MissingSecrets(), "a resolver backend stands in for the static customer")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STRIPE_BILLING_PORTAL_RETURN_URL", "not a url"},
		{"LOG_LEVEL", "verbose"},
		{"PORTAL_RATE_LIMIT", "many"},
		{"PORTAL_RATE_LIMIT", "-1"},
		{"DATABASE_URL", "::::"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(missingFile(t))
			assert.Error(t, err)
		})
	}
}
