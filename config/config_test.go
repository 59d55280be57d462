package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setProduction skips the .env lookup so tests only see t.Setenv values.
func setProduction(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "production")
}

func TestLoad_Defaults(t *testing.T) {
	setProduction(t)
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DB_AUTO_MIGRATE", "SERVICE_TIMEOUT", "HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_REQUESTS",
		"RATE_LIMIT_WINDOW", "AUTH_JWT_SECRET", "REDIS_URL", "CACHE_TTL", "RABBIT_URL",
		"RABBIT_EXCHANGE", "MAIL_PROVIDER", "MAIL_FROM_NAME", "NOTIFY_EMAIL_TO", "SES_INSECURE_SKIP_VERIFY",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, defaultDBUrl, cfg.DBUrl)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.ServiceTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPReadTimeout)
	assert.Equal(t, 20*time.Second, cfg.HTTPWriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPIdleTimeout)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.True(t, cfg.RateLimitEnabled())
	assert.Empty(t, cfg.AuthJWTSecret)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "events", cfg.RabbitExchange)
	assert.Equal(t, "noop", cfg.Mail.Provider)
	assert.Equal(t, "Events API", cfg.Mail.FromName)
	assert.Empty(t, cfg.Mail.NotifyTo)
	assert.False(t, cfg.Mail.InsecureSkipVerify)
}

func TestLoad_Overrides(t *testing.T) {
	setProduction(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("SERVICE_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, ,http://b.local")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("MAIL_PROVIDER", "SES")
	t.Setenv("NOTIFY_EMAIL_TO", "ops@example.com,team@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, 750*time.Millisecond, cfg.ServiceTimeout)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.RateLimitEnabled())
	assert.Equal(t, "s3cret", cfg.AuthJWTSecret)
	assert.Equal(t, "ses", cfg.Mail.Provider)
	assert.Equal(t, []string{"ops@example.com", "team@example.com"}, cfg.Mail.NotifyTo)
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SERVICE_TIMEOUT", "five seconds"},
		{"SERVICE_TIMEOUT", "0s"},
		{"HTTP_IDLE_TIMEOUT", "1 minute"},
		{"RATE_LIMIT_REQUESTS", "lots"},
		{"RATE_LIMIT_REQUESTS", "-1"},
		{"CACHE_TTL", "forever"},
		{"DB_AUTO_MIGRATE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setProduction(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
