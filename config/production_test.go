package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "test-secret-key-for-jwt-signing-32-chars")
}

func TestLoadProductionConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "repair_desk", cfg.Database.Name)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.ViewTTL)
	assert.Equal(t, "repair-desk", cfg.Telemetry.ServiceName)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
	assert.Equal(t, time.Minute, cfg.Reports.RefreshInterval)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Security.AllowedOrigins)
}

func TestLoadProductionConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://desk.example.com, https://admin.example.com,")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_VIEW_TTL", "30s")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("STATE_REFRESH_INTERVAL", "2m")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"https://desk.example.com", "https://admin.example.com"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.ViewTTL)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRatio)
	assert.Equal(t, 2*time.Minute, cfg.Reports.RefreshInterval)
	assert.Equal(t, 8080, cfg.Server.Port, "unparsable values fall back to the default")
}

func TestValidateProductionConfig(t *testing.T) {
	setRequiredEnv(t)
	valid := func() *ProductionConfig {
		cfg, err := LoadProductionConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *ProductionConfig)
		wantErr string
	}{
		{
			name:    "missing db password",
			mutate:  func(cfg *ProductionConfig) { cfg.Database.Password = "" },
			wantErr: "DB_PASSWORD is required",
		},
		{
			name:    "short jwt secret",
			mutate:  func(cfg *ProductionConfig) { cfg.Auth.SecretKey = "short" },
			wantErr: "JWT_SECRET_KEY must be at least 32 characters long",
		},
		{
			name: "rsa without keys",
			mutate: func(cfg *ProductionConfig) {
				cfg.Auth.UseRSAKeys = true
			},
			wantErr: "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required",
		},
		{
			name: "auth disabled skips jwt checks",
			mutate: func(cfg *ProductionConfig) {
				cfg.Auth.Enabled = false
				cfg.Auth.SecretKey = ""
			},
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *ProductionConfig) { cfg.Logging.Level = "trace" },
			wantErr: "LOG_LEVEL must be one of",
		},
		{
			name: "file logging without path",
			mutate: func(cfg *ProductionConfig) {
				cfg.Logging.Output = "file"
				cfg.Logging.FilePath = ""
			},
			wantErr: "LOG_FILE_PATH is required",
		},
		{
			name: "redis cache without url",
			mutate: func(cfg *ProductionConfig) {
				cfg.Cache.Enabled = true
				cfg.Cache.RedisURL = ""
			},
			wantErr: "CACHE_REDIS_URL is required",
		},
		{
			name:    "sample ratio out of range",
			mutate:  func(cfg *ProductionConfig) { cfg.Telemetry.SampleRatio = 2 },
			wantErr: "OTEL_TRACES_SAMPLER_ARG must be between 0 and 1",
		},
		{
			name:    "non-positive refresh interval",
			mutate:  func(cfg *ProductionConfig) { cfg.Reports.RefreshInterval = 0 },
			wantErr: "STATE_REFRESH_INTERVAL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := ValidateProductionConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "repair", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=repair sslmode=disable", cfg.DSN())
}
