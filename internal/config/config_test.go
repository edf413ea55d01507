package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "hackbook",
			Environment: "development",
			LogLevel:    "info",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "hackbook",
			User:           "postgres",
			Password:       "postgres",
			SSLMode:        "disable",
			MaxConnections: 10,
		},
		Odds: OddsConfig{
			Vigorish:         0.05,
			ActivityBonusMax: 15,
			AlignmentBonus:   20,
			JitterSpan:       5,
			AmericanDivisor:  6,
			AmericanClampMin: -120,
			AmericanClampMax: 150,
			CacheTTLSeconds:  10,
		},
		Settlement: SettlementConfig{
			MaxRetries:        3,
			RetryBackoffMs:    50,
			TimeoutSeconds:    5,
			RecomputeQueueLen: 256,
			RecomputeRetries:  3,
		},
		Activity: ActivityConfig{
			APIBaseURL:     "https://api.github.com",
			LookbackDays:   7,
			RateLimit:      5,
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Server: ServerConfig{
			Port:       8090,
			HealthPort: 8080,
		},
		Scheduler: SchedulerConfig{
			OddsRefreshCron:       "@every 5m",
			ActivitySyncCron:      "@every 30m",
			RefreshTimeoutSeconds: 120,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

func TestLoadWithDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "hackbook", cfg.App.Name)
	assert.Equal(t, 0.05, cfg.Odds.Vigorish)
	assert.Equal(t, 15.0, cfg.Odds.ActivityBonusMax)
	assert.Equal(t, 20.0, cfg.Odds.AlignmentBonus)
	assert.Equal(t, -120, cfg.Odds.AmericanClampMin)
	assert.Equal(t, 150, cfg.Odds.AmericanClampMax)
	assert.Equal(t, 3, cfg.Settlement.MaxRetries)
	assert.Equal(t, "@every 5m", cfg.Scheduler.OddsRefreshCron)

	require.NoError(t, Validate(cfg))
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  password: ${TEST_DB_PASSWORD}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validTestConfig()
	cfg.App.Environment = "banana"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validTestConfig()
	cfg.App.LogLevel = "verbose"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsInvertedClamp(t *testing.T) {
	cfg := validTestConfig()
	cfg.Odds.AmericanClampMin = 200
	cfg.Odds.AmericanClampMax = 150
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadCronExpression(t *testing.T) {
	cfg := validTestConfig()
	cfg.Scheduler.OddsRefreshCron = "not a cron"
	assert.Error(t, Validate(cfg))

	cfg = validTestConfig()
	cfg.Scheduler.ActivitySyncCron = "every day"
	assert.Error(t, Validate(cfg))
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := validTestConfig()
	cfg.App.Environment = "production"
	assert.Error(t, Validate(cfg), "production must not run with SSL disabled")

	cfg.Database.SSLMode = "require"
	assert.Error(t, Validate(cfg), "production requires at least one API token")

	cfg.Server.APITokens = []string{"token-1"}
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsVigorishAboveOne(t *testing.T) {
	cfg := validTestConfig()
	cfg.Odds.Vigorish = 1.5
	assert.Error(t, Validate(cfg))
}

func TestSettlementDurationHelpers(t *testing.T) {
	cfg := validTestConfig()
	assert.Equal(t, "5s", cfg.SettlementTimeout().String())
	assert.Equal(t, "50ms", cfg.SettlementBackoff().String())
}

func TestIsProduction(t *testing.T) {
	cfg := validTestConfig()
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.IsDevelopment())

	cfg.App.Environment = "production"
	assert.True(t, cfg.IsProduction())
}
