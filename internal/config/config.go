// Package config provides configuration management for the Hackbook application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Odds       OddsConfig       `mapstructure:"odds" validate:"required"`
	Settlement SettlementConfig `mapstructure:"settlement" validate:"required"`
	Activity   ActivityConfig   `mapstructure:"activity" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	HackathonID string `mapstructure:"hackathon_id" validate:"omitempty,uuid4"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// OddsConfig represents pricing engine configuration
type OddsConfig struct {
	Vigorish         float64 `mapstructure:"vigorish" validate:"gte=0,lt=1"`
	ActivityBonusMax float64 `mapstructure:"activity_bonus_max" validate:"gte=0"`
	AlignmentBonus   float64 `mapstructure:"alignment_bonus" validate:"gte=0"`
	JitterSpan       float64 `mapstructure:"jitter_span" validate:"gte=0"`
	AmericanDivisor  float64 `mapstructure:"american_divisor" validate:"gt=0"`
	AmericanClampMin int     `mapstructure:"american_clamp_min" validate:"lt=0"`
	AmericanClampMax int     `mapstructure:"american_clamp_max" validate:"gt=0"`
	CacheTTLSeconds  int     `mapstructure:"cache_ttl_seconds" validate:"gt=0"`
	JitterSeed       int64   `mapstructure:"jitter_seed"` // 0 means seed from the clock
}

// SettlementConfig represents wager settlement configuration
type SettlementConfig struct {
	MaxRetries        int `mapstructure:"max_retries" validate:"gte=0"`
	RetryBackoffMs    int `mapstructure:"retry_backoff_ms" validate:"gt=0"`
	TimeoutSeconds    int `mapstructure:"timeout_seconds" validate:"gt=0"`
	RecomputeQueueLen int `mapstructure:"recompute_queue_len" validate:"gt=0"`
	RecomputeRetries  int `mapstructure:"recompute_retries" validate:"gte=0"`
}

// ActivityConfig represents GitHub activity sync configuration
type ActivityConfig struct {
	APIBaseURL     string  `mapstructure:"api_base_url" validate:"required,url"`
	Token          string  `mapstructure:"token"`
	LookbackDays   int     `mapstructure:"lookback_days" validate:"gt=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gt=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
}

// ServerConfig represents the public HTTP API configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort     int      `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	APITokens      []string `mapstructure:"api_tokens"`
}

// SchedulerConfig represents odds refresh scheduling
type SchedulerConfig struct {
	OddsRefreshCron       string `mapstructure:"odds_refresh_cron" validate:"required,cronexpr"`
	ActivitySyncCron      string `mapstructure:"activity_sync_cron" validate:"required,cronexpr"`
	RefreshTimeoutSeconds int    `mapstructure:"refresh_timeout_seconds" validate:"gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// TracingConfig represents AWS X-Ray tracing configuration
type TracingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DaemonAddr string `mapstructure:"daemon_addr"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SettlementTimeout returns the per-request settlement deadline
func (c *Config) SettlementTimeout() time.Duration {
	return time.Duration(c.Settlement.TimeoutSeconds) * time.Second
}

// SettlementBackoff returns the base backoff between settlement retries
func (c *Config) SettlementBackoff() time.Duration {
	return time.Duration(c.Settlement.RetryBackoffMs) * time.Millisecond
}
