// Package config provides configuration management for the Hackbook application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("HACKBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. The config file is optional; environment variables and defaults
// fill the gaps.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("HACKBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hackbook")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("odds.vigorish", 0.05)
	v.SetDefault("odds.activity_bonus_max", 15.0)
	v.SetDefault("odds.alignment_bonus", 20.0)
	v.SetDefault("odds.jitter_span", 5.0)
	v.SetDefault("odds.american_divisor", 6.0)
	v.SetDefault("odds.american_clamp_min", -120)
	v.SetDefault("odds.american_clamp_max", 150)
	v.SetDefault("odds.cache_ttl_seconds", 10)

	v.SetDefault("settlement.max_retries", 3)
	v.SetDefault("settlement.retry_backoff_ms", 50)
	v.SetDefault("settlement.timeout_seconds", 5)
	v.SetDefault("settlement.recompute_queue_len", 256)
	v.SetDefault("settlement.recompute_retries", 3)

	v.SetDefault("activity.api_base_url", "https://api.github.com")
	v.SetDefault("activity.lookback_days", 7)
	v.SetDefault("activity.rate_limit", 5.0)
	v.SetDefault("activity.timeout_seconds", 30)
	v.SetDefault("activity.max_retries", 3)

	v.SetDefault("server.port", 8090)
	v.SetDefault("server.health_port", 8080)

	v.SetDefault("scheduler.odds_refresh_cron", "@every 5m")
	v.SetDefault("scheduler.activity_sync_cron", "@every 30m")
	v.SetDefault("scheduler.refresh_timeout_seconds", 120)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.daemon_addr", "127.0.0.1:2000")
}
