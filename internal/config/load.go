package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load builds configuration from defaults and environment variables.
// Environment variables take precedence over defaults. The variable names
// are flat and unprefixed (PORT, WORKER_CONCURRENCY, ...) to preserve the
// deployment surface of the converter service this one replaces.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment variables: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_grace_seconds", 10)
	v.SetDefault("jobs.worker_concurrency", 2)
	v.SetDefault("jobs.queue_size", 64)
	v.SetDefault("jobs.timeout_seconds", 120)
	v.SetDefault("jobs.retention_seconds", 3600)
	v.SetDefault("jobs.sweep_interval_seconds", 60)
	v.SetDefault("upload.max_upload_bytes", 64<<20)
	v.SetDefault("rate_limit.rps", 25)
	v.SetDefault("rate_limit.burst", 50)
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"server.port":                   "PORT",
		"server.log_level":              "LOG_LEVEL",
		"server.shutdown_grace_seconds": "SHUTDOWN_GRACE_SECONDS",
		"jobs.worker_concurrency":       "WORKER_CONCURRENCY",
		"jobs.queue_size":               "QUEUE_SIZE",
		"jobs.timeout_seconds":          "JOB_TIMEOUT_SECONDS",
		"jobs.retention_seconds":        "JOB_RETENTION_SECONDS",
		"jobs.sweep_interval_seconds":   "SWEEP_INTERVAL_SECONDS",
		"upload.max_upload_bytes":       "MAX_UPLOAD_BYTES",
		"rate_limit.rps":                "RATE_LIMIT_RPS",
		"rate_limit.burst":              "RATE_LIMIT_BURST",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}
