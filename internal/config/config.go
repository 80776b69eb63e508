package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Jobs      JobsConfig      `mapstructure:"jobs" validate:"required"`
	Upload    UploadConfig    `mapstructure:"upload" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                 int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel             string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownGraceSeconds int    `mapstructure:"shutdown_grace_seconds" validate:"required,gte=1,lte=300"`
}

// ShutdownGrace returns the graceful-shutdown window as a duration.
func (c ServerConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}

// JobsConfig contains the conversion subsystem settings: pool sizing,
// the per-job execution deadline and record retention.
type JobsConfig struct {
	WorkerConcurrency    int `mapstructure:"worker_concurrency" validate:"required,gte=1,lte=64"`
	QueueSize            int `mapstructure:"queue_size" validate:"required,gte=1,lte=4096"`
	TimeoutSeconds       int `mapstructure:"timeout_seconds" validate:"required,gte=1,lte=3600"`
	RetentionSeconds     int `mapstructure:"retention_seconds" validate:"gte=0,lte=604800"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"required,gte=1,lte=86400"`
}

// Timeout returns the per-job execution deadline as a duration.
func (c JobsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Retention returns how long job records stay queryable.
func (c JobsConfig) Retention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

// SweepInterval returns how often the background sweeper runs.
func (c JobsConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// UploadConfig contains upload acceptance settings.
type UploadConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gte=1024"`
}

// RateLimitConfig contains request throttling settings.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"required,gt=0"`
	Burst int     `mapstructure:"burst" validate:"required,gte=1"`
}
