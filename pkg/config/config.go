// Package config provides configuration loading, validation, and hot-reload
// utilities.
package config

import (
	"fmt"
	"time"

	"github.com/sayu-dev/showcase-bot/pkg/logger"
	"github.com/sayu-dev/showcase-bot/pkg/redis"
)

// Config holds runtime configuration for the showcase bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    redis.Config   `mapstructure:"redis" validate:"required"`
	Showcase ServiceConfig  `mapstructure:"showcase" validate:"required"`
	Render   ServiceConfig  `mapstructure:"render" validate:"required"`
	Session  SessionConfig  `mapstructure:"session"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Logger   logger.Config  `mapstructure:"logger"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"omitempty,oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the metrics and health HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host          string `mapstructure:"host" validate:"required"`
	Port          string `mapstructure:"port" validate:"required"`
	User          string `mapstructure:"user" validate:"required"`
	Password      string `mapstructure:"password" validate:"required"`
	Name          string `mapstructure:"name" validate:"required"`
	SSLMode       string `mapstructure:"sslmode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// ServiceConfig points at an external HTTP collaborator.
type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// SessionConfig bounds the in-memory flow session registry.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// JobsConfig configures the background job worker and scheduler.
type JobsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Concurrency          int    `mapstructure:"concurrency"`
	AssetRefreshSchedule string `mapstructure:"asset_refresh_schedule"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// applyDefaults fills in values the YAML may omit.
func (c *Config) applyDefaults() {
	if c.Bot.Mode == "" {
		c.Bot.Mode = "polling"
	}
	if c.Bot.Timeout == 0 {
		c.Bot.Timeout = 10 * time.Second
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 6 * time.Hour
	}
	if c.Session.CleanupInterval == 0 {
		c.Session.CleanupInterval = 15 * time.Minute
	}
	if c.Jobs.Concurrency == 0 {
		c.Jobs.Concurrency = 5
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "./migrations"
	}
}
