package config

import (
	"fmt"
	"os"
	"time"

	"habittracker/internal/calendar"
	"habittracker/pkg/config"
	"habittracker/pkg/logger"
)

type TrackerConfig struct {
	Timezone        string        `yaml:"timezone"`
	AllowPastEdits  bool          `yaml:"allow_past_edits"`
	SummaryCacheTTL time.Duration `yaml:"summary_cache_ttl"`
	IdempotencyTTL  time.Duration `yaml:"idempotency_ttl"`
}

// Location resolves Timezone; empty means the process local zone.
func (t TrackerConfig) Location() (*time.Location, error) {
	return calendar.LoadLocation(t.Timezone)
}

type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
}

type Config struct {
	Server  config.ServerConfig `yaml:"server"`
	DB      config.DBConfig     `yaml:"db"`
	Redis   config.RedisConfig  `yaml:"redis"`
	MQ      config.MQConfig     `yaml:"mq"`
	Auth    config.AuthConfig   `yaml:"auth"`
	Otel    config.OtelConfig   `yaml:"otel"`
	Tracker TrackerConfig       `yaml:"tracker"`
	Outbox  OutboxConfig        `yaml:"outbox"`
	Log     logger.Config       `yaml:"log"`
}

// Load reads config/<CONFIG_ENV>.yaml over config/base.yaml, then applies
// environment overrides. CONFIG_DIR moves the directory.
func Load() (*Config, error) {
	return LoadFrom(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(env, dir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := config.Decode(cfgMap, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideAuthFromEnv(&cfg.Auth)
	config.OverrideOtelFromEnv(&cfg.Otel)
	if tz := os.Getenv("TRACKER_TIMEZONE"); tz != "" {
		cfg.Tracker.Timezone = tz
	}

	cfg.applyDefaults()
	if _, err := cfg.Tracker.Location(); err != nil {
		return nil, fmt.Errorf("tracker.timezone: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Tracker.SummaryCacheTTL <= 0 {
		c.Tracker.SummaryCacheTTL = 5 * time.Minute
	}
	if c.Tracker.IdempotencyTTL <= 0 {
		c.Tracker.IdempotencyTTL = 24 * time.Hour
	}
	if c.Outbox.Interval <= 0 {
		c.Outbox.Interval = 2 * time.Second
	}
	if c.Outbox.BatchSize <= 0 {
		c.Outbox.BatchSize = 100
	}
	if c.Outbox.MaxRetries <= 0 {
		c.Outbox.MaxRetries = 5
	}
	if c.Otel.ServiceName == "" {
		c.Otel.ServiceName = "habittracker"
	}
}
