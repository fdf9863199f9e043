// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package config loads layered configuration: built-in defaults, an
// optional YAML file, then TALLYBOARD_ environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=1s"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig configures the document store. An empty Path selects an
// in-memory store, used for development and tests; in-memory stores
// always seed demo data at startup, SeedDemo forces it for persistent
// stores too.
type StoreConfig struct {
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"min=1m"`
	SeedDemo   bool          `koanf:"seed_demo"`
}

// CacheConfig carries the per-domain aggregate TTLs.
type CacheConfig struct {
	LeadsTTL       time.Duration `koanf:"leads_ttl" validate:"min=1s"`
	ClientsTTL     time.Duration `koanf:"clients_ttl" validate:"min=1s"`
	PaymentsTTL    time.Duration `koanf:"payments_ttl" validate:"min=1s"`
	SalesTTL       time.Duration `koanf:"sales_ttl" validate:"min=1s"`
	SalespeopleTTL time.Duration `koanf:"salespeople_ttl" validate:"min=1s"`
}

// AnalyticsConfig tunes the aggregation services and the staged load.
type AnalyticsConfig struct {
	TopAdvocates  int           `koanf:"top_advocates" validate:"min=1,max=100"`
	PartialBatch  int           `koanf:"partial_batch" validate:"min=1"`
	StageFallback time.Duration `koanf:"stage_fallback" validate:"min=100ms"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// defaultConfig returns the built-in defaults, applied before the config
// file and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Store: StoreConfig{
			Path:       "",
			GCInterval: 10 * time.Minute,
			SeedDemo:   false,
		},
		Cache: CacheConfig{
			LeadsTTL:       5 * time.Minute,
			ClientsTTL:     5 * time.Minute,
			PaymentsTTL:    5 * time.Minute,
			SalesTTL:       24 * time.Hour,
			SalespeopleTTL: 24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			TopAdvocates:  5,
			PartialBatch:  200,
			StageFallback: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
