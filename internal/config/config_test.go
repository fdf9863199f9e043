// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8460 {
		t.Errorf("Server.Port = %d, want 8460", cfg.Server.Port)
	}
	if cfg.Cache.SalesTTL != 24*time.Hour {
		t.Errorf("Cache.SalesTTL = %v, want 24h", cfg.Cache.SalesTTL)
	}
	if cfg.Cache.LeadsTTL != 5*time.Minute {
		t.Errorf("Cache.LeadsTTL = %v, want 5m", cfg.Cache.LeadsTTL)
	}
	if cfg.Analytics.TopAdvocates != 5 {
		t.Errorf("Analytics.TopAdvocates = %d, want 5", cfg.Analytics.TopAdvocates)
	}
	if cfg.Store.Path != "" {
		t.Errorf("Store.Path = %q, want in-memory default", cfg.Store.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
cache:
  leads_ttl: 90s
analytics:
  top_advocates: 10
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Cache.LeadsTTL != 90*time.Second {
		t.Errorf("Cache.LeadsTTL = %v, want 90s", cfg.Cache.LeadsTTL)
	}
	if cfg.Analytics.TopAdvocates != 10 {
		t.Errorf("Analytics.TopAdvocates = %d, want 10", cfg.Analytics.TopAdvocates)
	}
	// Unset fields keep their defaults.
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want default 30s", cfg.Server.Timeout)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TALLYBOARD_SERVER_PORT", "9100")
	t.Setenv("TALLYBOARD_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("TALLYBOARD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TALLYBOARD_SERVER_PORT":   "0",
		"TALLYBOARD_LOGGING_LEVEL": "verbose",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(""); err == nil {
				t.Errorf("Load accepted %s=%s", key, val)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"TALLYBOARD_SERVER_PORT":            "server.port",
		"TALLYBOARD_CACHE_LEADS_TTL":        "cache.leads_ttl",
		"TALLYBOARD_STORE_PATH":             "store.path",
		"TALLYBOARD_SERVER_RATE_LIMIT_REQS": "server.rate_limit_reqs",
	}
	for in, want := range cases {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}
