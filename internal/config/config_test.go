package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mpacklog/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Server.Port != config.DefaultPort {
		t.Fatalf("expected default port %d, got %d", config.DefaultPort, cfg.Server.Port)
	}
	if cfg.Server.PollFrequency != 2000.0 {
		t.Fatalf("unexpected default poll frequency %g", cfg.Server.PollFrequency)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := strings.Join([]string{
		"[server]",
		"port = 5858",
		"poll_frequency = 100.0",
		"",
		"[logging]",
		`level = "DEBUG"`,
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to resolve, exists=%v path=%q", exists, resolved)
	}
	if cfg.Server.Port != 5858 {
		t.Fatalf("expected port 5858, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased logging values, got %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.LogDir) {
		t.Fatalf("expected absolute log dir, got %q", cfg.Paths.LogDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"port", func(c *config.Config) { c.Server.Port = 0 }},
		{"frequency", func(c *config.Config) { c.Server.PollFrequency = -1 }},
		{"chunk", func(c *config.Config) { c.Server.ReadChunkBytes = 0 }},
		{"level", func(c *config.Config) { c.Logging.Level = "verbose" }},
		{"format", func(c *config.Config) { c.Logging.Format = "yaml" }},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Server.Port != config.DefaultPort {
		t.Fatalf("sample should keep default port, got %d", cfg.Server.Port)
	}
}
