package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", "")
	for _, name := range []string{
		"TALLY_CONFIG", "TALLY_BACKEND", "TALLY_DATA_DIR", "TALLY_THEME",
		"TALLY_LOG_LEVEL", "TALLY_REDIS_DB", "TALLY_WRITE_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "file" || cfg.Theme != "classic" || cfg.WriteTimeout != 5*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Path != "" {
		t.Errorf("expected no config file, got %s", cfg.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
	dir, err := cfg.ResolvedDataDir()
	if err != nil || dir != filepath.Join(home, ".tally") {
		t.Errorf("data dir = %s, %v", dir, err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "tally", "config.toml"), `
backend = "sqlite"
theme = "neon"
write_timeout = "2s"
log_level = "debug"

[redis]
addr = "redis:6379"
db = 3
`)
	t.Setenv("TALLY_THEME", "mono")
	t.Setenv("TALLY_REDIS_DB", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("backend = %s, want sqlite", cfg.Backend)
	}
	if cfg.Theme != "mono" {
		t.Errorf("env must override file, theme = %s", cfg.Theme)
	}
	if cfg.WriteTimeout != 2*time.Second || cfg.LogLevel != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 5 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if !strings.HasSuffix(cfg.Path, "config.toml") {
		t.Errorf("path = %s", cfg.Path)
	}

	opts, err := cfg.StorageOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.SQLitePath != filepath.Join(home, ".tally", "tally.db") {
		t.Errorf("sqlite path = %s", opts.SQLitePath)
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}

	t.Setenv("TALLY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for missing TALLY_CONFIG")
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TALLY_WRITE_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"backend", func(c *Config) { c.Backend = "etcd" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"timeout", func(c *Config) { c.WriteTimeout = 0 }},
		{"same keys", func(c *Config) { c.ProfileKey = c.TodosKey }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDataDirPrefersXDG(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)
	dir, err := DefaultDataDir()
	if err != nil || dir != filepath.Join(xdg, "tally") {
		t.Fatalf("got %s, %v", dir, err)
	}
}

func TestRedisOptionsSkipDataDir(t *testing.T) {
	cfg := Default()
	cfg.Backend = "Redis"
	opts, err := cfg.StorageOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != "redis" || opts.Dir != "" || opts.RedisPrefix != "tally:" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
