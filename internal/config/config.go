// Package config loads tally settings.
//
// Sources, later ones winning:
//  1. Defaults
//  2. TOML file ($TALLY_CONFIG or --config, else the user config dir)
//  3. TALLY_* environment variables
//  4. CLI flags (applied by the caller)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tally/internal/kv"
)

const (
	DefaultBackend      = kv.BackendFile
	DefaultTodosKey     = "todos"
	DefaultProfileKey   = "user"
	DefaultTheme        = "classic"
	DefaultLogLevel     = "warn"
	DefaultWriteTimeout = 5 * time.Second
)

type Config struct {
	Backend      string        `toml:"backend"`
	DataDir      string        `toml:"data_dir"`
	TodosKey     string        `toml:"todos_key"`
	ProfileKey   string        `toml:"profile_key"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	Theme        string        `toml:"theme"`
	LogLevel     string        `toml:"log_level"`
	LogFile      string        `toml:"log_file"`
	Redis        RedisConfig   `toml:"redis"`
	SQLite       SQLiteConfig  `toml:"sqlite"`

	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:      DefaultBackend,
		TodosKey:     DefaultTodosKey,
		ProfileKey:   DefaultProfileKey,
		WriteTimeout: DefaultWriteTimeout,
		Theme:        DefaultTheme,
		LogLevel:     DefaultLogLevel,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: kv.DefaultRedisPrefix,
		},
	}
}

// Load applies defaults, the config file and the environment. An explicit
// path (argument or TALLY_CONFIG) must exist; the default path may not.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("TALLY_CONFIG")
	}
	if path == "" {
		explicit = false
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		path = expandHome(path)
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else {
			cfg.Path = path
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	str := map[string]*string{
		"TALLY_BACKEND":        &cfg.Backend,
		"TALLY_DATA_DIR":       &cfg.DataDir,
		"TALLY_TODOS_KEY":      &cfg.TodosKey,
		"TALLY_PROFILE_KEY":    &cfg.ProfileKey,
		"TALLY_THEME":          &cfg.Theme,
		"TALLY_LOG_LEVEL":      &cfg.LogLevel,
		"TALLY_LOG_FILE":       &cfg.LogFile,
		"TALLY_REDIS_ADDR":     &cfg.Redis.Addr,
		"TALLY_REDIS_PASSWORD": &cfg.Redis.Password,
		"TALLY_REDIS_PREFIX":   &cfg.Redis.Prefix,
		"TALLY_SQLITE_PATH":    &cfg.SQLite.Path,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v := strings.TrimSpace(os.Getenv("TALLY_REDIS_DB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TALLY_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if v := strings.TrimSpace(os.Getenv("TALLY_WRITE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TALLY_WRITE_TIMEOUT: %w", err)
		}
		cfg.WriteTimeout = d
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case kv.BackendFile, kv.BackendRedis, kv.BackendSQLite:
	default:
		return fmt.Errorf("invalid backend %q (want file, redis or sqlite)", c.Backend)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", c.WriteTimeout)
	}
	if strings.TrimSpace(c.TodosKey) == "" || strings.TrimSpace(c.ProfileKey) == "" {
		return fmt.Errorf("todos_key and profile_key must not be empty")
	}
	if c.TodosKey == c.ProfileKey {
		return fmt.Errorf("todos_key and profile_key must differ")
	}
	return nil
}

// ResolvedDataDir returns DataDir, falling back to DefaultDataDir.
func (c *Config) ResolvedDataDir() (string, error) {
	if c.DataDir != "" {
		return expandHome(c.DataDir), nil
	}
	return DefaultDataDir()
}

// StorageOptions maps the config onto kv.Open options.
func (c *Config) StorageOptions() (kv.Options, error) {
	opts := kv.Options{
		Backend:       strings.ToLower(c.Backend),
		RedisAddr:     c.Redis.Addr,
		RedisPassword: c.Redis.Password,
		RedisDB:       c.Redis.DB,
		RedisPrefix:   c.Redis.Prefix,
		SQLitePath:    expandHome(c.SQLite.Path),
	}
	if opts.Backend == kv.BackendRedis {
		return opts, nil
	}
	dir, err := c.ResolvedDataDir()
	if err != nil {
		return kv.Options{}, err
	}
	opts.Dir = dir
	if opts.SQLitePath == "" {
		opts.SQLitePath = filepath.Join(dir, sqliteFileName)
	}
	return opts, nil
}
