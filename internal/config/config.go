// Package config loads runtime settings from an optional .env file, an
// optional YAML file and HEALTHGUARD_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "HEALTHGUARD"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	API     APIConfig     `mapstructure:"api"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	CaloriesWindow string `mapstructure:"calories_window"`
}

type APIConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var defaults = map[string]any{
	"store.backend":           BackendSQLite,
	"store.path":              "",
	"redis.addr":              "localhost:6379",
	"redis.password":          "",
	"redis.db":                0,
	"redis.prefix":            "healthguard:",
	"log.level":               "warn",
	"log.format":              "text",
	"metrics.calories_window": "all",
	"api.addr":                "127.0.0.1:8787",
	"api.allowed_origins":     []string{"http://localhost:5173"},
}

// Keys lists every setting name in display order.
func Keys() []string {
	return []string{
		"store.backend", "store.path",
		"redis.addr", "redis.password", "redis.db", "redis.prefix",
		"log.level", "log.format",
		"metrics.calories_window",
		"api.addr", "api.allowed_origins",
	}
}

// DefaultConfigPath is <user config dir>/healthguard/config.yaml.
func DefaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "healthguard", "config.yaml"), nil
}

// Load reads the configuration. An explicit path must exist; without one the
// default config file is used when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		def, err := DefaultConfigPath()
		if err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				file = def
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.API.AllowedOrigins = splitList(v.Get("api.allowed_origins"))
	cfg.File = file
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can act on.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("invalid store.backend %q (expected sqlite|redis|memory)", c.Store.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q (expected text|json)", c.Log.Format)
	}
	switch c.Metrics.CaloriesWindow {
	case "all", "day":
	default:
		return fmt.Errorf("invalid metrics.calories_window %q (expected all|day)", c.Metrics.CaloriesWindow)
	}
	return nil
}

// Values returns every setting as display text, keyed like Keys.
func (c *Config) Values() map[string]string {
	password := ""
	if c.Redis.Password != "" {
		password = "********"
	}
	return map[string]string{
		"store.backend":           c.Store.Backend,
		"store.path":              c.Store.Path,
		"redis.addr":              c.Redis.Addr,
		"redis.password":          password,
		"redis.db":                fmt.Sprintf("%d", c.Redis.DB),
		"redis.prefix":            c.Redis.Prefix,
		"log.level":               c.Log.Level,
		"log.format":              c.Log.Format,
		"metrics.calories_window": c.Metrics.CaloriesWindow,
		"api.addr":                c.API.Addr,
		"api.allowed_origins":     strings.Join(c.API.AllowedOrigins, ","),
	}
}

// splitList accepts a YAML list or a comma separated env value.
func splitList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
	case string:
		parts = strings.Split(t, ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
