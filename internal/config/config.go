// Package config resolves gakuroku settings from flags, GAKUROKU_*
// environment variables, an optional .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gakuroku/gakuroku/internal/llm"
	"github.com/gakuroku/gakuroku/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GAKUROKU"

type (
	Config struct {
		DB string
		API
		Server
		Log
		LLMSettings
	}

	// API points the TUI at a remote card store instead of the local
	// database.
	API struct {
		URL     string
		Token   string
		Timeout time.Duration
	}
	Server struct {
		Addr        string
		CORSOrigins []string
	}
	Log struct {
		File string // TUI debug log; empty discards
	}
	LLMSettings struct {
		Provider   string
		Model      string
		APIKey     string
		BaseURL    string
		MaxRetries int
		Timeout    time.Duration
	}
)

// flagKeys binds command-line flag names onto config keys.
var flagKeys = map[string]string{
	"db":        "db",
	"api-url":   "api.url",
	"api-token": "api.token",
	"addr":      "server.addr",
	"log-file":  "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("api.url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.file", "")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.timeout", "30s")
}

// Load reads configuration. Precedence: flags that were set, environment,
// config file, defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DB: v.GetString("db"),
		API: API{
			URL:     strings.TrimRight(v.GetString("api.url"), "/"),
			Token:   v.GetString("api.token"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Server: Server{
			Addr:        v.GetString("server.addr"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		Log: Log{
			File: v.GetString("log.file"),
		},
		LLMSettings: LLMSettings{
			Provider:   v.GetString("llm.provider"),
			Model:      v.GetString("llm.model"),
			APIKey:     v.GetString("llm.api_key"),
			BaseURL:    v.GetString("llm.base_url"),
			MaxRetries: v.GetInt("llm.max_retries"),
			Timeout:    v.GetDuration("llm.timeout"),
		},
	}
	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	return cfg, nil
}

// configDir is $XDG_CONFIG_HOME/gakuroku.
func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gakuroku"), nil
}

// Remote reports whether cards come from a REST server.
func (c *Config) Remote() bool {
	return c.API.URL != ""
}

// DBPath returns the SQLite path, creating its directory when the path was
// configured explicitly.
func (c *Config) DBPath() (string, error) {
	if c.DB != "" {
		return c.DB, store.EnsureDir(c.DB)
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", err
	}
	return p, store.EnsureDir(p)
}

// LLM returns the model configuration. With no provider configured it falls
// back to vendor API keys found in the environment; ok is false when
// neither is available.
func (c *Config) LLM() (cfg llm.Config, ok bool) {
	s := c.LLMSettings
	if s.Provider == "" {
		cfg, ok = llm.DiscoverConfig()
		if !ok {
			return llm.Config{}, false
		}
	} else {
		cfg = llm.Config{Provider: s.Provider, APIKey: s.APIKey, Retry: llm.DefaultRetry()}
	}

	if s.Model != "" {
		cfg.Model = s.Model
	}
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if s.MaxRetries > 0 {
		cfg.Retry.MaxAttempts = s.MaxRetries
	}
	cfg.Timeout = s.Timeout
	if cfg.Timeout <= 0 {
		cfg.Timeout = llm.DefaultTimeout
	}
	return cfg, true
}
