// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".affinity/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
	// EnvPrefix prefixes environment overrides, e.g. AFFINITY_STORE_TYPE
	EnvPrefix = "AFFINITY"
)

// Load reads configuration from ~/.affinity/configs/config.json.
// A missing file is not an error; defaults and environment overrides apply.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers DefaultConfig values with viper
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	// Database defaults
	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.sqlite_path", d.Database.SQLitePath)
	v.SetDefault("database.postgres_dsn", d.Database.PostgresDSN)

	// Store defaults
	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)
	v.SetDefault("store.redis.ttl_hours", d.Store.Redis.TTLHours)
	v.SetDefault("store.git.path", d.Store.Git.Path)

	// Affection defaults
	v.SetDefault("affection.default_affection", d.Affection.DefaultAffection)
	v.SetDefault("affection.max_history_events", d.Affection.MaxHistoryEvents)
	v.SetDefault("affection.prompt_limit", d.Affection.PromptLimit)
	v.SetDefault("affection.enable_bonds", d.Affection.EnableBonds)
	v.SetDefault("affection.bonds_file", d.Affection.BondsFile)
	v.SetDefault("affection.default_scope", d.Affection.DefaultScope)

	v.SetDefault("log.level", d.Log.Level)
}

// WriteDefaultConfig writes the default configuration as JSON. An empty path
// selects ~/.affinity/configs/config.json. Existing files are kept unless force is set.
func WriteDefaultConfig(path string, force bool) (string, error) {
	if path == "" {
		if err := EnsureConfigDir(); err != nil {
			return "", err
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")

	write := v.SafeWriteConfigAs
	if force {
		write = v.WriteConfigAs
	}
	if err := write(path); err != nil {
		return "", fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return path, nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if !IsValidStoreType(cfg.Store.Type) {
		return fmt.Errorf("store.type must be one of %s, got '%s'",
			strings.Join(ValidStoreTypes(), ", "), cfg.Store.Type)
	}

	// Database settings only matter for the database store
	if cfg.Store.Type == StoreTypeDatabase {
		if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
			return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", cfg.Database.Type)
		}
		if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
		}
		if cfg.Database.Type == "postgres" && cfg.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
		}
	}

	if cfg.Store.Type == StoreTypeRedis {
		if cfg.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required when store.type='redis'")
		}
		if cfg.Store.Redis.TTLHours < 0 {
			return fmt.Errorf("store.redis.ttl_hours must not be negative, got %d", cfg.Store.Redis.TTLHours)
		}
	}

	if cfg.Store.Type == StoreTypeGit && cfg.Store.Git.Path == "" {
		return fmt.Errorf("store.git.path is required when store.type='git'")
	}

	// Validate server port
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	// Validate affection settings
	a := cfg.Affection
	if a.DefaultAffection < -100 || a.DefaultAffection > 100 {
		return fmt.Errorf("affection.default_affection must be between -100 and 100, got %d", a.DefaultAffection)
	}
	if a.MaxHistoryEvents < 1 {
		return fmt.Errorf("affection.max_history_events must be at least 1, got %d", a.MaxHistoryEvents)
	}
	if a.PromptLimit < 0 {
		return fmt.Errorf("affection.prompt_limit must not be negative, got %d", a.PromptLimit)
	}
	if a.DefaultScope == "" {
		cfg.Affection.DefaultScope = "default"
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".affinity/db/affinity.db"),
		},
		Store: StoreConfig{
			Type: StoreTypeDatabase,
			Redis: RedisStoreConfig{
				Addr:   "localhost:6379",
				Prefix: "affinity",
			},
			Git: GitStoreConfig{
				Path: filepath.Join(homeDir, ".affinity/store"),
			},
		},
		Affection: AffectionConfig{
			DefaultAffection: 0,
			MaxHistoryEvents: 20,
			PromptLimit:      5,
			EnableBonds:      true,
			DefaultScope:     "default",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
