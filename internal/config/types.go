// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Store     StoreConfig     `mapstructure:"store"`
	Affection AffectionConfig `mapstructure:"affection"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Type  string           `mapstructure:"type"` // "database", "memory", "redis" or "git"
	Redis RedisStoreConfig `mapstructure:"redis"`
	Git   GitStoreConfig   `mapstructure:"git"`
}

// RedisStoreConfig holds Redis connection settings
type RedisStoreConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	TTLHours int    `mapstructure:"ttl_hours"` // 0 disables expiry
}

// GitStoreConfig holds the git journal location
type GitStoreConfig struct {
	Path string `mapstructure:"path"`
}

// AffectionConfig holds the tracker settings
type AffectionConfig struct {
	DefaultAffection int    `mapstructure:"default_affection"`
	MaxHistoryEvents int    `mapstructure:"max_history_events"`
	PromptLimit      int    `mapstructure:"prompt_limit"`
	EnableBonds      bool   `mapstructure:"enable_bonds"`
	BondsFile        string `mapstructure:"bonds_file"` // empty uses the built-in table
	DefaultScope     string `mapstructure:"default_scope"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Store types
const (
	StoreTypeDatabase = "database"
	StoreTypeMemory   = "memory"
	StoreTypeRedis    = "redis"
	StoreTypeGit      = "git"
)

// ValidStoreTypes returns all valid store type values
func ValidStoreTypes() []string {
	return []string{
		StoreTypeDatabase,
		StoreTypeMemory,
		StoreTypeRedis,
		StoreTypeGit,
	}
}

// isValidType is a generic helper to check if a type is in a list of valid types
func isValidType(aType string, validTypes []string) bool {
	for _, valid := range validTypes {
		if aType == valid {
			return true
		}
	}
	return false
}

// IsValidStoreType checks if a store type is valid
func IsValidStoreType(storeType string) bool {
	return isValidType(storeType, ValidStoreTypes())
}
