// Package config loads configuration from files, env vars, and flags, and validates it.
package config

import (
	"fmt"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Schema   SchemaConfig        `mapstructure:"schema"`
	Database DatabaseConfig      `mapstructure:"database"`
	Logging  LoggingConfig       `mapstructure:"logging"`
	Loader   LoaderConfig        `mapstructure:"loader"`
	Search   map[string][]string `mapstructure:"search"`
}

// SchemaConfig locates the relationship schema document.
type SchemaConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig holds database connection parameters. A full DSN takes
// precedence over the discrete host/port/user fields.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	DSNFile         string        `mapstructure:"dsn_file"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	PasswordFile    string        `mapstructure:"password_file"`
	Database        string        `mapstructure:"database"`
	TLSMode         string        `mapstructure:"tls_mode"` // TLS mode: skip-verify, true, or false
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	WindowFunctions bool          `mapstructure:"window_functions"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// LoaderConfig bounds include resolution.
type LoaderConfig struct {
	MaxIncludeDepth int `mapstructure:"max_include_depth"`
	ChunkSize       int `mapstructure:"chunk_size"`
	PerParentLimit  int `mapstructure:"per_parent_limit"`
}

// EffectiveDSN returns the configured DSN, or one assembled from the
// discrete connection fields.
func (d *DatabaseConfig) EffectiveDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
	if d.TLSMode != "" {
		dsn += fmt.Sprintf("&tls=%s", d.TLSMode)
	}
	return dsn
}
