package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{Path: "relgraph-schema.yaml"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            4000,
			User:            "relgraph",
			Database:        "test",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			WindowFunctions: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Loader:  LoaderConfig{MaxIncludeDepth: 8, ChunkSize: 1000},
	}
}

func TestValidateDefaults(t *testing.T) {
	result := defaultConfig().Validate()
	assert.False(t, result.HasErrors())
	assert.Empty(t, result.Warnings)
}

func TestValidateSchemaPathRequired(t *testing.T) {
	cfg := defaultConfig()
	cfg.Schema.Path = "  "

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "schema.path")
}

func TestValidateDatabasePort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Port = 0

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "database.port")

	// With a full DSN the discrete fields are ignored.
	cfg.Database.DSN = "user:pass@tcp(db:4000)/test"
	result = cfg.Validate()
	assert.False(t, result.HasErrors())
}

func TestValidateTLSMode(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.TLSMode = "maybe"

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "tls_mode")
}

func TestValidateIdleOverOpenWarns(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.MaxIdleConns = 50

	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "database.max_idle_conns", result.Warnings[0].Field)
}

func TestValidateLogging(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	result := cfg.Validate()
	require.True(t, result.HasErrors())
	assert.Len(t, result.Errors, 2)
}

func TestValidateLoaderBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Loader.MaxIncludeDepth = 0
	cfg.Loader.ChunkSize = 0
	cfg.Loader.PerParentLimit = -1

	result := cfg.Validate()
	assert.Len(t, result.Errors, 3)
}

func TestEffectiveDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Password = "secret"
	assert.Equal(t, "relgraph:secret@tcp(localhost:4000)/test?parseTime=true", cfg.Database.EffectiveDSN())

	cfg.Database.TLSMode = "skip-verify"
	assert.Equal(t, "relgraph:secret@tcp(localhost:4000)/test?parseTime=true&tls=skip-verify", cfg.Database.EffectiveDSN())

	cfg.Database.DSN = "app:pw@tcp(db:3306)/prod"
	assert.Equal(t, "app:pw@tcp(db:3306)/prod", cfg.Database.EffectiveDSN())
}
