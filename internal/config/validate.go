package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Schema.validate(result)
	c.Database.validate(result)
	c.Logging.validate(result)
	c.Loader.validate(result)

	return result
}

func (s *SchemaConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(s.Path) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "schema.path",
			Message: "schema path is required",
			Hint:    "point schema.path at your relationship schema YAML file",
		})
	}
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	// Discrete fields only matter when no DSN is configured.
	if d.DSN == "" {
		if d.Port < 1 || d.Port > 65535 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.port",
				Message: fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port),
			})
		}
	}

	validTLSModes := map[string]bool{"": true, "skip-verify": true, "true": true, "false": true}
	if !validTLSModes[d.TLSMode] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.tls_mode",
			Message: fmt.Sprintf("invalid TLS mode %q", d.TLSMode),
			Hint:    "valid values are: skip-verify, true, false",
		})
	}

	if d.MaxOpenConns < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.max_open_conns",
			Message: "max_open_conns cannot be negative",
		})
	}
	if d.MaxIdleConns < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.max_idle_conns",
			Message: "max_idle_conns cannot be negative",
		})
	}
	if d.MaxIdleConns > d.MaxOpenConns && d.MaxOpenConns > 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.max_idle_conns",
			Message: "max_idle_conns is greater than max_open_conns",
			Hint:    "idle connections will be limited to max_open_conns",
		})
	}
}

func (l *LoggingConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[l.Level] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level %q", l.Level),
			Hint:    "valid values are: debug, info, warn, error",
		})
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[l.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format %q", l.Format),
			Hint:    "valid values are: json, text",
		})
	}
}

func (l *LoaderConfig) validate(result *ValidationResult) {
	if l.MaxIncludeDepth < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "loader.max_include_depth",
			Message: "max_include_depth must be at least 1",
		})
	}
	if l.ChunkSize < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "loader.chunk_size",
			Message: "chunk_size must be at least 1",
		})
	}
	if l.PerParentLimit < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "loader.per_parent_limit",
			Message: "per_parent_limit cannot be negative",
		})
	}
}
