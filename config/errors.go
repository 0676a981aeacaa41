package config

import (
	"fmt"
	"strings"
)

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string   // error category: "missing" or "invalid"
	Field    string   // config field path (e.g., "http.baseurl", "http.retry.backoff")
	Message  string   // user-friendly error message (lowercase)
	Action   string   // actionable instruction (lowercase)
	Details  []string // additional details or examples
}

// Error implements the error interface with lowercase formatting.
func (e *ConfigError) Error() string {
	var parts []string

	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Action != "" {
		parts = append(parts, e.Action)
	}

	if len(e.Details) > 0 {
		parts = append(parts, strings.Join(e.Details, "; "))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns nil to maintain compatibility with error wrapping.
// ConfigError is a leaf error that contains all necessary context.
func (e *ConfigError) Unwrap() error {
	return nil
}

// NewMissingFieldError creates an error for a required missing configuration field.
func NewMissingFieldError(field, envVar, yamlPath string) *ConfigError {
	action := fmt.Sprintf("set %s env var or add %s to config.yaml", envVar, yamlPath)
	return &ConfigError{
		Category: "missing",
		Field:    field,
		Message:  "required",
		Action:   action,
	}
}

// NewInvalidFieldError creates an error for an invalid configuration value.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
	}

	if len(validOptions) > 0 {
		err.Action = fmt.Sprintf("must be one of: %s", strings.Join(validOptions, ", "))
	}

	return err
}

// NewValidationError creates a general validation error with custom message.
func NewValidationError(field, message string) *ConfigError {
	return &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
	}
}
