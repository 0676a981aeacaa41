package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/restmark/go-resilience/retry"
)

// Environment values accepted for app.env
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		if err := validate.RegisterValidation("backoff_kind", validateBackoffKind); err != nil {
			// If registration fails, validation proceeds with built-in rules only
			return
		}
	})
	return validate
}

// validateBackoffKind accepts any backoff progression the retry package
// recognizes.
func validateBackoffKind(fl validator.FieldLevel) bool {
	return retry.Kind(fl.Field().String()).IsValid()
}

// Validate checks cfg against its field constraints. The first violation is
// returned as a ConfigError with the remaining violations in its details.
func Validate(cfg *Config) error {
	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	return configError(verrs)
}

func configError(verrs validator.ValidationErrors) *ConfigError {
	first := verrs[0]
	field := keyPath(first.Namespace())

	var cfgErr *ConfigError
	switch first.Tag() {
	case "required":
		cfgErr = NewMissingFieldError(field, envVarFor(field), field)
	case "oneof":
		cfgErr = NewInvalidFieldError(field, "unsupported value", strings.Fields(first.Param()))
	case "backoff_kind":
		cfgErr = NewInvalidFieldError(field, "unknown backoff kind", kindNames())
	case "gte":
		cfgErr = NewValidationError(field, fmt.Sprintf("must be at least %s", first.Param()))
	case "url":
		cfgErr = NewValidationError(field, "must be a valid url")
	default:
		cfgErr = NewValidationError(field, fmt.Sprintf("failed %s validation", first.Tag()))
	}

	for _, fe := range verrs[1:] {
		cfgErr.Details = append(cfgErr.Details, fmt.Sprintf("%s failed %s validation", keyPath(fe.Namespace()), fe.Tag()))
	}

	return cfgErr
}

// keyPath converts a validator namespace such as "Config.HTTP.Retry.Backoff"
// into the koanf key "http.retry.backoff".
func keyPath(namespace string) string {
	return strings.ToLower(strings.TrimPrefix(namespace, "Config."))
}

// envVarFor maps a koanf key to the environment variable that sets it.
func envVarFor(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func kindNames() []string {
	kinds := retry.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
