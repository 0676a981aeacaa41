package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/restmark/go-resilience/httpclient"
	"github.com/restmark/go-resilience/retry"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Environment-specific YAML file (config.<env>.yaml)
// 3. YAML configuration file (config.yaml)
// 4. Default values (lowest priority)
//
// A .env file in the working directory, when present, is applied to the
// process environment before environment variables are read.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: no .env file loaded: %v\n", err)
	}

	k := koanf.New(".")

	// Load default configuration first
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Load from YAML file (if exists)
	if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
		// YAML file is optional, log but don't fail
		fmt.Printf("Warning: could not load config.yaml: %v\n", err)
	}

	// Load environment-specific YAML (if exists)
	env := k.String("app.env")
	if env != "" {
		envFile := fmt.Sprintf("config.%s.yaml", env)
		if err := k.Load(file.Provider(envFile), yaml.Parser()); err != nil {
			fmt.Printf("Warning: could not load %s: %v\n", envFile, err)
		}
	}

	// Load environment variables (highest priority)
	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		TransformFunc: func(key, value string) (string, any) {
			// Convert UPPER_CASE to lower.case for koanf
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal into config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Store the Koanf instance for flexible access
	cfg.k = k

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "resilience-client",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,
		"app.debug":   false,

		"log.level":  "info",
		"log.pretty": false,

		"http.timeout":          "30s",
		"http.retry.attempts":   retry.DefaultMaxAttempts,
		"http.retry.delay.base": retry.DefaultBaseDelay.String(),
		"http.retry.delay.max":  retry.DefaultMaxDelay.String(),
		"http.retry.backoff":    retry.KindConstant.String(),
		"http.rate.limit":       0.0,
		"http.rate.burst":       0,
		"http.coalesce":         false,
		"http.payload.log":      false,
		"http.payload.max":      1024,
		"http.trace.header":     httpclient.HeaderXRequestID,
		"http.trace.w3c":        true,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
