package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the root configuration for applications embedding the REST
// client. Typed sections cover the client itself plus the ambient logging
// setup; the retained koanf instance serves custom keys through the getter
// methods.
type Config struct {
	App  AppConfig  `koanf:"app" json:"app" yaml:"app" toml:"app" mapstructure:"app"`
	Log  LogConfig  `koanf:"log" json:"log" yaml:"log" toml:"log" mapstructure:"log"`
	HTTP HTTPConfig `koanf:"http" json:"http" yaml:"http" toml:"http" mapstructure:"http"`

	k *koanf.Koanf
}

// AppConfig identifies the application for log enrichment and selects the
// environment-specific configuration overlay.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" toml:"name" mapstructure:"name" validate:"required"`
	Version string `koanf:"version" json:"version" yaml:"version" toml:"version" mapstructure:"version" validate:"required"`
	Env     string `koanf:"env" json:"env" yaml:"env" toml:"env" mapstructure:"env" validate:"required,oneof=development staging production"`
	Debug   bool   `koanf:"debug" json:"debug" yaml:"debug" toml:"debug" mapstructure:"debug"`
}

// LogConfig controls the zerolog-backed logger.
type LogConfig struct {
	Level  string     `koanf:"level" json:"level" yaml:"level" toml:"level" mapstructure:"level" validate:"required,oneof=trace debug info warn error fatal panic"`
	Pretty bool       `koanf:"pretty" json:"pretty" yaml:"pretty" toml:"pretty" mapstructure:"pretty"`
	Mask   MaskConfig `koanf:"mask" json:"mask" yaml:"mask" toml:"mask" mapstructure:"mask"`
}

// MaskConfig lists log field names whose values are replaced before
// emission. Empty fields fall back to the logger's built-in sensitive set.
type MaskConfig struct {
	Fields []string `koanf:"fields" json:"fields" yaml:"fields" toml:"fields" mapstructure:"fields"`
	Value  string   `koanf:"value" json:"value" yaml:"value" toml:"value" mapstructure:"value"`
}

// HTTPConfig describes one outbound REST client.
type HTTPConfig struct {
	BaseURL  string            `koanf:"baseurl" json:"baseurl" yaml:"baseurl" toml:"baseurl" mapstructure:"baseurl" validate:"omitempty,url"`
	Resource string            `koanf:"resource" json:"resource" yaml:"resource" toml:"resource" mapstructure:"resource"`
	Timeout  time.Duration     `koanf:"timeout" json:"timeout" yaml:"timeout" toml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Headers  map[string]string `koanf:"headers" json:"headers" yaml:"headers" toml:"headers" mapstructure:"headers"`
	Auth     AuthConfig        `koanf:"auth" json:"auth" yaml:"auth" toml:"auth" mapstructure:"auth"`
	Retry    RetryConfig       `koanf:"retry" json:"retry" yaml:"retry" toml:"retry" mapstructure:"retry"`
	Rate     RateConfig        `koanf:"rate" json:"rate" yaml:"rate" toml:"rate" mapstructure:"rate"`
	Coalesce bool              `koanf:"coalesce" json:"coalesce" yaml:"coalesce" toml:"coalesce" mapstructure:"coalesce"`
	Payload  PayloadConfig     `koanf:"payload" json:"payload" yaml:"payload" toml:"payload" mapstructure:"payload"`
	Trace    TraceConfig       `koanf:"trace" json:"trace" yaml:"trace" toml:"trace" mapstructure:"trace"`
}

// AuthConfig holds basic-auth credentials applied to every request that does
// not carry its own.
type AuthConfig struct {
	Username string `koanf:"username" json:"username" yaml:"username" toml:"username" mapstructure:"username"`
	Password string `koanf:"password" json:"password" yaml:"password" toml:"password" mapstructure:"password"`
}

// RetryConfig maps onto the retry package's policy: Attempts counts retries
// after the initial call, Backoff names the delay progression.
type RetryConfig struct {
	Attempts int         `koanf:"attempts" json:"attempts" yaml:"attempts" toml:"attempts" mapstructure:"attempts" validate:"gte=0"`
	Delay    DelayConfig `koanf:"delay" json:"delay" yaml:"delay" toml:"delay" mapstructure:"delay"`
	Backoff  string      `koanf:"backoff" json:"backoff" yaml:"backoff" toml:"backoff" mapstructure:"backoff" validate:"omitempty,backoff_kind"`
}

// DelayConfig bounds the retry suspension: Base seeds the progression, Max
// caps every computed delay.
type DelayConfig struct {
	Base time.Duration `koanf:"base" json:"base" yaml:"base" toml:"base" mapstructure:"base" validate:"gte=0"`
	Max  time.Duration `koanf:"max" json:"max" yaml:"max" toml:"max" mapstructure:"max" validate:"gte=0"`
}

// RateConfig throttles outbound requests. A zero limit disables throttling.
type RateConfig struct {
	Limit float64 `koanf:"limit" json:"limit" yaml:"limit" toml:"limit" mapstructure:"limit" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" toml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// PayloadConfig controls debug-level payload logging and its size cap.
type PayloadConfig struct {
	Log bool `koanf:"log" json:"log" yaml:"log" toml:"log" mapstructure:"log"`
	Max int  `koanf:"max" json:"max" yaml:"max" toml:"max" mapstructure:"max" validate:"gte=0"`
}

// TraceConfig names the request ID header and toggles W3C trace propagation.
type TraceConfig struct {
	Header string `koanf:"header" json:"header" yaml:"header" toml:"header" mapstructure:"header"`
	W3C    bool   `koanf:"w3c" json:"w3c" yaml:"w3c" toml:"w3c" mapstructure:"w3c"`
}

// IsDevelopment reports whether the application runs in the development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// IsProduction reports whether the application runs in the production
// environment.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}
