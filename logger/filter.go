package logger

import (
	"net/url"
	"strings"
)

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// FilterConfig defines which field names are considered sensitive and the
// value that replaces them in log output.
type FilterConfig struct {
	// SensitiveFields are matched case-insensitively as substrings of the
	// field or header name.
	SensitiveFields []string
	// MaskValue replaces sensitive data (default: "***").
	MaskValue string
}

// DefaultFilterConfig covers the credentials an HTTP client commonly carries
// in headers, query strings and configuration.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "pwd",
			"secret", "api_key", "api-key", "apikey",
			"token", "access_token", "refresh_token",
			"auth", "authorization", "proxy-authorization",
			"cookie", "set-cookie",
			"credential", "credentials",
			"session",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive values before they reach log output.
type SensitiveDataFilter struct {
	config FilterConfig
}

// NewSensitiveDataFilter creates a filter with the given configuration.
// Zero-value fields fall back to the defaults.
func NewSensitiveDataFilter(config FilterConfig) *SensitiveDataFilter {
	if len(config.SensitiveFields) == 0 {
		config.SensitiveFields = DefaultFilterConfig().SensitiveFields
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks value when key names a sensitive field.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) {
		return f.maskString(value)
	}
	return value
}

// FilterValue masks value when key names a sensitive field. Header maps
// and flat field maps are filtered entry by entry; other values pass
// through unchanged.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	switch v := value.(type) {
	case map[string]string:
		return f.FilterHeaders(v)
	case map[string]any:
		return f.FilterFields(v)
	default:
		return value
	}
}

// FilterFields filters a flat map of log fields.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		filtered[key] = f.FilterValue(key, value)
	}
	return filtered
}

// FilterHeaders filters a header map, masking values of sensitive headers.
func (f *SensitiveDataFilter) FilterHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for key, value := range headers {
		filtered[key] = f.FilterString(key, value)
	}
	return filtered
}

func (f *SensitiveDataFilter) isSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range f.config.SensitiveFields {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// maskString replaces a sensitive value. URLs keep their structure with
// only embedded credentials masked, so endpoints remain diagnosable.
func (f *SensitiveDataFilter) maskString(value string) string {
	if value == "" {
		return value
	}
	if isURL(value) {
		return f.maskURL(value)
	}
	return f.config.MaskValue
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// maskURL masks the password in a URL's user info while preserving the
// rest of the URL. Unparseable values are masked entirely.
func (f *SensitiveDataFilter) maskURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return f.config.MaskValue
	}
	if parsed.User == nil {
		return raw
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return raw
	}
	return f.buildMaskedURL(parsed)
}

func (f *SensitiveDataFilter) buildMaskedURL(parsed *url.URL) string {
	var b strings.Builder
	b.WriteString(parsed.Scheme)
	b.WriteString("://")
	b.WriteString(parsed.User.Username())
	b.WriteByte(':')
	b.WriteString(f.config.MaskValue)
	b.WriteByte('@')
	b.WriteString(parsed.Host)
	if p := parsed.EscapedPath(); p != "" {
		b.WriteString(p)
	}
	if q := parsed.RawQuery; q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	if frag := parsed.Fragment; frag != "" {
		b.WriteByte('#')
		b.WriteString(frag)
	}
	return b.String()
}
