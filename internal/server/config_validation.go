// config_validation.go - Startup checks for the WC_* environment.
//
// Every variable is checked before anything is opened so a bad deployment
// fails with one report listing all problems.
package server

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"word-counter/internal/storage"
)

// ConfigValidationError names one offending variable.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ConfigValidator collects problems instead of stopping at the first one.
type ConfigValidator struct {
	getenv func(string) string
	errors []ConfigValidationError
}

// NewConfigValidator reads variables from the process environment.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{getenv: os.Getenv}
}

func (v *ConfigValidator) AddError(field, message string) {
	v.errors = append(v.errors, ConfigValidationError{Field: field, Message: message})
}

func (v *ConfigValidator) HasErrors() bool { return len(v.errors) > 0 }

func (v *ConfigValidator) Errors() []ConfigValidationError { return v.errors }

// ErrorString renders a numbered report of every problem.
func (v *ConfigValidator) ErrorString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Configuration validation failed with %d error(s):\n", len(v.errors))
	for i, e := range v.errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e.Error())
	}
	return sb.String()
}

// ValidateRequired reports key when it is unset and returns its value.
func (v *ConfigValidator) ValidateRequired(key string) string {
	value := v.getenv(key)
	if value == "" {
		v.AddError(key, "required environment variable not set")
	}
	return value
}

// The value checks below accept an empty value; pair them with
// ValidateRequired when the variable is mandatory.

// ValidateURL requires an absolute http(s) URL with a host.
func (v *ConfigValidator) ValidateURL(key, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	switch {
	case err != nil:
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
	case u.Scheme != "http" && u.Scheme != "https":
		v.AddError(key, "URL must use http or https scheme")
	case u.Host == "":
		v.AddError(key, "URL must include a host")
	}
}

// ValidatePort checks the port of a ":port" or "host:port" listen address.
func (v *ConfigValidator) ValidatePort(key, value string) {
	if value == "" {
		return
	}
	port := value
	if i := strings.LastIndexByte(value, ':'); i >= 0 {
		port = value[i+1:]
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}
	if n < 1 || n > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

func (v *ConfigValidator) ValidateEnum(key, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

func (v *ConfigValidator) ValidatePositiveInt(key, value string) {
	v.validateInt(key, value, 1, "must be a positive integer")
}

func (v *ConfigValidator) ValidateNonNegativeInt(key, value string) {
	v.validateInt(key, value, 0, "must not be negative")
}

func (v *ConfigValidator) validateInt(key, value string, min int64, msg string) {
	if value == "" {
		return
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return
	}
	if n < min {
		v.AddError(key, msg)
	}
}

// ValidateDuration requires a positive Go duration such as "30s".
func (v *ConfigValidator) ValidateDuration(key, value string) {
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		v.AddError(key, "must be a valid duration (e.g., 30s, 1m)")
		return
	}
	if d <= 0 {
		v.AddError(key, "must be a positive duration")
	}
}

func (v *ConfigValidator) ValidateBool(key, value string) {
	if value == "" {
		return
	}
	if _, err := strconv.ParseBool(value); err != nil {
		v.AddError(key, "must be true or false")
	}
}

// check runs fn against the current value of key.
func (v *ConfigValidator) check(fn func(key, value string), keys ...string) {
	for _, k := range keys {
		fn(k, v.getenv(k))
	}
}

func (v *ConfigValidator) validateBackend() {
	backend := v.getenv("WC_STORAGE")
	v.ValidateEnum("WC_STORAGE", backend, storage.Backends)

	switch backend {
	case storage.BackendMinio:
		if endpoint := v.ValidateRequired("WC_S3_ENDPOINT"); strings.Contains(endpoint, "://") {
			v.ValidateURL("WC_S3_ENDPOINT", endpoint)
		}
		v.ValidateRequired("WC_S3_ACCESS_KEY")
		v.ValidateRequired("WC_S3_SECRET_KEY")
		v.ValidateRequired("WC_BUCKET")
	case storage.BackendRedis:
		v.ValidateRequired("WC_REDIS_ADDR")
		v.check(v.ValidateNonNegativeInt, "WC_REDIS_DB")
	case storage.BackendPostgres:
		dsn := v.ValidateRequired("DATABASE_URL")
		if dsn != "" && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			v.AddError("DATABASE_URL", "must be a valid PostgreSQL connection string")
		}
	}
}

// ValidateAllConfiguration checks every WC_* variable the backend reads.
func ValidateAllConfiguration() error {
	v := NewConfigValidator()

	v.check(v.ValidatePort, "WC_ADDR")
	v.check(v.ValidateURL, "WC_BASE_URL")
	v.validateBackend()

	v.check(v.ValidateNonNegativeInt, "WC_CACHE_SIZE", "WC_BREAKER_FAILURES", "WC_RATE_LIMIT")
	v.check(v.ValidateDuration, "WC_BREAKER_TIMEOUT")
	v.check(v.ValidatePositiveInt, "WC_MAX_UPLOAD_BYTES")
	v.check(v.ValidateBool, "WC_SORT_RESULTS", "WC_TRUST_PROXY")

	v.ValidateEnum("WC_LOG_FORMAT", v.getenv("WC_LOG_FORMAT"), []string{"json", "text"})
	v.ValidateEnum("WC_LOG_LEVEL", v.getenv("WC_LOG_LEVEL"), []string{"debug", "info", "warn", "error"})
	v.ValidateEnum("WC_ENV", v.getenv("WC_ENV"), []string{"development", "production", "staging"})

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}
	return nil
}

// WarnOnOptionalMissingConfig logs settings that are legal but unwise.
func WarnOnOptionalMissingConfig() {
	var warnings []string

	if os.Getenv("WC_BASE_URL") == "" {
		warnings = append(warnings, "WC_BASE_URL not set - locators use http://localhost:8080")
	}
	if os.Getenv("WC_STORAGE") == storage.BackendMemory {
		warnings = append(warnings, "WC_STORAGE=memory - results are lost on restart")
	}
	if os.Getenv("WC_MAX_UPLOAD_BYTES") == "" {
		warnings = append(warnings, "WC_MAX_UPLOAD_BYTES not set - using the 10 MiB default")
	}
	if os.Getenv("WC_LOG_FORMAT") == "" && os.Getenv("WC_ENV") != "production" {
		warnings = append(warnings, "WC_LOG_FORMAT not set - using text format (consider 'json' for production)")
	}

	if len(warnings) > 0 {
		Warn("configuration warnings", map[string]interface{}{
			"count":    len(warnings),
			"warnings": warnings,
		})
	}
}
