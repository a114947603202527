package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/pr"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "page.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap exposes each failure as an *errors.ValidationError, so callers can
// match errors.ErrInvalidInput or read the offending field.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, v := range e {
		errs[i] = errors.NewValidationError(v.Message).WithField(v.Field).WithValue(v.Value)
	}
	return errs
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"text", "json", "yaml", "markdown"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePage()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateGitHub()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validatePage validates the PageConfig
func (c *Config) validatePage() []ValidationError {
	var errors []ValidationError

	if len(c.Page.Hosts) == 0 {
		errors = append(errors, ValidationError{
			Field:   "page.hosts",
			Value:   c.Page.Hosts,
			Message: "must list at least one host",
		})
	}
	for i, host := range c.Page.Hosts {
		field := fmt.Sprintf("page.hosts[%d]", i)
		if strings.TrimSpace(host) == "" {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   host,
				Message: "cannot be empty",
			})
			continue
		}
		if strings.Contains(host, "/") {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   host,
				Message: "must be a host name, not a URL",
			})
			continue
		}
		if _, err := glob.Compile(host, '.'); err != nil {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   host,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	const maxTimeoutSeconds = 300
	if c.Page.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "page.timeout_seconds",
			Value:   c.Page.TimeoutSeconds,
			Message: "must be positive",
		})
	} else if c.Page.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "page.timeout_seconds",
			Value:   c.Page.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeoutSeconds),
		})
	}

	if c.Page.RequestsPerSecond <= 0 {
		errors = append(errors, ValidationError{
			Field:   "page.requests_per_second",
			Value:   c.Page.RequestsPerSecond,
			Message: "must be positive",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	const maxFeedbackMs = 60000
	if c.TUI.CopyFeedbackMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.copy_feedback_ms",
			Value:   c.TUI.CopyFeedbackMs,
			Message: "must be positive",
		})
	} else if c.TUI.CopyFeedbackMs > maxFeedbackMs {
		errors = append(errors, ValidationError{
			Field:   "tui.copy_feedback_ms",
			Value:   c.TUI.CopyFeedbackMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxFeedbackMs),
		})
	}

	// Zero is allowed: resend immediately after attaching
	const maxRetryDelayMs = 10000
	if c.TUI.RetryDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.retry_delay_ms",
			Value:   c.TUI.RetryDelayMs,
			Message: "must be non-negative",
		})
	} else if c.TUI.RetryDelayMs > maxRetryDelayMs {
		errors = append(errors, ValidationError{
			Field:   "tui.retry_delay_ms",
			Value:   c.TUI.RetryDelayMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxRetryDelayMs),
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	// Polling GitHub more often than every 5 seconds risks secondary rate limits
	const minPollSeconds = 5
	if c.Watch.PollSeconds < minPollSeconds {
		errors = append(errors, ValidationError{
			Field:   "watch.poll_seconds",
			Value:   c.Watch.PollSeconds,
			Message: fmt.Sprintf("must be at least %d", minPollSeconds),
		})
	}

	return errors
}

// validateGitHub validates the GitHubConfig
func (c *Config) validateGitHub() []ValidationError {
	var errors []ValidationError

	if c.GitHub.BaseURL != "" {
		u, err := url.Parse(c.GitHub.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "github.base_url",
				Value:   c.GitHub.BaseURL,
				Message: "must be an absolute http(s) URL",
			})
		}
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	if c.Output.Template != "" {
		if err := pr.ValidateTemplate(c.Output.Template); err != nil {
			errors = append(errors, ValidationError{
				Field:   "output.template",
				Value:   c.Output.Template,
				Message: fmt.Sprintf("invalid template: %v", err),
			})
		}
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
