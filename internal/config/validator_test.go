package config

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/prtasks/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestValidationErrors_Unwrap(t *testing.T) {
	var err error = ValidationErrors{
		{Field: "watch.poll_seconds", Value: 1, Message: "must be at least 5"},
		{Field: "output.format", Value: "xml", Message: "is not supported"},
	}

	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Error("validation errors should match ErrInvalidInput")
	}

	var first *errors.ValidationError
	if !errors.As(err, &first) {
		t.Fatal("validation errors should unwrap to *errors.ValidationError")
	}
	if first.Field != "watch.poll_seconds" || first.Value != 1 {
		t.Errorf("first error = field %q value %v, want watch.poll_seconds 1", first.Field, first.Value)
	}
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

// hasFieldError reports whether errs contains an error for field.
func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_Page(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		field    string
		hasError bool
	}{
		{"default hosts", func(c *Config) {}, "page.hosts", false},
		{"no hosts", func(c *Config) { c.Page.Hosts = nil }, "page.hosts", true},
		{"blank host", func(c *Config) { c.Page.Hosts = []string{" "} }, "page.hosts[0]", true},
		{"url instead of host", func(c *Config) { c.Page.Hosts = []string{"https://github.com"} }, "page.hosts[0]", true},
		{"bad glob", func(c *Config) { c.Page.Hosts = []string{"github.com", "[ghe"} }, "page.hosts[1]", true},
		{"wildcard host", func(c *Config) { c.Page.Hosts = []string{"*.ghe.example.com"} }, "page.hosts[0]", false},
		{"zero timeout", func(c *Config) { c.Page.TimeoutSeconds = 0 }, "page.timeout_seconds", true},
		{"huge timeout", func(c *Config) { c.Page.TimeoutSeconds = 301 }, "page.timeout_seconds", true},
		{"max timeout", func(c *Config) { c.Page.TimeoutSeconds = 300 }, "page.timeout_seconds", false},
		{"zero rate", func(c *Config) { c.Page.RequestsPerSecond = 0 }, "page.requests_per_second", true},
		{"fractional rate", func(c *Config) { c.Page.RequestsPerSecond = 0.5 }, "page.requests_per_second", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if got := hasFieldError(cfg.Validate(), tt.field); got != tt.hasError {
				t.Errorf("error for %s = %v, want %v", tt.field, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_TUI(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		field    string
		hasError bool
	}{
		{"zero copy feedback", func(c *Config) { c.TUI.CopyFeedbackMs = 0 }, "tui.copy_feedback_ms", true},
		{"long copy feedback", func(c *Config) { c.TUI.CopyFeedbackMs = 60001 }, "tui.copy_feedback_ms", true},
		{"zero retry delay", func(c *Config) { c.TUI.RetryDelayMs = 0 }, "tui.retry_delay_ms", false},
		{"negative retry delay", func(c *Config) { c.TUI.RetryDelayMs = -1 }, "tui.retry_delay_ms", true},
		{"long retry delay", func(c *Config) { c.TUI.RetryDelayMs = 10001 }, "tui.retry_delay_ms", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if got := hasFieldError(cfg.Validate(), tt.field); got != tt.hasError {
				t.Errorf("error for %s = %v, want %v", tt.field, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_Watch(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		field    string
		hasError bool
	}{
		{"zero debounce", func(c *Config) { c.Watch.DebounceMs = 0 }, "watch.debounce_ms", false},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch.debounce_ms", true},
		{"fast poll", func(c *Config) { c.Watch.PollSeconds = 4 }, "watch.poll_seconds", true},
		{"minimum poll", func(c *Config) { c.Watch.PollSeconds = 5 }, "watch.poll_seconds", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if got := hasFieldError(cfg.Validate(), tt.field); got != tt.hasError {
				t.Errorf("error for %s = %v, want %v", tt.field, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_GitHub(t *testing.T) {
	tests := []struct {
		baseURL  string
		hasError bool
	}{
		{"", false},
		{"https://ghe.example.com/api/v3/", false},
		{"ghe.example.com", true},
		{"ftp://ghe.example.com", true},
		{"https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			cfg := Default()
			cfg.GitHub.BaseURL = tt.baseURL
			if got := hasFieldError(cfg.Validate(), "github.base_url"); got != tt.hasError {
				t.Errorf("error for %q = %v, want %v", tt.baseURL, got, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_Output(t *testing.T) {
	for _, format := range ValidOutputFormats() {
		cfg := Default()
		cfg.Output.Format = format
		if hasFieldError(cfg.Validate(), "output.format") {
			t.Errorf("format %q should be valid", format)
		}
	}

	cfg := Default()
	cfg.Output.Format = "xml"
	if !hasFieldError(cfg.Validate(), "output.format") {
		t.Error("expected error for unknown format")
	}

	cfg = Default()
	cfg.Output.Template = "{{range .Tasks}}{{plural .Commits \"commit\"}}{{end}}"
	if hasFieldError(cfg.Validate(), "output.template") {
		t.Error("template using plural should be valid")
	}

	cfg.Output.Template = "{{range .Tasks}}"
	if !hasFieldError(cfg.Validate(), "output.template") {
		t.Error("expected error for unterminated template")
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", ""} {
			cfg := Default()
			cfg.Logging.Level = level
			if hasFieldError(cfg.Validate(), "logging.level") {
				t.Errorf("level %q should be valid", level)
			}
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "invalid"
		if !hasFieldError(cfg.Validate(), "logging.level") {
			t.Error("expected error for invalid log level")
		}
	})

	t.Run("case sensitive log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "INFO"
		if !hasFieldError(cfg.Validate(), "logging.level") {
			t.Error("expected error for uppercase log level")
		}
	})
}

func TestValidLogLevels(t *testing.T) {
	levels := ValidLogLevels()
	expected := []string{"debug", "info", "warn", "error"}

	if len(levels) != len(expected) {
		t.Fatalf("ValidLogLevels() length = %d, want %d", len(levels), len(expected))
	}
	for i, level := range expected {
		if levels[i] != level {
			t.Errorf("ValidLogLevels()[%d] = %q, want %q", i, levels[i], level)
		}
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	// Set multiple invalid values
	cfg.Page.Hosts = nil
	cfg.TUI.CopyFeedbackMs = 0
	cfg.Logging.Level = "invalid"
	cfg.Output.Format = "xml"

	errs := cfg.Validate()
	if len(errs) < 4 {
		t.Errorf("expected at least 4 errors, got %d: %v", len(errs), errs)
	}
}
