// Package errors provides centralized error definitions and error handling utilities
// for prtasks. It defines sentinel errors, typed errors carrying page, extraction and
// channel context, and classification helpers used to pick what the user sees.
//
// # Error Types
//
// Domain-specific errors represent failures from one subsystem:
//   - PageError: loading or addressing a pull request page (fetch, file read, wrong page)
//   - ExtractionError: an unexpected failure while scanning a document
//   - ChannelError: the request/response channel between presenter and extractor
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or configuration
//   - TimeoutError: an operation ran out of time
//
// # Usage
//
//	err := errors.NewPageError("fetch failed", errors.ErrFetchFailed).WithURL(u).WithStatus(502)
//
//	if errors.Is(err, errors.ErrNotPRPage) { ... }
//
//	var pageErr *errors.PageError
//	if errors.As(err, &pageErr) { ... }
//
// # Error Classification
//
// Errors are classified by severity and behavior:
//   - Retryable: transient errors that may succeed on a manual refresh
//   - UserFacing: messages safe to show in the presenter
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Page-related sentinel errors
var (
	// ErrNotPRPage indicates the current page is not a pull request page.
	// Its message is the exact text carried by failure responses.
	ErrNotPRPage = New("Not on a PR page")
	// ErrFetchFailed indicates a page could not be loaded.
	ErrFetchFailed = New("page fetch failed")
	// ErrHostNotAllowed indicates the page host is outside the configured allowlist.
	ErrHostNotAllowed = New("host not allowed")
)

// Extraction-related sentinel errors
var (
	// ErrExtractionFailed indicates an unexpected failure while scanning a document.
	ErrExtractionFailed = New("extraction failed")
	// ErrUnknownAction indicates a request carried an action the extractor does not handle.
	ErrUnknownAction = New("unknown action")
)

// Channel-related sentinel errors
var (
	// ErrNotAttached indicates no extractor is attached to the target tab yet.
	ErrNotAttached = New("extractor not attached")
	// ErrNoResponse indicates the channel delivered nothing usable.
	ErrNoResponse = New("no response from extractor")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrClipboardUnavailable indicates no clipboard backend accepted the write.
	ErrClipboardUnavailable = New("clipboard unavailable")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// TaskError is the base interface for all prtasks errors.
// It extends the standard error interface with methods for
// error handling and classification.
type TaskError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and a refresh
	// may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// PageError represents errors related to loading or addressing a page.
//
// Example:
//
//	err := errors.NewPageError("unexpected status", errors.ErrFetchFailed).
//		WithURL("https://github.com/o/r/pull/1").WithStatus(404)
//	fmt.Println(err) // "page error [url=https://github.com/o/r/pull/1, status=404]: unexpected status: page fetch failed"
type PageError struct {
	baseError
	URL    string
	Status int
}

// NewPageError creates a new PageError.
func NewPageError(message string, cause error) *PageError {
	return &PageError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithURL adds the page URL to the error context.
func (e *PageError) WithURL(u string) *PageError {
	e.URL = u
	return e
}

// WithStatus adds an HTTP status code to the error context.
// Server-side statuses mark the error retryable.
func (e *PageError) WithStatus(status int) *PageError {
	e.Status = status
	if status >= 500 || status == 429 {
		e.retryable = true
	}
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *PageError) WithRetryable(r bool) *PageError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *PageError) Error() string {
	var parts []string
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("url=%s", e.URL))
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}

	prefix := "page error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("page error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PageError) Is(target error) bool {
	if _, ok := target.(*PageError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ExtractionError represents an unexpected failure while scanning a document,
// typically a recovered panic from a malformed tree.
//
// Example:
//
//	err := errors.NewExtractionError("scan aborted", errors.ErrExtractionFailed).
//		WithStrategy("commit-link").WithRecovered(r)
type ExtractionError struct {
	baseError
	Strategy  string
	Recovered any
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(message string, cause error) *ExtractionError {
	return &ExtractionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithStrategy records which strategy was running when the failure happened.
func (e *ExtractionError) WithStrategy(name string) *ExtractionError {
	e.Strategy = name
	return e
}

// WithRecovered records the value recovered from a panic.
func (e *ExtractionError) WithRecovered(v any) *ExtractionError {
	e.Recovered = v
	return e
}

// Error returns the formatted error message.
func (e *ExtractionError) Error() string {
	var parts []string
	if e.Strategy != "" {
		parts = append(parts, fmt.Sprintf("strategy=%s", e.Strategy))
	}
	if e.Recovered != nil {
		parts = append(parts, fmt.Sprintf("panic=%v", e.Recovered))
	}

	prefix := "extraction error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("extraction error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ExtractionError) Is(target error) bool {
	if _, ok := target.(*ExtractionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ChannelError represents a failed delivery between the presenter and the extractor.
//
// Example:
//
//	err := errors.NewChannelError("send failed", errors.ErrNotAttached).WithTab("tab-1").WithAttempt(1)
type ChannelError struct {
	baseError
	TabID   string
	Attempt int
}

// NewChannelError creates a new ChannelError.
func NewChannelError(message string, cause error) *ChannelError {
	return &ChannelError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithTab adds the tab identifier to the error context.
func (e *ChannelError) WithTab(id string) *ChannelError {
	e.TabID = id
	return e
}

// WithAttempt records which send attempt failed (1-based).
func (e *ChannelError) WithAttempt(n int) *ChannelError {
	e.Attempt = n
	return e
}

// Error returns the formatted error message.
func (e *ChannelError) Error() string {
	var parts []string
	if e.TabID != "" {
		parts = append(parts, fmt.Sprintf("tab=%s", e.TabID))
	}
	if e.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.Attempt))
	}

	prefix := "channel error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("channel error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ChannelError) Is(target error) bool {
	if _, ok := target.(*ChannelError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("page URL cannot be empty")
//	err = err.WithField("url").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("fetching page", 15*time.Second)
//	fmt.Println(err) // "timeout error: fetching page (timeout: 15s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on a refresh.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var taskErr TaskError
	if As(err, &taskErr) {
		return taskErr.IsRetryable()
	}

	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    show(err.Error())
//	} else {
//	    show("Could not read tasks from this page")
//	    logger.Error("extraction failed", "error", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var taskErr TaskError
	if As(err, &taskErr) {
		return taskErr.IsUserFacing()
	}

	var validation *ValidationError
	var timeout *TimeoutError
	return As(err, &validation) || As(err, &timeout)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement TaskError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var taskErr TaskError
	if As(err, &taskErr) {
		return taskErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
