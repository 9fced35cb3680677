// Package errors provides centralized error definitions and error handling utilities
// for gamedex. It defines the error taxonomy of the view framework, semantic error
// types, error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Framework errors describe how a failure relates to the reactive substrate:
//   - PreconditionError: caller misuse (double OnShow, removing an absent item,
//     reusing a destroyed session). Indicates a wiring bug; never retried.
//   - HandlerFailure: a single subscription handler failed or panicked. Isolated
//     by the session supervisor and reported to the shared error handler.
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewPreconditionError("OnShow", errors.ErrAlreadyShowing).WithState("showing")
//	err := errors.NewHandlerFailure("game-edit", "quantity", cause)
//	err := errors.NewNotFoundError("game", "42")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrSessionDestroyed) { ... }
//	if errors.IsPrecondition(err) { ... }
//
//	var failure *errors.HandlerFailure
//	if errors.As(err, &failure) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
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
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
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

// Session lifecycle sentinel errors
var (
	// ErrPrecondition is matched by every PreconditionError.
	ErrPrecondition = New("precondition violated")
	// ErrSessionDestroyed indicates a lifecycle call on a destroyed session.
	ErrSessionDestroyed = New("session destroyed")
	// ErrAlreadyShowing indicates OnShow was called on a showing session.
	ErrAlreadyShowing = New("session already showing")
	// ErrNotShowing indicates OnHide was called on a session that is not showing.
	ErrNotShowing = New("session not showing")
)

// Collection and bus sentinel errors
var (
	// ErrItemNotPresent indicates a removal or replacement targeted an absent item.
	ErrItemNotPresent = New("item not present")
	// ErrIndexOutOfRange indicates a positional operation outside the list bounds.
	ErrIndexOutOfRange = New("index out of range")
	// ErrBusClosed indicates the event bus has been shut down.
	ErrBusClosed = New("event bus closed")
	// ErrSubscriptionClosed indicates a read from a closed subscription.
	ErrSubscriptionClosed = New("subscription closed")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = New("not found")
	// ErrHandlerPanic marks a HandlerFailure caused by a recovered panic.
	ErrHandlerPanic = New("handler panicked")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// GamedexError is the base interface for all gamedex errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type GamedexError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
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
// Framework Errors
// -----------------------------------------------------------------------------

// PreconditionError reports caller misuse of a framework primitive.
//
// Example:
//
//	err := errors.NewPreconditionError("OnHide", errors.ErrNotShowing)
//	err = err.WithSession("game-edit#3").WithState("hidden")
//	fmt.Println(err) // "precondition violated [op=OnHide, session=game-edit#3, state=hidden]: session not showing"
type PreconditionError struct {
	baseError
	Op      string
	Session string
	State   string
}

// NewPreconditionError creates a new PreconditionError for the given operation.
// The cause is usually one of the lifecycle or collection sentinels.
func NewPreconditionError(op string, cause error) *PreconditionError {
	return &PreconditionError{
		baseError: baseError{
			message:    "precondition violated",
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: false,
		},
		Op: op,
	}
}

// WithSession adds the session debug name to the error context.
func (e *PreconditionError) WithSession(name string) *PreconditionError {
	e.Session = name
	return e
}

// WithState adds the observed state to the error context.
func (e *PreconditionError) WithState(state string) *PreconditionError {
	e.State = state
	return e
}

// Error returns the formatted error message.
func (e *PreconditionError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Session != "" {
		parts = append(parts, fmt.Sprintf("session=%s", e.Session))
	}
	if e.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", e.State))
	}

	prefix := e.message
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", e.message, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Is checks if this error matches the target.
func (e *PreconditionError) Is(target error) bool {
	if _, ok := target.(*PreconditionError); ok {
		return true
	}
	if target == ErrPrecondition {
		return true
	}
	return e.baseError.Is(target)
}

// HandlerFailure reports that one subscription handler inside a session failed.
// The session keeps running; the failure is delivered to its error handler.
//
// Example:
//
//	err := errors.NewHandlerFailure("library-list#1", "delete", cause)
//	fmt.Println(err) // "handler failure [session=library-list#1, handler=delete]: <cause>"
type HandlerFailure struct {
	baseError
	Session string
	Handler string
	Stack   string // Populated when the failure was a recovered panic
}

// NewHandlerFailure creates a new HandlerFailure. It takes the severity of
// cause when cause is classified. A recovered panic is not user facing.
func NewHandlerFailure(session, handler string, cause error) *HandlerFailure {
	severity := SeverityError
	if cause != nil {
		severity = GetSeverity(cause)
	}
	return &HandlerFailure{
		baseError: baseError{
			message:    "handler failure",
			cause:      cause,
			severity:   severity,
			retryable:  IsRetryable(cause),
			userFacing: !Is(cause, ErrHandlerPanic),
		},
		Session: session,
		Handler: handler,
	}
}

// WithStack records the goroutine stack of a recovered panic.
func (e *HandlerFailure) WithStack(stack string) *HandlerFailure {
	e.Stack = stack
	return e
}

// WithSeverity sets the error severity.
func (e *HandlerFailure) WithSeverity(s Severity) *HandlerFailure {
	e.severity = s
	return e
}

// Panicked reports whether the failure was a recovered panic.
func (e *HandlerFailure) Panicked() bool {
	return errors.Is(e.cause, ErrHandlerPanic)
}

// Error returns the formatted error message.
func (e *HandlerFailure) Error() string {
	var parts []string
	if e.Session != "" {
		parts = append(parts, fmt.Sprintf("session=%s", e.Session))
	}
	if e.Handler != "" {
		parts = append(parts, fmt.Sprintf("handler=%s", e.Handler))
	}

	prefix := e.message
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", e.message, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Is checks if this error matches the target.
func (e *HandlerFailure) Is(target error) bool {
	if _, ok := target.(*HandlerFailure); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PanicError converts a recovered panic value into an error wrapping
// ErrHandlerPanic. Errors passed to panic are kept in the chain.
func PanicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("%w: %w", ErrHandlerPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrHandlerPanic, recovered)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("game", "abc123")
//	fmt.Println(err) // "game 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if target == ErrNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("name cannot be empty")
//	err = err.WithField("name").WithValue("")
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
//	err := errors.NewTimeoutError("awaiting game.deleted", 30*time.Second)
//	fmt.Println(err) // "timeout error: awaiting game.deleted (timeout: 30s)"
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
			retryable:  true, // Timeouts are generally retryable
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

// IsPrecondition returns true if err is, or wraps, a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return As(err, &pe)
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing GamedexError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var gdErr GamedexError
	if As(err, &gdErr) {
		return gdErr.IsRetryable()
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
//	    notify(err.Error())
//	} else {
//	    notify("An internal error occurred")
//	    logger.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var gdErr GamedexError
	if As(err, &gdErr) {
		return gdErr.IsUserFacing()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement GamedexError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var gdErr GamedexError
	if As(err, &gdErr) {
		return gdErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to save library")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to delete game %s", id)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
