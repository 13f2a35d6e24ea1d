package types

import "fmt"

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Configuration error codes. These are never retried and always surface
// before any provider call is made.
const (
	ErrInvalidConstraint  ErrorCode = "INVALID_CONSTRAINT"
	ErrInsufficientRoster ErrorCode = "INSUFFICIENT_ROSTER"
	ErrUnknownStrategy    ErrorCode = "UNKNOWN_STRATEGY"
	ErrInvalidParams      ErrorCode = "INVALID_PARAMS"
)

// Session error codes
const (
	ErrQuorumNotMet     ErrorCode = "QUORUM_NOT_MET"
	ErrSessionCancelled ErrorCode = "SESSION_CANCELLED"
)

// Provider error codes
const (
	ErrProviderTimeout    ErrorCode = "PROVIDER_TIMEOUT"
	ErrProviderFailed     ErrorCode = "PROVIDER_FAILED"
	ErrInvalidPerspective ErrorCode = "INVALID_PERSPECTIVE"
)

// Synthesis error codes
const (
	ErrEmptyInput            ErrorCode = "EMPTY_INPUT"
	ErrFacilitatorIncomplete ErrorCode = "FACILITATOR_INCOMPLETE"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Role      RoleID    `json:"role,omitempty"`
	Round     int       `json:"round,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithRole attaches the role the error relates to.
func (e *Error) WithRole(role RoleID) *Error {
	e.Role = role
	return e
}

// WithRound attaches the round the error was raised in.
func (e *Error) WithRound(round int) *Error {
	e.Round = round
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsCode checks whether an error carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
