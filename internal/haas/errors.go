package haas

import (
	"errors"
	"fmt"
)

// Platform error strings that indicate a dead session rather than a
// bad request.
const (
	ErrorInvalidInterfaceKey = "INVALID_INTERFACE_KEY"
	ErrorInvalidUserID       = "INVALID_USER_ID"
	ErrorSessionExpired      = "SESSION_EXPIRED"
)

// APIError represents an error returned by the platform API
type APIError struct {
	Message string
	Channel string
	Cause   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error: %s (channel: %s)", e.Message, e.Channel)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// AuthenticationError represents a credential or session failure.
// This category is fatal for the whole run.
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// NewAPIError creates a new platform API error
func NewAPIError(message, channel string, cause error) *APIError {
	return &APIError{
		Message: message,
		Channel: channel,
		Cause:   cause,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string, cause error) *AuthenticationError {
	return &AuthenticationError{
		Message: message,
		Cause:   cause,
	}
}

// IsAuthenticationError reports whether err is (or wraps) an
// authentication failure.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// mapPlatformError maps platform error strings to specific error types
func mapPlatformError(message, channel string) error {
	switch message {
	case ErrorInvalidInterfaceKey, ErrorInvalidUserID, ErrorSessionExpired:
		return NewAuthenticationError(message, nil)
	default:
		return NewAPIError(message, channel, nil)
	}
}
