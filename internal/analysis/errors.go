package analysis

import "fmt"

// InsufficientDataError indicates a baseline could not be derived from
// the supplied sample.
type InsufficientDataError struct {
	Message string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Message)
}

// NewInsufficientDataError creates a new insufficient data error
func NewInsufficientDataError(message string) *InsufficientDataError {
	return &InsufficientDataError{Message: message}
}
