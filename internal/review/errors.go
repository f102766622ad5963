package review

import (
	"errors"
	"fmt"
)

// Messages surfaced to callers
const (
	MsgParseFailure = "Could not parse model output as JSON."
	MsgNoResult     = "No review result was received from streaming endpoint."
)

// ValidationError means caller input failed basic shape checks.
// It is raised before any gateway work starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayError means the agent gateway reported a failure or is misconfigured
type GatewayError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "agent run failed"
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ParseError means the terminal text could not be read as a JSON object.
// Raw is kept for logging only.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return MsgParseFailure
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StreamIntegrityError means a stream ended without a terminal result or failure
type StreamIntegrityError struct {
	Message string
}

func (e *StreamIntegrityError) Error() string {
	if e.Message == "" {
		return MsgNoResult
	}
	return e.Message
}

// TransportError wraps network read/write failures
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError for a field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage returns the plain string shown to callers for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Error()
	}
	return err.Error()
}
