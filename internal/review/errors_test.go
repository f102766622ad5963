package review

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "validation", err: NewValidationError("title", "Movie title is required."), expected: "Movie title is required."},
		{name: "wrapped parse error hides raw text", err: fmt.Errorf("review: %w", &ParseError{Raw: "secret"}), expected: MsgParseFailure},
		{name: "gateway with message", err: &GatewayError{Provider: "openai", Message: "rate limited"}, expected: "rate limited"},
		{name: "gateway wrapping cause", err: &GatewayError{Err: errors.New("dial tcp")}, expected: "dial tcp"},
		{name: "stream integrity default", err: &StreamIntegrityError{}, expected: MsgNoResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", NewValidationError("title", "x"))))
	assert.False(t, IsValidation(&GatewayError{Message: "x"}))
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{Op: "read stream", Err: io.ErrUnexpectedEOF}

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "read stream: unexpected EOF", err.Error())
}
