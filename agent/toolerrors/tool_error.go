// Package toolerrors provides structured error types for tool invocation
// failures. ToolError preserves error chains and supports errors.Is/As
// while remaining serializable across the observation stream.
// EngineError layers the engine's own error-kind vocabulary on top, so
// a terminal failure (stagnation, iteration cap, plan-parse) carries a
// switchable Kind instead of only a message.
package toolerrors

import (
	"errors"
	"fmt"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// ToolError represents a structured tool failure that preserves message and
// causal context while still implementing the standard error interface.
// Tool errors may be nested via Cause to retain diagnostics across retries.
type ToolError struct {
	// Message is the human-readable summary of the failure.
	Message string
	// Cause links to the underlying tool error, enabling error chains with
	// errors.Is/As.
	Cause *ToolError
}

// New constructs a ToolError with the provided message.
func New(message string) *ToolError {
	if message == "" {
		message = "tool error"
	}
	return &ToolError{Message: message}
}

// NewWithCause constructs a ToolError that wraps an underlying error.
func NewWithCause(message string, cause error) *ToolError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ToolError{
		Message: message,
		Cause:   FromError(cause),
	}
}

// FromError converts an arbitrary error into a ToolError chain.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{
		Message: err.Error(),
		Cause:   FromError(errors.Unwrap(err)),
	}
}

// Errorf formats according to a format specifier and returns the string as
// a ToolError.
func Errorf(format string, args ...any) *ToolError {
	return New(fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying tool error to support errors.Is/As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// EngineError is a ToolError additionally tagged with an agent.ErrorKind,
// so a caller several stack frames away from where the error was
// raised can switch on Kind instead of pattern-matching Message. This is
// the engine's own terminal-error shape (stagnation, iteration cap,
// plan-parse failure) as distinct from a bare tool-execution failure.
type EngineError struct {
	*ToolError
	Kind agent.ErrorKind
}

// NewEngineError constructs an EngineError with the provided kind and
// message.
func NewEngineError(kind agent.ErrorKind, message string) *EngineError {
	return &EngineError{ToolError: New(message), Kind: kind}
}

// NewEngineErrorWithCause constructs an EngineError of the given kind that
// wraps an underlying error, preserving its chain via Cause.
func NewEngineErrorWithCause(kind agent.ErrorKind, message string, cause error) *EngineError {
	return &EngineError{ToolError: NewWithCause(message, cause), Kind: kind}
}

// Response renders the EngineError as a terminal FinalResponse:
// payload.error = true, payload.error_type = string(Kind).
func (e *EngineError) Response(extra map[string]any) agent.FinalResponse {
	if e == nil {
		return agent.ErrorResponse("", "", extra)
	}
	return agent.ErrorResponse(e.Kind, e.Error(), extra)
}

// Unwrap exposes the wrapped ToolError chain so errors.Is/As still sees
// through to Cause.
func (e *EngineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.ToolError
}
