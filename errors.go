package askframe

import (
	"context"
	"errors"
	"fmt"
)

// Error codes for specific failure types
const (
	ErrCodeTemplate        = "TEMPLATE_ERROR"
	ErrCodeBackend         = "BACKEND_ERROR"
	ErrCodeExecution       = "EXECUTION_ERROR"
	ErrCodeArtifactMissing = "ARTIFACT_MISSING"
	ErrCodeConfiguration   = "CONFIGURATION_ERROR"
	ErrCodeCancelled       = "EXECUTION_CANCELLED"
)

// Pipeline stages reported in errors.
const (
	StagePrompt         = "prompt"
	StageCompletion     = "completion"
	StageExecution      = "execution"
	StagePlot           = "plot"
	StageInitialization = "initialization"
	StageBatch          = "batch"
)

// AskError is the error type returned by every askframe call.
type AskError struct {
	Code    string // A machine-readable error code (e.g., ErrCodeBackend)
	Message string // A human-readable message
	Stage   string // The stage where the error occurred (e.g., "completion")
	Cause   error  // The underlying error, if any
}

// Error implements the error interface.
func (e *AskError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error, allowing for error chaining.
func (e *AskError) Unwrap() error {
	return e.Cause
}

// NewError creates a new AskError.
func NewError(code, stage, message string, cause error) *AskError {
	return &AskError{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

func NewTemplateError(cause error) *AskError {
	return NewError(ErrCodeTemplate, StagePrompt, "failed to render prompt", cause)
}

func NewBackendError(cause error) *AskError {
	return NewError(ErrCodeBackend, StageCompletion, "language model request failed", cause)
}

func NewExecutionError(cause error) *AskError {
	return NewError(ErrCodeExecution, StageExecution, "generated program failed", cause)
}

func NewArtifactMissingError(cause error) *AskError {
	return NewError(ErrCodeArtifactMissing, StagePlot, "plot program did not save the expected file", cause)
}

func NewConfigurationError(message string, cause error) *AskError {
	return NewError(ErrCodeConfiguration, StageInitialization, message, cause)
}

func NewCancelledError(stage string, cause error) *AskError {
	msg := "execution cancelled"
	if cause != nil && !errors.Is(cause, context.Canceled) {
		msg = fmt.Sprintf("execution cancelled: %v", cause)
	}
	return NewError(ErrCodeCancelled, stage, msg, cause)
}

// HasCode reports whether err is an *AskError with the given code.
func HasCode(err error, code string) bool {
	var askErr *AskError
	return errors.As(err, &askErr) && askErr.Code == code
}

func IsTemplateError(err error) bool   { return HasCode(err, ErrCodeTemplate) }
func IsBackendError(err error) bool    { return HasCode(err, ErrCodeBackend) }
func IsExecutionError(err error) bool  { return HasCode(err, ErrCodeExecution) }
func IsArtifactMissing(err error) bool { return HasCode(err, ErrCodeArtifactMissing) }
func IsCancelled(err error) bool       { return HasCode(err, ErrCodeCancelled) }
