package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Config errors - raised at setup, before any rendering is attempted
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
	ErrUnknownEngine = &Error{Code: "UNKNOWN_ENGINE", Message: "unsupported chart engine"}

	// Parse errors
	ErrParseFailed = &Error{Code: "PARSE_FAILED", Message: "report parsing failed"}

	// Rendering/export errors - reported per chart, never abort a batch
	ErrRenderFailed = &Error{Code: "RENDER_FAILED", Message: "chart rendering failed"}
	ErrExportFailed = &Error{Code: "EXPORT_FAILED", Message: "artifact export failed"}

	// Batch errors
	ErrJobTimeout = &Error{Code: "JOB_TIMEOUT", Message: "render job timed out"}

	// Storage errors
	ErrArtifactNotFound = &Error{Code: "ARTIFACT_NOT_FOUND", Message: "artifact not found"}
)
