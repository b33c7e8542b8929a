// Package apperror provides structured errors for graph editing, path search
// and dataset handling, with codes, severity levels and details. Errors map
// onto gRPC status codes so that tracing and any RPC front-end report them
// consistently.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Graph and search
	CodeVertexNotFound ErrorCode = "VERTEX_NOT_FOUND"
	CodeInvalidWeight  ErrorCode = "INVALID_WEIGHT"
	CodeGraphTooLarge  ErrorCode = "GRAPH_TOO_LARGE"
	CodeInvalidOption  ErrorCode = "INVALID_OPTION"

	// Datasets and exports
	CodeInvalidDataset    ErrorCode = "INVALID_DATASET"
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodeExportFailed      ErrorCode = "EXPORT_FAILED"

	// General
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	CodeNilInput ErrorCode = "NIL_INPUT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning marks a skipped input row; loading goes on.
	SeverityWarning Severity = iota
	// SeverityError marks a failed operation.
	SeverityError
)

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus converts the application error into a gRPC status.Status.
func (e *Error) GRPCStatus() *status.Status {
	code := e.grpcCode()
	return status.New(code, e.Message)
}

// grpcCode maps an ErrorCode to an appropriate gRPC codes.Code.
func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeInvalidWeight, CodeInvalidOption, CodeInvalidDataset,
		CodeUnsupportedFormat, CodeNilInput:
		return codes.InvalidArgument

	case CodeVertexNotFound:
		return codes.NotFound

	case CodeGraphTooLarge:
		return codes.ResourceExhausted

	default:
		return codes.Internal
	}
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWithField creates a new application error with the given code, message, and field.
// The default severity is SeverityError.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Field:    field,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWarning creates a new application error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityWarning,
	}
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
// The default severity is SeverityError.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
// It uses errors.As to unwrap the error chain.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ErrNilGraph is returned when a search is started without a graph.
var ErrNilGraph = New(CodeNilInput, "graph is nil")

// VertexNotFound reports a search endpoint that is absent from the graph.
func VertexNotFound(name, field string) *Error {
	return NewWithField(CodeVertexNotFound, fmt.Sprintf("vertex %q not found", name), field).
		WithDetails("vertex", name)
}

// InvalidWeight reports an arc whose weight the search cannot handle.
func InvalidWeight(source, target string, weight float64) *Error {
	return New(CodeInvalidWeight, fmt.Sprintf("arc %s->%s has invalid weight %v", source, target, weight)).
		WithDetails("source", source).
		WithDetails("target", target).
		WithDetails("weight", weight)
}

// ValidationErrors collects the problems found while reading a dataset.
// Warnings describe skipped rows, Errors anything that invalidates the input.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// NewValidationErrors creates an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// Add appends err to Warnings or Errors depending on its Severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// HasWarnings reports whether any row was skipped.
func (v *ValidationErrors) HasWarnings() bool {
	return v != nil && len(v.Warnings) > 0
}

// WarningMessages returns the messages of all collected warnings.
func (v *ValidationErrors) WarningMessages() []string {
	messages := make([]string, len(v.Warnings))
	for i, warn := range v.Warnings {
		messages[i] = warn.Message
	}
	return messages
}
