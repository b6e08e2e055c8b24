// Package exception provides the structured error type used across gradeloop.
// Every failing layer tags its errors with an explicit ErrorKind so the
// orchestrator can branch on the kind instead of matching message text.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorKind classifies a grading failure for the orchestrator's branching policy.
type ErrorKind string

const (
	// KindNetwork marks connectivity or timeout failures talking to an
	// external capability. These are retryable at the workflow level.
	KindNetwork ErrorKind = "network"
	// KindElementDetection marks a required page anchor that could not be
	// located. Missing anchors are not self-healing, so these escalate to
	// manual mode instead of retrying.
	KindElementDetection ErrorKind = "element-detection"
	// KindAIScoring marks an outright failure of the vision scoring
	// capability. These force manual review immediately.
	KindAIScoring ErrorKind = "ai-scoring"
	// KindUnknown marks anything the throwing layer could not classify.
	KindUnknown ErrorKind = "unknown"
)

// String returns the string representation of the ErrorKind.
func (k ErrorKind) String() string {
	return string(k)
}

// GradingError is the error type raised by gradeloop components.
// It carries the component where the error occurred, a concise message,
// the wrapped cause, and the classification kind set by the throwing layer.
type GradingError struct {
	// Component indicates where the error occurred (e.g. "detect", "score", "sync").
	Component string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// kind is the failure classification assigned at the throw site.
	kind ErrorKind
	// StackTrace is the stack captured at construction (for debugging).
	StackTrace string
}

// NewGradingError creates a new GradingError instance.
// component: the component where the error occurred.
// message: the error message.
// kind: the failure classification.
// originalErr: the original error to wrap (may be nil).
func NewGradingError(component, message string, kind ErrorKind, originalErr error) *GradingError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &GradingError{
		Component:   component,
		Message:     message,
		OriginalErr: originalErr,
		kind:        kind,
		StackTrace:  string(buf[:n]),
	}
}

// NewGradingErrorf creates a new GradingError with a formatted message.
// The wrapped cause, when needed, is attached with %w inside the format
// arguments or set afterwards with WithCause.
func NewGradingErrorf(component string, kind ErrorKind, format string, a ...interface{}) *GradingError {
	return NewGradingError(component, fmt.Sprintf(format, a...), kind, nil)
}

// WithCause attaches the original error and returns the receiver.
func (e *GradingError) WithCause(err error) *GradingError {
	e.OriginalErr = err
	return e
}

// Error implements the error interface.
func (e *GradingError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Component, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Component, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *GradingError) Unwrap() error {
	return e.OriginalErr
}

// Kind returns the failure classification of this error.
func (e *GradingError) Kind() ErrorKind {
	return e.kind
}

// IsRetryable reports whether this error should trigger a workflow retry.
// Only network-classified failures are retryable.
func (e *GradingError) IsRetryable() bool {
	return e.kind == KindNetwork
}

// KindOf classifies an arbitrary error. It walks the error chain looking for
// a GradingError and returns its kind; anything else is KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var ge *GradingError
	if errors.As(err, &ge) {
		return ge.Kind()
	}
	return KindUnknown
}

// IsGradingError determines if the given error carries a GradingError.
func IsGradingError(err error) bool {
	if err == nil {
		return false
	}
	var ge *GradingError
	return errors.As(err, &ge)
}

// ExtractErrorMessage extracts the message string from an error.
// For GradingError it returns the cleaner Message field; otherwise the
// standard Error() string.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ge *GradingError
	if errors.As(err, &ge) {
		return ge.Message
	}
	return err.Error()
}
