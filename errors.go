package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when an operation references a node id
	// absent from the composition.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an operation references an edge id
	// absent from the composition.
	ErrEdgeNotFound = errors.New("edge not found")
)

// ValidationCode identifies why a candidate connection was rejected.
type ValidationCode string

const (
	CodeSelfConnection      ValidationCode = "SELF_CONNECTION"
	CodeMissingSourceNode   ValidationCode = "MISSING_SOURCE_NODE"
	CodeMissingTargetNode   ValidationCode = "MISSING_TARGET_NODE"
	CodeNoHandles           ValidationCode = "NO_HANDLES"
	CodeMissingSourceHandle ValidationCode = "MISSING_SOURCE_HANDLE"
	CodeMissingTargetHandle ValidationCode = "MISSING_TARGET_HANDLE"
	CodeDuplicateConnection ValidationCode = "DUPLICATE_CONNECTION"
	CodeTypeMismatch        ValidationCode = "TYPE_MISMATCH"
)

// ValidationError reports a rejected candidate connection. It is recoverable:
// the composition is never mutated by a failed validation.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErrorf(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
