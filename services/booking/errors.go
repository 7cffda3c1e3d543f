package booking

import "fmt"

type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConflictError signals that a dispatch kept losing the optimistic-write
// race and gave up; the caller may retry the whole operation.
func NewConflictError(msg string) error {
	return &WorkflowError{
		Code:    "conflictError",
		Message: msg,
	}
}

// NewLegacyRecordError signals a booking with no usable lifecycle snapshot;
// such records are read-only from the engine's point of view.
func NewLegacyRecordError(msg string) error {
	return &WorkflowError{
		Code:    "legacyRecordError",
		Message: msg,
	}
}

// NewValidationError signals a malformed booking request.
func NewValidationError(msg string) error {
	return &WorkflowError{
		Code:    "validationError",
		Message: msg,
	}
}
