package lifecycle

import "fmt"

// SnapshotError signals a malformed or unusable persisted snapshot. Callers
// treat the booking as legacy and resolve status from historical timestamps
// instead of crashing.
type SnapshotError struct {
	Code    string
	Message string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSnapshotError(msg string) error {
	return &SnapshotError{
		Code:    "snapshotError",
		Message: msg,
	}
}
