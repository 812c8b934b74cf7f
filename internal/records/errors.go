package records

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnection means the database handle is missing. Fatal: the caller
	// must surface it, there is no partial state to recover.
	ErrConnection = errors.New("database connection not available")

	// ErrNotFound means a referenced record or parent entity is absent.
	ErrNotFound = errors.New("record not found")

	// ErrBusy means the storage engine stayed locked past the bounded retry.
	// Callers should treat it as retryable and tell the user to try again.
	ErrBusy = errors.New("database busy")
)

// InvalidInputError is returned when input fails validation before any write.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateKeyError is returned on a unique-constraint conflict for explicit
// inserts. VIN inserts are insert-or-ignore and never produce this.
type DuplicateKeyError struct {
	Table string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: duplicate key %q", e.Table, e.Key)
}

// StorageError wraps any other engine-level failure. The enclosing
// multi-statement operation has already been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// IsDuplicateKey reports whether err is a unique-constraint conflict.
func IsDuplicateKey(err error) bool {
	var de *DuplicateKeyError
	return errors.As(err, &de)
}

// isBusy detects SQLITE_BUSY / locked conditions from the driver.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
