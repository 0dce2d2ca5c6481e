package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, use with errors.Is().
var (
	// ErrStorageUnavailable means the storage root does not exist or is not a
	// directory. The root is provisioned externally and never created here.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when no snapshot with the requested name exists.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidName is returned for names that cannot address a snapshot.
	ErrInvalidName = errors.New("invalid snapshot name")

	// ErrUnsupportedFormat is returned for uploads that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrAmountOutOfRange is returned for amounts that cannot be stored as
	// DECIMAL(18,2): more than two fractional digits or more than 16 integer
	// digits.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// SchemaError reports required columns absent from an input table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// InvalidNameError carries the reason a snapshot name was rejected.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid snapshot name %q: %s", e.Name, e.Reason)
}

func (e *InvalidNameError) Unwrap() error {
	return ErrInvalidName
}

// IsSchemaError reports whether err carries a *SchemaError and returns it.
func IsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
