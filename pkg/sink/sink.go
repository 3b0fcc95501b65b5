// Package sink holds the destinations a collected message can be written to:
// date-rotated files, the console and optional mirrors.
package sink

import (
	"errors"
	"fmt"
)

// Sink defines the interface for data destinations.
type Sink interface {
	// Write appends a single message. Implementations add the line terminator.
	Write(data []byte) error
	// Close cleans up resources (e.g., closing files).
	Close() error
}

// PersistError reports a file-system failure that leaves a sink unable to
// persist what it has accepted. Callers treat it as unrecoverable.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError reports whether err carries a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
