package registry

import (
	"errors"
	"fmt"
)

// ErrInvalidRegistry marks registry documents that fail validation. Loading
// stops at the first invalid entry; a partially-validated registry is never
// returned.
var ErrInvalidRegistry = errors.New("invalid registry")

// Error reports a validation failure for one registry entry.
type Error struct {
	Entry string // section label of the offending entry, empty for document-level failures
	Msg   string
}

func (e *Error) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRegistry, e.Msg)
	}

	return fmt.Sprintf("%s: entry %q: %s", ErrInvalidRegistry, e.Entry, e.Msg)
}

func (e *Error) Unwrap() error {
	return ErrInvalidRegistry
}

func invalidf(entry, format string, args ...any) error {
	return &Error{Entry: entry, Msg: fmt.Sprintf(format, args...)}
}
