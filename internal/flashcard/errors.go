package flashcard

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested list, card or entry does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate indicates the entry is already on the list.
var ErrDuplicate = errors.New("flashcard already exists in this list")

// InvalidError reports a field that failed validation.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError indicates the card store could not be reached or failed
// while serving the request.
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("card store unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("card store unavailable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
