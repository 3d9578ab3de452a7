package study

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCard is returned when a mark names a card outside the
	// ordered view.
	ErrUnknownCard = errors.New("card is not part of this session")

	// ErrNotReady is returned when a mark is attempted while the cards are
	// loading or failed to load.
	ErrNotReady = errors.New("session cards are not loaded")
)

// CallerError reports an operation invoked with invalid arguments or while
// the session cannot serve it. It never ends the session.
type CallerError struct {
	Op     string
	CardID int64
	Err    error
}

func (e *CallerError) Error() string {
	return fmt.Sprintf("%s card %d: %v", e.Op, e.CardID, e.Err)
}

func (e *CallerError) Unwrap() error { return e.Err }

// FetchError reports that the list's cards could not be loaded. The session
// shows an error state until it is reloaded.
type FetchError struct {
	ListID int64
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load cards for list %d: %v", e.ListID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError reports a learned mark that could not be saved. The local
// state has already been rolled back when it is returned.
type PersistError struct {
	CardID  int64
	Learned bool
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save card %d: %v", e.CardID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
