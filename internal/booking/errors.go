package booking

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a booking id that
// does not exist in the store.
var ErrNotFound = errors.New("booking not found")

// ValidationError reports a client-side field constraint violation. It
// blocks submission before any store call is made.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps a failure from the record store. Local state is left
// unchanged so the caller can retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
