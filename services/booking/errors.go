package booking

import (
	"errors"
	"fmt"
)

// Kind groups failures by how the conversation should react to them.
type Kind string

const (
	// InputError is user-correctable: ask again.
	InputError Kind = "InputError"
	// NotFoundError names something that does not exist; not retried.
	NotFoundError Kind = "NotFoundError"
	// NoAvailability is a legitimate outcome and is reported as success.
	NoAvailability Kind = "NoAvailability"
	// ConflictError means the offered technician is no longer free: offer again.
	ConflictError Kind = "ConflictError"
	// SideEffectError covers calendar and notification failures; never aborts a booking.
	SideEffectError Kind = "SideEffectError"
	InternalError   Kind = "InternalError"
)

// BookingError carries a result code and a message fit to be read to the caller.
type BookingError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewBookingError(kind Kind, code, msg string) *BookingError {
	return &BookingError{Kind: kind, Code: code, Message: msg}
}

// Wrap attaches the underlying cause for logs; Message stays caller-facing.
func (e *BookingError) Wrap(err error) *BookingError {
	e.Err = err
	return e
}

// KindOf reports the Kind of err, InternalError for anything unclassified.
func KindOf(err error) Kind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return InternalError
}
