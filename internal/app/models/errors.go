package models

import "errors"

// Domain specific errors shared by the gateway, checkout and handlers.
var (
	ErrNotFound          = errors.New("requested item not found")
	ErrValidation        = errors.New("validation failed")
	ErrNotConfigured     = errors.New("service is not configured")
	ErrHoldConsumed      = errors.New("prebook hold has already been finalized")
	ErrCheckoutInFlight  = errors.New("checkout step already in progress")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrNoCoordinates     = errors.New("Place details did not include coordinates")
	ErrGuestProfileGone  = errors.New("Guest details not found. Please start the checkout again.")
)

// InputError is a user-facing validation failure. It matches ErrValidation
// with errors.Is and keeps the message free of any prefix.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return ErrValidation }

func Invalid(msg string) error {
	return &InputError{Msg: msg}
}
