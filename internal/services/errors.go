// Package services defines the business logic for accounts, passcode flows,
// and transcript history. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrInvalidCredentials is the single rejection for a failed login.
	// It deliberately never distinguishes an unknown email from a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateIdentity is returned when the requested username or email
	// is already registered. State is unchanged.
	ErrDuplicateIdentity = errors.New("username or email already registered")

	// ErrUnknownEmail is returned when a password reset is requested for an
	// address with no account.
	ErrUnknownEmail = errors.New("no account with that email")

	// ErrInvalidInput is returned when a required field is empty or the
	// email address is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeliveryFailed is returned when the passcode email could not be
	// sent. The flow stays at its idle state.
	ErrDeliveryFailed = errors.New("could not send verification code")
)
