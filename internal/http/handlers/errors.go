// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These codes give clients a stable, machine-readable taxonomy that
// supplements the human-readable messages in the error envelope. Codes are
// lowercase snake_case; generic ones mirror common HTTP status semantics,
// domain-specific ones name a business outcome the status alone cannot.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeDuplicateIdentity = "duplicate_identity"
	ErrCodeInvalidCredential = "invalid_credentials"
	ErrCodePasscodeMismatch  = "passcode_mismatch"
	ErrCodePasscodeExpired   = "passcode_expired"
	ErrCodeDeliveryFailed    = "delivery_failed"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
