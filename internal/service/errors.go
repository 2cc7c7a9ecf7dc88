package service

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrOrderUnavailable covers order missing, not owned, or no longer
	// pending. Deliberately one error so clients cannot tell "doesn't
	// exist" apart from "raced and lost".
	ErrOrderUnavailable = errors.New("order unavailable or already processed")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidState     = errors.New("earlier step not verified")
	ErrInvalidCode      = errors.New("verification code does not match")
	ErrCodeNotReady     = errors.New("verification code not generated yet")
)
