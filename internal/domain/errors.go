package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCorruptSession  = errors.New("persisted session is corrupt")
	ErrTokenNotFound   = errors.New("token not found in response")
	ErrEmptyUpdate     = errors.New("update has no fields to change")
	ErrInvalidID       = errors.New("id is required")
	ErrEmptyContent    = errors.New("content is required")
)

// AuthError reports a login that did not yield a token, either because the
// endpoint call failed or because no token could be extracted from its body.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string {
	if e.Reason == nil {
		return ErrTokenNotFound.Error()
	}
	return e.Reason.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

func NewAuthError(reason error) *AuthError {
	return &AuthError{Reason: reason}
}

func RequireID(kind string, id ID) error {
	if id.IsZero() {
		return fmt.Errorf("%s %w", kind, ErrInvalidID)
	}
	return nil
}
