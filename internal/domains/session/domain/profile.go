package domain

import (
	"errors"
	"strings"
)

// ErrMissingUserID signals a profile payload without a usable user identifier.
var ErrMissingUserID = errors.New("profile user_id is required")

// Profile is the authenticated identity returned by the session service.
type Profile struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks the invariants a decoded profile must satisfy before it can
// populate an Authenticated state. Email may be blank: some identity providers
// keep the address private.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingUserID
	}
	return nil
}
