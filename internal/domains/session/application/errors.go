package application

import "errors"

var (
	// ErrGuardClosed is returned once the consuming view has torn the guard down.
	ErrGuardClosed = errors.New("session guard closed")
	// ErrUnknownProvider rejects login attempts for providers the session service does not expose.
	ErrUnknownProvider = errors.New("unknown identity provider")
	// ErrLogoutNotConfirmed reports that the session service did not acknowledge
	// a logout. The guard is logged out locally regardless.
	ErrLogoutNotConfirmed = errors.New("session service did not confirm logout")
)
