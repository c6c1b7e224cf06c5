package web

import (
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	apierrors "github.com/Apurer/go-gin-session-guard/internal/shared/errors"
)

// SessionView is the transport representation of an authenticated session.
type SessionView struct {
	State   string `json:"state"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message,omitempty"`
}

// FromAuthenticated converts an Authenticated state; ok is false for any other state.
func FromAuthenticated(state domain.State) (SessionView, bool) {
	profile, ok := state.Profile()
	if !ok {
		return SessionView{}, false
	}
	return SessionView{
		State:   state.Kind().String(),
		UserID:  profile.UserID,
		Email:   profile.Email,
		Message: profile.Message,
	}, true
}

// ProblemFromState maps every non-authenticated state onto a problem. The
// failure detail stays in logs and is never exposed to the browser.
func ProblemFromState(state domain.State) apierrors.ProblemDetail {
	switch state.Kind() {
	case domain.KindUnauthenticated:
		return apierrors.ErrUnauthorized.WithDetail("no valid session")
	case domain.KindError:
		reason, _ := state.Reason()
		if reason == domain.ReasonMalformedResponse {
			return apierrors.ErrSessionContract.
				WithDetail("the session service returned an unreadable profile").
				WithExtension("reason", string(reason))
		}
		return apierrors.ErrSessionUnavailable.
			WithDetail("the session service could not be reached").
			WithExtension("reason", string(reason))
	default:
		return apierrors.ErrSessionUnavailable.
			WithDetail("the session check did not complete").
			WithExtension("state", state.Kind().String())
	}
}
