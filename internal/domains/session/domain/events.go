package domain

import "time"

// Transition records a single guard state change. It never contains session
// material; UserID is only set when the target state is Authenticated.
type Transition struct {
	ID      string
	GuardID string
	From    Kind
	To      Kind
	Reason  FailureReason
	UserID  string
	At      time.Time
}

// NewTransition builds the record for moving from one state to the next.
func NewTransition(guardID string, from, to State, at time.Time) Transition {
	t := Transition{
		GuardID: guardID,
		From:    from.Kind(),
		To:      to.Kind(),
		At:      at,
	}
	if reason, ok := to.Reason(); ok {
		t.Reason = reason
	}
	if profile, ok := to.Profile(); ok {
		t.UserID = profile.UserID
	}
	return t
}

// ParseKind is the inverse of Kind.String, used by persistence adapters.
func ParseKind(raw string) Kind {
	for _, k := range []Kind{KindIdle, KindChecking, KindAuthenticated, KindUnauthenticated, KindError} {
		if k.String() == raw {
			return k
		}
	}
	return KindIdle
}
