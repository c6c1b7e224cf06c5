package domain

// Kind enumerates the members of the guard state variant.
type Kind int

const (
	KindIdle Kind = iota
	KindChecking
	KindAuthenticated
	KindUnauthenticated
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindChecking:
		return "checking"
	case KindAuthenticated:
		return "authenticated"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// FailureReason qualifies an Error state.
type FailureReason string

const (
	ReasonTransportFailure  FailureReason = "transport_failure"
	ReasonMalformedResponse FailureReason = "malformed_response"
)

// State is the guard's tagged state. The zero value is Idle.
type State struct {
	kind    Kind
	profile Profile
	reason  FailureReason
	detail  string
}

// Idle is the initial state before any check.
func Idle() State { return State{kind: KindIdle} }

// Checking marks a validation call in flight.
func Checking() State { return State{kind: KindChecking} }

// Authenticated carries the profile returned by the session service.
func Authenticated(p Profile) State { return State{kind: KindAuthenticated, profile: p} }

// Unauthenticated records a confirmed absence of session.
func Unauthenticated() State { return State{kind: KindUnauthenticated} }

// Failed builds an Error state. detail is diagnostic text for logs and never
// drives a decision.
func Failed(reason FailureReason, detail string) State {
	return State{kind: KindError, reason: reason, detail: detail}
}

func (s State) Kind() Kind { return s.kind }

// Profile returns the profile for Authenticated states.
func (s State) Profile() (Profile, bool) {
	if s.kind != KindAuthenticated {
		return Profile{}, false
	}
	return s.profile, true
}

// Reason returns the failure reason for Error states.
func (s State) Reason() (FailureReason, bool) {
	if s.kind != KindError {
		return "", false
	}
	return s.reason, true
}

func (s State) Detail() string { return s.detail }

// IsDecisive reports whether a UI may act on the state: render the protected
// view or leave it.
func (s State) IsDecisive() bool {
	return s.kind == KindAuthenticated || s.kind == KindUnauthenticated
}

func (s State) String() string {
	if s.kind == KindError {
		return s.kind.String() + "(" + string(s.reason) + ")"
	}
	return s.kind.String()
}
