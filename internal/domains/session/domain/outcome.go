package domain

// OutcomeKind is the SessionClient classification of a validation response.
type OutcomeKind int

const (
	OutcomeAuthenticated OutcomeKind = iota + 1
	OutcomeUnauthenticated
	OutcomeTransportFailure
	OutcomeMalformedResponse
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Outcome is a classified validation result. Cause is kept for diagnostics.
type Outcome struct {
	Kind    OutcomeKind
	Profile Profile
	Cause   error
}

func AuthenticatedOutcome(p Profile) Outcome {
	return Outcome{Kind: OutcomeAuthenticated, Profile: p}
}

func UnauthenticatedOutcome() Outcome {
	return Outcome{Kind: OutcomeUnauthenticated}
}

func TransportFailure(cause error) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Cause: cause}
}

func MalformedResponse(cause error) Outcome {
	return Outcome{Kind: OutcomeMalformedResponse, Cause: cause}
}

// State maps the outcome onto the guard state it drives.
func (o Outcome) State() State {
	switch o.Kind {
	case OutcomeAuthenticated:
		return Authenticated(o.Profile)
	case OutcomeUnauthenticated:
		return Unauthenticated()
	case OutcomeMalformedResponse:
		return Failed(ReasonMalformedResponse, causeText(o.Cause))
	default:
		return Failed(ReasonTransportFailure, causeText(o.Cause))
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
