package ports

import (
	"context"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
)

// SessionClient is the transport over the session service contracts. Every
// validation response is reduced to a domain.Outcome; nothing escapes as an
// unclassified error.
type SessionClient interface {
	Validate(ctx context.Context) domain.Outcome
	Logout(ctx context.Context) error
	// LoginURL is a navigation target only; it is never fetched as data.
	LoginURL(provider domain.Provider) string
}
