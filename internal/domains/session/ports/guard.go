package ports

import (
	"context"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
)

// Guard exposes the session guard use cases to adapters.
type Guard interface {
	ID() string
	State() domain.State
	Bootstrap(ctx context.Context) (domain.State, error)
	LoginWith(ctx context.Context, provider domain.Provider) error
	Logout(ctx context.Context) (domain.State, error)
	// Subscribe registers fn for every transition and returns a cancel func.
	Subscribe(fn func(domain.Transition)) func()
	Close()
}
