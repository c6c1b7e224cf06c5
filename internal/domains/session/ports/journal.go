package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
)

// Journal persists guard transitions for auditing.
type Journal interface {
	Record(ctx context.Context, t domain.Transition) error
	List(ctx context.Context, guardID string) ([]domain.Transition, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NoopJournal discards everything.
var NoopJournal Journal = noopJournal{}

type noopJournal struct{}

func (noopJournal) Record(_ context.Context, _ domain.Transition) error { return nil }
func (noopJournal) List(_ context.Context, _ string) ([]domain.Transition, error) {
	return nil, nil
}
func (noopJournal) PurgeOlderThan(_ context.Context, _ time.Time) (int64, error) { return 0, nil }
