package ports

import (
	"context"
	"time"
)

// RetentionOrchestrator runs journal retention, durably or inline.
type RetentionOrchestrator interface {
	PurgeJournal(ctx context.Context, retention time.Duration) (int64, error)
}
