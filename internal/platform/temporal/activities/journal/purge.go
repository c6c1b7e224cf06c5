package journal

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

// PurgeActivityName removes journal transitions older than a cutoff.
const PurgeActivityName = "journal.activities.Purge"

// PurgeInput is the activity payload. Cutoff is computed by the workflow so retries stay deterministic.
type PurgeInput struct {
	Cutoff time.Time
}

// PurgeResult reports how many transitions were removed.
type PurgeResult struct {
	Purged int64
}

// Activities groups activities that operate on the session transition journal.
type Activities struct {
	journal ports.Journal
}

func NewActivities(journal ports.Journal) *Activities {
	return &Activities{journal: journal}
}

// Purge deletes transitions recorded before input.Cutoff.
func (a *Activities) Purge(ctx context.Context, input PurgeInput) (PurgeResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.journal == nil {
		logger.Error("journal purge activity not initialized")
		return PurgeResult{}, errors.New("journal purge activity not initialized")
	}
	if input.Cutoff.IsZero() {
		return PurgeResult{}, errors.New("purge cutoff is required")
	}
	logger.Info("Purge activity started", "cutoff", input.Cutoff)
	purged, err := a.journal.PurgeOlderThan(ctx, input.Cutoff)
	if err != nil {
		logger.Error("Purge activity failed", "cutoff", input.Cutoff, "error", err)
		return PurgeResult{}, err
	}
	logger.Info("Purge activity completed", "purged", purged)
	return PurgeResult{Purged: purged}, nil
}
