package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	journalactivities "github.com/Apurer/go-gin-session-guard/internal/platform/temporal/activities/journal"
)

// RunRetentionSequence purges journal transitions recorded before cutoff.
func RunRetentionSequence(ctx workflow.Context, cutoff time.Time) (journalactivities.PurgeResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("journal retention sequence started", "cutoff", cutoff)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result journalactivities.PurgeResult
	err := workflow.ExecuteActivity(ctx, journalactivities.PurgeActivityName, journalactivities.PurgeInput{Cutoff: cutoff}).Get(ctx, &result)
	if err != nil {
		logger.Error("journal retention sequence failed", "cutoff", cutoff, "error", err)
		return journalactivities.PurgeResult{}, err
	}
	logger.Info("journal retention sequence completed", "purged", result.Purged)
	return result, nil
}
