package journal

import (
	"errors"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-session-guard/internal/durable/temporal/sequences"
	journalactivities "github.com/Apurer/go-gin-session-guard/internal/platform/temporal/activities/journal"
)

const (
	// RetentionWorkflowName is the public identifier for registering the workflow.
	RetentionWorkflowName = "journal.workflows.Retention"
	// RetentionTaskQueue is the queue consumed by the worker processing journal workflows.
	RetentionTaskQueue = "SESSION_JOURNAL"
)

// RetentionWorkflowInput captures how much journal history to keep.
type RetentionWorkflowInput struct {
	Retention time.Duration
	TraceID   string
}

// RetentionWorkflow purges journal transitions older than the retention window.
func RetentionWorkflow(ctx workflow.Context, input RetentionWorkflowInput) (journalactivities.PurgeResult, error) {
	logger := workflow.GetLogger(ctx)
	if input.Retention <= 0 {
		return journalactivities.PurgeResult{}, errors.New("retention window must be positive")
	}
	cutoff := workflow.Now(ctx).Add(-input.Retention)
	logger.Info("RetentionWorkflow started", withTraceID(input.TraceID, "cutoff", cutoff)...)
	result, err := sequences.RunRetentionSequence(ctx, cutoff)
	if err != nil {
		logger.Error("RetentionWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return journalactivities.PurgeResult{}, err
	}
	logger.Info("RetentionWorkflow completed", withTraceID(input.TraceID, "purged", result.Purged)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
