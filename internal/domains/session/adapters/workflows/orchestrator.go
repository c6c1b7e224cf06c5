package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
	journalworkflows "github.com/Apurer/go-gin-session-guard/internal/durable/temporal/workflows/journal"
	journalactivities "github.com/Apurer/go-gin-session-guard/internal/platform/temporal/activities/journal"
)

var (
	_ ports.RetentionOrchestrator = (*TemporalRetention)(nil)
	_ ports.RetentionOrchestrator = (*InlineRetention)(nil)
)

// TemporalRetention starts journal retention workflows on a Temporal cluster.
type TemporalRetention struct {
	client    client.Client
	taskQueue string
	now       func() time.Time
}

// NewTemporalRetention wires a Temporal client into the orchestrator.
func NewTemporalRetention(c client.Client) *TemporalRetention {
	return &TemporalRetention{client: c, taskQueue: journalworkflows.RetentionTaskQueue, now: time.Now}
}

// PurgeJournal runs the retention workflow and waits for its result. Workflow
// IDs are per UTC day, so a trigger while today's run is open joins it.
func (o *TemporalRetention) PurgeJournal(ctx context.Context, retention time.Duration) (int64, error) {
	if o == nil || o.client == nil {
		return 0, errors.New("temporal retention workflows not configured")
	}
	workflowID := retentionWorkflowID(o.now())
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		journalworkflows.RetentionWorkflow,
		journalworkflows.RetentionWorkflowInput{Retention: retention, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return 0, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result journalactivities.PurgeResult
	if err := run.Get(ctx, &result); err != nil {
		return 0, err
	}
	return result.Purged, nil
}

// InlineRetention purges the journal directly without Temporal, useful for tests or dev fallbacks.
type InlineRetention struct {
	journal ports.Journal
	now     func() time.Time
}

func NewInlineRetention(journal ports.Journal) *InlineRetention {
	return &InlineRetention{journal: journal, now: time.Now}
}

// PurgeJournal deletes transitions older than retention without durable orchestration.
func (o *InlineRetention) PurgeJournal(ctx context.Context, retention time.Duration) (int64, error) {
	if o == nil || o.journal == nil {
		return 0, errors.New("inline retention not configured")
	}
	if retention <= 0 {
		return 0, errors.New("retention window must be positive")
	}
	return o.journal.PurgeOlderThan(ctx, o.now().Add(-retention))
}

func retentionWorkflowID(now time.Time) string {
	return fmt.Sprintf("journal-retention-%s", now.UTC().Format("2006-01-02"))
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
