package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/memory"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	journalactivities "github.com/Apurer/go-gin-session-guard/internal/platform/temporal/activities/journal"
)

func TestRetentionWorkflowPurgesOldTransitions(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env.SetStartTime(start)

	store := memory.NewJournal()
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, domain.Transition{GuardID: "g1", To: domain.KindChecking, At: start.Add(-40 * 24 * time.Hour)}))
	require.NoError(t, store.Record(ctx, domain.Transition{GuardID: "g1", To: domain.KindAuthenticated, At: start.Add(-time.Hour)}))

	acts := journalactivities.NewActivities(store)
	env.RegisterActivityWithOptions(acts.Purge, activity.RegisterOptions{Name: journalactivities.PurgeActivityName})

	env.ExecuteWorkflow(RetentionWorkflow, RetentionWorkflowInput{Retention: 30 * 24 * time.Hour})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result journalactivities.PurgeResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.EqualValues(t, 1, result.Purged)

	left, err := store.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, domain.KindAuthenticated, left[0].To)
}

func TestRetentionWorkflowRejectsEmptyWindow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	env.ExecuteWorkflow(RetentionWorkflow, RetentionWorkflowInput{})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
