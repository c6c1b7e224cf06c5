package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
)

func TestJournalRecordListPurge(t *testing.T) {
	j := NewJournal()
	ctx := context.Background()
	now := time.Now().UTC()

	require.Error(t, j.Record(ctx, domain.Transition{}))
	require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g1", From: domain.KindChecking, To: domain.KindAuthenticated, UserID: "42", At: now}))
	require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g1", From: domain.KindIdle, To: domain.KindChecking, At: now.Add(-time.Second)}))
	require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g2", From: domain.KindIdle, To: domain.KindChecking, At: now.Add(-48 * time.Hour)}))

	list, err := j.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, domain.KindChecking, list[0].To)
	require.Equal(t, "42", list[1].UserID)
	require.NotEmpty(t, list[0].ID)

	purged, err := j.PurgeOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)
	list, err = j.List(ctx, "g2")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestJournalIsBounded(t *testing.T) {
	j := NewJournal(WithMaxEntries(3))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g1", To: domain.KindChecking, At: base.Add(time.Duration(i) * time.Minute)}))
		require.LessOrEqual(t, j.Len(), 3)
	}
	list, err := j.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, base.Add(7*time.Minute), list[0].At, "oldest transitions are overwritten first")
	require.Equal(t, base.Add(9*time.Minute), list[2].At)

	purged, err := j.PurgeOlderThan(ctx, base.Add(9*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, purged)
	require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g1", At: base.Add(10 * time.Minute)}))
	require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g1", At: base.Add(11 * time.Minute)}))
	require.NoError(t, j.Record(ctx, domain.Transition{GuardID: "g1", At: base.Add(12 * time.Minute)}))
	list, err = j.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, base.Add(10*time.Minute), list[0].At)
}

func TestNewJournalDefaultsToBound(t *testing.T) {
	require.Equal(t, DefaultMaxEntries, NewJournal().max)
	require.Equal(t, DefaultMaxEntries, NewJournal(WithMaxEntries(0)).max)
}
