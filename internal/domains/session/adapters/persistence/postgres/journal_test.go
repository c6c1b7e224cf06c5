package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
)

func newMockJournal(t *testing.T) (*Journal, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return NewJournal(db), mock
}

func TestJournalRecord(t *testing.T) {
	j, mock := newMockJournal(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "session_transitions"`)).
		WithArgs("t-1", "g-1", "checking", "authenticated", "", "42", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := j.Record(context.Background(), domain.Transition{
		ID: "t-1", GuardID: "g-1", From: domain.KindChecking, To: domain.KindAuthenticated, UserID: "42", At: at,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalRecordRejectsMissingGuard(t *testing.T) {
	j, mock := newMockJournal(t)
	require.Error(t, j.Record(context.Background(), domain.Transition{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalList(t *testing.T) {
	j, mock := newMockJournal(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "guard_id", "from_state", "to_state", "reason", "user_id", "occurred_at"}).
		AddRow("t-1", "g-1", "idle", "checking", "", "", at).
		AddRow("t-2", "g-1", "checking", "error", "transport_failure", "", at.Add(time.Second))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "session_transitions" WHERE guard_id = $1 ORDER BY occurred_at ASC`)).
		WithArgs("g-1").
		WillReturnRows(rows)

	list, err := j.List(context.Background(), "g-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, domain.KindChecking, list[0].To)
	require.Equal(t, domain.KindError, list[1].To)
	require.Equal(t, domain.ReasonTransportFailure, list[1].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalPurgeOlderThan(t *testing.T) {
	j, mock := newMockJournal(t)
	cutoff := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "session_transitions" WHERE occurred_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	purged, err := j.PurgeOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, purged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalPurgeSurfacesErrors(t *testing.T) {
	j, mock := newMockJournal(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "session_transitions"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := j.PurgeOlderThan(context.Background(), time.Now())
	require.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalNotConfigured(t *testing.T) {
	var j *Journal
	_, err := j.List(context.Background(), "g-1")
	require.Error(t, err)
}
