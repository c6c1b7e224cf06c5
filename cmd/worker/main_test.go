package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	platformpostgres "github.com/Apurer/go-gin-session-guard/internal/platform/postgres"
)

func TestBuildJournalRequiresDatabase(t *testing.T) {
	journal, cleanup, err := buildJournal(context.Background(), "")
	require.ErrorIs(t, err, platformpostgres.ErrNoDSN)
	require.Nil(t, journal)
	cleanup()
}
