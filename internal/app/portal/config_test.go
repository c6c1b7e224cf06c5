package portal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "http://127.0.0.1:9000", cfg.SessionServiceURL)
	require.Equal(t, "/", cfg.EntryPath)
	require.Equal(t, 10*time.Second, cfg.ValidationTimeout)
	require.Equal(t, 10000, cfg.MemoryJournalMaxEntries)
	require.Equal(t, "local", cfg.Observability.Environment)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_SERVICE_URL", "https://sessions.example.com")
	t.Setenv("ENTRY_PATH", "/welcome")
	t.Setenv("VALIDATION_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8081", cfg.Port)
	require.Equal(t, "/welcome", cfg.EntryPath)
	require.Equal(t, 3*time.Second, cfg.ValidationTimeout)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("SESSION_SERVICE_URL", "127.0.0.1:9000")
	t.Setenv("ENTRY_PATH", "//evil.example.com")
	t.Setenv("VALIDATION_TIMEOUT", "0s")
	t.Setenv("MEMORY_JOURNAL_MAX_ENTRIES", "0")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "SESSION_SERVICE_URL")
	require.ErrorContains(t, err, "ENTRY_PATH")
	require.ErrorContains(t, err, "VALIDATION_TIMEOUT")
	require.ErrorContains(t, err, "MEMORY_JOURNAL_MAX_ENTRIES")

	t.Setenv("VALIDATION_TIMEOUT", "soon")
	_, err = LoadConfig()
	require.Error(t, err)
}
