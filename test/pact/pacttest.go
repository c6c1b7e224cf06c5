//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "session-service"
	ConsumerName = "session-guard-portal"

	StateSessionExists = "a session exists for user 42"
	StateNoSession     = "no session"
)

const (
	SessionCookieName  = "auth_token"
	SessionCookieValue = "pact-opaque-session"

	ExampleUserID  = "42"
	ExampleEmail   = "pact.user@example.com"
	ExampleMessage = "Welcome back!"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProfilePayload is the validation response body for the example session.
func ExampleProfilePayload() map[string]any {
	return map[string]any{
		"message": ExampleMessage,
		"user_id": ExampleUserID,
		"email":   ExampleEmail,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
