//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/httpclient"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	pacttest "github.com/Apurer/go-gin-session-guard/test/pact"
)

func newPact(t *testing.T) *pactconsumer.V2HTTPMockProvider {
	t.Helper()
	pactlog.SetLogLevel("INFO")
	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)
	return pact
}

// newSessionClient builds the portal's client against the mock, relaying the
// given browser cookies the same way a portal request would.
func newSessionClient(t *testing.T, config pactconsumer.MockServerConfig, cookies ...*http.Cookie) *httpclient.Client {
	t.Helper()
	baseURL := fmt.Sprintf("http://%s:%d", config.Host, config.Port)
	target, err := httpclient.ParseServiceURL(baseURL)
	require.NoError(t, err)
	browser := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		browser.AddCookie(c)
	}
	client, err := httpclient.New(baseURL, httpclient.NewRelayJar(target, browser, nil))
	require.NoError(t, err)
	return client
}

var sessionCookie = &http.Cookie{Name: pacttest.SessionCookieName, Value: pacttest.SessionCookieValue}

func cookieMatcher() matchers.Matcher {
	return matchers.Regex(
		pacttest.SessionCookieName+"="+pacttest.SessionCookieValue,
		pacttest.SessionCookieName+"=.+",
	)
}

func TestValidateAuthenticatedContract(t *testing.T) {
	pact := newPact(t)
	profile := pacttest.ExampleProfilePayload()

	pact.AddInteraction().
		Given(pacttest.StateSessionExists).
		UponReceiving("a session validation with a valid session cookie").
		WithRequest("GET", "/api/me", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", cookieMatcher())
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.Regex("application/json", "application\\/json.*"))
			b.JSONBody(matchers.Map{
				"message": matchers.Like(profile["message"]),
				"user_id": matchers.Like(profile["user_id"]),
				"email":   matchers.Like(profile["email"]),
			})
		})

	err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newSessionClient(t, config, sessionCookie)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		outcome := client.Validate(ctx)
		if outcome.Kind != domain.OutcomeAuthenticated {
			return fmt.Errorf("expected authenticated outcome, got %s: %v", outcome.Kind, outcome.Cause)
		}
		if outcome.Profile.UserID != pacttest.ExampleUserID {
			return fmt.Errorf("unexpected user id %q", outcome.Profile.UserID)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestValidateUnauthenticatedContract(t *testing.T) {
	pact := newPact(t)

	pact.AddInteraction().
		Given(pacttest.StateNoSession).
		UponReceiving("a session validation without a session cookie").
		WithRequest("GET", "/api/me").
		WillRespondWith(http.StatusUnauthorized)

	err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newSessionClient(t, config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if outcome := client.Validate(ctx); outcome.Kind != domain.OutcomeUnauthenticated {
			return fmt.Errorf("expected unauthenticated outcome, got %s", outcome.Kind)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestLogoutContract(t *testing.T) {
	pact := newPact(t)

	pact.AddInteraction().
		Given(pacttest.StateSessionExists).
		UponReceiving("a logout with a valid session cookie").
		WithRequest("POST", "/auth/logout", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Cookie", cookieMatcher())
		}).
		WillRespondWith(http.StatusOK)

	err := pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newSessionClient(t, config, sessionCookie)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Logout(ctx)
	})
	require.NoError(t, err)
}
