package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

const (
	validatePath = "/api/me"
	logoutPath   = "/auth/logout"

	// MaxBodyBytes caps how much of a validation response is read.
	MaxBodyBytes = 1 << 20
)

// Client talks to the session service over its three HTTP contracts.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures the Client.
type Option func(*http.Client)

// WithTransport swaps the base round tripper. It is still wrapped for tracing.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *http.Client) {
		if rt != nil {
			c.Transport = otelhttp.NewTransport(rt)
		}
	}
}

// New builds a client for the session service at baseURL. The jar is
// mandatory: validation and logout only work when credentials travel along.
func New(baseURL string, jar http.CookieJar, opts ...Option) (*Client, error) {
	base, err := ParseServiceURL(baseURL)
	if err != nil {
		return nil, err
	}
	if jar == nil {
		return nil, errors.New("cookie jar is required for credentialed session calls")
	}
	hc := &http.Client{
		Jar:       jar,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hc)
		}
	}
	return &Client{base: base, http: hc}, nil
}

// ParseServiceURL validates a session service base URL.
func ParseServiceURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("session service URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse session service URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("session service URL %q must be absolute http(s)", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// Validate asks the session service whether the carried session is valid.
func (c *Client) Validate(ctx context.Context) domain.Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(validatePath), nil)
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("build validation request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("call session service: %w", err))
	}
	defer closeBody(resp.Body)

	switch status := resp.StatusCode; {
	case status == http.StatusUnauthorized:
		return domain.UnauthenticatedOutcome()
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return domain.TransportFailure(fmt.Errorf("session service unexpected status: %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return domain.TransportFailure(fmt.Errorf("read session response: %w", err))
	}
	profile, err := decodeProfile(body)
	if err != nil {
		return domain.MalformedResponse(err)
	}
	return domain.AuthenticatedOutcome(profile)
}

func decodeProfile(body []byte) (domain.Profile, error) {
	if len(body) > MaxBodyBytes {
		return domain.Profile{}, fmt.Errorf("session response exceeds %d bytes", MaxBodyBytes)
	}
	var profile domain.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return domain.Profile{}, fmt.Errorf("decode session response: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return domain.Profile{}, fmt.Errorf("decode session response: %w", err)
	}
	return profile, nil
}

// Logout invalidates the session server-side. Any 2xx counts as confirmed.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(logoutPath), nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call session service: %w", err)
	}
	defer closeBody(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("session service logout status: %s", resp.Status)
	}
	return nil
}

// LoginURL returns the absolute navigation target for the provider's login flow.
func (c *Client) LoginURL(provider domain.Provider) string {
	return c.endpoint(provider.LoginPath())
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxBodyBytes))
	_ = body.Close()
}

var _ ports.SessionClient = (*Client)(nil)
