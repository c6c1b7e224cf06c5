package domain

import (
	"fmt"
	"strings"
)

// Provider identifies an external identity provider reachable through the
// session service's redirect-only login endpoints.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGoogle Provider = "google"
)

// Providers lists the supported providers in display order.
func Providers() []Provider {
	return []Provider{ProviderGitHub, ProviderGoogle}
}

// ParseProvider normalizes raw input into a supported provider.
func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(raw))); p {
	case ProviderGitHub, ProviderGoogle:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported identity provider %q", raw)
	}
}

// LoginPath returns the session service path that starts the provider's redirect flow.
func (p Provider) LoginPath() string {
	return "/auth/" + string(p) + "/login"
}

// DisplayName returns a human label for the provider.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGitHub:
		return "GitHub"
	case ProviderGoogle:
		return "Google"
	default:
		return string(p)
	}
}
