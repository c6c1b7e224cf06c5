package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

var (
	// ErrAlreadyNavigated is returned when a response already carries a navigation.
	ErrAlreadyNavigated = errors.New("response already navigated")
	// ErrNotSameOrigin rejects in-app transitions to anything but a local path.
	ErrNotSameOrigin = errors.New("in-app navigation requires a same-origin path")
	// ErrDetached is returned once the response has been handed back to the server.
	ErrDetached = errors.New("navigator detached from its response")
)

const (
	htmxRequestHeader  = "HX-Request"
	htmxRedirectHeader = "HX-Redirect"
	htmxLocationHeader = "HX-Location"
)

// HTTPNavigator turns navigation requests into the HTTP response for one
// browser request. htmx requests get HX-* headers since fetches follow 3xx
// transparently and would never leave the page.
type HTTPNavigator struct {
	w http.ResponseWriter
	r *http.Request

	mu       sync.Mutex
	target   string
	detached bool
}

func NewHTTPNavigator(w http.ResponseWriter, r *http.Request) *HTTPNavigator {
	return &HTTPNavigator{w: w, r: r}
}

// Replace performs an in-app transition to a same-origin path.
func (n *HTTPNavigator) Replace(path string) error {
	if err := SameOriginPath(path); err != nil {
		return err
	}
	return n.navigate(path, http.StatusFound, htmxLocationHeader)
}

// Assign performs a full-page navigation, including to other origins.
func (n *HTTPNavigator) Assign(url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("navigation target is required")
	}
	return n.navigate(url, http.StatusSeeOther, htmxRedirectHeader)
}

// Target reports where the response navigated to, if anywhere.
func (n *HTTPNavigator) Target() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target, n.target != ""
}

// Detach stops all further writes to the response. It waits for a navigation
// already being written; call it before the handler returns.
func (n *HTTPNavigator) Detach() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.detached = true
}

func (n *HTTPNavigator) navigate(target string, status int, htmxHeader string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return ErrDetached
	}
	if n.target != "" {
		return fmt.Errorf("%w: to %s", ErrAlreadyNavigated, n.target)
	}
	n.target = target
	if IsHTMXRequest(n.r) {
		n.w.Header().Set(htmxHeader, target)
		n.w.WriteHeader(http.StatusNoContent)
		return nil
	}
	http.Redirect(n.w, n.r, target, status)
	return nil
}

// IsHTMXRequest reports whether the request was initiated by htmx.
func IsHTMXRequest(r *http.Request) bool {
	return r != nil && strings.EqualFold(r.Header.Get(htmxRequestHeader), "true")
}

// SameOriginPath accepts absolute local paths only ("/x", not "//host/x").
func SameOriginPath(path string) error {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return fmt.Errorf("%w: %q", ErrNotSameOrigin, path)
	}
	return nil
}

var _ ports.Navigator = (*HTTPNavigator)(nil)
