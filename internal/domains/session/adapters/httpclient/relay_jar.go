package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RelayJar is a per-request cookie jar for a backend-for-frontend hop. It
// presents the browser's cookies to the session service and writes cookies
// the session service sets back to the browser. Cookie values are never read.
type RelayJar struct {
	target *url.URL
	w      http.ResponseWriter

	mu       sync.Mutex
	incoming []*http.Cookie
	updates  map[string]*http.Cookie
	detached bool
}

// NewRelayJar relays r's cookies to target and Set-Cookie headers back through w.
// w may be nil when nothing should reach the browser.
func NewRelayJar(target *url.URL, r *http.Request, w http.ResponseWriter) *RelayJar {
	j := &RelayJar{target: target, w: w, updates: map[string]*http.Cookie{}}
	if r != nil {
		j.incoming = r.Cookies()
	}
	return j
}

// Cookies implements http.CookieJar.
func (j *RelayJar) Cookies(u *url.URL) []*http.Cookie {
	if !j.matches(u) {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*http.Cookie, 0, len(j.incoming)+len(j.updates))
	for _, c := range j.incoming {
		if _, replaced := j.updates[c.Name]; replaced {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	for _, c := range j.updates {
		if expired(c) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// SetCookies implements http.CookieJar.
func (j *RelayJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if !j.matches(u) {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		relayed := *c
		// Host-only on the portal origin; the service's Domain would be rejected.
		relayed.Domain = ""
		j.updates[c.Name] = &relayed
		if j.w != nil && !j.detached {
			http.SetCookie(j.w, &relayed)
		}
	}
}

// Detach stops relaying cookie updates to the browser. Later updates still
// apply to requests made through the jar.
func (j *RelayJar) Detach() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.detached = true
}

func expired(c *http.Cookie) bool {
	if c.MaxAge < 0 || c.Value == "" {
		return true
	}
	return !c.Expires.IsZero() && c.Expires.Before(time.Now())
}

func (j *RelayJar) matches(u *url.URL) bool {
	if j == nil || j.target == nil || u == nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), j.target.Hostname())
}

var _ http.CookieJar = (*RelayJar)(nil)
