package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/navigation"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/application"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
	apierrors "github.com/Apurer/go-gin-session-guard/internal/shared/errors"
)

const (
	dashboardPath = "/dashboard"
	logoutPath    = "/logout"
	loginPath     = "/login/:provider"
	sessionPath   = "/api/session"
	healthPath    = "/healthz"
)

// GuardFactory mounts a guard for one browser request. The guard navigates through nav.
type GuardFactory func(c *gin.Context, nav ports.Navigator) (ports.Guard, error)

// Handler serves the portal views around a per-request session guard.
type Handler struct {
	mount     GuardFactory
	problems  *apierrors.ChainedResponder
	entryPath string
}

type Option func(*Handler)

// WithEntryPath overrides where the entry view is served. It must match the guard's entry URL.
func WithEntryPath(path string) Option {
	return func(h *Handler) {
		if navigation.SameOriginPath(path) == nil {
			h.entryPath = path
		}
	}
}

func NewHandler(mount GuardFactory, opts ...Option) *Handler {
	h := &Handler{
		mount:     mount,
		problems:  apierrors.NewChainedResponder("", mapGuardError),
		entryPath: application.DefaultEntryURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register wires the portal routes.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET(h.entryPath, h.Entry)
	r.GET(loginPath, h.Login)
	r.GET(dashboardPath, h.Dashboard)
	r.POST(logoutPath, h.Logout)
	r.GET(sessionPath, h.Session)
	r.GET(healthPath, h.Health)
}

type providerLink struct {
	ID   string
	Name string
}

// Entry renders the login actions. Each one is a full-page navigation.
func (h *Handler) Entry(c *gin.Context) {
	links := make([]providerLink, 0, len(domain.Providers()))
	for _, p := range domain.Providers() {
		links = append(links, providerLink{ID: string(p), Name: p.DisplayName()})
	}
	c.HTML(http.StatusOK, "entry.html", gin.H{"Title": "Sign in", "Providers": links})
}

// Login sends the browser to the session service's provider login.
func (h *Handler) Login(c *gin.Context) {
	nav := navigation.NewHTTPNavigator(c.Writer, c.Request)
	defer nav.Detach()
	guard, err := h.mount(c, nav)
	if err != nil {
		h.problems.RespondError(c, err)
		return
	}
	defer guard.Close()

	if err := guard.LoginWith(c.Request.Context(), domain.Provider(c.Param("provider"))); err != nil {
		if _, navigated := nav.Target(); !navigated {
			h.problems.RespondError(c, err)
		}
	}
}

// Dashboard is the protected view. Unauthenticated visitors leave through the
// guard's navigation; failures render inline with a retry link.
func (h *Handler) Dashboard(c *gin.Context) {
	nav := navigation.NewHTTPNavigator(c.Writer, c.Request)
	defer nav.Detach()
	guard, err := h.mount(c, nav)
	if err != nil {
		h.problems.RespondError(c, err)
		return
	}
	defer guard.Close()

	state, _ := guard.Bootstrap(c.Request.Context())
	if _, navigated := nav.Target(); navigated {
		return
	}
	if view, ok := FromAuthenticated(state); ok {
		c.HTML(http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Session": view})
		return
	}
	if state.Kind() == domain.KindUnauthenticated {
		c.Redirect(http.StatusSeeOther, h.entryPath)
		return
	}
	problem := ProblemFromState(state)
	c.HTML(problem.Status, "session_error.html", gin.H{
		"Title":     problem.Title,
		"Problem":   problem,
		"RetryPath": dashboardPath,
	})
}

// Logout always ends on the entry view, whatever the session service answered.
func (h *Handler) Logout(c *gin.Context) {
	nav := navigation.NewHTTPNavigator(c.Writer, c.Request)
	defer nav.Detach()
	guard, err := h.mount(c, nav)
	if err != nil {
		c.Redirect(http.StatusSeeOther, h.entryPath)
		return
	}
	defer guard.Close()

	_, _ = guard.Logout(c.Request.Context())
	if _, navigated := nav.Target(); !navigated {
		c.Redirect(http.StatusSeeOther, h.entryPath)
	}
}

// Session reports the bootstrapped state as JSON. API clients never get redirected.
func (h *Handler) Session(c *gin.Context) {
	guard, err := h.mount(c, navigation.NewRecorder())
	if err != nil {
		h.problems.RespondError(c, err)
		return
	}
	defer guard.Close()

	state, _ := guard.Bootstrap(c.Request.Context())
	if view, ok := FromAuthenticated(state); ok {
		c.JSON(http.StatusOK, view)
		return
	}
	h.problems.Respond(c, ProblemFromState(state))
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func mapGuardError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrUnknownProvider):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "provider"), true
	case errors.Is(err, application.ErrGuardClosed):
		return apierrors.ErrSessionUnavailable.WithDetail("the session check was abandoned"), true
	}
	return apierrors.ProblemDetail{}, false
}
