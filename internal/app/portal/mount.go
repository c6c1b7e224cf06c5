package portal

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/httpclient"
	guardobs "github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/observability"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/application"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
	platformobservability "github.com/Apurer/go-gin-session-guard/internal/platform/observability"
)

const (
	instrumentationName = "internal.session.application"
	journalWriteTimeout = 2 * time.Second
)

// Mounter builds one session guard per browser request, the way a UI mounts
// a guard per view.
type Mounter struct {
	serviceURL  *url.URL
	entryURL    string
	timeout     time.Duration
	journal     ports.Journal
	instruments *platformobservability.Instruments
	logger      *slog.Logger
	transport   http.RoundTripper
}

// NewMounter validates cfg and wires the journal and telemetry every guard shares.
func NewMounter(cfg Config, journal ports.Journal, instruments *platformobservability.Instruments) (*Mounter, error) {
	serviceURL, err := httpclient.ParseServiceURL(cfg.SessionServiceURL)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		journal = ports.NoopJournal
	}
	var logger *slog.Logger
	if instruments != nil {
		logger = instruments.Logger
	}
	return &Mounter{
		serviceURL:  serviceURL,
		entryURL:    cfg.EntryPath,
		timeout:     cfg.ValidationTimeout,
		journal:     journal,
		instruments: instruments,
		logger:      logger,
		transport:   http.DefaultTransport,
	}, nil
}

// Mount implements web.GuardFactory. The guard relays the request's cookies
// to the session service and writes cookie updates back to the response.
func (m *Mounter) Mount(c *gin.Context, nav ports.Navigator) (ports.Guard, error) {
	jar := httpclient.NewRelayJar(m.serviceURL, c.Request, c.Writer)
	client, err := httpclient.New(m.serviceURL.String(), jar, httpclient.WithTransport(m.transport))
	if err != nil {
		return nil, err
	}
	core, err := application.NewGuard(client, nav,
		application.WithEntryURL(m.entryURL),
		application.WithValidationTimeout(m.timeout),
	)
	if err != nil {
		return nil, err
	}
	core.Subscribe(m.record)
	return &mountedGuard{
		Guard: guardobs.New(core,
			guardobs.WithLogger(m.logger),
			guardobs.WithTracer(m.instruments.Tracer(instrumentationName)),
			guardobs.WithMeter(m.instruments.Meter(instrumentationName)),
		),
		jar: jar,
	}, nil
}

// mountedGuard stops cookie relaying once the request's guard is closed.
type mountedGuard struct {
	ports.Guard
	jar *httpclient.RelayJar
}

func (g *mountedGuard) Close() {
	g.Guard.Close()
	g.jar.Detach()
}

func (m *Mounter) record(t domain.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	if err := m.journal.Record(ctx, t); err != nil && m.logger != nil {
		m.logger.Warn("failed to journal session transition",
			slog.String("guard.id", t.GuardID),
			slog.String("to", t.To.String()),
			slog.String("error", err.Error()),
		)
	}
}
