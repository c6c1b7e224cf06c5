package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/application"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/domain"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
)

const tracerName = "github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/observability/guard"

// Guard decorates a session guard with tracing, logging, and metrics.
type Guard struct {
	inner   ports.Guard
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics guardMetrics
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(g *Guard) { g.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(g *Guard) { g.metrics = newGuardMetrics(m) }
}

// New wraps the core guard.
func New(inner ports.Guard, opts ...Option) ports.Guard {
	g := &Guard{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newGuardMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.tracer == nil {
		g.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if g.logger == nil {
		g.logger = defaultLogger()
	}
	return g
}

func (g *Guard) ID() string                                  { return g.inner.ID() }
func (g *Guard) State() domain.State                         { return g.inner.State() }
func (g *Guard) Close()                                      { g.inner.Close() }
func (g *Guard) Subscribe(fn func(domain.Transition)) func() { return g.inner.Subscribe(fn) }

func (g *Guard) Bootstrap(ctx context.Context) (domain.State, error) {
	ctx, span := g.tracer.Start(ctx, "SessionGuard.Bootstrap", trace.WithAttributes(attribute.String("guard.id", g.inner.ID())))
	defer span.End()
	g.metrics.recordBootstrap(ctx)

	state, err := g.inner.Bootstrap(ctx)
	span.SetAttributes(attribute.String("guard.state", state.Kind().String()))
	if err != nil {
		return state, g.handleError(ctx, span, err, "session bootstrap interrupted", g.stateAttrs(state)...)
	}
	g.metrics.recordOutcome(ctx, state)

	attrs := g.stateAttrs(state)
	switch reason, _ := state.Reason(); {
	case state.Kind() == domain.KindAuthenticated:
		profile, _ := state.Profile()
		g.logInfo(ctx, "session authenticated", append(attrs, slog.String("user_id", profile.UserID))...)
	case state.Kind() == domain.KindUnauthenticated:
		g.logInfo(ctx, "session not authenticated", attrs...)
	case reason == domain.ReasonMalformedResponse:
		span.SetStatus(codes.Error, state.Detail())
		g.logger.LogAttrs(ctx, slog.LevelError, "session service broke the profile contract", attrs...)
	case reason == domain.ReasonTransportFailure:
		span.SetStatus(codes.Error, state.Detail())
		g.logger.LogAttrs(ctx, slog.LevelWarn, "session check failed", attrs...)
	}
	return state, nil
}

func (g *Guard) LoginWith(ctx context.Context, provider domain.Provider) error {
	ctx, span := g.tracer.Start(ctx, "SessionGuard.LoginWith", trace.WithAttributes(
		attribute.String("guard.id", g.inner.ID()),
		attribute.String("auth.provider", string(provider)),
	))
	defer span.End()
	if err := g.inner.LoginWith(ctx, provider); err != nil {
		return g.handleError(ctx, span, err, "login redirect failed", slog.String("provider", string(provider)))
	}
	g.metrics.recordLogin(ctx, provider)
	g.logInfo(ctx, "redirecting to identity provider", slog.String("guard.id", g.inner.ID()), slog.String("provider", string(provider)))
	return nil
}

func (g *Guard) Logout(ctx context.Context) (domain.State, error) {
	ctx, span := g.tracer.Start(ctx, "SessionGuard.Logout", trace.WithAttributes(attribute.String("guard.id", g.inner.ID())))
	defer span.End()
	state, err := g.inner.Logout(ctx)
	g.metrics.recordLogout(ctx)
	if err != nil {
		msg := "logout failed"
		if errors.Is(err, application.ErrLogoutNotConfirmed) {
			msg = "logout not confirmed by session service; logged out locally"
		}
		return state, g.handleError(ctx, span, err, msg, g.stateAttrs(state)...)
	}
	g.logInfo(ctx, "session logged out", g.stateAttrs(state)...)
	return state, nil
}

func (g *Guard) stateAttrs(state domain.State) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("guard.id", g.inner.ID()),
		slog.String("state", state.Kind().String()),
	}
	if reason, ok := state.Reason(); ok {
		attrs = append(attrs, slog.String("reason", string(reason)))
		if detail := state.Detail(); detail != "" {
			attrs = append(attrs, slog.String("detail", detail))
		}
	}
	return attrs
}

func (g *Guard) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	g.logError(ctx, msg, err, attrs...)
	return err
}

func (g *Guard) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if g.logger == nil {
		return
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (g *Guard) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if g.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	g.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type guardMetrics struct {
	bootstraps metric.Int64Counter
	outcomes   metric.Int64Counter
	logins     metric.Int64Counter
	logouts    metric.Int64Counter
}

func newGuardMetrics(m metric.Meter) guardMetrics {
	if m == nil {
		return guardMetrics{}
	}
	bootstraps, _ := m.Int64Counter("session.guard.bootstraps", metric.WithDescription("Number of session bootstraps"))
	outcomes, _ := m.Int64Counter("session.guard.outcomes", metric.WithDescription("Bootstrap results by state"))
	logins, _ := m.Int64Counter("session.guard.logins", metric.WithDescription("Login redirects by provider"))
	logouts, _ := m.Int64Counter("session.guard.logouts", metric.WithDescription("Number of logouts"))
	return guardMetrics{bootstraps: bootstraps, outcomes: outcomes, logins: logins, logouts: logouts}
}

func (m guardMetrics) recordBootstrap(ctx context.Context) {
	if m.bootstraps != nil {
		m.bootstraps.Add(ctx, 1)
	}
}

func (m guardMetrics) recordOutcome(ctx context.Context, state domain.State) {
	if m.outcomes == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("state", state.Kind().String())}
	if reason, ok := state.Reason(); ok {
		attrs = append(attrs, attribute.String("reason", string(reason)))
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m guardMetrics) recordLogin(ctx context.Context, provider domain.Provider) {
	if m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", string(provider))))
	}
}

func (m guardMetrics) recordLogout(ctx context.Context) {
	if m.logouts != nil {
		m.logouts.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Guard = (*Guard)(nil)
