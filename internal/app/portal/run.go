package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/memory"
	journalpostgres "github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/web"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
	"github.com/Apurer/go-gin-session-guard/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-session-guard/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-session-guard/internal/platform/postgres"
)

const serviceName = "session-guard-portal"

// Run boots the portal with observability, the transition journal, and the session guard wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	journal, cleanupJournal := buildJournal(ctx, cfg, logger)
	defer cleanupJournal()

	mounter, err := NewMounter(cfg, journal, instruments)
	if err != nil {
		return err
	}
	router, err := NewRouter(cfg, mounter)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal listening", slog.String("addr", srv.Addr), slog.String("sessionService", cfg.SessionServiceURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("portal server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("portal shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// NewRouter builds the gin engine serving the portal views.
func NewRouter(cfg Config, mounter *Mounter) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse portal views: %w", err)
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router.SetHTMLTemplate(tmpl)
	web.NewHandler(mounter.Mount, web.WithEntryPath(cfg.EntryPath)).Register(router)
	return router, nil
}

func buildJournal(ctx context.Context, cfg Config, logger *slog.Logger) (ports.Journal, func()) {
	db, cleanup := platformpostgres.OpenOrFallback(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return newMemoryJournal(cfg), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate journal schema, falling back to in-memory journal", slog.String("error", err.Error()))
		cleanup()
		return newMemoryJournal(cfg), func() {}
	}
	logger.Info("session journal configured with postgres")
	return journalpostgres.NewJournal(db), cleanup
}

func newMemoryJournal(cfg Config) *memory.Journal {
	return memory.NewJournal(memory.WithMaxEntries(cfg.MemoryJournalMaxEntries))
}
