package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	journalpostgres "github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/persistence/postgres"
	sessionworkflows "github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/workflows"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
	platformpostgres "github.com/Apurer/go-gin-session-guard/internal/platform/postgres"
	platformtemporal "github.com/Apurer/go-gin-session-guard/internal/platform/temporal"
)

type config struct {
	PostgresDSN string        `env:"POSTGRES_DSN"`
	Retention   time.Duration `env:"JOURNAL_RETENTION" envDefault:"720h"`
	Temporal    platformtemporal.Config
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("failed to parse purger config: %v", err)
	}
	if cfg.Retention <= 0 {
		log.Fatal("JOURNAL_RETENTION must be positive")
	}

	orchestrator, cleanup, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("cannot purge journal: %v", err)
	}
	defer cleanup()

	purged, err := orchestrator.PurgeJournal(ctx, cfg.Retention)
	if err != nil {
		log.Fatalf("failed to purge journal: %v", err)
	}
	logger.Info("journal purge completed", slog.Int64("purged", purged), slog.Duration("retention", cfg.Retention))
}

// buildOrchestrator prefers the durable workflow and falls back to purging inline.
func buildOrchestrator(ctx context.Context, cfg config, logger *slog.Logger) (ports.RetentionOrchestrator, func(), error) {
	temporalClient, err := platformtemporal.Dial(cfg.Temporal, nil, "journal-purger")
	if err == nil {
		logger.Info("purging journal through Temporal", slog.String("namespace", cfg.Temporal.Namespace))
		return sessionworkflows.NewTemporalRetention(temporalClient), temporalClient.Close, nil
	}
	logger.Warn("Temporal unavailable, purging inline", slog.String("error", err.Error()))

	db, cleanup, err := platformpostgres.Open(ctx, cfg.PostgresDSN, platformpostgres.DefaultPool)
	if err != nil {
		return nil, cleanup, fmt.Errorf("inline purge needs the journal database: %w", err)
	}
	return sessionworkflows.NewInlineRetention(journalpostgres.NewJournal(db)), cleanup, nil
}
