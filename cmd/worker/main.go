package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	journalpostgres "github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/ports"
	journalworkflows "github.com/Apurer/go-gin-session-guard/internal/durable/temporal/workflows/journal"
	"github.com/Apurer/go-gin-session-guard/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-session-guard/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-session-guard/internal/platform/postgres"
	platformtemporal "github.com/Apurer/go-gin-session-guard/internal/platform/temporal"
	journalactivities "github.com/Apurer/go-gin-session-guard/internal/platform/temporal/activities/journal"
)

type config struct {
	PostgresDSN   string `env:"POSTGRES_DSN"`
	Temporal      platformtemporal.Config
	Observability platformobservability.Config
}

func main() {
	ctx := context.Background()
	const serviceName = "session-guard-worker"
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("failed to parse worker config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, cfg.Observability)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	journal, cleanupJournal, err := buildJournal(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("journal retention needs the journal database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupJournal()
	journalActivities := journalactivities.NewActivities(journal)

	temporalClient, err := platformtemporal.Dial(cfg.Temporal, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, journalworkflows.RetentionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(journalworkflows.RetentionWorkflow, workflow.RegisterOptions{Name: journalworkflows.RetentionWorkflowName})
	w.RegisterActivityWithOptions(journalActivities.Purge, activity.RegisterOptions{Name: journalactivities.PurgeActivityName})

	logger.Info("worker listening", slog.String("taskQueue", journalworkflows.RetentionTaskQueue), slog.String("namespace", cfg.Temporal.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// buildJournal opens the shared journal database the portal writes to.
func buildJournal(ctx context.Context, dsn string) (ports.Journal, func(), error) {
	db, cleanup, err := platformpostgres.Open(ctx, dsn, platformpostgres.DefaultPool)
	if err != nil {
		return nil, cleanup, err
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("migrate journal schema: %w", err)
	}
	return journalpostgres.NewJournal(db), cleanup, nil
}
