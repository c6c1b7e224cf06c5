package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNoDSN is returned when no journal database is configured.
var ErrNoDSN = errors.New("POSTGRES_DSN is not set")

const pingTimeout = 5 * time.Second

// Pool bounds the connections held for the transition journal. Writes are
// single-row inserts made once per guard transition, so a small pool suffices.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
}

var DefaultPool = Pool{MaxOpenConns: 10, MaxIdleConns: 2, ConnMaxIdleTime: 5 * time.Minute}

// Open connects to the journal database, applies pool limits and pings it.
// The returned func closes the pool.
func Open(ctx context.Context, dsn string, pool Pool) (*gorm.DB, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, func() {}, ErrNoDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, func() {}, fmt.Errorf("open journal database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, func() {}, fmt.Errorf("unwrap journal database: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, func() {}, fmt.Errorf("ping journal database: %w", err)
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

// OpenOrFallback is Open for processes that can keep transitions in memory.
// It logs why postgres is unavailable and returns a nil DB instead of failing.
func OpenOrFallback(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, func()) {
	db, cleanup, err := Open(ctx, dsn, DefaultPool)
	if err != nil {
		if logger != nil {
			logger.Warn("session journal kept in memory", slog.String("reason", err.Error()))
		}
		return nil, cleanup
	}
	if logger != nil {
		logger.Info("session journal database connected")
	}
	return db, cleanup
}
