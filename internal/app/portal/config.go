package portal

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/httpclient"
	"github.com/Apurer/go-gin-session-guard/internal/domains/session/adapters/navigation"
	platformobservability "github.com/Apurer/go-gin-session-guard/internal/platform/observability"
)

// Config carries environment-driven settings for the portal process.
type Config struct {
	Port              string        `env:"PORT" envDefault:"3000"`
	SessionServiceURL string        `env:"SESSION_SERVICE_URL" envDefault:"http://127.0.0.1:9000"`
	EntryPath         string        `env:"ENTRY_PATH" envDefault:"/"`
	ValidationTimeout time.Duration `env:"VALIDATION_TIMEOUT" envDefault:"10s"`
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	// MemoryJournalMaxEntries bounds the in-memory journal used without POSTGRES_DSN.
	MemoryJournalMaxEntries int `env:"MEMORY_JOURNAL_MAX_ENTRIES" envDefault:"10000"`

	Observability platformobservability.Config
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse portal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks constraints env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if _, err := httpclient.ParseServiceURL(c.SessionServiceURL); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_SERVICE_URL: %w", err))
	}
	if err := navigation.SameOriginPath(c.EntryPath); err != nil {
		errs = append(errs, fmt.Errorf("ENTRY_PATH: %w", err))
	}
	if c.ValidationTimeout <= 0 {
		errs = append(errs, errors.New("VALIDATION_TIMEOUT must be positive"))
	}
	if c.MemoryJournalMaxEntries <= 0 {
		errs = append(errs, errors.New("MEMORY_JOURNAL_MAX_ENTRIES must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	return errors.Join(errs...)
}
