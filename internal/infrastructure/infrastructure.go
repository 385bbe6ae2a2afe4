// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (logging, classifier, ledger, history
// backend, archive) that the verification domain requires.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/pkg/classifier"
	"github.com/JaimeStill/attest/pkg/database"
	"github.com/JaimeStill/attest/pkg/kvstore"
	"github.com/JaimeStill/attest/pkg/ledger"
	"github.com/JaimeStill/attest/pkg/lifecycle"
	"github.com/JaimeStill/attest/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database and Redis are set only when the history backend uses them;
// Storage is nil when archiving is disabled.
type Infrastructure struct {
	Lifecycle      *lifecycle.Coordinator
	Logger         *slog.Logger
	Classifier     *classifier.Client
	Ledger         ledger.System
	History        history.Store
	HistoryBackend string
	Database       database.System
	Redis          kvstore.System
	Storage        storage.System
}

// NewLogger builds the root logger from the logging config.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	logger := NewLogger(&cfg.Logging, os.Stderr)

	infra := &Infrastructure{
		Lifecycle:      lifecycle.New(),
		Logger:         logger,
		Classifier:     classifier.New(&cfg.Classifier, logger),
		HistoryBackend: cfg.History.Backend,
	}

	ldg, err := ledger.New(ctx, &cfg.Ledger, logger)
	if err != nil {
		return nil, fmt.Errorf("ledger init failed: %w", err)
	}
	infra.Ledger = ldg

	switch cfg.History.Backend {
	case history.BackendPostgres:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.History = history.NewPostgres(db.Connection(), logger)
	case history.BackendRedis:
		kv := kvstore.New(&cfg.Redis, logger)
		infra.Redis = kv
		infra.History = history.NewRedis(kv.Client(), kv.Prefix(), logger)
	default:
		infra.History = history.NewMemory()
	}

	if cfg.Storage.Enabled {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("redis start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}

	if i.Ledger.Enabled() {
		logger := i.Logger.With("system", "ledger")

		i.Lifecycle.OnStartup("ledger", func(ctx context.Context) error {
			status := i.Ledger.Status(ctx)
			if !status.Connected {
				logger.Warn("ledger unreachable, receipts will report failure", "error", status.Error)
				return fmt.Errorf("%w: %s", ledger.ErrUnavailable, status.Error)
			}
			logger.Info("ledger connected", "chain_id", status.ChainID, "account", status.Account)
			return nil
		})

		i.Lifecycle.OnShutdown(func() {
			<-i.Lifecycle.Context().Done()
			i.Ledger.Close()
		})
	}

	return nil
}

// ArchiveEnabled reports whether uploaded originals are archived.
func (i *Infrastructure) ArchiveEnabled() bool {
	return i.Storage != nil
}
