package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
	"github.com/Carlos-Bolano/Pocka/internal/remote/memory"
	"github.com/Carlos-Bolano/Pocka/internal/remote/sheets"
	"github.com/Carlos-Bolano/Pocka/internal/remote/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	store, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:    store,
		Identity: remote.NewStaticIdentity(config.UserID, config.UserName, config.UserEmail),
		Cleanup:  store.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*Result, error) {
	cli, err := sheets.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID)

	return &Result{
		Store:    cli,
		Identity: remote.NewStaticIdentity(config.UserID, config.UserName, config.UserEmail),
		Cleanup:  nil,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	store := memory.New()
	if config.UserID != "" {
		store.SetUser(&core.User{
			ID:    config.UserID,
			Name:  config.UserName,
			Email: config.UserEmail,
		})
	}

	f.logger.Info("Initialized memory backend", "user_id", config.UserID)

	return &Result{
		Store:      store,
		Identity:   store,
		Subscriber: store,
		Cleanup:    nil,
	}, nil
}
