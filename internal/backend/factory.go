package backend

import (
	"context"
	"fmt"
	"log/slog"

	"moncash/internal/storage"
	"moncash/internal/store/memory"
	"moncash/internal/store/sheets"
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
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MySQLBackend:
		return f.createMySQLBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLite(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Repositories: repo,
		Cleanup:      repo.Close,
	}, nil
}

func (f *DefaultFactory) createMySQLBackend(config Config) (*Result, error) {
	repo, err := storage.NewMySQL(config.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("initialize MySQL repository: %w", err)
	}

	f.logger.Info("initialized MySQL backend")

	return &Result{
		Repositories: repo,
		Cleanup:      repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*Result, error) {
	store, err := sheets.New(ctx, sheets.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
	}

	f.logger.Info("initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &Result{
		Repositories: store,
		Cleanup:      nil,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("initialized memory backend")

	return &Result{
		Repositories: memory.New(),
		Cleanup:      nil,
	}, nil
}
