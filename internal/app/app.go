package app

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"multiping/internal/config"
	"multiping/internal/logging"
	"multiping/internal/paths"
	"multiping/internal/storage"
	"multiping/internal/storage/sqlite"
)

// DBFileName is the history database created in the data directory.
const DBFileName = "history.db"

// App represents the application context
type App struct {
	Config config.Config
	Logger *zap.Logger

	storage storage.Storage
	dbPath  string
}

// New creates a new application instance from a validated config. Storage
// is opened lazily, so runs with history disabled never touch the database.
func New(cfg config.Config) (*App, error) {
	logDir, err := paths.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache directory: %w", err)
	}
	logger, err := logging.NewLogger(logDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.ChownToRealUser(filepath.Join(logDir, logging.FileName))

	return &App{
		Config: cfg,
		Logger: logger,
		dbPath: cfg.DBPath,
	}, nil
}

// NewWithStorage builds an App around an existing store and logger.
func NewWithStorage(cfg config.Config, store storage.Storage, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{Config: cfg, Logger: logger, storage: store, dbPath: cfg.DBPath}
}

// Storage opens the history database on first use.
func (a *App) Storage() (storage.Storage, error) {
	if a.storage != nil {
		return a.storage, nil
	}

	dbPath := a.dbPath
	if dbPath == "" {
		dataDir, err := paths.DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		dbPath = filepath.Join(dataDir, DBFileName)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	paths.ChownToRealUser(dbPath)

	a.storage = store
	a.dbPath = dbPath
	a.Logger.Debug("history database opened", zap.String("path", dbPath))
	return store, nil
}

// Close closes the application and releases resources
func (a *App) Close() error {
	var err error
	if a.storage != nil {
		err = a.storage.Close()
		a.storage = nil
	}
	_ = a.Logger.Sync()
	return err
}
