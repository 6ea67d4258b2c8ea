package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetmanage/internal/amqp"
	"budgetmanage/internal/services"
	"budgetmanage/internal/storage"
	"budgetmanage/internal/store/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend. An unreachable broker is
// logged and the backend runs without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var result *BackendResult
	var err error
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publisher = client
		}
	}

	result.Service = services.NewBudgetService(result.Store, publisher)
	result.Cleanup = result.Service.Close
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	seed, err := memory.NewFromFiles(dataDir(config)).ListTemplates(ctx)
	if err == nil {
		err = repo.SeedTemplates(ctx, seed)
	}
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed templates: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Store: repo, Ready: repo.Ping}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.NewFromFiles(dataDir(config))

	f.logger.Info("Initialized memory backend", "data_directory", dataDir(config))

	return &BackendResult{
		Store: store,
		Ready: func(context.Context) error { return nil },
	}, nil
}

func dataDir(config Config) string {
	if config.DataDirectory == "" {
		return "data"
	}
	return config.DataDirectory
}
