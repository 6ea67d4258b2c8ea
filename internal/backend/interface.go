package backend

import (
	"context"

	"budgetmanage/internal/ports"
	"budgetmanage/internal/services"
)

// CleanupFunc releases backend resources
type CleanupFunc func() error

// BackendResult is a ready-to-use store with the service built on top of it.
type BackendResult struct {
	Store   ports.Store
	Service *services.BudgetService
	// Ready reports whether the store can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Seed templates (both backends) and memory data
	DataDirectory string

	// Event publishing, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
