// Package ports declares the outbound interfaces the services depend on.
package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

type (
	// BudgetRepository persists budgets as whole aggregates. ListBudgets
	// returns budgets in insertion order.
	BudgetRepository interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error)
		// SaveBudget inserts b or replaces the stored aggregate with the same ID.
		SaveBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, id uuid.UUID) error
		// ActivateBudget makes id the only active budget.
		ActivateBudget(ctx context.Context, id uuid.UUID) error
	}

	TemplateRepository interface {
		ListTemplates(ctx context.Context) ([]core.CategoryTemplate, error)
		SaveTemplate(ctx context.Context, t core.CategoryTemplate) error
		DeleteTemplate(ctx context.Context, id uuid.UUID) error
	}

	// Store is a backend that holds both budgets and the template registry.
	Store interface {
		BudgetRepository
		TemplateRepository
	}

	// SummaryExporter publishes budget summaries to an external destination.
	SummaryExporter interface {
		ExportSummary(ctx context.Context, s budget.Summary) error
		RemoveSummary(ctx context.Context, budgetID uuid.UUID) error
	}
)
