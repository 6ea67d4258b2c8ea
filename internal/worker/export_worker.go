package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"budgetmanage/internal/amqp"
	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
	"budgetmanage/internal/ports"
)

// ExportWorker keeps the exported summaries in line with the store.
type ExportWorker struct {
	store       ports.Store
	exporter    ports.SummaryExporter
	concurrency int
}

func NewExportWorker(store ports.Store, exporter ports.SummaryExporter, concurrency int) *ExportWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ExportWorker{store: store, exporter: exporter, concurrency: concurrency}
}

// HandleBudgetChanged processes a single budget event from AMQP. A budget
// that no longer exists has its summary removed whatever the action says.
func (w *ExportWorker) HandleBudgetChanged(ctx context.Context, msg *amqp.BudgetChangedMessage) error {
	slog.InfoContext(ctx, "Processing budget changed message",
		"budget_id", msg.BudgetID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDeleted {
		return w.remove(ctx, msg.BudgetID)
	}

	err := w.ExportBudget(ctx, msg.BudgetID)
	if errors.Is(err, ports.ErrNotFound) {
		slog.InfoContext(ctx, "Budget no longer exists, removing summary", "budget_id", msg.BudgetID)
		return w.remove(ctx, msg.BudgetID)
	}
	return err
}

// ExportBudget aggregates one budget and hands the summary to the exporter.
func (w *ExportWorker) ExportBudget(ctx context.Context, id uuid.UUID) error {
	b, err := w.store.GetBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("get budget: %w", err)
	}
	templates, err := w.store.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	return w.export(ctx, b, templates)
}

// ExportAll re-exports every budget with at most concurrency exports in
// flight. It covers events lost while the worker was down. A failing budget
// does not stop the others; all failures are returned joined.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	budgets, err := w.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	templates, err := w.store.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(w.concurrency)
	for _, b := range budgets {
		g.Go(func() error {
			if err := w.export(ctx, b, templates); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Exported all budgets",
		"budgets", len(budgets),
		"failed", len(errs))
	return errors.Join(errs...)
}

// Run exports everything at start and then every interval until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.ExportAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial export failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic export stopped")
			return
		case <-ticker.C:
			if err := w.ExportAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) export(ctx context.Context, b core.Budget, templates []core.CategoryTemplate) error {
	summary := budget.Summarize(b, templates)
	if err := w.exporter.ExportSummary(ctx, summary); err != nil {
		return fmt.Errorf("export budget %s: %w", b.ID, err)
	}
	return nil
}

func (w *ExportWorker) remove(ctx context.Context, id uuid.UUID) error {
	if err := w.exporter.RemoveSummary(ctx, id); err != nil {
		return fmt.Errorf("remove summary %s: %w", id, err)
	}
	return nil
}
