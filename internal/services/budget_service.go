package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetmanage/internal/amqp"
	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
	"budgetmanage/internal/ports"
)

// EventPublisher announces committed budget changes. *amqp.Client
// implements it.
type EventPublisher interface {
	PublishBudgetChanged(ctx context.Context, budgetID uuid.UUID, action amqp.Action) error
}

type (
	BudgetInput struct {
		Title        string
		StartDate    time.Time
		EndDate      time.Time
		BudgetAmount int64
	}

	ExpenseInput struct {
		Date              time.Time
		Amount            int64
		CategoryID        uuid.NullUUID
		Memo              string
		IncludeTimeInDate bool
	}

	// BucketView is one bucket's display data together with the expenses
	// that fall into it.
	BucketView struct {
		budget.CategoryDisplayData
		Expenses []core.Expense `json:"expenses"`
	}
)

// BudgetService orchestrates budget operations across the store and the
// event publisher. Mutations are serialised so read-modify-write cycles on
// an aggregate never interleave.
// Events are published after the lock is released so a slow broker never
// holds up other writes.
type BudgetService struct {
	store     ports.Store
	publisher EventPublisher

	mu sync.Mutex
}

// pendingEvent is a change committed to the store and not yet announced.
type pendingEvent struct {
	budgetID uuid.UUID
	action   amqp.Action
}

// NewBudgetService accepts a nil publisher; events are then skipped.
func NewBudgetService(store ports.Store, publisher EventPublisher) *BudgetService {
	return &BudgetService{store: store, publisher: publisher}
}

func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ActiveBudget returns the selected budget or ports.ErrNotFound.
func (s *BudgetService) ActiveBudget(ctx context.Context) (core.Budget, error) {
	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	b, ok := budget.Active(budgets)
	if !ok {
		return core.Budget{}, fmt.Errorf("active budget: %w", ports.ErrNotFound)
	}
	return b, nil
}

// CreateBudget stores a new empty budget. It becomes active when no other
// budget is.
func (s *BudgetService) CreateBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	b := core.NewBudget(in.Title, in.StartDate, in.EndDate, in.BudgetAmount)
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.createBudget(ctx, &b); err != nil {
		return core.Budget{}, err
	}
	slog.InfoContext(ctx, "Budget created", "budget_id", b.ID, "title", b.Title, "active", b.IsActive)
	s.publish(ctx, pendingEvent{b.ID, amqp.ActionCreated})
	return b, nil
}

func (s *BudgetService) createBudget(ctx context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	if _, ok := budget.Active(budgets); !ok {
		b.IsActive = true
	}
	if err := s.store.SaveBudget(ctx, *b); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// UpdateBudget changes title, period and amount, keeping categories and expenses.
func (s *BudgetService) UpdateBudget(ctx context.Context, id uuid.UUID, in BudgetInput) (core.Budget, error) {
	return s.mutate(ctx, id, func(b core.Budget) (core.Budget, error) {
		b.Title = strings.TrimSpace(in.Title)
		b.StartDate = in.StartDate
		b.EndDate = in.EndDate
		b.BudgetAmount = in.BudgetAmount
		return b, b.Validate()
	})
}

// DeleteBudget removes the budget with its categories and expenses. When
// the active budget goes, the first remaining one is activated.
func (s *BudgetService) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	events, err := s.deleteBudget(ctx, id)
	s.publish(ctx, events...)
	return err
}

func (s *BudgetService) deleteBudget(ctx context.Context, id uuid.UUID) ([]pendingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return nil, fmt.Errorf("delete budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget deleted", "budget_id", id)
	events := []pendingEvent{{id, amqp.ActionDeleted}}

	before, hadActive := budget.Active(budgets)
	after, ok := budget.Active(budget.Remove(budgets, id))
	if !ok || (hadActive && before.ID == after.ID) {
		return events, nil
	}
	if err := s.store.ActivateBudget(ctx, after.ID); err != nil {
		return events, fmt.Errorf("activate budget %s: %w", after.ID, err)
	}
	slog.InfoContext(ctx, "Budget activated", "budget_id", after.ID)
	return append(events, pendingEvent{after.ID, amqp.ActionActivated}), nil
}

func (s *BudgetService) ActivateBudget(ctx context.Context, id uuid.UUID) error {
	if err := s.activateBudget(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget activated", "budget_id", id)
	s.publish(ctx, pendingEvent{id, amqp.ActionActivated})
	return nil
}

func (s *BudgetService) activateBudget(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ActivateBudget(ctx, id); err != nil {
		return fmt.Errorf("activate budget: %w", err)
	}
	return nil
}

// Summary aggregates the budget against the current template registry.
func (s *BudgetService) Summary(ctx context.Context, id uuid.UUID) (budget.Summary, error) {
	b, templates, err := s.load(ctx, id)
	if err != nil {
		return budget.Summary{}, err
	}
	return budget.Summarize(b, templates), nil
}

// Bucket returns one bucket of the budget. An invalid categoryID selects
// the uncategorized bucket.
func (s *BudgetService) Bucket(ctx context.Context, id uuid.UUID, categoryID uuid.NullUUID) (BucketView, error) {
	b, templates, err := s.load(ctx, id)
	if err != nil {
		return BucketView{}, err
	}
	bc, ok := budget.FindBucket(b, templates, categoryID)
	if !ok {
		return BucketView{}, fmt.Errorf("bucket %s: %w", categoryID.UUID, budget.ErrCategoryNotFound)
	}
	return BucketView{CategoryDisplayData: budget.DisplayData(bc), Expenses: bc.MatchedExpenses()}, nil
}

func (s *BudgetService) AppendableTemplates(ctx context.Context, id uuid.UUID) ([]core.CategoryTemplate, error) {
	b, templates, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return budget.AppendableTemplates(b, templates), nil
}

func (s *BudgetService) AddCategory(ctx context.Context, budgetID, templateID uuid.UUID, amount int64) (core.Category, error) {
	templates, err := s.ListTemplates(ctx)
	if err != nil {
		return core.Category{}, err
	}
	template, ok := findTemplate(templates, templateID)
	if !ok {
		return core.Category{}, fmt.Errorf("template %s: %w", templateID, ports.ErrNotFound)
	}

	var added core.Category
	_, err = s.mutate(ctx, budgetID, func(b core.Budget) (core.Budget, error) {
		updated, c, err := budget.AddCategory(b, template, amount)
		added = c
		return updated, err
	})
	return added, err
}

func (s *BudgetService) UpdateCategoryAmount(ctx context.Context, budgetID, categoryID uuid.UUID, amount int64) error {
	_, err := s.mutate(ctx, budgetID, func(b core.Budget) (core.Budget, error) {
		return budget.UpdateCategoryAmount(b, categoryID, amount)
	})
	return err
}

// RemoveCategory deletes the category; its expenses become uncategorized.
func (s *BudgetService) RemoveCategory(ctx context.Context, budgetID, categoryID uuid.UUID) error {
	_, err := s.mutate(ctx, budgetID, func(b core.Budget) (core.Budget, error) {
		return budget.RemoveCategory(b, categoryID)
	})
	return err
}

func (s *BudgetService) AddExpense(ctx context.Context, budgetID uuid.UUID, in ExpenseInput) (core.Expense, error) {
	e := core.NewExpense(in.Date, in.Amount, in.CategoryID, in.Memo, in.IncludeTimeInDate)
	_, err := s.mutate(ctx, budgetID, func(b core.Budget) (core.Budget, error) {
		return budget.AddExpense(b, e)
	})
	if err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense added", "budget_id", budgetID, "expense_id", e.ID, "amount", e.Amount)
	return e, nil
}

func (s *BudgetService) UpdateExpense(ctx context.Context, budgetID, expenseID uuid.UUID, in ExpenseInput) (core.Expense, error) {
	e := core.NewExpense(in.Date, in.Amount, in.CategoryID, in.Memo, in.IncludeTimeInDate)
	e.ID = expenseID
	_, err := s.mutate(ctx, budgetID, func(b core.Budget) (core.Budget, error) {
		return budget.UpdateExpense(b, e)
	})
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *BudgetService) DeleteExpense(ctx context.Context, budgetID, expenseID uuid.UUID) error {
	_, err := s.mutate(ctx, budgetID, func(b core.Budget) (core.Budget, error) {
		return budget.DeleteExpense(b, expenseID)
	})
	return err
}

// Close releases the store and the publisher when they hold resources.
func (s *BudgetService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %w", errors.Join(errs...))
	}
	return nil
}

// mutate loads the budget, applies fn and saves the result as one
// serialised step, then publishes an update event.
func (s *BudgetService) mutate(ctx context.Context, id uuid.UUID, fn func(core.Budget) (core.Budget, error)) (core.Budget, error) {
	updated, err := s.apply(ctx, id, fn)
	if err != nil {
		return core.Budget{}, err
	}
	s.publish(ctx, pendingEvent{id, amqp.ActionUpdated})
	return updated, nil
}

func (s *BudgetService) apply(ctx context.Context, id uuid.UUID, fn func(core.Budget) (core.Budget, error)) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	updated, err := fn(b)
	if err != nil {
		return core.Budget{}, err
	}
	if err := s.store.SaveBudget(ctx, updated); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	return updated, nil
}

func (s *BudgetService) load(ctx context.Context, id uuid.UUID) (core.Budget, []core.CategoryTemplate, error) {
	b, err := s.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, nil, err
	}
	templates, err := s.ListTemplates(ctx)
	if err != nil {
		return core.Budget{}, nil, err
	}
	return b, templates, nil
}

// publish never fails the caller: the store write is the source of truth.
// It must not be called with s.mu held.
func (s *BudgetService) publish(ctx context.Context, events ...pendingEvent) {
	for _, e := range events {
		if s.publisher == nil {
			slog.DebugContext(ctx, "No event publisher configured, skipping budget event",
				"budget_id", e.budgetID, "action", e.action)
			continue
		}
		if err := s.publisher.PublishBudgetChanged(ctx, e.budgetID, e.action); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget event",
				"budget_id", e.budgetID, "action", e.action, "error", err)
		}
	}
}
