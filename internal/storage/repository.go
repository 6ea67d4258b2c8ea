package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"budgetmanage/internal/core"
	"budgetmanage/internal/ports"

	_ "modernc.org/sqlite"
)

// Dates are stored as UTC RFC 3339 text so they sort and compare in SQL.
const timeLayout = time.RFC3339Nano

// SQLiteRepository implements ports.Store on a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY on
	// concurrent transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListBudgets implements ports.BudgetRepository
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	budgets := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := r.loadBudget(ctx, row)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// GetBudget implements ports.BudgetRepository
func (r *SQLiteRepository) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	row, err := r.queries.GetBudget(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return r.loadBudget(ctx, row)
}

// SaveBudget implements ports.BudgetRepository. The budget row, its
// categories and its expenses are replaced in one transaction.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	err = q.UpsertBudget(ctx, BudgetRow{
		ID:           b.ID,
		Title:        b.Title,
		StartDate:    formatTime(b.StartDate),
		EndDate:      formatTime(b.EndDate),
		BudgetAmount: b.BudgetAmount,
		IsActive:     b.IsActive,
	})
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	if err := q.DeleteExpensesByBudget(ctx, b.ID); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	if err := q.DeleteCategoriesByBudget(ctx, b.ID); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for i, c := range b.Categories {
		err := q.InsertCategory(ctx, CategoryRow{
			ID:                 c.ID,
			BudgetID:           b.ID,
			CategoryTemplateID: c.CategoryTemplateID,
			BudgetAmount:       c.BudgetAmount,
			Position:           int64(i),
		})
		if err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for i, e := range b.Expenses {
		err := q.InsertExpense(ctx, ExpenseRow{
			ID:                e.ID,
			BudgetID:          b.ID,
			Date:              formatTime(e.Date),
			Amount:            e.Amount,
			CategoryID:        e.CategoryID,
			Memo:              e.Memo,
			IncludeTimeInDate: e.IncludeTimeInDate,
			Position:          int64(i),
		})
		if err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget: %w", err)
	}

	slog.DebugContext(ctx, "Budget saved to SQLite",
		"budget_id", b.ID,
		"categories", len(b.Categories),
		"expenses", len(b.Expenses))

	return nil
}

// DeleteBudget implements ports.BudgetRepository. Categories and expenses
// go with the budget through ON DELETE CASCADE.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	n, err := r.queries.DeleteBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// ActivateBudget implements ports.BudgetRepository
func (r *SQLiteRepository) ActivateBudget(ctx context.Context, id uuid.UUID) error {
	n, err := r.queries.ActivateBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("activate budget: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// ListTemplates implements ports.TemplateRepository
func (r *SQLiteRepository) ListTemplates(ctx context.Context) ([]core.CategoryTemplate, error) {
	rows, err := r.queries.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	templates := make([]core.CategoryTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, core.CategoryTemplate{
			ID:    row.ID,
			Title: row.Title,
			Theme: core.Theme(row.Theme),
		})
	}
	return templates, nil
}

// SaveTemplate implements ports.TemplateRepository
func (r *SQLiteRepository) SaveTemplate(ctx context.Context, t core.CategoryTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertTemplate(ctx, TemplateRow{ID: t.ID, Title: t.Title, Theme: string(t.Theme)})
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// DeleteTemplate implements ports.TemplateRepository. Categories keep the
// dangling template id.
func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	n, err := r.queries.DeleteTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// SeedTemplates stores templates only when the registry is empty, so a
// fresh database starts with the same defaults as the memory backend.
func (r *SQLiteRepository) SeedTemplates(ctx context.Context, templates []core.CategoryTemplate) error {
	n, err := r.queries.CountTemplates(ctx)
	if err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, t := range templates {
		if err := r.SaveTemplate(ctx, t); err != nil {
			return fmt.Errorf("seed template %q: %w", t.Title, err)
		}
	}
	slog.InfoContext(ctx, "Seeded category templates", "count", len(templates))
	return nil
}

func (r *SQLiteRepository) loadBudget(ctx context.Context, row BudgetRow) (core.Budget, error) {
	b := core.Budget{
		ID:           row.ID,
		Title:        row.Title,
		BudgetAmount: row.BudgetAmount,
		IsActive:     row.IsActive,
		Categories:   []core.Category{},
		Expenses:     []core.Expense{},
	}
	var err error
	if b.StartDate, err = parseTime(row.StartDate); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s start date: %w", row.ID, err)
	}
	if b.EndDate, err = parseTime(row.EndDate); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s end date: %w", row.ID, err)
	}

	categories, err := r.queries.ListCategoriesByBudget(ctx, row.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("list categories of %s: %w", row.ID, err)
	}
	for _, c := range categories {
		b.Categories = append(b.Categories, core.Category{
			ID:                 c.ID,
			CategoryTemplateID: c.CategoryTemplateID,
			BudgetAmount:       c.BudgetAmount,
		})
	}

	expenses, err := r.queries.ListExpensesByBudget(ctx, row.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("list expenses of %s: %w", row.ID, err)
	}
	for _, e := range expenses {
		date, err := parseTime(e.Date)
		if err != nil {
			return core.Budget{}, fmt.Errorf("expense %s date: %w", e.ID, err)
		}
		b.Expenses = append(b.Expenses, core.Expense{
			ID:                e.ID,
			Date:              date,
			Amount:            e.Amount,
			CategoryID:        e.CategoryID,
			Memo:              e.Memo,
			IncludeTimeInDate: e.IncludeTimeInDate,
		})
	}

	return b, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
