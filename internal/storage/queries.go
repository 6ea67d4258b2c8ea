package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type BudgetRow struct {
	ID           uuid.UUID
	Title        string
	StartDate    string
	EndDate      string
	BudgetAmount int64
	IsActive     bool
}

type CategoryRow struct {
	ID                 uuid.UUID
	BudgetID           uuid.UUID
	CategoryTemplateID uuid.UUID
	BudgetAmount       int64
	Position           int64
}

type ExpenseRow struct {
	ID                uuid.UUID
	BudgetID          uuid.UUID
	Date              string
	Amount            int64
	CategoryID        uuid.NullUUID
	Memo              string
	IncludeTimeInDate bool
	Position          int64
}

type TemplateRow struct {
	ID    uuid.UUID
	Title string
	Theme string
}

const listBudgets = `SELECT id, title, start_date, end_date, budget_amount, is_active FROM budgets ORDER BY rowid`

func (q *Queries) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetRow
	for rows.Next() {
		var i BudgetRow
		if err := rows.Scan(&i.ID, &i.Title, &i.StartDate, &i.EndDate, &i.BudgetAmount, &i.IsActive); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getBudget = `SELECT id, title, start_date, end_date, budget_amount, is_active FROM budgets WHERE id = ?`

func (q *Queries) GetBudget(ctx context.Context, id uuid.UUID) (BudgetRow, error) {
	var i BudgetRow
	err := q.db.QueryRowContext(ctx, getBudget, id).
		Scan(&i.ID, &i.Title, &i.StartDate, &i.EndDate, &i.BudgetAmount, &i.IsActive)
	return i, err
}

// Upserting keeps the rowid, so a replaced budget keeps its list position.
const upsertBudget = `INSERT INTO budgets (id, title, start_date, end_date, budget_amount, is_active)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    budget_amount = excluded.budget_amount,
    is_active = excluded.is_active`

func (q *Queries) UpsertBudget(ctx context.Context, arg BudgetRow) error {
	_, err := q.db.ExecContext(ctx, upsertBudget,
		arg.ID, arg.Title, arg.StartDate, arg.EndDate, arg.BudgetAmount, arg.IsActive)
	return err
}

const deleteBudget = `DELETE FROM budgets WHERE id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, deleteBudget, id))
}

const activateBudget = `UPDATE budgets SET is_active = (id = ?1)
WHERE EXISTS (SELECT 1 FROM budgets WHERE id = ?1)`

// ActivateBudget reports zero rows when id does not exist, in which case no
// budget is touched.
func (q *Queries) ActivateBudget(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, activateBudget, id))
}

const listCategoriesByBudget = `SELECT id, budget_id, category_template_id, budget_amount, position
FROM categories WHERE budget_id = ? ORDER BY position`

func (q *Queries) ListCategoriesByBudget(ctx context.Context, budgetID uuid.UUID) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategoriesByBudget, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(&i.ID, &i.BudgetID, &i.CategoryTemplateID, &i.BudgetAmount, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteCategoriesByBudget = `DELETE FROM categories WHERE budget_id = ?`

func (q *Queries) DeleteCategoriesByBudget(ctx context.Context, budgetID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteCategoriesByBudget, budgetID)
	return err
}

const insertCategory = `INSERT INTO categories (id, budget_id, category_template_id, budget_amount, position)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertCategory(ctx context.Context, arg CategoryRow) error {
	_, err := q.db.ExecContext(ctx, insertCategory,
		arg.ID, arg.BudgetID, arg.CategoryTemplateID, arg.BudgetAmount, arg.Position)
	return err
}

const listExpensesByBudget = `SELECT id, budget_id, date, amount, category_id, memo, include_time_in_date, position
FROM expenses WHERE budget_id = ? ORDER BY position`

func (q *Queries) ListExpensesByBudget(ctx context.Context, budgetID uuid.UUID) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByBudget, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.BudgetID, &i.Date, &i.Amount, &i.CategoryID, &i.Memo, &i.IncludeTimeInDate, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteExpensesByBudget = `DELETE FROM expenses WHERE budget_id = ?`

func (q *Queries) DeleteExpensesByBudget(ctx context.Context, budgetID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteExpensesByBudget, budgetID)
	return err
}

const insertExpense = `INSERT INTO expenses (id, budget_id, date, amount, category_id, memo, include_time_in_date, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, insertExpense,
		arg.ID, arg.BudgetID, arg.Date, arg.Amount, arg.CategoryID, arg.Memo, arg.IncludeTimeInDate, arg.Position)
	return err
}

const listTemplates = `SELECT id, title, theme FROM category_templates ORDER BY rowid`

func (q *Queries) ListTemplates(ctx context.Context) ([]TemplateRow, error) {
	rows, err := q.db.QueryContext(ctx, listTemplates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TemplateRow
	for rows.Next() {
		var i TemplateRow
		if err := rows.Scan(&i.ID, &i.Title, &i.Theme); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertTemplate = `INSERT INTO category_templates (id, title, theme) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title = excluded.title, theme = excluded.theme`

func (q *Queries) UpsertTemplate(ctx context.Context, arg TemplateRow) error {
	_, err := q.db.ExecContext(ctx, upsertTemplate, arg.ID, arg.Title, arg.Theme)
	return err
}

const deleteTemplate = `DELETE FROM category_templates WHERE id = ?`

func (q *Queries) DeleteTemplate(ctx context.Context, id uuid.UUID) (int64, error) {
	return rowsAffected(q.db.ExecContext(ctx, deleteTemplate, id))
}

const countTemplates = `SELECT COUNT(*) FROM category_templates`

func (q *Queries) CountTemplates(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTemplates).Scan(&n)
	return n, err
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
