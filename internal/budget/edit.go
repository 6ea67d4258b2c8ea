package budget

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"budgetmanage/internal/core"
)

var (
	ErrTemplateInUse    = errors.New("template already used by a category of this budget")
	ErrCategoryNotFound = errors.New("category not found in budget")
	ErrExpenseNotFound  = errors.New("expense not found in budget")
)

// AppendableTemplates returns the templates no category of b uses yet.
func AppendableTemplates(b core.Budget, templates []core.CategoryTemplate) []core.CategoryTemplate {
	used := make(map[uuid.UUID]struct{}, len(b.Categories))
	for _, c := range b.Categories {
		used[c.CategoryTemplateID] = struct{}{}
	}
	out := []core.CategoryTemplate{}
	for _, t := range templates {
		if _, ok := used[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// AddCategory appends a category backed by template. b is not modified.
func AddCategory(b core.Budget, template core.CategoryTemplate, amount int64) (core.Budget, core.Category, error) {
	for _, c := range b.Categories {
		if c.CategoryTemplateID == template.ID {
			return b, core.Category{}, ErrTemplateInUse
		}
	}
	category := core.NewCategory(template.ID, amount)
	if err := category.Validate(); err != nil {
		return b, core.Category{}, err
	}
	out := b.Clone()
	out.Categories = append(out.Categories, category)
	return out, category, nil
}

// RemoveCategory drops the category and moves its expenses to the
// uncategorized bucket. Expenses are never deleted.
func RemoveCategory(b core.Budget, categoryID uuid.UUID) (core.Budget, error) {
	if _, ok := findCategory(b, categoryID); !ok {
		return b, ErrCategoryNotFound
	}
	out := b.Clone()
	out.Categories = out.Categories[:0]
	for _, c := range b.Categories {
		if c.ID != categoryID {
			out.Categories = append(out.Categories, c)
		}
	}
	for i, e := range out.Expenses {
		if e.CategoryID.Valid && e.CategoryID.UUID == categoryID {
			out.Expenses[i].CategoryID = uuid.NullUUID{}
		}
	}
	return out, nil
}

// UpdateCategoryAmount changes the allocation of an existing category.
func UpdateCategoryAmount(b core.Budget, categoryID uuid.UUID, amount int64) (core.Budget, error) {
	i, ok := findCategory(b, categoryID)
	if !ok {
		return b, ErrCategoryNotFound
	}
	updated := b.Categories[i]
	updated.BudgetAmount = amount
	if err := updated.Validate(); err != nil {
		return b, err
	}
	out := b.Clone()
	out.Categories[i] = updated
	return out, nil
}

// AddExpense records e on b. A set CategoryID must name a category of b.
func AddExpense(b core.Budget, e core.Expense) (core.Budget, error) {
	if err := checkExpense(b, e); err != nil {
		return b, err
	}
	out := b.Clone()
	out.Expenses = append(out.Expenses, e)
	return out, nil
}

// UpdateExpense replaces the expense with the same ID, keeping its position.
func UpdateExpense(b core.Budget, e core.Expense) (core.Budget, error) {
	i, ok := findExpense(b, e.ID)
	if !ok {
		return b, ErrExpenseNotFound
	}
	if err := checkExpense(b, e); err != nil {
		return b, err
	}
	out := b.Clone()
	out.Expenses[i] = e
	return out, nil
}

func DeleteExpense(b core.Budget, expenseID uuid.UUID) (core.Budget, error) {
	i, ok := findExpense(b, expenseID)
	if !ok {
		return b, ErrExpenseNotFound
	}
	out := b.Clone()
	out.Expenses = append(out.Expenses[:i], out.Expenses[i+1:]...)
	return out, nil
}

func checkExpense(b core.Budget, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.CategoryID.Valid {
		if _, ok := findCategory(b, e.CategoryID.UUID); !ok {
			return fmt.Errorf("expense category %s: %w", e.CategoryID.UUID, ErrCategoryNotFound)
		}
	}
	return nil
}

func findCategory(b core.Budget, id uuid.UUID) (int, bool) {
	for i, c := range b.Categories {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

func findExpense(b core.Budget, id uuid.UUID) (int, bool) {
	for i, e := range b.Expenses {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}
