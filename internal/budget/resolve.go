package budget

import (
	"github.com/google/uuid"

	"budgetmanage/internal/core"
)

// ResolveTemplate returns the template the category points at.
func ResolveTemplate(category core.Category, templates []core.CategoryTemplate) (core.CategoryTemplate, bool) {
	for _, t := range templates {
		if t.ID == category.CategoryTemplateID {
			return t, true
		}
	}
	return core.CategoryTemplate{}, false
}

// ExpensesFor returns the expenses assigned to categoryID, keeping their order.
func ExpensesFor(categoryID uuid.UUID, expenses []core.Expense) []core.Expense {
	out := []core.Expense{}
	for _, e := range expenses {
		if e.CategoryID.Valid && e.CategoryID.UUID == categoryID {
			out = append(out, e)
		}
	}
	return out
}

// UncategorizedExpenses returns expenses without a category plus those whose
// category id does not match any category of b.
func UncategorizedExpenses(b core.Budget) []core.Expense {
	known := make(map[uuid.UUID]struct{}, len(b.Categories))
	for _, c := range b.Categories {
		known[c.ID] = struct{}{}
	}
	out := []core.Expense{}
	for _, e := range b.Expenses {
		if !e.CategoryID.Valid {
			out = append(out, e)
			continue
		}
		if _, ok := known[e.CategoryID.UUID]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// UncategorizedBudgetAmount is what remains of the budget after every
// category's allocation. It goes negative when categories over-allocate.
func UncategorizedBudgetAmount(b core.Budget) int64 {
	amount := b.BudgetAmount
	for _, c := range b.Categories {
		amount -= c.BudgetAmount
	}
	return amount
}

// JoinCategories pairs each category with its template and matched expenses.
// Categories whose template cannot be resolved are left out: without a theme
// there is nothing to render.
func JoinCategories(categories []core.Category, expenses []core.Expense, templates []core.CategoryTemplate) []BudgetCategory {
	out := make([]BudgetCategory, 0, len(categories))
	for _, c := range categories {
		t, ok := ResolveTemplate(c, templates)
		if !ok {
			continue
		}
		out = append(out, Categorized{
			Category: c,
			Template: t,
			Expenses: ExpensesFor(c.ID, expenses),
		})
	}
	return out
}

// UncategorizedBucket builds the synthetic bucket for b.
func UncategorizedBucket(b core.Budget) Uncategorized {
	return Uncategorized{
		Title:        UncategorizedTitle,
		BudgetAmount: UncategorizedBudgetAmount(b),
		Expenses:     UncategorizedExpenses(b),
	}
}

// Buckets returns the categorized buckets of b followed by the uncategorized one.
func Buckets(b core.Budget, templates []core.CategoryTemplate) []BudgetCategory {
	buckets := JoinCategories(b.Categories, b.Expenses, templates)
	return append(buckets, UncategorizedBucket(b))
}

// FindBucket returns the bucket for categoryID; an absent id selects the
// uncategorized bucket. A category that is missing or whose template is
// gone is not found.
func FindBucket(b core.Budget, templates []core.CategoryTemplate, categoryID uuid.NullUUID) (BudgetCategory, bool) {
	if !categoryID.Valid {
		return UncategorizedBucket(b), true
	}
	for _, c := range b.Categories {
		if c.ID != categoryID.UUID {
			continue
		}
		t, ok := ResolveTemplate(c, templates)
		if !ok {
			return nil, false
		}
		return Categorized{Category: c, Template: t, Expenses: ExpensesFor(c.ID, b.Expenses)}, true
	}
	return nil, false
}
