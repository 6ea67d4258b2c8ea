// Package budget joins budgets, categories, templates and expenses into the
// figures shown to the user.
//
// Every function here is pure: inputs are snapshots, results are recomputed on
// each call and nothing is cached. Callers may use the package concurrently.
package budget

import (
	"budgetmanage/internal/core"
)

// BudgetCategory is either a Categorized bucket or the Uncategorized bucket,
// together with the expenses matched to it. The set of variants is closed;
// consumers switch over both.
type BudgetCategory interface {
	MatchedExpenses() []core.Expense
	budgetCategory()
}

// Categorized is a budget category whose template resolved.
type Categorized struct {
	Category core.Category
	Template core.CategoryTemplate
	Expenses []core.Expense
}

// Uncategorized holds the budget's unallocated amount and every expense that
// has no category or whose category no longer exists.
type Uncategorized struct {
	Title        string
	BudgetAmount int64
	Expenses     []core.Expense
}

func (c Categorized) MatchedExpenses() []core.Expense   { return c.Expenses }
func (u Uncategorized) MatchedExpenses() []core.Expense { return u.Expenses }

func (Categorized) budgetCategory()   {}
func (Uncategorized) budgetCategory() {}
