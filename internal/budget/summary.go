package budget

import (
	"time"

	"github.com/google/uuid"

	"budgetmanage/internal/core"
)

// Totals are budget-level figures. They are always the sum over buckets so
// they can never drift from what the per-category view shows.
//
// BudgetAmount is the sum of the displayed buckets' amounts. It equals the
// budget's own amount unless a category was dropped because its template is
// gone; Summary.BudgetAmount always carries the budget's own figure.
type Totals struct {
	BudgetAmount int64 `json:"budgetAmount"`
	TotalExpense int64 `json:"totalExpense"`
	TotalBalance int64 `json:"totalBalance"`
}

// Summary is the read model of a budget: its header, every bucket and the totals.
type Summary struct {
	BudgetID     uuid.UUID             `json:"budgetId"`
	Title        string                `json:"title"`
	StartDate    time.Time             `json:"startDate"`
	EndDate      time.Time             `json:"endDate"`
	BudgetAmount int64                 `json:"budgetAmount"`
	IsActive     bool                  `json:"isActive"`
	Categories   []CategoryDisplayData `json:"categories"`
	Totals       Totals                `json:"totals"`
}

// SumTotals adds up already computed bucket display data.
func SumTotals(buckets []CategoryDisplayData) Totals {
	var t Totals
	for _, d := range buckets {
		t.BudgetAmount += d.BudgetAmount
		t.TotalExpense += d.TotalExpenseAmount
		t.TotalBalance += d.BalanceAmount
	}
	return t
}

func ComputeTotals(b core.Budget, templates []core.CategoryTemplate) Totals {
	return SumTotals(DisplayDataList(b, templates))
}

func Summarize(b core.Budget, templates []core.CategoryTemplate) Summary {
	buckets := DisplayDataList(b, templates)
	return Summary{
		BudgetID:     b.ID,
		Title:        b.Title,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		BudgetAmount: b.BudgetAmount,
		IsActive:     b.IsActive,
		Categories:   buckets,
		Totals:       SumTotals(buckets),
	}
}
