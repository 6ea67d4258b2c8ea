package budget

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"budgetmanage/internal/core"
)

// Styling of the uncategorized bucket.
const (
	UncategorizedTitle       = "未分類"
	UncategorizedMainColor   = "#AEAEB2"
	UncategorizedAccentColor = "#000000"
)

// CategoryDisplayData is the render-ready view of one bucket.
type CategoryDisplayData struct {
	CategoryID         uuid.NullUUID `json:"categoryId"`
	CategoryTemplateID uuid.NullUUID `json:"categoryTemplateId"`
	Title              string        `json:"title"`
	MainColor          string        `json:"mainColor"`
	AccentColor        string        `json:"accentColor"`
	BudgetAmount       int64         `json:"budgetAmount"`
	TotalExpenseAmount int64         `json:"totalExpenseAmount"`
	BalanceAmount      int64         `json:"balanceAmount"`
}

// DisplayData computes the figures of a single bucket.
func DisplayData(bc BudgetCategory) CategoryDisplayData {
	var d CategoryDisplayData
	switch v := bc.(type) {
	case Categorized:
		d = CategoryDisplayData{
			CategoryID:         core.CategoryRef(v.Category.ID),
			CategoryTemplateID: core.CategoryRef(v.Template.ID),
			Title:              v.Template.Title,
			MainColor:          v.Template.Theme.MainColor(),
			AccentColor:        v.Template.Theme.AccentColor(),
			BudgetAmount:       v.Category.BudgetAmount,
		}
	case Uncategorized:
		d = CategoryDisplayData{
			Title:        v.Title,
			MainColor:    UncategorizedMainColor,
			AccentColor:  UncategorizedAccentColor,
			BudgetAmount: v.BudgetAmount,
		}
	default:
		panic(fmt.Sprintf("budget: unknown BudgetCategory %T", bc))
	}
	d.TotalExpenseAmount = sumAmounts(bc.MatchedExpenses())
	d.BalanceAmount = d.BudgetAmount - d.TotalExpenseAmount
	return d
}

// DisplayDataList returns display data for every bucket of b, uncategorized last.
func DisplayDataList(b core.Budget, templates []core.CategoryTemplate) []CategoryDisplayData {
	buckets := Buckets(b, templates)
	out := make([]CategoryDisplayData, 0, len(buckets))
	for _, bc := range buckets {
		out = append(out, DisplayData(bc))
	}
	return out
}

// CategoryDisplayDataList is DisplayDataList without the uncategorized entry,
// as used by category pickers.
func CategoryDisplayDataList(b core.Budget, templates []core.CategoryTemplate) []CategoryDisplayData {
	buckets := JoinCategories(b.Categories, b.Expenses, templates)
	out := make([]CategoryDisplayData, 0, len(buckets))
	for _, bc := range buckets {
		out = append(out, DisplayData(bc))
	}
	return out
}

// BalanceRate is the remaining share of the budget. A zero budget (NaN) or a
// deficit (negative ratio) yields 0.
func (d CategoryDisplayData) BalanceRate() float64 {
	rate := float64(d.BalanceAmount) / float64(d.BudgetAmount)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return rate
}

// ExpenseRate is 1 - BalanceRate. It is deliberately not clamped on its own:
// a deficit reports 1, not the true overspend ratio.
func (d CategoryDisplayData) ExpenseRate() float64 {
	return 1 - d.BalanceRate()
}

func (d CategoryDisplayData) IsDeficit() bool {
	return d.BalanceAmount < 0
}

func sumAmounts(expenses []core.Expense) int64 {
	var total int64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}
