package google

import (
	"math"

	"budgetmanage/internal/budget"
)

var summaryHeader = []interface{}{"カテゴリー", "予算", "支出", "残高", "残高率"}

const totalLabel = "合計"

// SummaryRows lays out a summary as sheet values: a header, one row per
// bucket in display order, and a total row. Rates are rounded to four
// decimal places.
func SummaryRows(s budget.Summary) [][]interface{} {
	rows := make([][]interface{}, 0, len(s.Categories)+2)
	rows = append(rows, summaryHeader)
	for _, d := range s.Categories {
		rows = append(rows, []interface{}{
			d.Title,
			d.BudgetAmount,
			d.TotalExpenseAmount,
			d.BalanceAmount,
			round4(d.BalanceRate()),
		})
	}
	total := budget.CategoryDisplayData{
		BudgetAmount:       s.Totals.BudgetAmount,
		TotalExpenseAmount: s.Totals.TotalExpense,
		BalanceAmount:      s.Totals.TotalBalance,
	}
	rows = append(rows, []interface{}{
		totalLabel,
		total.BudgetAmount,
		total.TotalExpenseAmount,
		total.BalanceAmount,
		round4(total.BalanceRate()),
	})
	return rows
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
