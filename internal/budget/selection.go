package budget

import (
	"github.com/google/uuid"

	"budgetmanage/internal/core"
)

// Active returns the selected budget, if any.
func Active(budgets []core.Budget) (core.Budget, bool) {
	for _, b := range budgets {
		if b.IsActive {
			return b, true
		}
	}
	return core.Budget{}, false
}

// Activate marks id as the only active budget. The returned slice is a copy;
// an unknown id leaves every budget inactive.
func Activate(budgets []core.Budget, id uuid.UUID) []core.Budget {
	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		out[i] = b
		out[i].IsActive = b.ID == id
	}
	return out
}

// Remove deletes id from budgets. When no budget is active afterwards the
// first remaining one is selected.
func Remove(budgets []core.Budget, id uuid.UUID) []core.Budget {
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.ID != id {
			out = append(out, b)
		}
	}
	if _, ok := Active(out); !ok && len(out) > 0 {
		out[0].IsActive = true
	}
	return out
}
