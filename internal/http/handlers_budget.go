package http

import (
	"net/http"

	"github.com/google/uuid"

	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
	"budgetmanage/internal/log"
)

const uncategorizedSegment = "uncategorized"

type (
	// bucketJSON adds the derived rates to a bucket's display data.
	bucketJSON struct {
		budget.CategoryDisplayData
		BalanceRate float64 `json:"balanceRate"`
		ExpenseRate float64 `json:"expenseRate"`
		IsDeficit   bool    `json:"isDeficit"`
	}

	summaryJSON struct {
		budget.Summary
		Categories []bucketJSON `json:"categories"`
	}

	bucketDetailJSON struct {
		bucketJSON
		Expenses []core.Expense `json:"expenses"`
	}
)

func newBucketJSON(d budget.CategoryDisplayData) bucketJSON {
	return bucketJSON{
		CategoryDisplayData: d,
		BalanceRate:         d.BalanceRate(),
		ExpenseRate:         d.ExpenseRate(),
		IsDeficit:           d.IsDeficit(),
	}
}

func newSummaryJSON(sum budget.Summary) summaryJSON {
	out := summaryJSON{Summary: sum, Categories: make([]bucketJSON, len(sum.Categories))}
	for i, d := range sum.Categories {
		out.Categories[i] = newBucketJSON(d)
	}
	return out
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.ListBudgets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.CreateBudget(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), b.ID.String(), log.OpCreate)
	w.Header().Set("Location", "/budgets/"+b.ID.String())
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleActiveBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.ActiveBudget(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.GetBudget(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.svc.UpdateBudget(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), id.String(), log.OpUpdate)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), id.String(), log.OpDelete)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.ActivateBudget(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), id.String(), log.OpActivate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Summary(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryJSON(sum))
}

// handleBucket serves one bucket; the "uncategorized" segment selects the
// uncategorized bucket.
func (s *Server) handleBucket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var categoryID uuid.NullUUID
	if seg := r.PathValue("categoryId"); seg != uncategorizedSegment {
		cid, err := parseUUID(seg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		categoryID = core.CategoryRef(cid)
	}
	view, err := s.svc.Bucket(r.Context(), id, categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketDetailJSON{
		bucketJSON: newBucketJSON(view.CategoryDisplayData),
		Expenses:   view.Expenses,
	})
}

func (s *Server) handleAppendableTemplates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	templates, err := s.svc.AppendableTemplates(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}
