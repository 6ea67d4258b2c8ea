package http

import (
	"net/http"

	"budgetmanage/internal/log"
)

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	templateID, err := parseUUID(req.TemplateID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.AddCategory(r.Context(), budgetID, templateID, int64(req.BudgetAmount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), budgetID.String(), log.OpUpdate)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryAmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.UpdateCategoryAmount(r.Context(), budgetID, categoryID, int64(req.BudgetAmount)); err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), budgetID.String(), log.OpUpdate)
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveCategory moves the category's expenses to the uncategorized bucket.
func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.RemoveCategory(r.Context(), budgetID, categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), budgetID.String(), log.OpUpdate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.AddExpense(r.Context(), budgetID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), budgetID.String(), log.OpUpdate)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.UpdateExpense(r.Context(), budgetID, expenseID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), budgetID.String(), log.OpUpdate)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteExpense(r.Context(), budgetID, expenseID); err != nil {
		writeError(w, r, err)
		return
	}
	s.access.LogBudgetChange(r.Context(), budgetID.String(), log.OpDelete)
	w.WriteHeader(http.StatusNoContent)
}
