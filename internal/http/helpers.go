package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
	"budgetmanage/internal/log"
	"budgetmanage/internal/ports"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, budget.ErrCategoryNotFound),
		errors.Is(err, budget.ErrExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, budget.ErrTemplateInUse):
		return http.StatusConflict
	case errors.Is(err, errInvalidBody), errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrAmountTooLarge,
		core.ErrEmptyTitle,
		core.ErrTitleTooLong,
		core.ErrInvalidDateRange,
		core.ErrZeroDate,
		core.ErrMemoTooLong,
		core.ErrInvalidTheme,
		errInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs server-side failures and answers with a JSON error body.
// Internal error text is not exposed to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
