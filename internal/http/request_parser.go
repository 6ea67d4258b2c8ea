// Package http serves the budget JSON API.
//
// This file decodes request bodies into service inputs. Amounts may be sent
// as JSON numbers or as the text a numbers-only field produces ("¥1,200");
// dates are YYYY-MM-DD or RFC 3339 with a time of day.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetmanage/internal/core"
	"budgetmanage/internal/services"
)

const maxBodyBytes = 1 << 20

const dateLayout = "2006-01-02"

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidDate = errors.New("invalid date, want YYYY-MM-DD or RFC 3339")
	errInvalidID   = errors.New("invalid id")
)

// Amount is a whole yen amount decoded from a JSON number or string.
type Amount int64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := core.ParseAmount(s)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

type (
	budgetRequest struct {
		Title        string `json:"title"`
		StartDate    string `json:"startDate"`
		EndDate      string `json:"endDate"`
		BudgetAmount Amount `json:"budgetAmount"`
	}

	templateRequest struct {
		Title string `json:"title"`
		Theme string `json:"theme"`
	}

	categoryRequest struct {
		TemplateID   string `json:"templateId"`
		BudgetAmount Amount `json:"budgetAmount"`
	}

	categoryAmountRequest struct {
		BudgetAmount Amount `json:"budgetAmount"`
	}

	// expenseRequest leaves CategoryID nil, null or empty for an
	// uncategorized expense. IncludeTimeInDate defaults to whether Date
	// carries a time of day.
	expenseRequest struct {
		Date              string  `json:"date"`
		Amount            Amount  `json:"amount"`
		CategoryID        *string `json:"categoryId"`
		Memo              string  `json:"memo"`
		IncludeTimeInDate *bool   `json:"includeTimeInDate"`
	}
)

// decodeJSON reads one JSON object into dst. Amount errors keep their core
// sentinel so they surface as validation failures.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrAmountTooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidBody)
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errInvalidBody)
	}
	return nil
}

func (req budgetRequest) toInput() (services.BudgetInput, error) {
	start, _, err := parseDate(req.StartDate)
	if err != nil {
		return services.BudgetInput{}, fmt.Errorf("startDate: %w", err)
	}
	end, _, err := parseDate(req.EndDate)
	if err != nil {
		return services.BudgetInput{}, fmt.Errorf("endDate: %w", err)
	}
	return services.BudgetInput{
		Title:        sanitizeInput(req.Title),
		StartDate:    start,
		EndDate:      end,
		BudgetAmount: int64(req.BudgetAmount),
	}, nil
}

func (req expenseRequest) toInput() (services.ExpenseInput, error) {
	date, hasTime, err := parseDate(req.Date)
	if err != nil {
		return services.ExpenseInput{}, fmt.Errorf("date: %w", err)
	}
	var category uuid.NullUUID
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return services.ExpenseInput{}, fmt.Errorf("categoryId: %w", errInvalidID)
		}
		category = core.CategoryRef(id)
	}
	includeTime := hasTime
	if req.IncludeTimeInDate != nil {
		includeTime = *req.IncludeTimeInDate
	}
	return services.ExpenseInput{
		Date:              date,
		Amount:            int64(req.Amount),
		CategoryID:        category,
		Memo:              sanitizeInput(req.Memo),
		IncludeTimeInDate: includeTime,
	}, nil
}

// parseDate reports whether s carried a time of day. Plain dates are
// midnight UTC.
func parseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, core.ErrZeroDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, errInvalidDate
	}
	return t, true, nil
}

// parseUUID parses an id taken from the URL path.
func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q: %w", s, errInvalidID)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return parseUUID(r.PathValue(name))
}
