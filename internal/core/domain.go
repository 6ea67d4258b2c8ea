package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type (
	// CategoryTemplate is a reusable title + colour theme pair shared across budgets.
	CategoryTemplate struct {
		ID    uuid.UUID `json:"id"`
		Title string    `json:"title"`
		Theme Theme     `json:"theme"`
	}

	Budget struct {
		ID           uuid.UUID  `json:"id"`
		Title        string     `json:"title"`
		StartDate    time.Time  `json:"startDate"`
		EndDate      time.Time  `json:"endDate"`
		BudgetAmount int64      `json:"budgetAmount"`
		IsActive     bool       `json:"isActive"`
		Categories   []Category `json:"categories"`
		Expenses     []Expense  `json:"expenses"`
	}

	// Category is a sub-allocation of a budget. CategoryTemplateID is a weak
	// reference and may dangle once the template is deleted.
	Category struct {
		ID                 uuid.UUID `json:"id"`
		CategoryTemplateID uuid.UUID `json:"categoryTemplateId"`
		BudgetAmount       int64     `json:"budgetAmount"`
	}

	Expense struct {
		ID                uuid.UUID     `json:"id"`
		Date              time.Time     `json:"date"`
		Amount            int64         `json:"amount"`
		CategoryID        uuid.NullUUID `json:"categoryId"` // invalid means uncategorized
		Memo              string        `json:"memo"`
		IncludeTimeInDate bool          `json:"includeTimeInDate"`
	}
)

// MaxAmount bounds every amount so that sums over a budget fit in int64.
const MaxAmount int64 = 1_000_000_000_000

const (
	maxBudgetTitleLen   = 100
	maxTemplateTitleLen = 50
	maxMemoLen          = 200
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrAmountTooLarge   = errors.New("amount too large (max 1,000,000,000,000)")
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = errors.New("title too long")
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrMemoTooLong      = errors.New("memo too long (max 200 characters)")
	ErrInvalidTheme     = errors.New("invalid theme")
)

// NewBudget returns a budget with a fresh identity and no categories or expenses.
func NewBudget(title string, start, end time.Time, amount int64) Budget {
	return Budget{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(title),
		StartDate:    start,
		EndDate:      end,
		BudgetAmount: amount,
		Categories:   []Category{},
		Expenses:     []Expense{},
	}
}

func NewCategory(templateID uuid.UUID, amount int64) Category {
	return Category{ID: uuid.New(), CategoryTemplateID: templateID, BudgetAmount: amount}
}

func NewCategoryTemplate(title string, theme Theme) CategoryTemplate {
	return CategoryTemplate{ID: uuid.New(), Title: strings.TrimSpace(title), Theme: theme}
}

// NewExpense creates an uncategorized expense unless categoryID is valid.
func NewExpense(date time.Time, amount int64, categoryID uuid.NullUUID, memo string, includeTime bool) Expense {
	return Expense{
		ID:                uuid.New(),
		Date:              date,
		Amount:            amount,
		CategoryID:        categoryID,
		Memo:              strings.TrimSpace(memo),
		IncludeTimeInDate: includeTime,
	}
}

// CategoryRef wraps id as a present category reference.
func CategoryRef(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

func (b Budget) Validate() error {
	if err := validateTitle(b.Title, maxBudgetTitleLen); err != nil {
		return err
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return ErrZeroDate
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrInvalidDateRange
	}
	return checkAmount(b.BudgetAmount)
}

func (c Category) Validate() error {
	return checkAmount(c.BudgetAmount)
}

func (t CategoryTemplate) Validate() error {
	if err := validateTitle(t.Title, maxTemplateTitleLen); err != nil {
		return err
	}
	if !t.Theme.Valid() {
		return ErrInvalidTheme
	}
	return nil
}

// Validate checks an expense in isolation. Whether CategoryID resolves is a
// property of the owning budget and is checked there.
func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if e.Amount > MaxAmount {
		return ErrAmountTooLarge
	}
	if utf8.RuneCountInString(e.Memo) > maxMemoLen {
		return ErrMemoTooLong
	}
	return nil
}

// Clone returns a deep copy so stores can hand out snapshots.
func (b Budget) Clone() Budget {
	out := b
	out.Categories = append(make([]Category, 0, len(b.Categories)), b.Categories...)
	out.Expenses = append(make([]Expense, 0, len(b.Expenses)), b.Expenses...)
	return out
}

func checkAmount(amount int64) error {
	switch {
	case amount < 0:
		return ErrNegativeAmount
	case amount > MaxAmount:
		return ErrAmountTooLarge
	}
	return nil
}

func validateTitle(title string, max int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > max {
		return ErrTitleTooLong
	}
	return nil
}
