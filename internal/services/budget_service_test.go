package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetmanage/internal/amqp"
	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
	"budgetmanage/internal/ports"
	"budgetmanage/internal/store/memory"
)

type event struct {
	id     uuid.UUID
	action amqp.Action
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
	err    error
	closed bool
}

func (p *recordingPublisher) PublishBudgetChanged(_ context.Context, id uuid.UUID, action amqp.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{id, action})
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) actions() []amqp.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.Action, len(p.events))
	for i, e := range p.events {
		out[i] = e.action
	}
	return out
}

var (
	start = time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2022, 8, 31, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*BudgetService, *recordingPublisher, core.CategoryTemplate) {
	t.Helper()
	food := core.NewCategoryTemplate("食費", core.ThemeOrange)
	pub := &recordingPublisher{}
	return NewBudgetService(memory.New([]core.CategoryTemplate{food}), pub), pub, food
}

func createBudget(t *testing.T, s *BudgetService, title string, amount int64) core.Budget {
	t.Helper()
	b, err := s.CreateBudget(context.Background(), BudgetInput{Title: title, StartDate: start, EndDate: end, BudgetAmount: amount})
	require.NoError(t, err)
	return b
}

func TestCreateBudgetActivatesFirst(t *testing.T) {
	ctx := context.Background()
	s, pub, _ := newService(t)

	first := createBudget(t, s, "8月", 40000)
	second := createBudget(t, s, "9月", 30000)
	assert.True(t, first.IsActive)
	assert.False(t, second.IsActive)

	active, err := s.ActiveBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
	assert.Equal(t, []amqp.Action{amqp.ActionCreated, amqp.ActionCreated}, pub.actions())
}

func TestCreateBudgetValidates(t *testing.T) {
	s, pub, _ := newService(t)

	_, err := s.CreateBudget(context.Background(), BudgetInput{Title: "x", StartDate: end, EndDate: start, BudgetAmount: 1})
	assert.ErrorIs(t, err, core.ErrInvalidDateRange)
	assert.Empty(t, pub.actions())
}

func TestActiveBudgetNone(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.ActiveBudget(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteActiveBudgetActivatesFirstRemaining(t *testing.T) {
	ctx := context.Background()
	s, pub, _ := newService(t)
	a := createBudget(t, s, "a", 1)
	b := createBudget(t, s, "b", 1)
	c := createBudget(t, s, "c", 1)
	require.NoError(t, s.ActivateBudget(ctx, c.ID))

	require.NoError(t, s.DeleteBudget(ctx, c.ID))
	active, err := s.ActiveBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)

	// Deleting an inactive budget keeps the selection.
	require.NoError(t, s.DeleteBudget(ctx, b.ID))
	active, err = s.ActiveBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)

	assert.Equal(t, []amqp.Action{
		amqp.ActionCreated, amqp.ActionCreated, amqp.ActionCreated,
		amqp.ActionActivated, amqp.ActionDeleted, amqp.ActionActivated, amqp.ActionDeleted,
	}, pub.actions())

	assert.ErrorIs(t, s.DeleteBudget(ctx, b.ID), ports.ErrNotFound)
}

func TestSummaryAndBuckets(t *testing.T) {
	ctx := context.Background()
	s, _, food := newService(t)
	b := createBudget(t, s, "8月", 40000)

	category, err := s.AddCategory(ctx, b.ID, food.ID, 10000)
	require.NoError(t, err)
	for _, amount := range []int64{5000, 1000, 2000} {
		_, err := s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: amount, CategoryID: core.CategoryRef(category.ID)})
		require.NoError(t, err)
	}
	_, err = s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: 10000})
	require.NoError(t, err)

	summary, err := s.Summary(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, int64(2000), summary.Categories[0].BalanceAmount)
	assert.InDelta(t, 0.2, summary.Categories[0].BalanceRate(), 1e-9)
	assert.Equal(t, int64(20000), summary.Categories[1].BalanceAmount)
	assert.Equal(t, budget.Totals{BudgetAmount: 40000, TotalExpense: 18000, TotalBalance: 22000}, summary.Totals)

	view, err := s.Bucket(ctx, b.ID, core.CategoryRef(category.ID))
	require.NoError(t, err)
	assert.Equal(t, "食費", view.Title)
	assert.Len(t, view.Expenses, 3)

	view, err = s.Bucket(ctx, b.ID, uuid.NullUUID{})
	require.NoError(t, err)
	assert.Equal(t, budget.UncategorizedTitle, view.Title)
	assert.Len(t, view.Expenses, 1)

	_, err = s.Bucket(ctx, b.ID, core.CategoryRef(uuid.New()))
	assert.ErrorIs(t, err, budget.ErrCategoryNotFound)
}

func TestCategoryEditing(t *testing.T) {
	ctx := context.Background()
	s, _, food := newService(t)
	b := createBudget(t, s, "8月", 40000)

	appendable, err := s.AppendableTemplates(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, appendable, 1)

	category, err := s.AddCategory(ctx, b.ID, food.ID, 10000)
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, b.ID, food.ID, 1)
	assert.ErrorIs(t, err, budget.ErrTemplateInUse)
	_, err = s.AddCategory(ctx, b.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	appendable, err = s.AppendableTemplates(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, appendable)

	require.NoError(t, s.UpdateCategoryAmount(ctx, b.ID, category.ID, 12000))
	e, err := s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: 800, CategoryID: core.CategoryRef(category.ID)})
	require.NoError(t, err)

	require.NoError(t, s.RemoveCategory(ctx, b.ID, category.ID))
	got, err := s.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Categories)
	require.Len(t, got.Expenses, 1)
	assert.Equal(t, e.ID, got.Expenses[0].ID)
	assert.False(t, got.Expenses[0].CategoryID.Valid)
}

func TestExpenseEditing(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)
	b := createBudget(t, s, "8月", 40000)

	e, err := s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: 1200, Memo: " ランチ "})
	require.NoError(t, err)
	assert.Equal(t, "ランチ", e.Memo)

	updated, err := s.UpdateExpense(ctx, b.ID, e.ID, ExpenseInput{Date: end, Amount: 1500, IncludeTimeInDate: true})
	require.NoError(t, err)
	assert.Equal(t, e.ID, updated.ID)

	got, err := s.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Expenses, 1)
	assert.Equal(t, int64(1500), got.Expenses[0].Amount)
	assert.True(t, got.Expenses[0].IncludeTimeInDate)

	_, err = s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: 1, CategoryID: core.CategoryRef(uuid.New())})
	assert.ErrorIs(t, err, budget.ErrCategoryNotFound)
	_, err = s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: -5})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	require.NoError(t, s.DeleteExpense(ctx, b.ID, e.ID))
	assert.ErrorIs(t, s.DeleteExpense(ctx, b.ID, e.ID), budget.ErrExpenseNotFound)
	_, err = s.AddExpense(ctx, uuid.New(), ExpenseInput{Date: start, Amount: 1})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAmountsStayWithinBounds(t *testing.T) {
	ctx := context.Background()
	s, _, food := newService(t)
	b := createBudget(t, s, "8月", 1000)

	_, err := s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: math.MaxInt64})
	assert.ErrorIs(t, err, core.ErrAmountTooLarge)
	_, err = s.AddCategory(ctx, b.ID, food.ID, core.MaxAmount+1)
	assert.ErrorIs(t, err, core.ErrAmountTooLarge)

	for i := 0; i < 2; i++ {
		_, err = s.AddExpense(ctx, b.ID, ExpenseInput{Date: start, Amount: core.MaxAmount})
		require.NoError(t, err)
	}
	sum, err := s.Summary(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*core.MaxAmount, sum.Totals.TotalExpense)
	assert.Equal(t, 1000-2*core.MaxAmount, sum.Totals.TotalBalance)
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()
	s, pub, _ := newService(t)
	b := createBudget(t, s, "8月", 40000)

	got, err := s.UpdateBudget(ctx, b.ID, BudgetInput{Title: " 8月分 ", StartDate: start, EndDate: end, BudgetAmount: 45000})
	require.NoError(t, err)
	assert.Equal(t, "8月分", got.Title)
	assert.Equal(t, int64(45000), got.BudgetAmount)
	assert.True(t, got.IsActive)

	_, err = s.UpdateBudget(ctx, b.ID, BudgetInput{Title: "", StartDate: start, EndDate: end})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	assert.Equal(t, []amqp.Action{amqp.ActionCreated, amqp.ActionUpdated}, pub.actions())
}

func TestDeleteTemplateKeepsCategories(t *testing.T) {
	ctx := context.Background()
	s, pub, food := newService(t)
	b := createBudget(t, s, "8月", 40000)
	_, err := s.AddCategory(ctx, b.ID, food.ID, 10000)
	require.NoError(t, err)
	createBudget(t, s, "9月", 1)

	require.NoError(t, s.DeleteTemplate(ctx, food.ID))
	got, err := s.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Categories, 1)

	summary, err := s.Summary(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, int64(30000), summary.Categories[0].BudgetAmount)

	// Only the budget using the template is re-announced.
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, event{b.ID, amqp.ActionUpdated}, last)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, food.ID), ports.ErrNotFound)
}

func TestCreateTemplate(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newService(t)

	tmpl, err := s.CreateTemplate(ctx, "家賃", core.ThemeRed)
	require.NoError(t, err)
	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, tmpl)

	_, err = s.CreateTemplate(ctx, "x", core.Theme("plaid"))
	assert.ErrorIs(t, err, core.ErrInvalidTheme)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	s, pub, _ := newService(t)
	pub.err = errors.New("broker down")

	b := createBudget(t, s, "8月", 1)
	_, err := s.GetBudget(context.Background(), b.ID)
	assert.NoError(t, err)
}

// stalledPublisher blocks the first publish until release is closed.
type stalledPublisher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *stalledPublisher) PublishBudgetChanged(ctx context.Context, _ uuid.UUID, _ amqp.Action) error {
	first := false
	p.once.Do(func() {
		first = true
		close(p.entered)
	})
	if !first {
		return nil
	}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSlowPublisherDoesNotBlockWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	seeded := core.NewBudget("7月", start, end, 1000)
	require.NoError(t, store.SaveBudget(ctx, seeded))

	pub := &stalledPublisher{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewBudgetService(store, pub)
	defer close(pub.release)

	first := make(chan error, 1)
	go func() {
		_, err := s.AddExpense(ctx, seeded.ID, ExpenseInput{Date: start, Amount: 100})
		first <- err
	}()
	select {
	case <-pub.entered:
	case <-time.After(time.Second):
		t.Fatal("publish was never reached")
	}

	// The first write is stuck publishing; a second write must still commit.
	written := make(chan error, 1)
	go func() {
		_, err := s.UpdateBudget(ctx, seeded.ID, BudgetInput{Title: "8月", StartDate: start, EndDate: end, BudgetAmount: 1000})
		written <- err
	}()
	select {
	case err := <-written:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("write blocked behind a pending publish")
	}

	got, err := s.GetBudget(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "8月", got.Title)
	assert.Len(t, got.Expenses, 1)
}

func TestNilPublisherAndClose(t *testing.T) {
	s := NewBudgetService(memory.New(nil), nil)
	createBudget(t, s, "8月", 1)
	assert.NoError(t, s.Close())

	s2, pub, _ := newService(t)
	require.NoError(t, s2.Close())
	assert.True(t, pub.closed)
}
