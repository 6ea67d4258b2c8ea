package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetmanage/internal/core"
	"budgetmanage/internal/ports"
)

var day = time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)

func TestBudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	b := core.NewBudget("8月", day, day.AddDate(0, 0, 30), 40000)
	b.Categories = append(b.Categories, core.NewCategory(uuid.New(), 1000))
	b.Expenses = append(b.Expenses, core.NewExpense(day, 500, core.CategoryRef(b.Categories[0].ID), "x", false))
	require.NoError(t, s.SaveBudget(ctx, b))

	got, err := s.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	// Mutating the returned copy must not leak into the store.
	got.Expenses[0].Amount = 1
	again, err := s.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), again.Expenses[0].Amount)
}

func TestBudgetOrderAndActivation(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		b := core.NewBudget(title, day, day, 1)
		require.NoError(t, s.SaveBudget(ctx, b))
		ids = append(ids, b.ID)
	}
	require.NoError(t, s.ActivateBudget(ctx, ids[1]))

	list, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, b := range list {
		assert.Equal(t, ids[i], b.ID)
		assert.Equal(t, i == 1, b.IsActive)
	}

	require.NoError(t, s.DeleteBudget(ctx, ids[0]))
	_, err = s.GetBudget(ctx, ids[0])
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBudget(ctx, ids[0]), ports.ErrNotFound)
	assert.ErrorIs(t, s.ActivateBudget(ctx, ids[0]), ports.ErrNotFound)
}

func TestSaveBudgetValidates(t *testing.T) {
	s := New(nil)
	b := core.NewBudget(" ", day, day, 1)
	assert.ErrorIs(t, s.SaveBudget(context.Background(), b), core.ErrEmptyTitle)
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	food := core.NewCategoryTemplate("食費", core.ThemeOrange)
	s := New([]core.CategoryTemplate{food})

	rent := core.NewCategoryTemplate("家賃", core.ThemeRed)
	require.NoError(t, s.SaveTemplate(ctx, rent))
	food.Theme = core.ThemeGreen
	require.NoError(t, s.SaveTemplate(ctx, food))

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.CategoryTemplate{food, rent}, list)

	require.NoError(t, s.DeleteTemplate(ctx, food.ID))
	assert.ErrorIs(t, s.DeleteTemplate(ctx, food.ID), ports.ErrNotFound)
	assert.ErrorIs(t, s.SaveTemplate(ctx, core.NewCategoryTemplate("x", "plaid")), core.ErrInvalidTheme)
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	seed := "# title,theme\n食費,orange\n\n日用品,TEAL\n食費,red\nbad,notatheme\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed_templates.txt"), []byte(seed), 0o644))

	list, err := NewFromFiles(dir).ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "食費", list[0].Title)
	assert.Equal(t, core.ThemeOrange, list[0].Theme)
	assert.Equal(t, core.ThemeTeal, list[1].Theme)

	defaults, err := NewFromFiles(t.TempDir()).ListTemplates(context.Background())
	require.NoError(t, err)
	assert.Len(t, defaults, 3)
}
