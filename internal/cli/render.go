package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"budgetmanage/internal/budget"
	"budgetmanage/internal/core"
)

const barWidth = 30

const (
	balanceCell = "█"
	spentCell   = "░"
)

// BarCells splits the bar into cells for the remaining balance and for the
// spent part. A deficit shows no balance cells.
func BarCells(d budget.CategoryDisplayData) (balance, spent int) {
	balance = int(math.Round(d.BalanceRate() * barWidth))
	balance = min(max(balance, 0), barWidth)
	return balance, barWidth - balance
}

// RenderCard draws one bucket: title and remaining balance, the bar in the
// bucket colour and a ¥0 … budget scale.
func RenderCard(d budget.CategoryDisplayData) string {
	remaining := "残り " + core.FormatYen(d.BalanceAmount)
	if d.IsDeficit() {
		remaining = DeficitStyle.Render(remaining)
	}
	header := spaceBetween(lipgloss.NewStyle().Bold(true).Render(d.Title), remaining, barWidth)

	balance, spent := BarCells(d)
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(d.MainColor)).Render(strings.Repeat(balanceCell, balance)) +
		SubtleStyle.Render(strings.Repeat(spentCell, spent))

	scale := SubtleStyle.Render(spaceBetween(core.FormatYen(0), core.FormatYen(d.BudgetAmount), barWidth))

	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, bar, scale))
}

// RenderSummary draws the budget header, one card per bucket and the totals.
func RenderSummary(sum budget.Summary) string {
	title := sum.Title
	if sum.IsActive {
		title += " " + ActiveStyle.Render("●")
	}
	period := SubtleStyle.Render(fmt.Sprintf("%s 〜 %s",
		core.FormatExpenseDate(sum.StartDate, false),
		core.FormatExpenseDate(sum.EndDate, false)))

	sections := []string{TitleStyle.Render(title + "\n" + period)}
	for _, d := range sum.Categories {
		sections = append(sections, RenderCard(d))
	}

	balance := core.FormatYen(sum.Totals.TotalBalance)
	if sum.Totals.TotalBalance < 0 {
		balance = DeficitStyle.Render(balance)
	}
	sections = append(sections, fmt.Sprintf("予算 %s  支出 %s  残高 %s",
		core.FormatYen(sum.Totals.BudgetAmount),
		core.FormatYen(sum.Totals.TotalExpense),
		balance))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// WriteBudgets lists budgets as a table, marking the active one.
func WriteBudgets(w io.Writer, budgets []core.Budget) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render(" "),
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Title"),
		HeaderStyle.Render("Period"),
		HeaderStyle.Render("Budget"))
	for _, b := range budgets {
		marker := " "
		if b.IsActive {
			marker = ActiveStyle.Render("*")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s 〜 %s\t%s\n",
			marker, b.ID, b.Title,
			b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"),
			core.FormatYen(b.BudgetAmount))
	}
	return tw.Flush()
}

// WriteTemplates lists the template registry with each theme's colour swatch.
func WriteTemplates(w io.Writer, templates []core.CategoryTemplate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Title"),
		HeaderStyle.Render("Theme"))
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\n", t.ID, t.Title, swatch(t.Theme), t.Theme.Name())
	}
	return tw.Flush()
}

func WriteThemes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range core.Themes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", swatch(t), t, t.Kana(), t.MainColor())
	}
	return tw.Flush()
}

func swatch(t core.Theme) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MainColor())).Render(balanceCell + balanceCell)
}

func spaceBetween(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
