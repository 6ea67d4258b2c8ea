package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetmanage/internal/budget"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal in-memory Sheets API covering the calls the
// exporter makes.
type fakeSheets struct {
	mu     sync.Mutex
	nextID int64
	sheets map[string]int64
	values map[string][][]interface{}
	gets   int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{nextID: 100, sheets: map[string]int64{"Sheet1": 0}, values: map[string][][]interface{}{}}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := gsheet.BatchUpdateSpreadsheetResponse{}
		for _, rq := range req.Requests {
			switch {
			case rq.AddSheet != nil:
				f.nextID++
				title := rq.AddSheet.Properties.Title
				f.sheets[title] = f.nextID
				resp.Replies = append(resp.Replies, &gsheet.Response{AddSheet: &gsheet.AddSheetResponse{
					Properties: &gsheet.SheetProperties{SheetId: f.nextID, Title: title},
				}})
			case rq.DeleteSheet != nil:
				for title, id := range f.sheets {
					if id == rq.DeleteSheet.SheetId {
						delete(f.sheets, title)
						delete(f.values, title)
					}
				}
				resp.Replies = append(resp.Replies, &gsheet.Response{})
			}
		}
		json.NewEncoder(w).Encode(resp)

	case strings.Contains(path, "/values/"):
		_, rng, _ := strings.Cut(path, "/values/")
		rng = strings.TrimSuffix(rng, ":clear")
		title, _, _ := strings.Cut(rng, "!")
		title = strings.ReplaceAll(strings.Trim(title, "'"), "''", "'")
		if _, ok := f.sheets[title]; !ok {
			http.Error(w, `{"error":{"code":400,"message":"Unable to parse range"}}`, http.StatusBadRequest)
			return
		}
		if strings.HasSuffix(path, ":clear") {
			delete(f.values, title)
			json.NewEncoder(w).Encode(gsheet.ClearValuesResponse{})
			return
		}
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.values[title] = vr.Values
		json.NewEncoder(w).Encode(gsheet.UpdateValuesResponse{UpdatedRows: int64(len(vr.Values))})

	default:
		f.gets++
		ss := gsheet.Spreadsheet{}
		for title, id := range f.sheets {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{SheetId: id, Title: title}})
		}
		json.NewEncoder(w).Encode(ss)
	}
}

func newTestExporter(t *testing.T) (*Exporter, *fakeSheets) {
	t.Helper()
	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "spreadsheet", "Budget"), fake
}

func sampleSummary() budget.Summary {
	categories := []budget.CategoryDisplayData{
		{Title: "食費", BudgetAmount: 10000, TotalExpenseAmount: 8000, BalanceAmount: 2000},
		{Title: budget.UncategorizedTitle, BudgetAmount: 30000, TotalExpenseAmount: 10000, BalanceAmount: 20000},
	}
	return budget.Summary{
		BudgetID:   uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000001"),
		Title:      "8月",
		StartDate:  time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2022, 8, 31, 0, 0, 0, 0, time.UTC),
		Categories: categories,
		Totals:     budget.SumTotals(categories),
	}
}

const sampleTitle = "Budget 1a2b3c4d-0000-4000-8000-000000000001"

func TestSheetTitle(t *testing.T) {
	id := uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000001")
	assert.Equal(t, "Budget 1a2b3c4d-0000-4000-8000-000000000001", SheetTitle("Budget", id))

	other := uuid.MustParse("1a2b3c4d-ffff-4000-8000-000000000002")
	assert.NotEqual(t, SheetTitle("Budget", id), SheetTitle("Budget", other))
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Budget 1a2b3c4d'", quoteSheet("Budget 1a2b3c4d"))
	assert.Equal(t, "'Tom''s'", quoteSheet("Tom's"))
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(sampleSummary())

	require.Len(t, rows, 4)
	assert.Equal(t, summaryHeader, rows[0])
	assert.Equal(t, []interface{}{"食費", int64(10000), int64(8000), int64(2000), 0.2}, rows[1])
	assert.Equal(t, []interface{}{"未分類", int64(30000), int64(10000), int64(20000), 0.6667}, rows[2])
	assert.Equal(t, []interface{}{"合計", int64(40000), int64(18000), int64(22000), 0.55}, rows[3])
}

func TestSummaryRowsDeficit(t *testing.T) {
	categories := []budget.CategoryDisplayData{
		{Title: "食費", BudgetAmount: 1000, TotalExpenseAmount: 1500, BalanceAmount: -500},
	}
	rows := SummaryRows(budget.Summary{Categories: categories, Totals: budget.SumTotals(categories)})

	assert.Equal(t, int64(-500), rows[1][3])
	assert.Equal(t, 0.0, rows[1][4])
	assert.Equal(t, 0.0, rows[2][4])
}

func TestExportSummaryCreatesAndReplacesSheet(t *testing.T) {
	ctx := context.Background()
	e, fake := newTestExporter(t)
	s := sampleSummary()

	require.NoError(t, e.ExportSummary(ctx, s))
	require.NoError(t, e.ExportSummary(ctx, s))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.sheets, sampleTitle)
	values := fake.values[sampleTitle]
	require.Len(t, values, 4)
	assert.Equal(t, "食費", values[1][0])
	assert.Equal(t, float64(10000), values[1][1])
	// The second export hits the sheet id cache.
	assert.Equal(t, 1, fake.gets)
}

func TestBudgetsSharingIDPrefixKeepSeparateSheets(t *testing.T) {
	ctx := context.Background()
	e, fake := newTestExporter(t)
	first := sampleSummary()
	second := sampleSummary()
	second.BudgetID = uuid.MustParse("1a2b3c4d-ffff-4000-8000-000000000002")

	require.NoError(t, e.ExportSummary(ctx, first))
	require.NoError(t, e.ExportSummary(ctx, second))
	require.NoError(t, e.RemoveSummary(ctx, second.BudgetID))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.sheets, sampleTitle)
	assert.NotContains(t, fake.sheets, SheetTitle("Budget", second.BudgetID))
}

func TestRemoveSummary(t *testing.T) {
	ctx := context.Background()
	e, fake := newTestExporter(t)
	s := sampleSummary()
	require.NoError(t, e.ExportSummary(ctx, s))

	require.NoError(t, e.RemoveSummary(ctx, s.BudgetID))
	fake.mu.Lock()
	assert.NotContains(t, fake.sheets, sampleTitle)
	fake.mu.Unlock()

	// Removing again is a no-op.
	require.NoError(t, e.RemoveSummary(ctx, s.BudgetID))
}

func TestNilServiceFails(t *testing.T) {
	e := NewWithService(nil, "x", "")
	assert.Error(t, e.ExportSummary(context.Background(), sampleSummary()))
	assert.Error(t, e.RemoveSummary(context.Background(), uuid.New()))
	assert.Equal(t, "Budget", e.prefix)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.EqualError(t, err, "missing spreadsheet id")

	_, err = New(context.Background(), Config{SpreadsheetID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}
