package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetmanage/internal/budget"
	"budgetmanage/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Exporter writes one sheet per budget into a spreadsheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	prefix        string

	// Sheet ids by title. Sheets are only ever created or deleted by this
	// exporter, so entries stay valid until RemoveSummary drops them.
	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ ports.SummaryExporter = (*Exporter)(nil)

type Config struct {
	SpreadsheetID   string
	SheetPrefix     string
	CredentialsJSON string
	CredentialsFile string
}

// New creates an Exporter authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetPrefix), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, prefix string) *Exporter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Budget"
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		prefix:        strings.TrimSpace(prefix),
		sheetIDs:      map[string]int64{},
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// SheetTitle is the sheet name used for a budget, e.g.
// "Budget 1a2b3c4d-0000-4000-8000-000000000001".
func SheetTitle(prefix string, budgetID uuid.UUID) string {
	return prefix + " " + budgetID.String()
}

// ExportSummary replaces the budget's sheet contents with s.
func (e *Exporter) ExportSummary(ctx context.Context, s budget.Summary) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	title := SheetTitle(e.prefix, s.BudgetID)
	if _, err := e.ensureSheet(ctx, title); err != nil {
		return err
	}

	rng := quoteSheet(title)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %q: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: SummaryRows(s)}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %q: %w", title, err)
	}

	slog.InfoContext(ctx, "Exported budget summary",
		"budget_id", s.BudgetID,
		"sheet", title,
		"rows", len(vr.Values))
	return nil
}

// RemoveSummary deletes the budget's sheet. A missing sheet is not an error.
func (e *Exporter) RemoveSummary(ctx context.Context, budgetID uuid.UUID) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	title := SheetTitle(e.prefix, budgetID)
	id, ok, err := e.lookupSheet(ctx, title)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{DeleteSheet: &gsheet.DeleteSheetRequest{SheetId: id}}},
	}
	if _, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete sheet %q: %w", title, err)
	}

	e.mu.Lock()
	delete(e.sheetIDs, title)
	e.mu.Unlock()

	slog.InfoContext(ctx, "Removed budget summary", "budget_id", budgetID, "sheet", title)
	return nil
}

func (e *Exporter) ensureSheet(ctx context.Context, title string) (int64, error) {
	id, ok, err := e.lookupSheet(ctx, title)
	if err != nil || ok {
		return id, err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{AddSheet: &gsheet.AddSheetRequest{
			Properties: &gsheet.SheetProperties{Title: title},
		}}},
	}
	resp, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %q: %w", title, err)
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		id = resp.Replies[0].AddSheet.Properties.SheetId
	}

	e.mu.Lock()
	e.sheetIDs[title] = id
	e.mu.Unlock()
	return id, nil
}

// lookupSheet resolves a sheet title, consulting the spreadsheet only on a
// cache miss.
func (e *Exporter) lookupSheet(ctx context.Context, title string) (int64, bool, error) {
	e.mu.Lock()
	id, ok := e.sheetIDs[title]
	e.mu.Unlock()
	if ok {
		return id, true, nil
	}

	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("get spreadsheet: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		e.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}
	id, ok = e.sheetIDs[title]
	return id, ok, nil
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
