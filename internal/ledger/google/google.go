package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financetracker/internal/ledger"
)

// Header is the first row of the ledger sheet.
var Header = []any{"ID", "User", "Date", "Type", "Category", "Description", "Amount"}

// Writer keeps one row per transaction in a Google Sheet, keyed by column A.
type Writer struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	sheetID       int64
}

var _ ledger.Writer = (*Writer)(nil)

// Credentials selects the service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// New connects to the spreadsheet and resolves the numeric id of sheet.
func New(ctx context.Context, spreadsheetID, sheet string, creds Credentials) (*Writer, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	w := &Writer{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}
	if err := w.resolveSheet(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(creds.JSON)
	case strings.TrimSpace(creds.File) != "":
		data, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read service account credentials", "path", creds.File)
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (w *Writer) resolveSheet(ctx context.Context) error {
	ss, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == w.sheet {
			w.sheetID = s.Properties.SheetId
			return nil
		}
	}
	return fmt.Errorf("sheet %q not found in spreadsheet", w.sheet)
}

// Upsert rewrites the transaction's row, appending it when absent.
func (w *Writer) Upsert(ctx context.Context, e ledger.Entry) error {
	row, err := w.findRow(ctx, e.TransactionID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{EntryRow(e)}}

	if row == 0 {
		_, err = w.svc.Spreadsheets.Values.Append(w.spreadsheetID, w.sheet+"!A:G", vr).
			ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append ledger row %d: %w", e.TransactionID, classify(err))
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:G%d", w.sheet, row, row)
	if _, err := w.svc.Spreadsheets.Values.Update(w.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update ledger row %d: %w", e.TransactionID, classify(err))
	}
	return nil
}

// Delete removes the transaction's row if present.
func (w *Writer) Delete(ctx context.Context, transactionID int64) error {
	row, err := w.findRow(ctx, transactionID)
	if err != nil || row == 0 {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    w.sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(row - 1),
			EndIndex:   int64(row),
		}},
	}}}
	if _, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete ledger row %d: %w", transactionID, classify(err))
	}
	return nil
}

func (w *Writer) findRow(ctx context.Context, transactionID int64) (int, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, w.sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read ledger ids: %w", classify(err))
	}
	return FindRow(resp.Values, transactionID), nil
}

// classify marks client errors from the Sheets API as ledger.ErrRejected.
// Timeouts and rate limiting stay retryable.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusRequestTimeout, apiErr.Code == http.StatusTooManyRequests:
		return err
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return fmt.Errorf("%w: %w", ledger.ErrRejected, err)
	}
	return err
}

// FindRow returns the 1-based sheet row whose first cell holds id, or 0.
func FindRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}

// EntryRow lays an entry out in Header order.
func EntryRow(e ledger.Entry) []any {
	return []any{
		e.TransactionID,
		e.UserID,
		e.Date,
		e.Type,
		e.Category,
		e.Description,
		e.Amount.String(),
	}
}
