// Package sheets backs the repository ports with a Google Spreadsheet.
// Each entity lives on its own sheet with a header row; row ids are
// generated client-side as max+1. Suited to small personal ledgers, not
// concurrent multi-instance deployments.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moncash/internal/core"
	"moncash/internal/store"
)

const (
	usersSheet        = "Users"
	transactionsSheet = "Transactions"
	debtsSheet        = "Debts"
)

// Options configures the spreadsheet backend.
type Options struct {
	SpreadsheetID string
	// CredentialsJSON holds inline service account credentials. When empty,
	// CredentialsFile is read instead.
	CredentialsJSON string
	CredentialsFile string
}

// Store implements store.Repositories over the Google Sheets API.
type Store struct {
	svc           *gsheet.Service
	spreadsheetID string

	// Numeric sheet ids resolved once at startup; needed for row deletion.
	sheetIDs map[string]int64

	// Guards id generation. Appends from concurrent requests would otherwise
	// race on max+1.
	mu sync.Mutex
}

var _ store.Repositories = (*Store)(nil)

func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}

	s := &Store{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetIDs:      make(map[string]int64),
	}
	if err := s.resolveSheetIDs(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return s, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (s *Store) resolveSheetIDs(ctx context.Context) error {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	for _, name := range []string{usersSheet, transactionsSheet, debtsSheet} {
		if _, ok := s.sheetIDs[name]; !ok {
			return fmt.Errorf("spreadsheet is missing sheet %q", name)
		}
	}
	slog.InfoContext(ctx, "spreadsheet backend ready", "spreadsheet_id", s.spreadsheetID)
	return nil
}

// readRows returns all data rows of a sheet, header excluded. The row
// index returned alongside each row is 1-based and includes the header,
// matching what the Sheets API expects for updates and deletions.
func (s *Store) readRows(ctx context.Context, sheet string) ([]sheetRow, error) {
	rng := fmt.Sprintf("%s!A:H", sheet)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := make([]sheetRow, 0, len(resp.Values))
	for i, raw := range resp.Values {
		if i == 0 {
			continue
		}
		rows = append(rows, sheetRow{index: i + 1, cols: toStrings(raw)})
	}
	return rows, nil
}

func (s *Store) appendRow(ctx context.Context, sheet string, values []any) error {
	rng := fmt.Sprintf("%s!A:H", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

func (s *Store) updateRow(ctx context.Context, sheet string, rowIndex int, values []any) error {
	rng := fmt.Sprintf("%s!A%d", sheet, rowIndex)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s row %d: %w", sheet, rowIndex, err)
	}
	return nil
}

func (s *Store) deleteRow(ctx context.Context, sheet string, rowIndex int) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    s.sheetIDs[sheet],
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}
	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete %s row %d: %w", sheet, rowIndex, err)
	}
	return nil
}

// nextID scans the id column and returns max+1.
func (s *Store) nextID(ctx context.Context, sheet string) (int64, error) {
	rows, err := s.readRows(ctx, sheet)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, row := range rows {
		if id := parseID(row.cols, 0); id > max {
			max = id
		}
	}
	return max + 1, nil
}
