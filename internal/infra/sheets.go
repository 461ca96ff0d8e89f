package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrSheetsNotConfigured is returned by the export when no spreadsheet is set.
var ErrSheetsNotConfigured = errors.New("google sheets export not configured")

// SheetWriter rewrites the content of a spreadsheet tab.
type SheetWriter interface {
	// ReplaceRows clears the tab of sheetRange and writes rows from its
	// first cell.
	ReplaceRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	SpreadsheetID() string
}

// GoogleSheetWriter implements SheetWriter with the official Sheets API.
type GoogleSheetWriter struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleSheetWriter authenticates with a service-account credentials file.
func NewGoogleSheetWriter(ctx context.Context, credentialsPath, spreadsheetID string) (*GoogleSheetWriter, error) {
	if credentialsPath == "" || spreadsheetID == "" {
		return nil, ErrSheetsNotConfigured
	}
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: init client: %w", err)
	}
	return &GoogleSheetWriter{service: service, spreadsheetID: spreadsheetID}, nil
}

func (w *GoogleSheetWriter) SpreadsheetID() string { return w.spreadsheetID }

func (w *GoogleSheetWriter) ReplaceRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	tab := sheetTab(sheetRange)
	if tab == "" {
		return errors.New("sheets: range must not be empty")
	}

	_, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, tab, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", tab, err)
	}
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", sheetRange, err)
	}
	return nil
}

// sheetTab returns the tab part of an A1 range ("Purchases!A1" -> "Purchases").
func sheetTab(sheetRange string) string {
	tab, _, _ := strings.Cut(sheetRange, "!")
	return tab
}
