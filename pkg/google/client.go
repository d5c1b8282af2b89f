// Package google keeps the pipeline stores in Google Sheets.
package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/backlog/pkg/auth"
	"github.com/harrisonrobin/backlog/pkg/config"
)

// NewClient creates a Google Sheets client for the configured stores and
// checks that every referenced spreadsheet can be opened.
func NewClient(ctx context.Context, credentialsFile string, refs map[string]config.SheetRef) (*SheetsClient, error) {
	srv, err := auth.GetSheetsService(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}

	for id, ref := range refs {
		if _, err := srv.Spreadsheets.Get(ref.SpreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("spreadsheet for store '%s' not reachable: %w", id, err)
		}
	}

	return NewSheetsClient(srv, refs), nil
}
