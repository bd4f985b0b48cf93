// Package sheets mirrors profile and daily ledger data into a Google
// Sheets spreadsheet. The mirror is a best-effort secondary store: the
// relational database stays authoritative and mirror failures never
// surface to API clients.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Tab describes one tab of the mirrored spreadsheet.
type Tab struct {
	ID    int64  // Sheet ID within the spreadsheet.
	Title string // Tab title.
}

// ops abstracts the spreadsheet calls the mirror issues, so mirror logic
// is testable without the live API.
type ops interface {
	ListTabs(ctx context.Context) ([]Tab, error)
	DuplicateTab(ctx context.Context, sourceID int64, title string) error
	ReadRange(ctx context.Context, rng string) ([][]any, error)
	WriteRange(ctx context.Context, rng string, rows [][]any) error
}

// Client wraps the Sheets API for a single spreadsheet. It is built once
// at process start and shared; per-call construction would re-run the
// credential exchange on every mirror write.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewClient constructs a Client from service account credentials.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: empty spreadsheet id")
	}
	svc, errNew := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if errNew != nil {
		return nil, fmt.Errorf("sheets: new service: %w", errNew)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ListTabs returns the spreadsheet's tabs.
func (c *Client) ListTabs(ctx context.Context) ([]Tab, error) {
	resp, errGet := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if errGet != nil {
		return nil, fmt.Errorf("sheets: get spreadsheet: %w", errGet)
	}
	tabs := make([]Tab, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		tabs = append(tabs, Tab{ID: sheet.Properties.SheetId, Title: sheet.Properties.Title})
	}
	return tabs, nil
}

// DuplicateTab clones the source tab under a new title.
func (c *Client) DuplicateTab(ctx context.Context, sourceID int64, title string) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{
			{
				DuplicateSheet: &sheetsapi.DuplicateSheetRequest{
					SourceSheetId: sourceID,
					NewSheetName:  title,
				},
			},
		},
	}
	if _, errUpdate := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); errUpdate != nil {
		return fmt.Errorf("sheets: duplicate tab: %w", errUpdate)
	}
	return nil
}

// ReadRange reads raw cell values from an A1 range.
func (c *Client) ReadRange(ctx context.Context, rng string) ([][]any, error) {
	resp, errGet := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if errGet != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", rng, errGet)
	}
	return resp.Values, nil
}

// WriteRange writes cell values to an A1 range.
func (c *Client) WriteRange(ctx context.Context, rng string, rows [][]any) error {
	body := &sheetsapi.ValueRange{Values: rows}
	_, errUpdate := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if errUpdate != nil {
		return fmt.Errorf("sheets: write %s: %w", rng, errUpdate)
	}
	return nil
}
