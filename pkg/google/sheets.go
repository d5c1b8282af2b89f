package google

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/harrisonrobin/backlog/pkg/config"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/store"
)

const (
	// Hyperlink cells must read back as formulas so the ticket id can be
	// recovered. Dates entered as text come back as serial numbers unless
	// rendered as strings.
	readRenderOption = "FORMULA"
	dateRenderOption = "FORMATTED_STRING"
	writeInputOption = "USER_ENTERED"
)

// SheetsClient implements store.Store on top of Google Sheets. Each store
// id maps to one sheet whose first row holds the column names.
type SheetsClient struct {
	srv  *sheets.Service
	refs map[string]config.SheetRef
}

var _ store.Store = (*SheetsClient)(nil)

// NewSheetsClient wraps an existing Sheets service.
func NewSheetsClient(srv *sheets.Service, refs map[string]config.SheetRef) *SheetsClient {
	return &SheetsClient{srv: srv, refs: refs}
}

func (c *SheetsClient) ref(id string) (config.SheetRef, error) {
	ref, ok := c.refs[id]
	if !ok {
		return config.SheetRef{}, fmt.Errorf("%w: '%s'", store.ErrNotFound, id)
	}
	return ref, nil
}

// Read fetches the whole sheet.
func (c *SheetsClient) Read(ctx context.Context, id string) (*model.Table, error) {
	ref, err := c.ref(id)
	if err != nil {
		return nil, err
	}
	resp, err := c.srv.Spreadsheets.Values.Get(ref.SpreadsheetID, SheetRange(ref.Sheet)).
		ValueRenderOption(readRenderOption).
		DateTimeRenderOption(dateRenderOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet '%s': %w", ref.Sheet, err)
	}
	return TableFromValues(resp.Values), nil
}

// Replace clears the sheet and writes t, header first.
func (c *SheetsClient) Replace(ctx context.Context, id string, t *model.Table) error {
	ref, err := c.ref(id)
	if err != nil {
		return err
	}
	rng := SheetRange(ref.Sheet)
	if _, err := c.srv.Spreadsheets.Values.Clear(ref.SpreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to clear sheet '%s': %w", ref.Sheet, err)
	}
	vr := &sheets.ValueRange{Values: t.Values()}
	if _, err := c.srv.Spreadsheets.Values.Update(ref.SpreadsheetID, rng+"!A1", vr).
		ValueInputOption(writeInputOption).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("unable to write sheet '%s': %w", ref.Sheet, err)
	}
	return nil
}

// SheetRange quotes a sheet name for use in A1 notation.
func SheetRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// TableFromValues converts a value grid whose first row is the header.
// Columns with an empty header are dropped.
func TableFromValues(values [][]interface{}) *model.Table {
	t := model.NewTable()
	if len(values) == 0 {
		return t
	}

	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		name := strings.TrimSpace(cellString(v))
		if name == "" || t.HasColumn(name) {
			continue
		}
		header[i] = name
		t.Columns = append(t.Columns, name)
	}

	for _, line := range values[1:] {
		row := make(model.Row, len(t.Columns))
		empty := true
		for i, name := range header {
			if name == "" {
				continue
			}
			v := ""
			if i < len(line) {
				v = cellString(line[i])
			}
			if v != "" {
				empty = false
			}
			row[name] = v
		}
		if !empty {
			t.Append(row)
		}
	}
	return t
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
