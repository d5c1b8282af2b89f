package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harrisonrobin/backlog/pkg/model"
)

func TestTable(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	Table(&buf, []model.Summary{
		{Stage: "append", Created: 3},
		{Stage: "backfill", Created: 1, Skipped: 24},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "STAGE") || !strings.Contains(lines[0], "SANITIZED") {
		t.Errorf("header = %q", lines[0])
	}
	fields := strings.Fields(lines[2])
	if fields[0] != "backfill" || fields[1] != "1" || fields[4] != "24" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestTableEmpty(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	Table(&buf, nil)
	if !strings.Contains(buf.String(), "No stages ran.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, []model.Summary{{Stage: "board", Removed: 2}}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	var got []model.Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 1 || got[0].Removed != 2 {
		t.Errorf("got %+v", got)
	}
}
