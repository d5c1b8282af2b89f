package jira

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrisonrobin/backlog/pkg/model"
)

const sample = "\ufeffSummary,Issue key,Issue Type,Status,Priority,Created,Resolved,Labels,Labels\n" +
	"Player crashes,ABC-1,Bug,To Do,Blocker,2024-01-01 10:00:00,,rtve,smarttv\n" +
	"\"Login, again\",ABC-2,Bug,Done,Minor,05/Mar/24 9:15 AM,06/Mar/24 9:15 AM,bbc\n"

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if tbl.Columns[0] != "Summary" {
		t.Errorf("byte order mark not stripped: %q", tbl.Columns[0])
	}
	if !tbl.HasColumn("Labels.1") {
		t.Errorf("repeated Labels column not renamed: %v", tbl.Columns)
	}

	first := tbl.Rows[0]
	if first[model.JiraKey] != "ABC-1" || first["Labels.1"] != "smarttv" {
		t.Errorf("unexpected first row %+v", first)
	}
	second := tbl.Rows[1]
	if second[model.JiraSummary] != "Login, again" {
		t.Errorf("quoted field = %q", second[model.JiraSummary])
	}
	if second["Labels.1"] != "" {
		t.Errorf("short record should leave Labels.1 empty, got %q", second["Labels.1"])
	}
}

func TestReadFileMissing(t *testing.T) {
	tbl, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("missing export should not fail: %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("expected empty snapshot")
	}
}

func TestReadFilesFirstWins(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(a, []byte("Issue key,Status\nABC-1,To Do\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("Issue key,Status,Priority\nABC-1,Done,Major\nABC-2,To Do,Minor\n"), 0600); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadFiles([]string{a, b})
	if err != nil {
		t.Fatalf("ReadFiles failed: %v", err)
	}
	if tbl.Len() != 2 || tbl.Rows[0][model.JiraStatus] != "To Do" {
		t.Errorf("unexpected merge %+v", tbl.Rows)
	}
	if !tbl.HasColumn(model.JiraPriority) {
		t.Errorf("columns of later exports missing: %v", tbl.Columns)
	}
}
