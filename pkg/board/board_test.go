package board

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/harrisonrobin/backlog/pkg/model"
)

const baseURL = "https://tracker.example.com/browse/"

func TestPrune(t *testing.T) {
	db := model.NewTable(model.DatabaseColumns...)
	db.Append(
		model.Row{model.ColTicket: "A-1", model.ColStatus: "In Progress"},
		model.Row{model.ColTicket: "A-2", model.ColStatus: "Done"},
		model.Row{model.ColTicket: "A-3", model.ColStatus: "To Do"},
	)
	board := model.NewTable(model.BoardColumns...)
	board.Append(
		model.Row{model.ColBoardTicket: `=HYPERLINK("old/A-1","A-1")`, model.ColStatus: "To Do"},
		model.Row{model.ColTicketID: "A-2", model.ColStatus: "In Progress"},
		model.Row{model.ColTicketID: "A-3", model.ColStatus: "To Do"},
		model.Row{model.ColTicketID: "X-9", model.ColStatus: "To Do"},
	)

	// A-3 and X-9 only lacked their links.
	sum := Prune(board, db, baseURL)
	if sum.Updated != 4 || sum.Removed != 1 || sum.Skipped != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if board.Len() != 3 {
		t.Fatalf("expected 3 rows left, got %d", board.Len())
	}
	first := board.Rows[0]
	if first[model.ColStatus] != "In Progress" || first[model.ColTicketID] != "A-1" {
		t.Errorf("A-1 not refreshed: %+v", first)
	}
	want := `=HYPERLINK("` + baseURL + `A-1","A-1")`
	if first[model.ColBoardTicket] != want {
		t.Errorf("hyperlink = %q, want %q", first[model.ColBoardTicket], want)
	}

	before := board.Clone()
	again := Prune(board, db, baseURL)
	if again.Updated != 0 || again.Removed != 0 || again.Skipped != 3 {
		t.Errorf("second pass changed the board: %+v", again)
	}
	for i := range before.Rows {
		if before.Rows[i][model.ColBoardTicket] != board.Rows[i][model.ColBoardTicket] {
			t.Errorf("relink is not idempotent at row %d", i)
		}
	}
}

func bigDatabase(n int) *model.Table {
	db := model.NewTable(model.DatabaseColumns...)
	prios := []string{"1-Trivial", "2-Minor", "3-Major", "4-Critical", "5-Blocker"}
	for i := 0; i < n; i++ {
		db.Append(model.Row{
			model.ColTicket:     fmt.Sprintf("VID-%d", i),
			model.ColStatus:     "To Do",
			model.ColPriority:   prios[i%len(prios)],
			model.ColSLAOverdue: strconv.Itoa(i),
			model.ColCategory:   "Backend",
		})
	}
	return db
}

func TestBackfillCapacityAndIdempotence(t *testing.T) {
	db := bigDatabase(60)
	board := model.NewTable(model.BoardColumns...)

	sum := Backfill(board, db, BackfillOptions{BaseURL: baseURL})
	if sum.Created != DefaultCapacity {
		t.Fatalf("expected %d inserts, got %d", DefaultCapacity, sum.Created)
	}
	if board.Len() != DefaultCapacity {
		t.Fatalf("board has %d rows", board.Len())
	}
	if got := board.Rows[0][model.ColTicketID]; got != "VID-59" {
		t.Errorf("expected the most overdue blocker first, got %s", got)
	}

	again := Backfill(board, db, BackfillOptions{BaseURL: baseURL})
	if again.Created != 0 || board.Len() != DefaultCapacity {
		t.Errorf("second pass inserted rows: %+v", again)
	}
	seen := map[string]bool{}
	for _, r := range board.Rows {
		k := r[model.ColTicketID]
		if seen[k] {
			t.Fatalf("duplicate key %s on board", k)
		}
		seen[k] = true
	}
}

func TestBackfillFilters(t *testing.T) {
	db := model.NewTable(model.DatabaseColumns...)
	db.Append(
		model.Row{model.ColTicket: "PLUG-1", model.ColStatus: "To Do", model.ColPriority: "5-Blocker", model.ColCategory: "Plugin"},
		model.Row{model.ColTicket: "OPS-1", model.ColStatus: "To Do", model.ColPriority: "5-Blocker"},
		model.Row{model.ColTicket: "VID-1", model.ColStatus: "Done", model.ColPriority: "5-Blocker"},
		model.Row{model.ColTicket: "VID-2", model.ColStatus: "In Progress", model.ColPriority: "2-Minor", model.ColSLAOverdue: "NaN"},
	)
	board := model.NewTable(model.BoardColumns...)

	sum := Backfill(board, db, BackfillOptions{
		ExcludedTeam:     "Plugin",
		ExcludedPrefixes: []string{"OPS-"},
		BaseURL:          baseURL,
	})
	if sum.Created != 1 || board.Rows[0][model.ColTicketID] != "VID-2" {
		t.Fatalf("expected only VID-2, got %+v", board.Rows)
	}
	if sum.Sanitized != 1 || board.Rows[0][model.ColSLAOverdue] != "" {
		t.Errorf("NaN cell not sanitized: %+v", board.Rows[0])
	}
}

func TestRankIsStable(t *testing.T) {
	rows := []model.Row{
		{model.ColTicket: "A", model.ColPriority: "3-Major", model.ColSLAOverdue: "2"},
		{model.ColTicket: "B", model.ColPriority: "3-Major", model.ColSLAOverdue: "2"},
		{model.ColTicket: "C", model.ColPriority: "5-Blocker", model.ColSLAOverdue: "0"},
		{model.ColTicket: "D", model.ColPriority: "3-Major", model.ColSLAOverdue: "7"},
	}
	Rank(rows)
	var got string
	for _, r := range rows {
		got += r[model.ColTicket]
	}
	if got != "CDAB" {
		t.Errorf("expected CDAB, got %s", got)
	}
}

func TestRelinkCountsStaleRows(t *testing.T) {
	board := model.NewTable(model.BoardColumns...)
	board.Append(
		model.Row{model.ColBoardTicket: `=HYPERLINK("https://old.example.com/A-1","A-1")`},
		model.Row{model.ColTicketID: "A-2", model.ColBoardTicket: `=HYPERLINK("` + baseURL + `A-2","A-2")`},
	)
	if n := Relink(board, baseURL); n != 1 {
		t.Errorf("expected 1 relinked row, got %d", n)
	}
	if board.Rows[0][model.ColTicketID] != "A-1" {
		t.Errorf("ticket id not filled: %+v", board.Rows[0])
	}
	if n := Relink(board, baseURL); n != 0 {
		t.Errorf("second relink changed %d rows", n)
	}
}
