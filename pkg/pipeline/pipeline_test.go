package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/backlog/pkg/backup"
	"github.com/harrisonrobin/backlog/pkg/config"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/store"
)

var now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.JiraBaseURL = "https://jira.example.com/browse"
	cfg.Clients = map[string]string{"acme": "Acme"}
	return cfg
}

func snapshot(rows ...model.Row) *model.Table {
	t := model.NewTable(
		model.JiraKey, model.JiraStatus, model.JiraType, model.JiraPriority,
		model.JiraSummary, model.JiraCreated, model.JiraResolved, model.JiraLabels,
	)
	t.Append(rows...)
	return t
}

func task(key, status, priority, created, resolved, label string) model.Row {
	return model.Row{
		model.JiraKey:      key,
		model.JiraStatus:   status,
		model.JiraType:     "Bug",
		model.JiraPriority: priority,
		model.JiraSummary:  "summary of " + key,
		model.JiraCreated:  created,
		model.JiraResolved: resolved,
		model.JiraLabels:   label,
	}
}

func newRunner(mem *store.Memory, snap *model.Table) *Runner {
	r := New(mem, nil, testConfig(), snap)
	r.Now = func() time.Time { return now }
	return r
}

func keys(t *model.Table) []string {
	var out []string
	for _, r := range t.Rows {
		out = append(out, r[model.ColTicketID])
	}
	return out
}

func TestRunAllStages(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	snap := snapshot(
		task("ABC-1", "To Do", "Blocker", "2024-01-01 09:00", "", "acme-prod"),
		task("PLUG-2", "In Progress", "Major", "2024-01-10 09:00", "", ""),
		task("ABC-3", "Done", "Minor", "2024-01-02 09:00", "2024-01-05 09:00", ""),
	)

	sums, err := newRunner(mem, snap).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(sums) != len(Stages) {
		t.Fatalf("expected %d summaries, got %d", len(Stages), len(sums))
	}
	if sums[0].Stage != "append" || sums[0].Created != 3 {
		t.Errorf("append summary = %+v", sums[0])
	}

	db, _ := mem.Read(ctx, config.StoreDatabase)
	if db.Len() != 3 {
		t.Fatalf("expected 3 database rows, got %d", db.Len())
	}
	idx := db.Index(model.ColTicket)
	if got := db.Rows[idx["PLUG-2"]][model.ColCategory]; got != "Plugin" {
		t.Errorf("PLUG-2 category = %q", got)
	}
	if got := db.Rows[idx["ABC-1"]][model.ColClient]; got != "Acme" {
		t.Errorf("ABC-1 client = %q", got)
	}

	// The plugin task is synced, the backend task is backfilled.
	b, _ := mem.Read(ctx, config.StoreBoard)
	if got := strings.Join(keys(b), ","); got != "PLUG-2,ABC-1" {
		t.Fatalf("board = %s", got)
	}
	link := b.Rows[1][model.ColBoardTicket]
	if link != `=HYPERLINK("https://jira.example.com/browse/ABC-1","ABC-1")` {
		t.Errorf("board link = %s", link)
	}

	// Second run: ABC-1 is resolved, ABC-3 was marked done on the board
	// and PLUG-2 got a comment there.
	for _, r := range b.Rows {
		if r[model.ColTicketID] == "PLUG-2" {
			r[model.ColComments] = "needs repro"
		}
	}
	b.Append(model.Row{model.ColTicketID: "ABC-3", model.ColStatus: "Done"})
	mem.Put(config.StoreBoard, b)

	snap.Rows[0][model.JiraStatus] = "Done"
	snap.Rows[0][model.JiraResolved] = "2024-01-05 12:00"

	if _, err := newRunner(mem, snap).Run(ctx); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	db, _ = mem.Read(ctx, config.StoreDatabase)
	idx = db.Index(model.ColTicket)
	abc1 := db.Rows[idx["ABC-1"]]
	if abc1[model.ColStatus] != "Done" || abc1[model.ColResolved] != "05-Jan-2024" {
		t.Errorf("ABC-1 not resolved: %+v", abc1)
	}
	if got := db.Rows[idx["PLUG-2"]][model.ColComments]; got != "needs repro" {
		t.Errorf("comment not written back, got %q", got)
	}

	b, _ = mem.Read(ctx, config.StoreBoard)
	if got := strings.Join(keys(b), ","); got != "PLUG-2" {
		t.Errorf("board after second run = %s", got)
	}

	arch, _ := mem.Read(ctx, config.StoreArchive)
	if arch.Len() != 1 {
		t.Fatalf("expected 1 archived row, got %d", arch.Len())
	}
	row := arch.Rows[0]
	if row[model.ColTicketID] != "ABC-3" || row[model.ColType] != "Bug" || row[model.ColResolved] != "05-Jan-2024" {
		t.Errorf("archived row not enriched: %+v", row)
	}
}

func TestAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	snap := snapshot(
		task("ABC-1", "To Do", "Blocker", "2024-01-01", "", ""),
		task("ABC-2", "To Do", "Minor", "2024-01-01", "", ""),
	)

	r := newRunner(mem, snap)
	if _, err := r.Run(ctx, "append"); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	sums, err := r.Run(ctx, "append")
	if err != nil {
		t.Fatalf("second append failed: %v", err)
	}
	if sums[0].Created != 0 {
		t.Errorf("second append created %d rows", sums[0].Created)
	}
	if mem.Writes(config.StoreDatabase) != 1 {
		t.Errorf("expected a single database write, got %d", mem.Writes(config.StoreDatabase))
	}
	db, _ := mem.Read(ctx, config.StoreDatabase)
	if db.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", db.Len())
	}
}

func TestAppendSchemaMismatchContinues(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	broken := model.NewTable("Key")
	broken.Append(model.Row{"Key": "ABC-1"})
	mem.Put(config.StoreDatabase, broken)

	sums, err := newRunner(mem, snapshot(task("ABC-2", "To Do", "Major", "2024-01-01", "", ""))).Run(ctx, "append")
	if err != nil {
		t.Fatalf("schema mismatch should not fail the run: %v", err)
	}
	if sums[0].Created != 0 || mem.Writes(config.StoreDatabase) != 0 {
		t.Errorf("nothing should be written, got %+v", sums[0])
	}
}

func TestArchiveFailureLeavesBoardUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	b := model.NewTable(model.BoardColumns...)
	b.Append(
		model.Row{model.ColTicketID: "ABC-1", model.ColStatus: "Done"},
		model.Row{model.ColTicketID: "ABC-2", model.ColStatus: "To Do"},
	)
	mem.Put(config.StoreBoard, b)
	mem.FailWrites(config.StoreArchive, 1)

	journal, err := backup.NewJournal(t.TempDir())
	if err != nil {
		t.Fatalf("NewJournal failed: %v", err)
	}
	r := newRunner(mem, nil)
	r.Journal = journal

	if _, err := r.Run(ctx, "archive"); err == nil {
		t.Fatal("expected the archive stage to fail")
	}

	got, _ := mem.Read(ctx, config.StoreBoard)
	if got.Len() != 2 || mem.Writes(config.StoreBoard) != 0 {
		t.Errorf("board changed after failed archive: %d rows, %d writes", got.Len(), mem.Writes(config.StoreBoard))
	}
	arch, _ := mem.Read(ctx, config.StoreArchive)
	if arch.Len() != 0 {
		t.Errorf("archive should be restored to empty, got %d rows", arch.Len())
	}
	if len(journal.Pending()) != 0 {
		t.Errorf("journal should be cleared after a clean rollback")
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	r := newRunner(mem, snapshot(task("ABC-1", "To Do", "Blocker", "2024-01-01", "", "")))
	r.DryRun = true

	sums, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sums[0].Created != 1 {
		t.Errorf("dry run should still report, got %+v", sums[0])
	}
	for _, id := range []string{config.StoreDatabase, config.StoreBoard, config.StoreArchive} {
		if n := mem.Writes(id); n != 0 {
			t.Errorf("store %s written %d times", id, n)
		}
	}
}

func TestUnknownStage(t *testing.T) {
	_, err := newRunner(store.NewMemory(), nil).Run(context.Background(), "append", "nope")
	if !errors.Is(err, ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestUnresolvedTasksReadNotApplicable(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	r := newRunner(mem, snapshot(task("ABC-1", "To Do", "Blocker", "2024-01-01", "", "")))

	if _, err := r.Run(ctx, "append", "resolved"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	db, _ := mem.Read(ctx, config.StoreDatabase)
	if got := db.Rows[0][model.ColDaysToDone]; got != "N/A" {
		t.Errorf("days to complete = %q, want N/A", got)
	}
}

func TestBoardStageWritesStaleLinks(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	db := model.NewTable(model.DatabaseColumns...)
	db.Append(model.Row{model.ColTicket: "ABC-1", model.ColStatus: "To Do"})
	mem.Put(config.StoreDatabase, db)
	b := model.NewTable(model.BoardColumns...)
	b.Append(model.Row{
		model.ColBoardTicket: `=HYPERLINK("https://old.example.com/ABC-1","ABC-1")`,
		model.ColStatus:      "To Do",
	})
	mem.Put(config.StoreBoard, b)

	sums, err := newRunner(mem, nil).Run(ctx, "board")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sums[0].Updated != 1 || mem.Writes(config.StoreBoard) != 1 {
		t.Fatalf("stale link not written: %+v, %d writes", sums[0], mem.Writes(config.StoreBoard))
	}
	got, _ := mem.Read(ctx, config.StoreBoard)
	row := got.Rows[0]
	if row[model.ColTicketID] != "ABC-1" {
		t.Errorf("ticket id = %q", row[model.ColTicketID])
	}
	if row[model.ColBoardTicket] != `=HYPERLINK("https://jira.example.com/browse/ABC-1","ABC-1")` {
		t.Errorf("link = %s", row[model.ColBoardTicket])
	}
}

func TestSyncTeamWritesPlatformAndVersion(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	db := model.NewTable(model.DatabaseColumns...)
	db.Append(model.Row{model.ColTicket: "PLUG-1", model.ColStatus: "To Do", model.ColCategory: "Plugin"})
	mem.Put(config.StoreDatabase, db)
	b := model.NewTable(model.BoardColumns...)
	b.Append(model.Row{
		model.ColTicketID:      "PLUG-1",
		model.ColStatus:        "To Do",
		model.ColBoardPlatform: "iOS",
		model.ColBoardVersion:  "2.1",
	})
	mem.Put(config.StoreBoard, b)

	if _, err := newRunner(mem, nil).Run(ctx, "sync-team"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got, _ := mem.Read(ctx, config.StoreDatabase)
	n := len(model.DatabaseColumns)
	if len(got.Columns) < n+2 || got.Columns[n-1] != model.DatabaseColumns[n-1] {
		t.Errorf("extra columns should follow the fixed schema: %v", got.Columns)
	}
	row := got.Rows[0]
	if row[model.ColBoardPlatform] != "iOS" || row[model.ColBoardVersion] != "2.1" {
		t.Errorf("platform/version not written back: %+v", row)
	}
}
