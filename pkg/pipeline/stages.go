package pipeline

import (
	"context"
	"errors"
	"log"

	"github.com/harrisonrobin/backlog/pkg/board"
	"github.com/harrisonrobin/backlog/pkg/categorize"
	"github.com/harrisonrobin/backlog/pkg/config"
	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/diff"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/policy"
	"github.com/harrisonrobin/backlog/pkg/prepare"
	"github.com/harrisonrobin/backlog/pkg/reconcile"
	"github.com/harrisonrobin/backlog/pkg/store"
)

// boardMutable lists the board cells refreshed from the database on
// tasks the board already holds.
var boardMutable = []string{
	model.ColClient,
	model.ColPriority,
	model.ColSummary,
	model.ColSLAOverdue,
	model.ColBoardTeam,
}

func appendNew(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	var sum model.Summary
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return sum, err
	}

	p := prepare.New(derive.ClientTable(r.Config.Clients), r.Config.JiraBaseURL)
	p.Now = r.now
	fresh, err := p.Prepare(r.Snapshot, db)
	if err != nil {
		if errors.Is(err, diff.ErrSchemaMismatch) {
			log.Printf("Warning: %v; no new tasks appended", err)
			return sum, nil
		}
		return sum, err
	}
	if fresh.Len() == 0 {
		return sum, nil
	}

	for _, c := range model.DatabaseColumns {
		db.EnsureColumn(c)
	}
	db.Append(fresh.Rows...)
	sum.Created = fresh.Len()
	stage(tx, config.StoreDatabase, db, &sum)
	return sum, nil
}

func refreshStatuses(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}
	sum := reconcile.RefreshStatuses(db, r.Snapshot, &policy.Gate{})
	stage(tx, config.StoreDatabase, db, &sum)
	return sum, nil
}

func refreshResolved(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}
	sum := reconcile.RefreshResolved(db, r.Snapshot, r.now())
	stage(tx, config.StoreDatabase, db, &sum)
	return sum, nil
}

func categorizeTasks(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}
	sum := categorize.New(r.Config.Prefixes, r.Config.Categories).Apply(db)
	stage(tx, config.StoreDatabase, db, &sum)
	return sum, nil
}

// syncTeam upserts the sync team's open tasks onto the board and writes
// the cells curated on the board back to the database.
func syncTeam(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}
	b, err := tx.Read(ctx, config.StoreBoard)
	if err != nil {
		return model.Summary{}, err
	}

	sum := reconcile.Upsert(db, b, reconcile.UpsertOptions{
		Match:       reconcile.TeamFilter(r.Config.Board.SyncTeam, model.ArchiveStatuses),
		Columns:     reconcile.DatabaseToBoard,
		Mutable:     boardMutable,
		BaseURL:     r.Config.JiraBaseURL,
		LegacyMatch: r.Config.LegacyMatch,
		Gate:        &policy.Gate{},
	})
	stage(tx, config.StoreBoard, b, &sum)

	// Board-curated columns outside the fixed schema go after it.
	for _, c := range reconcile.BoardToDatabase.Targets() {
		db.EnsureColumn(c)
	}
	back := reconcile.BackPropagate(b, db, reconcile.BoardToDatabase)
	stage(tx, config.StoreDatabase, db, &back)
	sum.Add(back)
	return sum, nil
}

// archive moves terminal board rows to the archive. The archive is
// written before the board, so a failed archive write never loses rows.
func archive(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	b, err := tx.Read(ctx, config.StoreBoard)
	if err != nil {
		return model.Summary{}, err
	}
	arch, err := tx.Read(ctx, config.StoreArchive)
	if err != nil {
		return model.Summary{}, err
	}
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}

	kept, archived, sum := reconcile.Relocate(b, arch, reconcile.RelocateOptions{
		Terminal: model.ArchiveStatuses,
		Columns:  reconcile.BoardToArchive,
		Lookup:   db,
		Enrich:   reconcile.DatabaseToArchive,
	})
	if sum.Removed == 0 {
		return sum, nil
	}
	sum.Sanitized += reconcile.Sanitize(archived)
	tx.Stage(config.StoreArchive, archived)
	sum.Sanitized += reconcile.Sanitize(kept)
	tx.Stage(config.StoreBoard, kept)
	return sum, nil
}

func refreshBoard(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	b, err := tx.Read(ctx, config.StoreBoard)
	if err != nil {
		return model.Summary{}, err
	}
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}
	sum := board.Prune(b, db, r.Config.JiraBaseURL)
	stage(tx, config.StoreBoard, b, &sum)
	return sum, nil
}

func backfill(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error) {
	b, err := tx.Read(ctx, config.StoreBoard)
	if err != nil {
		return model.Summary{}, err
	}
	db, err := tx.Read(ctx, config.StoreDatabase)
	if err != nil {
		return model.Summary{}, err
	}
	sum := board.Backfill(b, db, board.BackfillOptions{
		Capacity:         r.Config.Board.Capacity,
		Actionable:       model.ActionableStatuses,
		ExcludedTeam:     r.Config.Board.ExcludedTeam,
		ExcludedPrefixes: r.Config.Board.ExcludedPrefixes,
		BaseURL:          r.Config.JiraBaseURL,
		LegacyMatch:      r.Config.LegacyMatch,
	})
	// Backfill already sanitized the board.
	if changed(sum) {
		tx.Stage(config.StoreBoard, b)
	}
	return sum, nil
}
