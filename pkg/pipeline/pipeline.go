// Package pipeline runs the reconciliation stages against the stores.
// Each stage reads what it needs through a staged transaction, computes
// the new tables in memory and commits them at the end, so a stage either
// rewrites all of its stores or leaves them as they were.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/harrisonrobin/backlog/pkg/config"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/reconcile"
	"github.com/harrisonrobin/backlog/pkg/store"
)

// ErrUnknownStage is returned for a stage name that is not registered.
var ErrUnknownStage = errors.New("unknown stage")

// Stage is one step of a run.
type Stage struct {
	Name  string
	Short string
	run   func(ctx context.Context, r *Runner, tx *store.Txn) (model.Summary, error)
}

// Stages lists every stage in run order.
var Stages = []Stage{
	{Name: "append", Short: "Append tracker tasks missing from the task database", run: appendNew},
	{Name: "statuses", Short: "Refresh database statuses from the tracker", run: refreshStatuses},
	{Name: "resolved", Short: "Record resolution dates and recompute SLA cells", run: refreshResolved},
	{Name: "categorize", Short: "Assign each task its owning team", run: categorizeTasks},
	{Name: "sync-team", Short: "Mirror the sync team's open tasks onto the board", run: syncTeam},
	{Name: "archive", Short: "Move finished board tasks to the archive", run: archive},
	{Name: "board", Short: "Refresh board statuses and drop closed tasks", run: refreshBoard},
	{Name: "backfill", Short: "Top up the board with the most urgent tasks", run: backfill},
}

// Lookup returns the stage called name.
func Lookup(name string) (Stage, error) {
	for _, s := range Stages {
		if s.Name == name {
			return s, nil
		}
	}
	return Stage{}, fmt.Errorf("%w: '%s'", ErrUnknownStage, name)
}

// Runner holds what the stages share.
type Runner struct {
	Store   store.Store
	Journal store.Journal
	Config  *config.Config
	// Snapshot is the merged tracker export.
	Snapshot *model.Table
	DryRun   bool
	Now      func() time.Time
}

// New creates a Runner. journal may be nil.
func New(st store.Store, journal store.Journal, cfg *config.Config, snapshot *model.Table) *Runner {
	if snapshot == nil {
		snapshot = model.NewTable()
	}
	return &Runner{
		Store:    st,
		Journal:  journal,
		Config:   cfg,
		Snapshot: snapshot,
		Now:      time.Now,
	}
}

// Run executes the named stages in the order given, or every stage when
// names is empty. It stops at the first stage that fails and returns the
// summaries of the stages that ran.
func (r *Runner) Run(ctx context.Context, names ...string) ([]model.Summary, error) {
	stages := Stages
	if len(names) > 0 {
		stages = make([]Stage, 0, len(names))
		for _, n := range names {
			s, err := Lookup(n)
			if err != nil {
				return nil, err
			}
			stages = append(stages, s)
		}
	}

	var out []model.Summary
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sum, err := r.RunStage(ctx, s)
		out = append(out, sum)
		if err != nil {
			return out, fmt.Errorf("stage '%s': %w", s.Name, err)
		}
	}
	return out, nil
}

// RunStage runs a single stage and commits what it staged.
func (r *Runner) RunStage(ctx context.Context, s Stage) (model.Summary, error) {
	tx := store.Begin(r.Store, r.Journal)
	sum, err := s.run(ctx, r, tx)
	sum.Stage = s.Name
	if err != nil {
		return sum, err
	}

	staged := tx.Staged()
	if len(staged) == 0 {
		log.Printf("%s: nothing to write", s.Name)
		return sum, nil
	}
	if r.DryRun {
		log.Printf("%s: dry run, skipping write of %v", s.Name, staged)
		return sum, nil
	}
	if err := tx.Commit(ctx); err != nil {
		return sum, err
	}
	log.Printf("%s: wrote %v", s.Name, staged)
	return sum, nil
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// stage sanitizes t and stages it when the stage changed something.
func stage(tx *store.Txn, id string, t *model.Table, sum *model.Summary) {
	sum.Sanitized += reconcile.Sanitize(t)
	if changed(*sum) {
		tx.Stage(id, t)
	}
}

func changed(s model.Summary) bool {
	return s.Created+s.Updated+s.Removed+s.Sanitized > 0
}
