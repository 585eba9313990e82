// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/danielhkuo/surveyview/fingerprint"
	"github.com/danielhkuo/surveyview/table"
	"github.com/danielhkuo/surveyview/viewquery"
)

var (
	ErrCheckpointWrite = errors.New("view rebuilt but checkpoint write failed")
	ErrInvalidViewName = errors.New("invalid view name")
	ErrEmptyViewQuery  = errors.New("empty view query")
)

var validViewName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Executor runs permitted selects and trusted view DDL
type Executor interface {
	viewquery.Selecter
	ExecDDL(ctx context.Context, stmt string) error
}

// CheckpointStore holds the fingerprint the view was last built from
type CheckpointStore interface {
	Read() (string, bool, error)
	Write(fp string) error
}

// Outcome is the branch a reconciliation took
type Outcome int

const (
	OutcomeNoChange Outcome = iota
	OutcomeFirstCheckpoint
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoChange:
		return "no_change"
	case OutcomeFirstCheckpoint:
		return "first_checkpoint"
	case OutcomeUpdated:
		return "updated"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes one reconciliation
type Result struct {
	Outcome  Outcome
	Previous string
	Current  string
}

// Rebuilt reports whether view DDL ran
func (r Result) Rebuilt() bool {
	return r.Outcome != OutcomeNoChange
}

// Reconciler keeps the persisted view in step with live survey data
type Reconciler struct {
	exec        Executor
	checkpoints CheckpointStore
	viewName    string
	out         io.Writer
}

// New creates a Reconciler. Status lines for the user are written to out.
func New(exec Executor, checkpoints CheckpointStore, viewName string, out io.Writer) (*Reconciler, error) {
	if !validViewName.MatchString(viewName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidViewName, viewName)
	}
	if out == nil {
		out = io.Discard
	}
	return &Reconciler{exec: exec, checkpoints: checkpoints, viewName: viewName, out: out}, nil
}

// ViewName returns the view this reconciler owns
func (r *Reconciler) ViewName() string {
	return r.viewName
}

// Checkpoint returns the stored fingerprint and whether one exists
func (r *Reconciler) Checkpoint() (string, bool, error) {
	return r.checkpoints.Read()
}

// Reconcile compares data against the checkpoint and, when stale, rebuilds
// the view from viewSQL and then records the new fingerprint.
//
//	checkpoint missing          -> rebuild, write first checkpoint
//	checkpoint != fingerprint   -> rebuild, overwrite checkpoint
//	checkpoint == fingerprint   -> nothing
//
// The checkpoint is only written after CREATE VIEW succeeds.
func (r *Reconciler) Reconcile(ctx context.Context, data *table.Table, viewSQL string) (Result, error) {
	logger := slog.With("run_id", uuid.NewString(), "view", r.viewName)

	if viewSQL == "" {
		return Result{}, ErrEmptyViewQuery
	}

	live := fingerprint.Of(data)
	stored, exists, err := r.checkpoints.Read()
	if err != nil {
		return Result{}, err
	}

	result := Result{Previous: stored, Current: live}
	switch {
	case !exists:
		result.Outcome = OutcomeFirstCheckpoint
	case fingerprint.IsStale(stored, live):
		result.Outcome = OutcomeUpdated
	default:
		result.Outcome = OutcomeNoChange
		logger.Info("view is fresh", "fingerprint", live)
		fmt.Fprintf(r.out, "%s: no change\n", r.viewName)
		return result, nil
	}

	logger.Info("rebuilding view", "previous", stored, "current", live, "rows", data.Len())
	if err := r.rebuild(ctx, viewSQL); err != nil {
		logger.Error("view rebuild failed", "error", err)
		return result, err
	}

	if err := r.checkpoints.Write(live); err != nil {
		logger.Error("checkpoint write failed after rebuild", "error", err)
		return result, fmt.Errorf("%w: %w", ErrCheckpointWrite, err)
	}

	if result.Outcome == OutcomeFirstCheckpoint {
		fmt.Fprintf(r.out, "%s: created first checkpoint %s\n", r.viewName, live)
	} else {
		fmt.Fprintf(r.out, "%s: updated checkpoint from %s to %s\n", r.viewName, stored, live)
	}
	logger.Info("view rebuilt", "outcome", result.Outcome.String())

	return result, nil
}

// rebuild drops and recreates the view as two separate statements.
// DROP uses IF EXISTS so a previous half-finished rebuild can be retried.
func (r *Reconciler) rebuild(ctx context.Context, viewSQL string) error {
	drop := fmt.Sprintf("DROP VIEW IF EXISTS %s", r.viewName)
	if err := r.exec.ExecDDL(ctx, drop); err != nil {
		return fmt.Errorf("failed to drop view %s: %w", r.viewName, err)
	}

	create := fmt.Sprintf("CREATE VIEW %s AS\n%s", r.viewName, viewSQL)
	if err := r.exec.ExecDDL(ctx, create); err != nil {
		return fmt.Errorf("failed to create view %s: %w", r.viewName, err)
	}

	return nil
}

// fetch builds the dynamic view query and runs it sorted by user and survey
func (r *Reconciler) fetch(ctx context.Context) (*table.Table, string, error) {
	viewSQL, err := viewquery.Build(ctx, r.exec)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build view query: %w", err)
	}

	data, err := r.exec.ExecuteSelect(ctx, viewquery.Ordered(viewSQL))
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch survey data: %w", err)
	}

	return data, viewSQL, nil
}

// GetAllSurveyData returns live survey data, one row per (user, survey),
// sorted by user then survey. When updateView is true the persisted view is
// reconciled against the returned data as well.
func (r *Reconciler) GetAllSurveyData(ctx context.Context, updateView bool) (*table.Table, error) {
	if updateView {
		data, _, err := r.Refresh(ctx)
		return data, err
	}

	data, _, err := r.fetch(ctx)
	return data, err
}

// Refresh fetches live data and reconciles the view against it
func (r *Reconciler) Refresh(ctx context.Context) (*table.Table, Result, error) {
	data, viewSQL, err := r.fetch(ctx)
	if err != nil {
		return nil, Result{}, err
	}

	result, err := r.Reconcile(ctx, data, viewSQL)
	if err != nil {
		return data, result, err
	}
	return data, result, nil
}
