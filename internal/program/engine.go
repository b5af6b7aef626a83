package program

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// Status is the fate of one operation in a batch.
type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to the operation at Index.
type Outcome struct {
	Index  int    `json:"index"`
	Target Target `json:"target"`
	Op     Kind   `json:"op"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Result is the outcome of one Apply call.
type Result struct {
	Outcomes   []Outcome   `json:"outcomes"`
	Reconciled []DayReport `json:"reconciled"`
	Applied    int         `json:"applied"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
}

// Engine applies edit batches to programs held in a Store.
type Engine struct {
	store      Store
	log        *slog.Logger
	metrics    *Metrics
	reconciler *Reconciler
}

// New creates an Engine writing through store.
func New(store Store, log *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		log:        log,
		reconciler: NewReconciler(store, log),
	}
}

// SetMetrics attaches collectors to the engine and its reconciler.
func (e *Engine) SetMetrics(m *Metrics) {
	e.metrics = m
	e.reconciler.metrics = m
}

// Apply runs ops against the program in order, then renumbers every day whose
// exercises changed. Individual operations that cannot be resolved or whose
// writes fail are recorded in the result and do not stop the batch. The only
// error returned is a failure to read the program tree up front.
func (e *Engine) Apply(ctx context.Context, userID int, programID uuid.UUID, ops []Operation, defs []models.ExerciseDef) (*Result, error) {
	start := time.Now()

	weeks, err := e.store.FetchProgramTree(ctx, programID, userID)
	if err != nil {
		return nil, fmt.Errorf("reading program tree: %w", err)
	}

	b := newBatch(e.store, programID, weeks, NewDirectory(defs))
	result := &Result{Outcomes: make([]Outcome, 0, len(ops))}

	for i, op := range ops {
		out := Outcome{Index: i, Target: op.Target(), Op: op.Kind(), Status: StatusApplied}
		if err := b.apply(ctx, op); err != nil {
			out.Reason = err.Error()
			switch {
			case errors.Is(err, ErrMissingField):
				out.Status = StatusSkipped
				e.log.Warn("operation skipped", "index", i, "target", out.Target, "op", out.Op, "reason", out.Reason)
			case isSkip(err):
				out.Status = StatusSkipped
				e.log.Debug("operation skipped", "index", i, "target", out.Target, "op", out.Op, "reason", out.Reason)
			default:
				out.Status = StatusFailed
				e.log.Error("operation failed", "index", i, "target", out.Target, "op", out.Op, "error", err)
			}
		}
		result.record(out)
		e.metrics.observeOutcome(out)
	}

	if len(b.touched) > 0 {
		result.Reconciled = e.reconciler.Run(ctx, b.touched)
	}

	e.metrics.observeBatch(time.Since(start))
	e.log.Info("edit batch applied",
		"program_id", programID,
		"operations", len(ops),
		"applied", result.Applied,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"days_reconciled", len(result.Reconciled),
		"duration", time.Since(start).String(),
	)
	return result, nil
}

func (r *Result) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusApplied:
		r.Applied++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}
