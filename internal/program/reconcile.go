package program

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxParallelDays bounds how many days reconcile at once so a large batch does
// not drain the connection pool.
const maxParallelDays = 8

// Renumber is one planned exercise_number write.
type Renumber struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	From       *int      `json:"from"`
	To         int       `json:"to"`
}

// DayReport describes the reconciliation of one day.
type DayReport struct {
	DayID     uuid.UUID `json:"day_id"`
	Exercises int       `json:"exercises"`
	Planned   int       `json:"planned"`
	Written   int       `json:"written"`
	Errors    []string  `json:"errors,omitempty"`
}

// PlanRenumber orders list by (exercise_number ascending, missing numbers
// last, exercise_def_id ascending) and returns the writes needed to number it
// 1..N. Rows that already hold their target number are left out, so planning
// an already normalized day yields nothing.
func PlanRenumber(list []models.Exercise) []Renumber {
	sorted := append([]models.Exercise(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Number != nil && b.Number != nil && *a.Number != *b.Number:
			return *a.Number < *b.Number
		case a.Number != nil && b.Number == nil:
			return true
		case a.Number == nil && b.Number != nil:
			return false
		}
		return a.ExerciseDefID.String() < b.ExerciseDefID.String()
	})

	var plan []Renumber
	for i, e := range sorted {
		want := i + 1
		if e.Number != nil && *e.Number == want {
			continue
		}
		plan = append(plan, Renumber{ExerciseID: e.ID, From: e.Number, To: want})
	}
	return plan
}

// Reconciler restores contiguous exercise numbering on touched days.
type Reconciler struct {
	store   Store
	log     *slog.Logger
	metrics *Metrics
}

// NewReconciler creates a Reconciler writing through store.
func NewReconciler(store Store, log *slog.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Run reconciles every day in parallel and returns one report per day, in the
// order given. Failures are recorded in the reports and logged; they never
// cancel other days. Cancelling ctx stops days that have not started.
func (r *Reconciler) Run(ctx context.Context, dayIDs []uuid.UUID) []DayReport {
	reports := make([]DayReport, len(dayIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDays)
	for i, dayID := range dayIDs {
		g.Go(func() error {
			reports[i] = r.reconcileDay(gctx, dayID)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

func (r *Reconciler) reconcileDay(ctx context.Context, dayID uuid.UUID) DayReport {
	report := DayReport{DayID: dayID}
	if err := ctx.Err(); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	list, err := r.store.FetchDayExercises(ctx, dayID)
	if err != nil {
		r.log.Error("reconcile: loading day", "day_id", dayID, "error", err)
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	report.Exercises = len(list)

	plan := PlanRenumber(list)
	report.Planned = len(plan)
	if len(plan) == 0 {
		return report
	}

	// Each write targets a different row, so they may land in any order.
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range plan {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.store.UpdateExerciseNumber(ctx, p.ExerciseID, p.To)
			r.metrics.observeRenumber(err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.log.Error("reconcile: renumbering exercise",
					"day_id", dayID, "exercise_id", p.ExerciseID, "to", p.To, "error", err)
				report.Errors = append(report.Errors, err.Error())
				return
			}
			report.Written++
		}()
	}
	wg.Wait()

	r.log.Debug("reconciled day", "day_id", dayID, "exercises", report.Exercises, "written", report.Written)
	return report
}
