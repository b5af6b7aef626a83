package program

import (
	"context"
	"fmt"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// batch is the request-scoped state of one Apply call. Operations run through
// it strictly in order, since later operations may address weeks and days
// created by earlier ones.
type batch struct {
	store     Store
	programID uuid.UUID

	index *Index
	cache *DayCache
	dir   *Directory

	touched    []uuid.UUID
	touchedSet map[uuid.UUID]bool
}

func newBatch(store Store, programID uuid.UUID, weeks []models.Week, dir *Directory) *batch {
	return &batch{
		store:      store,
		programID:  programID,
		index:      NewIndex(weeks),
		cache:      NewDayCache(store.FetchDayExercises),
		dir:        dir,
		touchedSet: make(map[uuid.UUID]bool),
	}
}

// apply runs one operation. A nil error means it was applied; skip reasons are
// the sentinel errors in store.go; anything else is a persistence failure.
func (b *batch) apply(ctx context.Context, op Operation) error {
	switch o := op.(type) {
	case AddWeek:
		return b.addWeek(ctx, o)
	case DeleteWeek:
		return b.deleteWeek(ctx, o)
	case AddDay:
		return b.addDay(ctx, o)
	case DeleteDay:
		return b.deleteDay(ctx, o)
	case AddExercise:
		return b.addExercise(ctx, o)
	case EditExercise:
		return b.editExercise(ctx, o)
	case DeleteExercise:
		return b.deleteExercise(ctx, o)
	case ReorderExercise:
		return b.reorderExercise(ctx, o)
	case Unsupported:
		return fmt.Errorf("%w: %s", ErrUnsupported, o.Reason)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, op)
	}
}

func (b *batch) touch(dayID uuid.UUID) {
	if b.touchedSet[dayID] {
		return
	}
	b.touchedSet[dayID] = true
	b.touched = append(b.touched, dayID)
}

func (b *batch) addWeek(ctx context.Context, o AddWeek) error {
	week, err := b.store.InsertWeek(ctx, b.programID, o.WeekNumber)
	if err != nil {
		return fmt.Errorf("inserting week %d: %w", o.WeekNumber, err)
	}
	week.Days = nil
	b.index.SetWeek(week)
	return nil
}

func (b *batch) deleteWeek(ctx context.Context, o DeleteWeek) error {
	week, ok := b.index.Week(o.WeekNumber)
	if !ok {
		return fmt.Errorf("%w: %d", ErrWeekNotFound, o.WeekNumber)
	}
	if err := b.store.DeleteWeek(ctx, week.ID); err != nil {
		return fmt.Errorf("deleting week %d: %w", o.WeekNumber, err)
	}
	for _, d := range week.Days {
		b.cache.Invalidate(d.ID)
	}
	b.index.DeleteWeek(o.WeekNumber)
	return nil
}

func (b *batch) addDay(ctx context.Context, o AddDay) error {
	week, ok := b.index.Week(o.WeekNumber)
	if !ok {
		return fmt.Errorf("%w: %d", ErrWeekNotFound, o.WeekNumber)
	}
	day, err := b.store.InsertDay(ctx, week.ID, o.DayName)
	if err != nil {
		return fmt.Errorf("inserting day %q: %w", o.DayName, err)
	}
	b.index.AppendDay(week, day)
	b.cache.Seed(day.ID, nil)
	return nil
}

func (b *batch) deleteDay(ctx context.Context, o DeleteDay) error {
	week, day, err := b.resolveDay(o.DayRef)
	if err != nil {
		return err
	}
	if err := b.store.DeleteDay(ctx, day.ID); err != nil {
		return fmt.Errorf("deleting day %q: %w", o.DayName, err)
	}
	b.cache.Invalidate(day.ID)
	b.index.RemoveDay(week, day.ID)
	return nil
}

func (b *batch) addExercise(ctx context.Context, o AddExercise) error {
	if o.Sets == nil || o.Reps == nil {
		return fmt.Errorf("%w: add %q needs sets and reps", ErrMissingField, o.ExerciseName)
	}
	day, defID, err := b.resolveExercise(o.ExerciseRef)
	if err != nil {
		return err
	}

	notes := ""
	if o.Notes != nil {
		notes = *o.Notes
	}
	inserted, err := b.store.InsertExercise(ctx, models.Exercise{
		DayID:         day.ID,
		ExerciseDefID: defID,
		Name:          b.dir.Name(defID),
		Sets:          o.Sets,
		Reps:          o.Reps,
		RIR:           o.RIR,
		RPE:           o.RPE,
		Notes:         notes,
		Number:        o.Order,
	})
	if err != nil {
		return fmt.Errorf("inserting exercise %q: %w", o.ExerciseName, err)
	}

	b.cache.Patch(day.ID, appendExercise(inserted))
	b.touch(day.ID)
	return nil
}

func (b *batch) editExercise(ctx context.Context, o EditExercise) error {
	day, current, err := b.findExercise(ctx, o.ExerciseRef)
	if err != nil {
		return err
	}

	updated := current
	if o.Sets != nil {
		updated.Sets = o.Sets
	}
	if o.Reps != nil {
		updated.Reps = o.Reps
	}
	if o.RIR != nil {
		updated.RIR = o.RIR
	}
	if o.RPE != nil {
		updated.RPE = o.RPE
	}
	if o.Notes != nil {
		updated.Notes = *o.Notes
	}
	if o.Order != nil {
		updated.Number = o.Order
	}

	if err := b.store.UpdateExercise(ctx, updated); err != nil {
		return fmt.Errorf("updating exercise %q: %w", o.ExerciseName, err)
	}
	b.cache.Patch(day.ID, replaceExercise(updated))
	b.touch(day.ID)
	return nil
}

func (b *batch) deleteExercise(ctx context.Context, o DeleteExercise) error {
	day, current, err := b.findExercise(ctx, o.ExerciseRef)
	if err != nil {
		return err
	}
	if err := b.store.DeleteExercise(ctx, current.ID); err != nil {
		return fmt.Errorf("deleting exercise %q: %w", o.ExerciseName, err)
	}
	b.cache.Patch(day.ID, removeExercise(current.ID))
	b.touch(day.ID)
	return nil
}

func (b *batch) reorderExercise(ctx context.Context, o ReorderExercise) error {
	if o.Order == nil {
		return fmt.Errorf("%w: reorder %q needs order", ErrMissingField, o.ExerciseName)
	}
	day, current, err := b.findExercise(ctx, o.ExerciseRef)
	if err != nil {
		return err
	}
	if err := b.store.UpdateExerciseNumber(ctx, current.ID, *o.Order); err != nil {
		return fmt.Errorf("reordering exercise %q: %w", o.ExerciseName, err)
	}
	n := *o.Order
	current.Number = &n
	b.cache.Patch(day.ID, replaceExercise(current))
	b.touch(day.ID)
	return nil
}

func (b *batch) resolveDay(ref DayRef) (*models.Week, models.Day, error) {
	week, ok := b.index.Week(ref.WeekNumber)
	if !ok {
		return nil, models.Day{}, fmt.Errorf("%w: %d", ErrWeekNotFound, ref.WeekNumber)
	}
	day, ok := b.index.FindDay(week, ref.DayName)
	if !ok {
		return nil, models.Day{}, fmt.Errorf("%w: week %d %q", ErrDayNotFound, ref.WeekNumber, ref.DayName)
	}
	return week, day, nil
}

func (b *batch) resolveExercise(ref ExerciseRef) (models.Day, uuid.UUID, error) {
	_, day, err := b.resolveDay(ref.DayRef)
	if err != nil {
		return models.Day{}, uuid.Nil, err
	}
	defID, ok := b.dir.Resolve(ref.ExerciseName)
	if !ok {
		return models.Day{}, uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownExercise, ref.ExerciseName)
	}
	return day, defID, nil
}

// findExercise resolves ref to the matching exercise currently on the day.
func (b *batch) findExercise(ctx context.Context, ref ExerciseRef) (models.Day, models.Exercise, error) {
	day, defID, err := b.resolveExercise(ref)
	if err != nil {
		return models.Day{}, models.Exercise{}, err
	}
	list, err := b.cache.Get(ctx, day.ID)
	if err != nil {
		return models.Day{}, models.Exercise{}, fmt.Errorf("loading exercises for %q: %w", ref.DayName, err)
	}
	for _, e := range list {
		if e.ExerciseDefID == defID {
			return day, e, nil
		}
	}
	return models.Day{}, models.Exercise{}, fmt.Errorf("%w: %q in %q", ErrExerciseNotFound, ref.ExerciseName, ref.DayName)
}
