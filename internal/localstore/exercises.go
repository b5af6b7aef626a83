package localstore

import (
	"context"
	"fmt"

	"github.com/claude/liftplan/internal/interval"
	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// FetchDayExercises returns the exercises on a day with their library names.
func (s *Store) FetchDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.day_id, e.exercise_def_id, d.name,
		 e.sets, e.reps, e.rir, e.rpe, e.notes, e.exercise_number
		 FROM day_exercises e
		 JOIN exercise_defs d ON d.id = e.exercise_def_id
		 WHERE e.day_id = ?
		 ORDER BY e.exercise_number IS NULL, e.exercise_number, e.rowid`, dayID)
	if err != nil {
		return nil, fmt.Errorf("querying day exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var (
			e                    models.Exercise
			sets, reps, rir, rpe *string
		)
		if err := rows.Scan(&e.ID, &e.DayID, &e.ExerciseDefID, &e.Name,
			&sets, &reps, &rir, &rpe, &e.Notes, &e.Number); err != nil {
			return nil, fmt.Errorf("scanning day exercise: %w", err)
		}
		e.Sets = interval.FromText(sets)
		e.Reps = interval.FromText(reps)
		e.RIR = interval.FromText(rir)
		e.RPE = interval.FromText(rpe)
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertExercise adds an exercise to a day and returns it with its new ID.
func (s *Store) InsertExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	e.ID = uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO day_exercises (id, day_id, exercise_def_id, sets, reps, rir, rpe, notes, exercise_number)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ID, e.DayID, e.ExerciseDefID,
		interval.Format(e.Sets), interval.Format(e.Reps), interval.Format(e.RIR), interval.Format(e.RPE),
		e.Notes, e.Number)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("inserting day exercise: %w", err)
	}
	return e, nil
}

// UpdateExercise overwrites the prescription and number of an exercise.
func (s *Store) UpdateExercise(ctx context.Context, e models.Exercise) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE day_exercises SET
		 sets = ?, reps = ?, rir = ?, rpe = ?, notes = ?, exercise_number = ?
		 WHERE id = ?`,
		interval.Format(e.Sets), interval.Format(e.Reps), interval.Format(e.RIR), interval.Format(e.RPE),
		e.Notes, e.Number, e.ID)
	if err != nil {
		return fmt.Errorf("updating day exercise %s: %w", e.ID, err)
	}
	return nil
}

// UpdateExerciseNumber sets only the exercise number.
func (s *Store) UpdateExerciseNumber(ctx context.Context, exerciseID uuid.UUID, number int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE day_exercises SET exercise_number = ? WHERE id = ?`, number, exerciseID)
	if err != nil {
		return fmt.Errorf("renumbering day exercise %s: %w", exerciseID, err)
	}
	return nil
}

// DeleteExercise removes an exercise from its day.
func (s *Store) DeleteExercise(ctx context.Context, exerciseID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM day_exercises WHERE id = ?`, exerciseID); err != nil {
		return fmt.Errorf("deleting day exercise %s: %w", exerciseID, err)
	}
	return nil
}

// ListExerciseDefs returns the exercise library ordered by name.
func (s *Store) ListExerciseDefs(ctx context.Context) ([]models.ExerciseDef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, equipment FROM exercise_defs ORDER BY lower(name), id`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise library: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseDef
	for rows.Next() {
		var d models.ExerciseDef
		if err := rows.Scan(&d.ID, &d.Name, &d.Equipment); err != nil {
			return nil, fmt.Errorf("scanning exercise def: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// CreateExerciseDef adds a library entry. Names are unique ignoring case.
func (s *Store) CreateExerciseDef(ctx context.Context, name, equipment string) (models.ExerciseDef, error) {
	d := models.ExerciseDef{ID: uuid.New(), Name: name, Equipment: equipment}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exercise_defs (id, name, equipment) VALUES (?, ?, ?)`,
		d.ID, name, equipment)
	if err != nil {
		return models.ExerciseDef{}, fmt.Errorf("inserting exercise def: %w", err)
	}
	return d, nil
}
