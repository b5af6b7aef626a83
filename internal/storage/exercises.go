package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftplan/internal/interval"
	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// FetchDayExercises returns the exercises on a day with their library names.
func (db *DB) FetchDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT e.id, e.day_id, e.exercise_def_id, d.name,
		 e.sets, e.reps, e.rir, e.rpe, e.notes, e.exercise_number
		 FROM day_exercises e
		 JOIN exercise_defs d ON d.id = e.exercise_def_id
		 WHERE e.day_id = $1
		 ORDER BY e.exercise_number NULLS LAST, e.created_at`, dayID)
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
func (db *DB) InsertExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	e.ID = uuid.New()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO day_exercises (id, day_id, exercise_def_id, sets, reps, rir, rpe, notes, exercise_number)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.DayID, e.ExerciseDefID,
		interval.Format(e.Sets), interval.Format(e.Reps), interval.Format(e.RIR), interval.Format(e.RPE),
		e.Notes, e.Number)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("inserting day exercise: %w", err)
	}
	return e, nil
}

// UpdateExercise overwrites the prescription and number of an exercise.
func (db *DB) UpdateExercise(ctx context.Context, e models.Exercise) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE day_exercises SET
		 sets = $2, reps = $3, rir = $4, rpe = $5, notes = $6, exercise_number = $7
		 WHERE id = $1`,
		e.ID, interval.Format(e.Sets), interval.Format(e.Reps), interval.Format(e.RIR), interval.Format(e.RPE),
		e.Notes, e.Number)
	if err != nil {
		return fmt.Errorf("updating day exercise %s: %w", e.ID, err)
	}
	return nil
}

// UpdateExerciseNumber sets only the exercise number.
func (db *DB) UpdateExerciseNumber(ctx context.Context, exerciseID uuid.UUID, number int) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE day_exercises SET exercise_number = $2 WHERE id = $1`, exerciseID, number)
	if err != nil {
		return fmt.Errorf("renumbering day exercise %s: %w", exerciseID, err)
	}
	return nil
}

// DeleteExercise removes an exercise from its day.
func (db *DB) DeleteExercise(ctx context.Context, exerciseID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM day_exercises WHERE id = $1`, exerciseID); err != nil {
		return fmt.Errorf("deleting day exercise %s: %w", exerciseID, err)
	}
	return nil
}
