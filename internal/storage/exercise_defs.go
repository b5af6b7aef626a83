package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// ListExerciseDefs returns the exercise library ordered by name.
func (db *DB) ListExerciseDefs(ctx context.Context) ([]models.ExerciseDef, error) {
	rows, err := db.Pool.Query(ctx,
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
func (db *DB) CreateExerciseDef(ctx context.Context, name, equipment string) (models.ExerciseDef, error) {
	d := models.ExerciseDef{ID: uuid.New(), Name: name, Equipment: equipment}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_defs (id, name, equipment) VALUES ($1, $2, $3)`,
		d.ID, name, equipment)
	if err != nil {
		return models.ExerciseDef{}, fmt.Errorf("inserting exercise def: %w", err)
	}
	return d, nil
}
