package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// InsertWeek adds a week to a program. The (program_id, week_number) unique
// constraint rejects duplicates.
func (db *DB) InsertWeek(ctx context.Context, programID uuid.UUID, number int) (models.Week, error) {
	w := models.Week{ID: uuid.New(), ProgramID: programID, Number: number}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO program_weeks (id, program_id, week_number) VALUES ($1, $2, $3)`,
		w.ID, programID, number)
	if err != nil {
		return models.Week{}, fmt.Errorf("inserting week: %w", err)
	}
	return w, nil
}

// DeleteWeek removes a week; its days and their exercises cascade.
func (db *DB) DeleteWeek(ctx context.Context, weekID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM program_weeks WHERE id = $1`, weekID); err != nil {
		return fmt.Errorf("deleting week %s: %w", weekID, err)
	}
	return nil
}

// InsertDay adds a named day to a week.
func (db *DB) InsertDay(ctx context.Context, weekID uuid.UUID, name string) (models.Day, error) {
	d := models.Day{ID: uuid.New(), WeekID: weekID, Name: name}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO program_days (id, week_id, day_name) VALUES ($1, $2, $3)`,
		d.ID, weekID, name)
	if err != nil {
		return models.Day{}, fmt.Errorf("inserting day: %w", err)
	}
	return d, nil
}

// DeleteDay removes a day; its exercises cascade.
func (db *DB) DeleteDay(ctx context.Context, dayID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM program_days WHERE id = $1`, dayID); err != nil {
		return fmt.Errorf("deleting day %s: %w", dayID, err)
	}
	return nil
}
