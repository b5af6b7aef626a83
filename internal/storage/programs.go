package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftplan/internal/editor"
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ editor.Store = (*DB)(nil)

// ListPrograms returns a user's programs, newest first.
func (db *DB) ListPrograms(ctx context.Context, userID int) ([]models.Program, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, created_at FROM programs
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CreateProgram inserts an empty program.
func (db *DB) CreateProgram(ctx context.Context, userID int, name string) (models.Program, error) {
	p := models.Program{ID: uuid.New(), UserID: userID, Name: name}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO programs (id, user_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		p.ID, userID, name).Scan(&p.CreatedAt)
	if err != nil {
		return models.Program{}, fmt.Errorf("inserting program: %w", err)
	}
	return p, nil
}

// GetProgram returns one of the user's programs.
func (db *DB) GetProgram(ctx context.Context, programID uuid.UUID, userID int) (models.Program, error) {
	var p models.Program
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM programs WHERE id = $1 AND user_id = $2`,
		programID, userID).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Program{}, program.ErrProgramNotFound
	}
	if err != nil {
		return models.Program{}, fmt.Errorf("querying program %s: %w", programID, err)
	}
	return p, nil
}

// FetchProgramTree returns the program's weeks in number order, each with its
// days in creation order.
func (db *DB) FetchProgramTree(ctx context.Context, programID uuid.UUID, userID int) ([]models.Week, error) {
	if _, err := db.GetProgram(ctx, programID, userID); err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, program_id, week_number FROM program_weeks
		 WHERE program_id = $1
		 ORDER BY week_number`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying weeks: %w", err)
	}
	var weeks []models.Week
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var w models.Week
		if err := rows.Scan(&w.ID, &w.ProgramID, &w.Number); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning week: %w", err)
		}
		byID[w.ID] = len(weeks)
		weeks = append(weeks, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading weeks: %w", err)
	}

	rows, err = db.Pool.Query(ctx,
		`SELECT d.id, d.week_id, d.day_name
		 FROM program_days d
		 JOIN program_weeks w ON w.id = d.week_id
		 WHERE w.program_id = $1
		 ORDER BY d.created_at, d.id`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying days: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d models.Day
		if err := rows.Scan(&d.ID, &d.WeekID, &d.Name); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		if i, ok := byID[d.WeekID]; ok {
			weeks[i].Days = append(weeks[i].Days, d)
		}
	}
	return weeks, rows.Err()
}
