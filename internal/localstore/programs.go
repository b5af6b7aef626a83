package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
)

// ListPrograms returns a user's programs, newest first.
func (s *Store) ListPrograms(ctx context.Context, userID int) ([]models.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM programs
		 WHERE user_id = ?
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		var (
			p       models.Program
			created int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &created); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		p.CreatedAt = time.Unix(0, created).UTC()
		result = append(result, p)
	}
	return result, rows.Err()
}

// CreateProgram inserts an empty program.
func (s *Store) CreateProgram(ctx context.Context, userID int, name string) (models.Program, error) {
	p := models.Program{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO programs (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, userID, name, p.CreatedAt.UnixNano())
	if err != nil {
		return models.Program{}, fmt.Errorf("inserting program: %w", err)
	}
	return p, nil
}

// GetProgram returns one of the user's programs.
func (s *Store) GetProgram(ctx context.Context, programID uuid.UUID, userID int) (models.Program, error) {
	var (
		p       models.Program
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM programs WHERE id = ? AND user_id = ?`,
		programID, userID).Scan(&p.ID, &p.UserID, &p.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Program{}, program.ErrProgramNotFound
	}
	if err != nil {
		return models.Program{}, fmt.Errorf("querying program %s: %w", programID, err)
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	return p, nil
}

// FetchProgramTree returns the program's weeks in number order, each with its
// days in insertion order.
func (s *Store) FetchProgramTree(ctx context.Context, programID uuid.UUID, userID int) ([]models.Week, error) {
	if _, err := s.GetProgram(ctx, programID, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program_id, week_number FROM program_weeks
		 WHERE program_id = ?
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

	rows, err = s.db.QueryContext(ctx,
		`SELECT d.id, d.week_id, d.day_name
		 FROM program_days d
		 JOIN program_weeks w ON w.id = d.week_id
		 WHERE w.program_id = ?
		 ORDER BY d.rowid`, programID)
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

// InsertWeek adds a week to a program.
func (s *Store) InsertWeek(ctx context.Context, programID uuid.UUID, number int) (models.Week, error) {
	w := models.Week{ID: uuid.New(), ProgramID: programID, Number: number}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO program_weeks (id, program_id, week_number) VALUES (?, ?, ?)`,
		w.ID, programID, number)
	if err != nil {
		return models.Week{}, fmt.Errorf("inserting week: %w", err)
	}
	return w, nil
}

// DeleteWeek removes a week with its days and their exercises.
func (s *Store) DeleteWeek(ctx context.Context, weekID uuid.UUID) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM day_exercises WHERE day_id IN (SELECT id FROM program_days WHERE week_id = ?)`,
			weekID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM program_days WHERE week_id = ?`, weekID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM program_weeks WHERE id = ?`, weekID)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting week %s: %w", weekID, err)
	}
	return nil
}

// InsertDay adds a named day to a week.
func (s *Store) InsertDay(ctx context.Context, weekID uuid.UUID, name string) (models.Day, error) {
	d := models.Day{ID: uuid.New(), WeekID: weekID, Name: name}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO program_days (id, week_id, day_name) VALUES (?, ?, ?)`,
		d.ID, weekID, name)
	if err != nil {
		return models.Day{}, fmt.Errorf("inserting day: %w", err)
	}
	return d, nil
}

// DeleteDay removes a day and its exercises.
func (s *Store) DeleteDay(ctx context.Context, dayID uuid.UUID) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_exercises WHERE day_id = ?`, dayID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM program_days WHERE id = ?`, dayID)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting day %s: %w", dayID, err)
	}
	return nil
}
