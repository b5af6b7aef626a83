package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftplan/internal/models"
)

// InsertEditLog records the outcome of an edit batch and returns its ID.
func (db *DB) InsertEditLog(ctx context.Context, log models.EditLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO edit_logs (user_id, program_id, source, status, operations,
		 applied, skipped, failed, duration_ms, error_message, result)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING id`,
		log.UserID, log.ProgramID, log.Source, log.Status, log.Operations,
		log.Applied, log.Skipped, log.Failed, log.DurationMs, log.ErrorMessage, log.Result,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting edit log: %w", err)
	}
	return id, nil
}

// QueryEditLogs returns the most recent edit logs for a user.
func (db *DB) QueryEditLogs(ctx context.Context, userID, limit int) ([]models.EditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, program_id, created_at, source, status, operations,
		 applied, skipped, failed, duration_ms, error_message, result
		 FROM edit_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying edit logs: %w", err)
	}
	defer rows.Close()

	var result []models.EditLog
	for rows.Next() {
		var l models.EditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProgramID, &l.CreatedAt, &l.Source, &l.Status,
			&l.Operations, &l.Applied, &l.Skipped, &l.Failed,
			&l.DurationMs, &l.ErrorMessage, &l.Result); err != nil {
			return nil, fmt.Errorf("scanning edit log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
