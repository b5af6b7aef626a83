package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/liftplan/internal/models"
)

// InsertEditLog records the outcome of an edit batch and returns its ID.
func (s *Store) InsertEditLog(ctx context.Context, log models.EditLog) (int64, error) {
	created := log.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var result []byte
	if log.Result != nil {
		result = *log.Result
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO edit_logs (user_id, program_id, created_at, source, status, operations,
		 applied, skipped, failed, duration_ms, error_message, result)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		log.UserID, log.ProgramID, created.UnixNano(), log.Source, log.Status, log.Operations,
		log.Applied, log.Skipped, log.Failed, log.DurationMs, log.ErrorMessage, result,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting edit log: %w", err)
	}
	return res.LastInsertId()
}

// QueryEditLogs returns the most recent edit logs for a user.
func (s *Store) QueryEditLogs(ctx context.Context, userID, limit int) ([]models.EditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, program_id, created_at, source, status, operations,
		 applied, skipped, failed, duration_ms, error_message, result
		 FROM edit_logs
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying edit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.EditLog
	for rows.Next() {
		var (
			l       models.EditLog
			created int64
			result  []byte
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProgramID, &created, &l.Source, &l.Status,
			&l.Operations, &l.Applied, &l.Skipped, &l.Failed,
			&l.DurationMs, &l.ErrorMessage, &result); err != nil {
			return nil, fmt.Errorf("scanning edit log: %w", err)
		}
		l.CreatedAt = time.Unix(0, created).UTC()
		if result != nil {
			raw := json.RawMessage(result)
			l.Result = &raw
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
