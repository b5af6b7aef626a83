package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Edit log statuses.
const (
	EditStatusSuccess = "success"
	EditStatusPartial = "partial"
	EditStatusError   = "error"
)

// EditLog records the outcome of one edit batch.
type EditLog struct {
	ID           int64            `json:"id"`
	UserID       int              `json:"user_id"`
	ProgramID    uuid.UUID        `json:"program_id"`
	CreatedAt    time.Time        `json:"created_at"`
	Source       string           `json:"source"`
	Status       string           `json:"status"`
	Operations   int              `json:"operations"`
	Applied      int              `json:"applied"`
	Skipped      int              `json:"skipped"`
	Failed       int              `json:"failed"`
	DurationMs   *int             `json:"duration_ms"`
	ErrorMessage *string          `json:"error_message"`
	Result       *json.RawMessage `json:"result"`
}
