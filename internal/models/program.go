package models

import (
	"time"

	"github.com/claude/liftplan/internal/interval"
	"github.com/google/uuid"
)

// Program is a user's training program.
type Program struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Week is a row of the program_weeks table. Days is populated when the week is
// read as part of a program tree.
type Week struct {
	ID        uuid.UUID `json:"id"`
	ProgramID uuid.UUID `json:"program_id"`
	Number    int       `json:"week_number"`
	Days      []Day     `json:"days"`
}

// Day is a row of the program_days table.
type Day struct {
	ID     uuid.UUID `json:"id"`
	WeekID uuid.UUID `json:"week_id"`
	Name   string    `json:"day_name"`
}

// Exercise is a row of the day_exercises table: one prescribed exercise on a day.
type Exercise struct {
	ID            uuid.UUID          `json:"id"`
	DayID         uuid.UUID          `json:"day_id"`
	ExerciseDefID uuid.UUID          `json:"exercise_def_id"`
	Name          string             `json:"exercise_name,omitempty"`
	Sets          *interval.Interval `json:"sets"`
	Reps          *interval.Interval `json:"reps"`
	RIR           *interval.Interval `json:"rir"`
	RPE           *interval.Interval `json:"rpe"`
	Notes         string             `json:"notes"`
	Number        *int               `json:"exercise_number"`
}

// ExerciseDef is an entry in the exercise library.
type ExerciseDef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Equipment string    `json:"equipment,omitempty"`
}

// DayDetail is a day with its exercises, ordered by exercise number.
type DayDetail struct {
	Day
	Exercises []Exercise `json:"exercises"`
}

// WeekDetail is a week with fully populated days.
type WeekDetail struct {
	ID     uuid.UUID   `json:"id"`
	Number int         `json:"week_number"`
	Days   []DayDetail `json:"days"`
}

// ProgramDetail is the full program tree.
type ProgramDetail struct {
	Program
	Weeks []WeekDetail `json:"weeks"`
}
