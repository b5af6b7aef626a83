package program

import (
	"context"
	"errors"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence surface the engine writes through. Both the Postgres
// storage and the SQLite local store satisfy it.
type Store interface {
	// FetchProgramTree returns the program's weeks with their days (no exercises).
	// It returns ErrProgramNotFound when the program does not exist for userID.
	FetchProgramTree(ctx context.Context, programID uuid.UUID, userID int) ([]models.Week, error)
	FetchDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.Exercise, error)

	InsertWeek(ctx context.Context, programID uuid.UUID, number int) (models.Week, error)
	DeleteWeek(ctx context.Context, weekID uuid.UUID) error
	InsertDay(ctx context.Context, weekID uuid.UUID, name string) (models.Day, error)
	DeleteDay(ctx context.Context, dayID uuid.UUID) error

	InsertExercise(ctx context.Context, e models.Exercise) (models.Exercise, error)
	UpdateExercise(ctx context.Context, e models.Exercise) error
	UpdateExerciseNumber(ctx context.Context, exerciseID uuid.UUID, number int) error
	DeleteExercise(ctx context.Context, exerciseID uuid.UUID) error
}

// ErrProgramNotFound is returned by Store.FetchProgramTree for unknown programs.
var ErrProgramNotFound = errors.New("program not found")

// Reasons an operation is skipped rather than applied.
var (
	ErrWeekNotFound     = errors.New("week not found")
	ErrDayNotFound      = errors.New("day not found")
	ErrExerciseNotFound = errors.New("exercise not found in day")
	ErrUnknownExercise  = errors.New("exercise not in library")
	ErrMissingField     = errors.New("missing required field")
	ErrUnsupported      = errors.New("unsupported operation")
)

func isSkip(err error) bool {
	for _, target := range []error{
		ErrWeekNotFound, ErrDayNotFound, ErrExerciseNotFound,
		ErrUnknownExercise, ErrMissingField, ErrUnsupported,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
