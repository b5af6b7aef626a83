package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/liftplan/internal/editor"
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process
// editor service) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListPrograms(ctx context.Context, userID int) ([]models.Program, error)
	GetProgram(ctx context.Context, userID int, programID uuid.UUID) (*models.ProgramDetail, error)
	ListExercises(ctx context.Context) ([]models.ExerciseDef, error)
	ApplyEdits(ctx context.Context, userID int, programID uuid.UUID, operations json.RawMessage) (*program.Result, error)
	GetSummary(ctx context.Context, userID int, programID uuid.UUID) (*editor.ProgramSummary, error)
}

// Local serves tools straight from an editor service.
type Local struct {
	svc *editor.Service
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource backed by svc.
func NewLocal(svc *editor.Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) ListPrograms(ctx context.Context, userID int) ([]models.Program, error) {
	return l.svc.Store().ListPrograms(ctx, userID)
}

func (l *Local) GetProgram(ctx context.Context, userID int, programID uuid.UUID) (*models.ProgramDetail, error) {
	return l.svc.Detail(ctx, userID, programID)
}

func (l *Local) ListExercises(ctx context.Context) ([]models.ExerciseDef, error) {
	return l.svc.Store().ListExerciseDefs(ctx)
}

func (l *Local) ApplyEdits(ctx context.Context, userID int, programID uuid.UUID, operations json.RawMessage) (*program.Result, error) {
	return l.svc.ApplyJSON(ctx, userID, programID, editor.SourceMCP, operations)
}

func (l *Local) GetSummary(ctx context.Context, userID int, programID uuid.UUID) (*editor.ProgramSummary, error) {
	return l.svc.Summary(ctx, userID, programID)
}
