// Package editor ties the program engine to a store: it is the single entry
// point the REST and MCP surfaces use to read and edit programs.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Edit sources recorded in the edit log.
const (
	SourceAPI = "api"
	SourceMCP = "mcp"
	SourceCLI = "cli"
)

// maxParallelReads bounds concurrent day reads when assembling a program detail.
const maxParallelReads = 8

// Store is everything the editor needs from persistence. storage.DB and
// localstore.Store both satisfy it.
type Store interface {
	program.Store

	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)

	ListPrograms(ctx context.Context, userID int) ([]models.Program, error)
	CreateProgram(ctx context.Context, userID int, name string) (models.Program, error)
	// GetProgram returns program.ErrProgramNotFound for unknown programs.
	GetProgram(ctx context.Context, programID uuid.UUID, userID int) (models.Program, error)

	ListExerciseDefs(ctx context.Context) ([]models.ExerciseDef, error)
	CreateExerciseDef(ctx context.Context, name, equipment string) (models.ExerciseDef, error)

	InsertEditLog(ctx context.Context, log models.EditLog) (int64, error)
	QueryEditLogs(ctx context.Context, userID, limit int) ([]models.EditLog, error)
}

// Service applies edit batches and assembles read models.
type Service struct {
	store  Store
	engine *program.Engine
	log    *slog.Logger
}

// New creates a Service. engine must write through the same store.
func New(store Store, engine *program.Engine, log *slog.Logger) *Service {
	return &Service{store: store, engine: engine, log: log}
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// Apply runs ops against the program and records an edit log entry. It fails
// only when the exercise library or the program tree cannot be read.
func (s *Service) Apply(ctx context.Context, userID int, programID uuid.UUID, source string, ops []program.Operation) (*program.Result, error) {
	start := time.Now()

	defs, err := s.store.ListExerciseDefs(ctx)
	if err != nil {
		err = fmt.Errorf("loading exercise library: %w", err)
		s.writeLog(userID, programID, source, len(ops), nil, err, start)
		return nil, err
	}

	result, err := s.engine.Apply(ctx, userID, programID, ops, defs)
	s.writeLog(userID, programID, source, len(ops), result, err, start)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyJSON decodes a JSON array of operations and applies it.
func (s *Service) ApplyJSON(ctx context.Context, userID int, programID uuid.UUID, source string, raw []byte) (*program.Result, error) {
	ops, err := program.DecodeOperations(raw)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, userID, programID, source, ops)
}

// writeLog persists the outcome of a batch. A logging failure is reported but
// never changes what Apply returns.
func (s *Service) writeLog(userID int, programID uuid.UUID, source string, n int, result *program.Result, applyErr error, start time.Time) {
	durationMs := int(time.Since(start).Milliseconds())
	entry := models.EditLog{
		UserID:     userID,
		ProgramID:  programID,
		Source:     source,
		Operations: n,
		DurationMs: &durationMs,
	}

	switch {
	case applyErr != nil:
		entry.Status = models.EditStatusError
		msg := applyErr.Error()
		entry.ErrorMessage = &msg
	default:
		entry.Status = models.EditStatusSuccess
		if result.Skipped > 0 || result.Failed > 0 {
			entry.Status = models.EditStatusPartial
		}
		entry.Applied = result.Applied
		entry.Skipped = result.Skipped
		entry.Failed = result.Failed
		if b, err := json.Marshal(result); err == nil {
			raw := json.RawMessage(b)
			entry.Result = &raw
		}
	}

	// The request context may already be done; the log row should still land.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.store.InsertEditLog(ctx, entry); err != nil {
		s.log.Error("failed to write edit log", "program_id", programID, "error", err)
	}
}

// Detail returns the full program tree with exercises ordered by number.
func (s *Service) Detail(ctx context.Context, userID int, programID uuid.UUID) (*models.ProgramDetail, error) {
	p, err := s.store.GetProgram(ctx, programID, userID)
	if err != nil {
		return nil, err
	}
	weeks, err := s.store.FetchProgramTree(ctx, programID, userID)
	if err != nil {
		return nil, fmt.Errorf("reading program tree: %w", err)
	}
	defs, err := s.store.ListExerciseDefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise library: %w", err)
	}
	names := make(map[uuid.UUID]string, len(defs))
	for _, d := range defs {
		names[d.ID] = d.Name
	}

	detail := &models.ProgramDetail{Program: p, Weeks: make([]models.WeekDetail, len(weeks))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for wi, w := range weeks {
		detail.Weeks[wi] = models.WeekDetail{ID: w.ID, Number: w.Number, Days: make([]models.DayDetail, len(w.Days))}
		for di, d := range w.Days {
			g.Go(func() error {
				list, err := s.store.FetchDayExercises(gctx, d.ID)
				if err != nil {
					return fmt.Errorf("loading day %q: %w", d.Name, err)
				}
				for i := range list {
					list[i].Name = names[list[i].ExerciseDefID]
				}
				SortExercises(list)
				if list == nil {
					list = []models.Exercise{}
				}
				detail.Weeks[wi].Days[di] = models.DayDetail{Day: d, Exercises: list}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// SortExercises orders a day's exercises by number, missing numbers last.
func SortExercises(list []models.Exercise) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Number, list[j].Number
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}
