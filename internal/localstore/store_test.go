package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/claude/liftplan/internal/interval"
	"github.com/claude/liftplan/internal/models"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "liftplan.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ivp(s string) *interval.Interval { return interval.FromText(&s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "liftplan.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	s.Close()
}

func TestGetOrCreateUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.GetOrCreateUser(ctx, "alice@example.com", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.GetOrCreateUser(ctx, "alice@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %d vs %d", id1, id2)
	}
	other, _ := s.GetOrCreateUser(ctx, "bob@example.com", "Bob")
	if other == id1 {
		t.Error("different logins share an id")
	}
}

func TestProgramTree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProgram(ctx, 1, "Hypertrophy Block")
	if err != nil {
		t.Fatal(err)
	}
	w2, _ := s.InsertWeek(ctx, p.ID, 2)
	w1, _ := s.InsertWeek(ctx, p.ID, 1)
	s.InsertDay(ctx, w1.ID, "Push")
	s.InsertDay(ctx, w1.ID, "Pull")
	s.InsertDay(ctx, w2.ID, "Legs")

	if _, err := s.InsertWeek(ctx, p.ID, 1); err == nil {
		t.Error("duplicate week number accepted")
	}

	weeks, err := s.FetchProgramTree(ctx, p.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 || weeks[0].Number != 1 || weeks[1].Number != 2 {
		t.Fatalf("weeks = %+v", weeks)
	}
	if len(weeks[0].Days) != 2 || weeks[0].Days[0].Name != "Push" || weeks[0].Days[1].Name != "Pull" {
		t.Errorf("week 1 days = %+v", weeks[0].Days)
	}

	if _, err := s.FetchProgramTree(ctx, p.ID, 2); !errors.Is(err, program.ErrProgramNotFound) {
		t.Errorf("other user: err = %v", err)
	}
	if _, err := s.FetchProgramTree(ctx, uuid.New(), 1); !errors.Is(err, program.ErrProgramNotFound) {
		t.Errorf("unknown program: err = %v", err)
	}

	if err := s.DeleteWeek(ctx, w1.ID); err != nil {
		t.Fatal(err)
	}
	weeks, _ = s.FetchProgramTree(ctx, p.ID, 1)
	if len(weeks) != 1 || weeks[0].Number != 2 {
		t.Errorf("after delete = %+v", weeks)
	}
}

func TestExerciseRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProgram(ctx, 1, "p")
	w, _ := s.InsertWeek(ctx, p.ID, 1)
	d, _ := s.InsertDay(ctx, w.ID, "Push")
	bench, err := s.CreateExerciseDef(ctx, "Bench Press", "barbell")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateExerciseDef(ctx, "bench press", ""); err == nil {
		t.Error("case-insensitive duplicate def accepted")
	}

	n := 3
	e, err := s.InsertExercise(ctx, models.Exercise{
		DayID: d.ID, ExerciseDefID: bench.ID,
		Sets: ivp("3"), Reps: ivp("8-12"), RPE: ivp("8.5"),
		Notes: "pause", Number: &n,
	})
	if err != nil {
		t.Fatal(err)
	}

	list, err := s.FetchDayExercises(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d exercises", len(list))
	}
	got := list[0]
	if got.ID != e.ID || got.Name != "Bench Press" || got.Notes != "pause" {
		t.Errorf("got %+v", got)
	}
	if got.Sets.String() != "[3,3]" || got.Reps.String() != "[8,12]" || got.RPE.String() != "[8.5,8.5]" || got.RIR != nil {
		t.Errorf("intervals = %v %v %v %v", got.Sets, got.Reps, got.RIR, got.RPE)
	}
	if got.Number == nil || *got.Number != 3 {
		t.Errorf("number = %v", got.Number)
	}

	got.RIR = ivp("[1,2]")
	got.Number = nil
	if err := s.UpdateExercise(ctx, got); err != nil {
		t.Fatal(err)
	}
	list, _ = s.FetchDayExercises(ctx, d.ID)
	if list[0].RIR.String() != "[1,2]" || list[0].Number != nil {
		t.Errorf("after update = %+v", list[0])
	}

	if err := s.UpdateExerciseNumber(ctx, e.ID, 1); err != nil {
		t.Fatal(err)
	}
	list, _ = s.FetchDayExercises(ctx, d.ID)
	if list[0].Number == nil || *list[0].Number != 1 {
		t.Errorf("after renumber = %v", list[0].Number)
	}

	if _, err := s.InsertExercise(ctx, models.Exercise{DayID: d.ID, ExerciseDefID: bench.ID}); err == nil {
		t.Error("duplicate exercise on a day accepted")
	}

	if err := s.DeleteDay(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	if list, _ := s.FetchDayExercises(ctx, d.ID); len(list) != 0 {
		t.Errorf("exercises survived day delete: %+v", list)
	}
}

func TestEditLogs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	programID := uuid.New()

	ms := 12
	raw := json.RawMessage(`{"applied":1}`)
	for _, status := range []string{models.EditStatusSuccess, models.EditStatusPartial} {
		if _, err := s.InsertEditLog(ctx, models.EditLog{
			UserID: 1, ProgramID: programID, Source: "api", Status: status,
			Operations: 2, Applied: 1, DurationMs: &ms, Result: &raw,
		}); err != nil {
			t.Fatal(err)
		}
	}
	msg := "boom"
	s.InsertEditLog(ctx, models.EditLog{UserID: 2, ProgramID: programID, Source: "mcp", Status: models.EditStatusError, ErrorMessage: &msg})

	logs, err := s.QueryEditLogs(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].Status != models.EditStatusPartial {
		t.Errorf("newest first: got %q", logs[0].Status)
	}
	if logs[0].ProgramID != programID || *logs[0].DurationMs != 12 || string(*logs[0].Result) != `{"applied":1}` {
		t.Errorf("log = %+v", logs[0])
	}

	logs, _ = s.QueryEditLogs(ctx, 2, 10)
	if len(logs) != 1 || logs[0].ErrorMessage == nil || *logs[0].ErrorMessage != "boom" || logs[0].Result != nil {
		t.Errorf("user 2 logs = %+v", logs)
	}
}

// TestEngineOnSQLite runs a full batch through the engine against a real
// database and checks the final numbering.
func TestEngineOnSQLite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProgram(ctx, 1, "p")
	var defs []models.ExerciseDef
	for _, name := range []string{"Squat", "Romanian Deadlift", "Leg Press"} {
		d, err := s.CreateExerciseDef(ctx, name, "")
		if err != nil {
			t.Fatal(err)
		}
		defs = append(defs, d)
	}

	raw := []byte(`[
		{"op":"add","target":"week","week_number":1},
		{"op":"add","target":"day","week_number":1,"day_name":"Legs"},
		{"op":"add","target":"exercise","week_number":1,"day_name":"Legs","exercise_name":"Leg Press","sets":3,"reps":"10-15","order":3},
		{"op":"add","target":"exercise","week_number":1,"day_name":"Legs","exercise_name":"squat","sets":"4","reps":"5","order":1},
		{"op":"add","target":"exercise","week_number":1,"day_name":"Legs","exercise_name":"Romanian Deadlift","sets":3,"reps":"8"},
		{"op":"delete","target":"exercise","week_number":1,"day_name":"Legs","exercise_name":"Squat"}
	]`)
	ops, err := program.DecodeOperations(raw)
	if err != nil {
		t.Fatal(err)
	}

	res, err := program.New(s, discardLogger()).Apply(ctx, 1, p.ID, ops, defs)
	if err != nil {
		t.Fatal(err)
	}
	if res.Applied != 6 {
		t.Fatalf("applied %d of 6: %+v", res.Applied, res.Outcomes)
	}

	weeks, _ := s.FetchProgramTree(ctx, p.ID, 1)
	list, _ := s.FetchDayExercises(ctx, weeks[0].Days[0].ID)
	if len(list) != 2 {
		t.Fatalf("got %d exercises", len(list))
	}
	// Leg Press kept its explicit order ahead of the unnumbered deadlift.
	if list[0].Name != "Leg Press" || *list[0].Number != 1 || list[1].Name != "Romanian Deadlift" || *list[1].Number != 2 {
		t.Errorf("order = %s #%v, %s #%v", list[0].Name, list[0].Number, list[1].Name, list[1].Number)
	}
}
