package program

import (
	"context"
	"fmt"
	"testing"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestPlanRenumber(t *testing.T) {
	id := func(n byte) uuid.UUID { return uuid.UUID{15: n} }
	def := func(n byte) uuid.UUID { return uuid.UUID{0: 0xd, 15: n} }

	tests := []struct {
		name string
		list []models.Exercise
		want []Renumber
	}{
		{
			name: "empty day",
		},
		{
			name: "already contiguous",
			list: []models.Exercise{
				{ID: id(1), ExerciseDefID: def(1), Number: intp(1)},
				{ID: id(2), ExerciseDefID: def(2), Number: intp(2)},
			},
		},
		{
			name: "gaps closed",
			list: []models.Exercise{
				{ID: id(1), ExerciseDefID: def(1), Number: intp(10)},
				{ID: id(2), ExerciseDefID: def(2), Number: intp(1)},
				{ID: id(3), ExerciseDefID: def(3), Number: intp(4)},
			},
			want: []Renumber{
				{ExerciseID: id(3), From: intp(4), To: 2},
				{ExerciseID: id(1), From: intp(10), To: 3},
			},
		},
		{
			name: "missing numbers go last by definition",
			list: []models.Exercise{
				{ID: id(1), ExerciseDefID: def(9)},
				{ID: id(2), ExerciseDefID: def(3)},
				{ID: id(3), ExerciseDefID: def(5), Number: intp(2)},
			},
			want: []Renumber{
				{ExerciseID: id(3), From: intp(2), To: 1},
				{ExerciseID: id(2), To: 2},
				{ExerciseID: id(1), To: 3},
			},
		},
		{
			name: "ties broken by definition",
			list: []models.Exercise{
				{ID: id(1), ExerciseDefID: def(7), Number: intp(1)},
				{ID: id(2), ExerciseDefID: def(2), Number: intp(1)},
			},
			want: []Renumber{
				{ExerciseID: id(1), From: intp(1), To: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanRenumber(tt.list)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("plan (-want +got):\n%s", diff)
			}
		})
	}
}

// TestPlanRenumberDeterministic verifies input order does not change the plan.
func TestPlanRenumberDeterministic(t *testing.T) {
	a := models.Exercise{ID: uuid.New(), ExerciseDefID: uuid.MustParse("10000000-0000-0000-0000-000000000000"), Number: intp(3)}
	b := models.Exercise{ID: uuid.New(), ExerciseDefID: uuid.MustParse("20000000-0000-0000-0000-000000000000"), Number: intp(3)}
	c := models.Exercise{ID: uuid.New(), ExerciseDefID: uuid.MustParse("30000000-0000-0000-0000-000000000000")}

	first := PlanRenumber([]models.Exercise{a, b, c})
	second := PlanRenumber([]models.Exercise{c, b, a})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans differ (-abc +cba):\n%s", diff)
	}
}

// TestPlanRenumberConverges verifies applying a plan leaves nothing to do.
func TestPlanRenumberConverges(t *testing.T) {
	list := []models.Exercise{
		{ID: uuid.New(), ExerciseDefID: uuid.New(), Number: intp(8)},
		{ID: uuid.New(), ExerciseDefID: uuid.New()},
		{ID: uuid.New(), ExerciseDefID: uuid.New(), Number: intp(8)},
		{ID: uuid.New(), ExerciseDefID: uuid.New(), Number: intp(-2)},
	}
	for _, p := range PlanRenumber(list) {
		for i := range list {
			if list[i].ID == p.ExerciseID {
				list[i].Number = intp(p.To)
			}
		}
	}
	if plan := PlanRenumber(list); len(plan) != 0 {
		t.Errorf("second plan = %+v, want empty", plan)
	}
}

// TestReconcileManyDays verifies days are reconciled independently: a failed
// write on one day leaves every other day numbered 1..N, and reports come back
// one per day in input order.
func TestReconcileManyDays(t *testing.T) {
	s := newMemStore()
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("Day %d", i+1)
	}
	days := s.seedWeek(1, names...)

	var bad models.Exercise
	for i, d := range days {
		s.seedExercise(d, benchID, intp(2), "3", "8")
		s.seedExercise(d, squatID, intp(2), "5", "5")
		row := s.seedExercise(d, rowID, nil, "3", "10")
		if i == 4 {
			bad = row
		}
	}
	s.failRenumber[bad.ID] = true

	reports := NewReconciler(s, testLogger()).Run(context.Background(), days)
	if len(reports) != len(days) {
		t.Fatalf("got %d reports for %d days", len(reports), len(days))
	}
	for i, r := range reports {
		if r.DayID != days[i] {
			t.Errorf("report %d is for day %s, want %s", i, r.DayID, days[i])
		}
		if i == 4 {
			if len(r.Errors) != 1 || r.Written != r.Planned-1 {
				t.Errorf("failing day report = %+v", r)
			}
			continue
		}
		if len(r.Errors) != 0 {
			t.Errorf("day %d errors = %v", i, r.Errors)
		}
		if diff := cmp.Diff([]int{1, 2, 3}, numbers(s, days[i])); diff != "" {
			t.Errorf("day %d numbers (-want +got):\n%s", i, diff)
		}
	}

	delete(s.failRenumber, bad.ID)
	second := NewReconciler(s, testLogger()).Run(context.Background(), days)
	for i, r := range second {
		want := 0
		if i == 4 {
			want = 1
		}
		if r.Planned != want {
			t.Errorf("second run day %d planned %d, want %d", i, r.Planned, want)
		}
	}
	if diff := cmp.Diff([]int{1, 2, 3}, numbers(s, days[4])); diff != "" {
		t.Errorf("repaired day numbers (-want +got):\n%s", diff)
	}
}
