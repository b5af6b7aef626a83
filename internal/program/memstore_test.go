package program

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/claude/liftplan/internal/interval"
	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory Store for engine tests. It counts reads and writes
// and can be told to fail specific calls.
type memStore struct {
	mu sync.Mutex

	userID    int
	programID uuid.UUID

	weeks     map[uuid.UUID]models.Week
	days      map[uuid.UUID]models.Day
	dayOrder  []uuid.UUID
	exercises map[uuid.UUID]models.Exercise
	exOrder   []uuid.UUID

	dayFetches   map[uuid.UUID]int
	numberWrites int

	failInsertExercise bool
	failRenumber       map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		userID:       1,
		programID:    uuid.New(),
		weeks:        map[uuid.UUID]models.Week{},
		days:         map[uuid.UUID]models.Day{},
		exercises:    map[uuid.UUID]models.Exercise{},
		dayFetches:   map[uuid.UUID]int{},
		failRenumber: map[uuid.UUID]bool{},
	}
}

// seedWeek adds a week with the named days and returns the day IDs.
func (s *memStore) seedWeek(number int, dayNames ...string) []uuid.UUID {
	w, _ := s.InsertWeek(context.Background(), s.programID, number)
	var ids []uuid.UUID
	for _, name := range dayNames {
		d, _ := s.InsertDay(context.Background(), w.ID, name)
		ids = append(ids, d.ID)
	}
	return ids
}

// seedExercise puts an exercise directly on a day.
func (s *memStore) seedExercise(dayID, defID uuid.UUID, number *int, sets, reps string) models.Exercise {
	e := models.Exercise{
		DayID:         dayID,
		ExerciseDefID: defID,
		Sets:          interval.FromText(&sets),
		Reps:          interval.FromText(&reps),
		Number:        number,
	}
	e, _ = s.InsertExercise(context.Background(), e)
	return e
}

func (s *memStore) dayExercises(dayID uuid.UUID) []models.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Exercise
	for _, id := range s.exOrder {
		if e, ok := s.exercises[id]; ok && e.DayID == dayID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) FetchProgramTree(_ context.Context, programID uuid.UUID, userID int) ([]models.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if programID != s.programID || userID != s.userID {
		return nil, ErrProgramNotFound
	}
	var weeks []models.Week
	for _, w := range s.weeks {
		w.Days = nil
		for _, id := range s.dayOrder {
			if d, ok := s.days[id]; ok && d.WeekID == w.ID {
				w.Days = append(w.Days, d)
			}
		}
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Number < weeks[j].Number })
	return weeks, nil
}

func (s *memStore) FetchDayExercises(_ context.Context, dayID uuid.UUID) ([]models.Exercise, error) {
	s.mu.Lock()
	s.dayFetches[dayID]++
	s.mu.Unlock()
	return s.dayExercises(dayID), nil
}

func (s *memStore) InsertWeek(_ context.Context, programID uuid.UUID, number int) (models.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.weeks {
		if w.Number == number {
			return models.Week{}, errors.New("duplicate week number")
		}
	}
	w := models.Week{ID: uuid.New(), ProgramID: programID, Number: number}
	s.weeks[w.ID] = w
	return w, nil
}

func (s *memStore) DeleteWeek(_ context.Context, weekID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.weeks, weekID)
	for id, d := range s.days {
		if d.WeekID == weekID {
			s.deleteDayLocked(id)
		}
	}
	return nil
}

func (s *memStore) InsertDay(_ context.Context, weekID uuid.UUID, name string) (models.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := models.Day{ID: uuid.New(), WeekID: weekID, Name: name}
	s.days[d.ID] = d
	s.dayOrder = append(s.dayOrder, d.ID)
	return d, nil
}

func (s *memStore) DeleteDay(_ context.Context, dayID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDayLocked(dayID)
	return nil
}

func (s *memStore) deleteDayLocked(dayID uuid.UUID) {
	delete(s.days, dayID)
	for id, e := range s.exercises {
		if e.DayID == dayID {
			delete(s.exercises, id)
		}
	}
}

func (s *memStore) InsertExercise(_ context.Context, e models.Exercise) (models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsertExercise {
		return models.Exercise{}, errInjected
	}
	e.ID = uuid.New()
	s.exercises[e.ID] = e
	s.exOrder = append(s.exOrder, e.ID)
	return e, nil
}

func (s *memStore) UpdateExercise(_ context.Context, e models.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exercises[e.ID]; !ok {
		return errors.New("no such exercise")
	}
	s.exercises[e.ID] = e
	return nil
}

func (s *memStore) UpdateExerciseNumber(_ context.Context, exerciseID uuid.UUID, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRenumber[exerciseID] {
		return errInjected
	}
	e, ok := s.exercises[exerciseID]
	if !ok {
		return errors.New("no such exercise")
	}
	n := number
	e.Number = &n
	s.exercises[exerciseID] = e
	s.numberWrites++
	return nil
}

func (s *memStore) DeleteExercise(_ context.Context, exerciseID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.exercises, exerciseID)
	return nil
}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }
