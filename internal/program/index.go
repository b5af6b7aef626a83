package program

import (
	"sort"
	"strings"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// Index is the in-memory projection of a program's weeks and days, keyed by
// week number. It is built from one tree read and kept in step with the writes
// the interpreter issues; it never touches the store itself.
type Index struct {
	weeks map[int]*models.Week
}

// NewIndex builds an index from a program tree read.
func NewIndex(weeks []models.Week) *Index {
	ix := &Index{weeks: make(map[int]*models.Week, len(weeks))}
	for _, w := range weeks {
		ix.SetWeek(w)
	}
	return ix
}

// Week returns the week with the given number.
func (ix *Index) Week(number int) (*models.Week, bool) {
	w, ok := ix.weeks[number]
	return w, ok
}

// SetWeek registers w under its number, replacing any previous entry.
func (ix *Index) SetWeek(w models.Week) {
	w.Days = append([]models.Day(nil), w.Days...)
	ix.weeks[w.Number] = &w
}

// DeleteWeek drops the week with the given number.
func (ix *Index) DeleteWeek(number int) {
	delete(ix.weeks, number)
}

// FindDay returns the first day in w whose name matches, ignoring case and
// surrounding whitespace.
func (ix *Index) FindDay(w *models.Week, name string) (models.Day, bool) {
	name = strings.TrimSpace(name)
	for _, d := range w.Days {
		if strings.EqualFold(strings.TrimSpace(d.Name), name) {
			return d, true
		}
	}
	return models.Day{}, false
}

// RemoveDay drops the day with the given ID from w.
func (ix *Index) RemoveDay(w *models.Week, dayID uuid.UUID) {
	days := w.Days[:0]
	for _, d := range w.Days {
		if d.ID != dayID {
			days = append(days, d)
		}
	}
	w.Days = days
}

// AppendDay adds d to the end of w's day list.
func (ix *Index) AppendDay(w *models.Week, d models.Day) {
	w.Days = append(w.Days, d)
}

// Weeks returns a copy of the indexed weeks ordered by number.
func (ix *Index) Weeks() []models.Week {
	out := make([]models.Week, 0, len(ix.weeks))
	for _, w := range ix.weeks {
		cp := *w
		cp.Days = append([]models.Day(nil), w.Days...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
