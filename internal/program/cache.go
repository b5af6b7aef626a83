package program

import (
	"context"
	"slices"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// FetchFunc loads a day's exercises from the store.
type FetchFunc func(ctx context.Context, dayID uuid.UUID) ([]models.Exercise, error)

// DayCache holds the last known exercise list per day for the duration of one
// batch. Get reads through on a miss; Patch edits a cached list in place so
// later operations in the same batch see earlier writes without another read.
type DayCache struct {
	fetch FetchFunc
	days  map[uuid.UUID][]models.Exercise
}

// NewDayCache returns an empty cache that reads misses through fetch.
func NewDayCache(fetch FetchFunc) *DayCache {
	return &DayCache{fetch: fetch, days: make(map[uuid.UUID][]models.Exercise)}
}

// Get returns a copy of the day's exercises, fetching them on a miss.
func (c *DayCache) Get(ctx context.Context, dayID uuid.UUID) ([]models.Exercise, error) {
	if list, ok := c.days[dayID]; ok {
		return slices.Clone(list), nil
	}
	list, err := c.fetch(ctx, dayID)
	if err != nil {
		return nil, err
	}
	c.days[dayID] = list
	return slices.Clone(list), nil
}

// Seed stores a known list for a day, e.g. an empty list for a day just created.
func (c *DayCache) Seed(dayID uuid.UUID, list []models.Exercise) {
	if list == nil {
		list = []models.Exercise{}
	}
	c.days[dayID] = list
}

// Invalidate drops the cached list so the next Get is a clean read.
func (c *DayCache) Invalidate(dayID uuid.UUID) {
	delete(c.days, dayID)
}

// Patch applies fn to the cached list. A day that is not cached is left alone:
// its next Get reads the store, which already reflects the write.
func (c *DayCache) Patch(dayID uuid.UUID, fn func([]models.Exercise) []models.Exercise) {
	list, ok := c.days[dayID]
	if !ok {
		return
	}
	c.days[dayID] = fn(list)
}

// Cached reports whether the day currently has an entry.
func (c *DayCache) Cached(dayID uuid.UUID) bool {
	_, ok := c.days[dayID]
	return ok
}

func appendExercise(e models.Exercise) func([]models.Exercise) []models.Exercise {
	return func(list []models.Exercise) []models.Exercise {
		return append(list, e)
	}
}

func replaceExercise(e models.Exercise) func([]models.Exercise) []models.Exercise {
	return func(list []models.Exercise) []models.Exercise {
		for i := range list {
			if list[i].ID == e.ID {
				list[i] = e
			}
		}
		return list
	}
}

func removeExercise(id uuid.UUID) func([]models.Exercise) []models.Exercise {
	return func(list []models.Exercise) []models.Exercise {
		return slices.DeleteFunc(list, func(e models.Exercise) bool { return e.ID == id })
	}
}
