package program

import (
	"strings"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// Directory resolves exercise names supplied by an assistant to library IDs.
// Lookup ignores case and surrounding whitespace.
type Directory struct {
	byName map[string]uuid.UUID
	names  map[uuid.UUID]string
}

// NewDirectory indexes the given library entries. When two entries fold to the
// same name, the first one wins.
func NewDirectory(defs []models.ExerciseDef) *Directory {
	d := &Directory{
		byName: make(map[string]uuid.UUID, len(defs)),
		names:  make(map[uuid.UUID]string, len(defs)),
	}
	for _, def := range defs {
		key := foldName(def.Name)
		if _, dup := d.byName[key]; dup {
			continue
		}
		d.byName[key] = def.ID
		d.names[def.ID] = def.Name
	}
	return d
}

// Resolve returns the library ID for name.
func (d *Directory) Resolve(name string) (uuid.UUID, bool) {
	id, ok := d.byName[foldName(name)]
	return id, ok
}

// Name returns the library name for id, or "" if unknown.
func (d *Directory) Name(id uuid.UUID) string {
	return d.names[id]
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
