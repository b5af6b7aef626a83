package editor

import (
	"context"

	"github.com/claude/liftplan/internal/interval"
	"github.com/google/uuid"
)

// WeekSummary holds aggregated prescription volume for one week.
type WeekSummary struct {
	WeekNumber int                `json:"week_number"`
	Days       int                `json:"days"`
	Exercises  int                `json:"exercises"`
	TotalSets  *interval.Interval `json:"total_sets"`
}

// ProgramSummary is the per-week volume of a program.
type ProgramSummary struct {
	ProgramID uuid.UUID     `json:"program_id"`
	Name      string        `json:"name"`
	Weeks     []WeekSummary `json:"weeks"`
}

// Summary returns per-week day and exercise counts with the total prescribed
// sets as a range. Exercises without a sets prescription add nothing to the
// total; a week with no sets at all reports a nil total.
func (s *Service) Summary(ctx context.Context, userID int, programID uuid.UUID) (*ProgramSummary, error) {
	detail, err := s.Detail(ctx, userID, programID)
	if err != nil {
		return nil, err
	}

	out := &ProgramSummary{ProgramID: detail.ID, Name: detail.Name, Weeks: make([]WeekSummary, 0, len(detail.Weeks))}
	for _, w := range detail.Weeks {
		ws := WeekSummary{WeekNumber: w.Number, Days: len(w.Days)}
		for _, d := range w.Days {
			ws.Exercises += len(d.Exercises)
			for _, e := range d.Exercises {
				if e.Sets == nil {
					continue
				}
				total := *e.Sets
				if ws.TotalSets != nil {
					total = ws.TotalSets.Add(total)
				}
				ws.TotalSets = &total
			}
		}
		out.Weeks = append(out.Weeks, ws)
	}
	return out, nil
}
