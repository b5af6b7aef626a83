package program

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/liftplan/internal/interval"
)

// Wire is the JSON shape an assistant sends for one operation:
//
//	{"op":"add","target":"exercise","week_number":1,"day_name":"Push",
//	 "exercise_name":"Bench Press","sets":"3","reps":"8-12","rir":2,"notes":"pause reps"}
//
// Numeric fields are kept raw so that numbers, strings and [low,high] arrays
// are all accepted.
type Wire struct {
	Op           string          `json:"op"`
	Target       string          `json:"target"`
	WeekNumber   json.RawMessage `json:"week_number,omitempty"`
	DayName      string          `json:"day_name,omitempty"`
	ExerciseName string          `json:"exercise_name,omitempty"`
	Sets         json.RawMessage `json:"sets,omitempty"`
	Reps         json.RawMessage `json:"reps,omitempty"`
	RIR          json.RawMessage `json:"rir,omitempty"`
	RPE          json.RawMessage `json:"rpe,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
	Order        json.RawMessage `json:"order,omitempty"`
}

// DecodeOperations decodes a JSON array of wire operations. Only a payload that
// is not a JSON array is an error; entries that cannot be understood become
// Unsupported so the rest of the batch still applies.
func DecodeOperations(data []byte) ([]Operation, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding operations: %w", err)
	}

	ops := make([]Operation, 0, len(raws))
	for _, raw := range raws {
		var w Wire
		if err := json.Unmarshal(raw, &w); err != nil {
			ops = append(ops, Unsupported{Reason: "malformed operation: " + err.Error()})
			continue
		}
		op, err := w.Operation()
		if err != nil {
			ops = append(ops, Unsupported{RawOp: w.Op, RawTarget: w.Target, Reason: err.Error()})
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Operation converts the wire form into its typed operation.
func (w Wire) Operation() (Operation, error) {
	target := Target(strings.ToLower(strings.TrimSpace(w.Target)))
	kind := Kind(strings.ToLower(strings.TrimSpace(w.Op)))

	week, ok := wholeNumber(w.WeekNumber)
	if !ok || week < 1 {
		return nil, fmt.Errorf("week_number must be a positive integer")
	}
	day := DayRef{WeekNumber: week, DayName: strings.TrimSpace(w.DayName)}
	ex := ExerciseRef{DayRef: day, ExerciseName: strings.TrimSpace(w.ExerciseName)}

	var order *int
	if n, ok := wholeNumber(w.Order); ok {
		order = &n
	}
	rx := Prescription{
		Sets:  interval.FromJSON(w.Sets),
		Reps:  interval.FromJSON(w.Reps),
		RIR:   interval.FromJSON(w.RIR),
		RPE:   interval.FromJSON(w.RPE),
		Notes: w.Notes,
	}

	switch target {
	case TargetWeek:
		switch kind {
		case KindAdd:
			return AddWeek{WeekNumber: week}, nil
		case KindDelete:
			return DeleteWeek{WeekNumber: week}, nil
		}
	case TargetDay:
		if day.DayName == "" {
			return nil, fmt.Errorf("day_name is required")
		}
		switch kind {
		case KindAdd:
			return AddDay{DayRef: day}, nil
		case KindDelete:
			return DeleteDay{DayRef: day}, nil
		}
	case TargetExercise:
		if day.DayName == "" || ex.ExerciseName == "" {
			return nil, fmt.Errorf("day_name and exercise_name are required")
		}
		switch kind {
		case KindAdd:
			return AddExercise{ExerciseRef: ex, Prescription: rx, Order: order}, nil
		case KindEdit:
			return EditExercise{ExerciseRef: ex, Prescription: rx, Order: order}, nil
		case KindDelete:
			return DeleteExercise{ExerciseRef: ex}, nil
		case KindReorder:
			return ReorderExercise{ExerciseRef: ex, Order: order}, nil
		}
	}
	return nil, fmt.Errorf("unknown %s operation on %q", kind, target)
}

// wholeNumber reads a JSON number or numeric string holding an integer value.
func wholeNumber(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		raw = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
