package program

import "github.com/claude/liftplan/internal/interval"

// Target names the level of the program tree an operation acts on.
type Target string

const (
	TargetWeek     Target = "week"
	TargetDay      Target = "day"
	TargetExercise Target = "exercise"
)

// Kind names what an operation does to its target.
type Kind string

const (
	KindAdd     Kind = "add"
	KindDelete  Kind = "delete"
	KindEdit    Kind = "edit"
	KindReorder Kind = "reorder"
)

// Operation is one proposed edit. The set of implementations is closed:
// AddWeek, DeleteWeek, AddDay, DeleteDay, AddExercise, EditExercise,
// DeleteExercise, ReorderExercise and Unsupported.
type Operation interface {
	Target() Target
	Kind() Kind
	operation()
}

// DayRef addresses a day by week number and day name.
type DayRef struct {
	WeekNumber int
	DayName    string
}

// ExerciseRef addresses an exercise by its library name within a day.
type ExerciseRef struct {
	DayRef
	ExerciseName string
}

// Prescription holds the optional fields carried by exercise add/edit.
// A nil field means "not specified".
type Prescription struct {
	Sets  *interval.Interval
	Reps  *interval.Interval
	RIR   *interval.Interval
	RPE   *interval.Interval
	Notes *string
}

type AddWeek struct{ WeekNumber int }

type DeleteWeek struct{ WeekNumber int }

type AddDay struct{ DayRef }

type DeleteDay struct{ DayRef }

// AddExercise requires Sets and Reps. Order becomes the exercise number when set.
type AddExercise struct {
	ExerciseRef
	Prescription
	Order *int
}

// EditExercise is a partial update: nil fields keep their current value.
type EditExercise struct {
	ExerciseRef
	Prescription
	Order *int
}

type DeleteExercise struct{ ExerciseRef }

// ReorderExercise moves an exercise to position Order. Order is required.
type ReorderExercise struct {
	ExerciseRef
	Order *int
}

// Unsupported stands in for input that did not decode to a known operation,
// so the batch keeps its indexes and reports the entry as skipped.
type Unsupported struct {
	RawOp     string
	RawTarget string
	Reason    string
}

func (AddWeek) Target() Target         { return TargetWeek }
func (DeleteWeek) Target() Target      { return TargetWeek }
func (AddDay) Target() Target          { return TargetDay }
func (DeleteDay) Target() Target       { return TargetDay }
func (AddExercise) Target() Target     { return TargetExercise }
func (EditExercise) Target() Target    { return TargetExercise }
func (DeleteExercise) Target() Target  { return TargetExercise }
func (ReorderExercise) Target() Target { return TargetExercise }
func (u Unsupported) Target() Target   { return Target(u.RawTarget) }

func (AddWeek) Kind() Kind         { return KindAdd }
func (DeleteWeek) Kind() Kind      { return KindDelete }
func (AddDay) Kind() Kind          { return KindAdd }
func (DeleteDay) Kind() Kind       { return KindDelete }
func (AddExercise) Kind() Kind     { return KindAdd }
func (EditExercise) Kind() Kind    { return KindEdit }
func (DeleteExercise) Kind() Kind  { return KindDelete }
func (ReorderExercise) Kind() Kind { return KindReorder }
func (u Unsupported) Kind() Kind   { return Kind(u.RawOp) }

func (AddWeek) operation()         {}
func (DeleteWeek) operation()      {}
func (AddDay) operation()          {}
func (DeleteDay) operation()       {}
func (AddExercise) operation()     {}
func (EditExercise) operation()    {}
func (DeleteExercise) operation()  {}
func (ReorderExercise) operation() {}
func (Unsupported) operation()     {}
