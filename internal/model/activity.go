package model

import (
	"github.com/nhle/timebox/internal/clock"
)

// Task is a single checkable item inside an activity. A task starts out
// unsaved; it receives a durable UUID the first time its schedule is
// persisted, and only persisted tasks can accumulate completion history.
type Task struct {
	// Name is the display label, unique within its parent activity once
	// persisted but not across the schedule.
	Name string `json:"name" yaml:"name"`

	// UUID is the durable identity used as the join key for all completion
	// history. Empty means the task has never been saved.
	UUID string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
}

// Persisted reports whether the task has been assigned a durable UUID.
func (t Task) Persisted() bool { return t.UUID != "" }

// Activity is one scheduled block on the timeline. Offsets are minutes since
// the logical day start, so an activity is valid when
// 0 <= StartOffset < EndOffset <= 1440.
type Activity struct {
	// ID is an opaque durable identifier, unique within a schedule,
	// generated once and never reused.
	ID string

	// Name is the display string. Not unique; identity is always by ID.
	Name string

	StartOffset int
	EndOffset   int

	Description []string
	Tasks       []Task
}

// Duration returns the activity length in minutes.
func (a *Activity) Duration() int { return a.EndOffset - a.StartOffset }

// StartClock renders the start as a wall-clock "HH:MM" for the given
// day-start hour.
func (a *Activity) StartClock(dayStartHour int) string {
	return clock.FormatHHMM(clock.WallClockFromOffset(a.StartOffset, dayStartHour))
}

// EndClock renders the end as a wall-clock "HH:MM" for the given day-start
// hour.
func (a *Activity) EndClock(dayStartHour int) string {
	return clock.FormatHHMM(clock.WallClockFromOffset(a.EndOffset, dayStartHour))
}

// ActiveAt reports whether the given day offset falls inside the activity's
// half-open interval.
func (a *Activity) ActiveAt(offset int) bool {
	return a.StartOffset <= offset && offset < a.EndOffset
}

// FinishedAt reports whether the activity has ended by the given day offset.
func (a *Activity) FinishedAt(offset int) bool {
	return a.EndOffset <= offset
}

// FindTask returns the task with the given name, or nil.
func (a *Activity) FindTask(name string) *Task {
	for i := range a.Tasks {
		if a.Tasks[i].Name == name {
			return &a.Tasks[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Schedule hand-off between the rollover
// coordinator and the session is by whole-object replacement, never by
// aliasing slices.
func (a *Activity) Clone() *Activity {
	cp := *a
	cp.Description = append([]string(nil), a.Description...)
	cp.Tasks = append([]Task(nil), a.Tasks...)
	return &cp
}

// RawActivity is the on-disk shape of one activity. The field names form the
// interoperability contract with existing schedule files and must not change.
type RawActivity struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	StartTime   string   `json:"start_time" yaml:"start_time"`
	EndTime     string   `json:"end_time" yaml:"end_time"`
	Description []string `json:"description" yaml:"description"`
	Tasks       []RawTask `json:"tasks" yaml:"tasks"`
}

// RawTask is the on-disk shape of one task.
type RawTask struct {
	Name string `json:"name" yaml:"name"`
	UUID string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
}
