// Package schedule owns the ordered collection of activities for one logical
// day: identity, validation, ordering, and the serialization shape shared
// with on-disk schedule files.
package schedule

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/nhle/timebox/internal/clock"
	"github.com/nhle/timebox/internal/model"
)

// MalformedError reports a schedule that failed validation at the load
// boundary. No activity is half-loaded: Load either returns a fully valid
// schedule or this error.
type MalformedError struct {
	Activity string // name of the offending activity, may be empty
	Reason   string
	Err      error
}

func (e *MalformedError) Error() string {
	if e.Activity == "" {
		return fmt.Sprintf("malformed schedule: %s", e.Reason)
	}
	return fmt.Sprintf("malformed schedule: activity %q: %s", e.Activity, e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// ErrNotFound is returned by Find when no activity has the requested id.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("activity %s not found", e.ID)
}

// Schedule is the ordered sequence of activities for one logical day
// template. It is owned by the running session: replaced wholesale on load,
// mutated in place on edit.
type Schedule struct {
	dayStartHour int
	activities   []*model.Activity
}

// Load parses an ordered list of raw activity records into a Schedule.
// Activities lacking an id are assigned a fresh one (the backward
// compatibility path for legacy files). Times must parse as "HH:MM" with
// start strictly before end in the day-relative frame.
func Load(raw []model.RawActivity, dayStartHour int) (*Schedule, error) {
	if dayStartHour < 0 || dayStartHour > 23 {
		return nil, fmt.Errorf("loading schedule: %w (got %d)", clock.ErrInvalidDayStart, dayStartHour)
	}

	s := &Schedule{dayStartHour: dayStartHour}
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		if r.StartTime == "" || r.EndTime == "" {
			return nil, &MalformedError{Activity: r.Name, Reason: "missing start_time or end_time"}
		}

		startWall, err := clock.ParseHHMM(r.StartTime)
		if err != nil {
			return nil, &MalformedError{Activity: r.Name, Reason: "bad start_time", Err: err}
		}
		endWall, err := clock.ParseHHMM(r.EndTime)
		if err != nil {
			return nil, &MalformedError{Activity: r.Name, Reason: "bad end_time", Err: err}
		}

		start, err := clock.OffsetFromWallClock(startWall, dayStartHour)
		if err != nil {
			return nil, &MalformedError{Activity: r.Name, Reason: "bad start_time", Err: err}
		}
		end, err := clock.OffsetFromWallClock(endWall, dayStartHour)
		if err != nil {
			return nil, &MalformedError{Activity: r.Name, Reason: "bad end_time", Err: err}
		}
		// An end on the day boundary means the very end of the logical day,
		// not its beginning.
		if end == 0 && start > 0 {
			end = clock.MinutesPerDay
		}
		if start >= end {
			return nil, &MalformedError{
				Activity: r.Name,
				Reason:   fmt.Sprintf("start_time %s not before end_time %s", r.StartTime, r.EndTime),
			}
		}

		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		if seen[id] {
			return nil, &MalformedError{Activity: r.Name, Reason: fmt.Sprintf("duplicate id %s", id)}
		}
		seen[id] = true

		tasks := make([]model.Task, 0, len(r.Tasks))
		for _, rt := range r.Tasks {
			tasks = append(tasks, model.Task{Name: rt.Name, UUID: rt.UUID})
		}

		s.activities = append(s.activities, &model.Activity{
			ID:          id,
			Name:        r.Name,
			StartOffset: start,
			EndOffset:   end,
			Description: append([]string(nil), r.Description...),
			Tasks:       tasks,
		})
	}

	s.sortByStart()
	if err := s.checkInvariants(); err != nil {
		return nil, err
	}
	return s, nil
}

// New returns an empty schedule for the given day-start hour.
func New(dayStartHour int) (*Schedule, error) {
	if dayStartHour < 0 || dayStartHour > 23 {
		return nil, fmt.Errorf("new schedule: %w (got %d)", clock.ErrInvalidDayStart, dayStartHour)
	}
	return &Schedule{dayStartHour: dayStartHour}, nil
}

// DayStartHour returns the day-start hour the offsets are relative to.
func (s *Schedule) DayStartHour() int { return s.dayStartHour }

// Len returns the number of activities.
func (s *Schedule) Len() int { return len(s.activities) }

// Activities returns the activities ordered by start offset. The slice is a
// copy; the pointed-to activities are the live ones. Sorting happens here
// rather than at mutation time because committed moves adjust offsets in
// place.
func (s *Schedule) Activities() []*model.Activity {
	out := append([]*model.Activity(nil), s.activities...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartOffset < out[j].StartOffset
	})
	return out
}

// Find returns the activity with the given id.
func (s *Schedule) Find(id string) (*model.Activity, error) {
	for _, a := range s.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, &ErrNotFound{ID: id}
}

// Add inserts a new activity, assigning an id if empty.
func (s *Schedule) Add(a *model.Activity) error {
	if a.StartOffset < 0 || a.EndOffset > clock.MinutesPerDay || a.StartOffset >= a.EndOffset {
		return &MalformedError{
			Activity: a.Name,
			Reason:   fmt.Sprintf("invalid interval [%d, %d)", a.StartOffset, a.EndOffset),
		}
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	s.activities = append(s.activities, a)
	s.sortByStart()
	return s.checkInvariants()
}

// Remove deletes the activity with the given id. The activity's tasks go
// with it.
func (s *Schedule) Remove(id string) error {
	for i, a := range s.activities {
		if a.ID == id {
			s.activities = append(s.activities[:i], s.activities[i+1:]...)
			return s.checkInvariants()
		}
	}
	return &ErrNotFound{ID: id}
}

// Current returns the activity active at the given day offset, or nil.
func (s *Schedule) Current(offset int) *model.Activity {
	for _, a := range s.Activities() {
		if a.ActiveAt(offset) {
			return a
		}
	}
	return nil
}

// Next returns the first activity starting strictly after the given day
// offset, or nil.
func (s *Schedule) Next(offset int) *model.Activity {
	for _, a := range s.Activities() {
		if a.StartOffset > offset {
			return a
		}
	}
	return nil
}

// Serialize converts the schedule back to its raw on-disk shape. The id
// field is always emitted so that a load/serialize round trip is stable.
func (s *Schedule) Serialize() []model.RawActivity {
	raw := make([]model.RawActivity, 0, len(s.activities))
	for _, a := range s.activities {
		tasks := make([]model.RawTask, 0, len(a.Tasks))
		for _, t := range a.Tasks {
			tasks = append(tasks, model.RawTask{Name: t.Name, UUID: t.UUID})
		}
		raw = append(raw, model.RawActivity{
			ID:          a.ID,
			Name:        a.Name,
			StartTime:   a.StartClock(s.dayStartHour),
			EndTime:     a.EndClock(s.dayStartHour),
			Description: append([]string(nil), a.Description...),
			Tasks:       tasks,
		})
	}
	return raw
}

// sortByStart keeps display order aligned with start offsets. Shift
// semantics are defined by start time, not list position, but a sorted list
// keeps the two consistent.
func (s *Schedule) sortByStart() {
	sort.SliceStable(s.activities, func(i, j int) bool {
		return s.activities[i].StartOffset < s.activities[j].StartOffset
	})
}

// checkInvariants verifies that every activity carries a non-empty, unique
// id. Run after every mutation.
func (s *Schedule) checkInvariants() error {
	seen := make(map[string]bool, len(s.activities))
	for _, a := range s.activities {
		if a.ID == "" {
			return &MalformedError{Activity: a.Name, Reason: "empty activity id"}
		}
		if seen[a.ID] {
			return &MalformedError{Activity: a.Name, Reason: fmt.Sprintf("duplicate id %s", a.ID)}
		}
		seen[a.ID] = true
	}
	return nil
}
